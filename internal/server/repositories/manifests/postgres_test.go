package manifests

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/filedo/internal/common"
	"github.com/dmitrijs2005/filedo/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPostgresWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresRepository(db), mock
}

var recordColumns = []string{"id", "no_surat", "path", "encrip", "created_at"}

func TestPostgres_Insert(t *testing.T) {
	repo, mock := newPostgresWithMock(t)

	mock.ExpectQuery(`INSERT INTO surat \(no_surat, path, encrip, created_at\)\s+VALUES \(\$1, \$2, \$3, \$4\)\s+RETURNING id`).
		WithArgs("SK/2024/001", "/files/surat/", "tok", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))

	rec := &models.ManifestRecord{
		ReferenceNumber:   "SK/2024/001",
		StorageRoot:       sql.NullString{String: "/files/surat/", Valid: true},
		EncryptedManifest: "tok",
	}
	require.NoError(t, repo.Insert(context.Background(), rec))
	assert.Equal(t, int64(7), rec.ID)
	assert.False(t, rec.CreatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_InsertNullRoot(t *testing.T) {
	repo, mock := newPostgresWithMock(t)

	mock.ExpectQuery(`INSERT INTO surat`).
		WithArgs("A-1", nil, "tok", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))

	require.NoError(t, repo.Insert(context.Background(), &models.ManifestRecord{
		ReferenceNumber: "A-1", EncryptedManifest: "tok",
	}))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_InsertError(t *testing.T) {
	repo, mock := newPostgresWithMock(t)

	mock.ExpectQuery(`INSERT INTO surat`).WillReturnError(errors.New("db is down"))

	err := repo.Insert(context.Background(), &models.ManifestRecord{ReferenceNumber: "A-1", EncryptedManifest: "tok"})
	require.Error(t, err)
	assert.Regexp(t, `db error: .*db is down`, err.Error())
}

func TestPostgres_FindByReferenceNumber(t *testing.T) {
	repo, mock := newPostgresWithMock(t)
	created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM surat WHERE no_surat = $1 ORDER BY id DESC LIMIT 1`)).
		WithArgs("SK/2024/001").
		WillReturnRows(sqlmock.NewRows(recordColumns).
			AddRow(int64(3), "SK/2024/001", "/files2/surat/", "tok", created))

	rec, err := repo.FindByReferenceNumber(context.Background(), "SK/2024/001")
	require.NoError(t, err)
	assert.Equal(t, int64(3), rec.ID)
	assert.Equal(t, "/files2/surat/", rec.Root())
	assert.Equal(t, "tok", rec.EncryptedManifest)
	assert.Equal(t, created, rec.CreatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_FindNullRoot(t *testing.T) {
	repo, mock := newPostgresWithMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE encrip = $1`)).
		WithArgs("tok").
		WillReturnRows(sqlmock.NewRows(recordColumns).
			AddRow(int64(1), "old", nil, "tok", time.Now()))

	rec, err := repo.FindByEncryptedManifest(context.Background(), "tok")
	require.NoError(t, err)
	assert.False(t, rec.StorageRoot.Valid)
	assert.Empty(t, rec.Root())
}

func TestPostgres_FindNotFound(t *testing.T) {
	repo, mock := newPostgresWithMock(t)

	mock.ExpectQuery(`FROM surat WHERE no_surat`).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByReferenceNumber(context.Background(), "missing")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestPostgres_FindDBError(t *testing.T) {
	repo, mock := newPostgresWithMock(t)

	mock.ExpectQuery(`FROM surat WHERE encrip`).
		WillReturnError(errors.New("conn reset"))

	_, err := repo.FindByEncryptedManifest(context.Background(), "tok")
	require.Error(t, err)
	assert.NotErrorIs(t, err, common.ErrorNotFound)
	assert.Contains(t, err.Error(), "conn reset")
}
