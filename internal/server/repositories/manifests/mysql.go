package manifests

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/filedo/internal/dbx"
	"github.com/dmitrijs2005/filedo/internal/server/models"
)

// MySQLRepository stores records using "?" placeholders and LastInsertId.
// It targets MySQL but only uses SQL that SQLite accepts as well.
type MySQLRepository struct {
	db dbx.DBTX
}

func NewMySQLRepository(db dbx.DBTX) *MySQLRepository {
	return &MySQLRepository{db: db}
}

func (r *MySQLRepository) Insert(ctx context.Context, rec *models.ManifestRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO surat (no_surat, path, encrip, created_at) VALUES (?, ?, ?, ?)`,
		rec.ReferenceNumber, rec.StorageRoot, rec.EncryptedManifest, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	rec.ID = id
	return nil
}

func (r *MySQLRepository) FindByReferenceNumber(ctx context.Context, ref string) (*models.ManifestRecord, error) {
	return findOne(ctx, r.db, selectColumns+` WHERE no_surat = ? ORDER BY id DESC LIMIT 1`, ref)
}

func (r *MySQLRepository) FindByEncryptedManifest(ctx context.Context, token string) (*models.ManifestRecord, error) {
	return findOne(ctx, r.db, selectColumns+` WHERE encrip = ? LIMIT 1`, token)
}
