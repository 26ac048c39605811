package manifests

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/filedo/internal/dbx"
	"github.com/dmitrijs2005/filedo/internal/server/models"
)

// PostgresRepository stores records over a dbx.DBTX opened with the pgx driver.
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Insert(ctx context.Context, rec *models.ManifestRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO surat (no_surat, path, encrip, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	err := r.db.QueryRowContext(ctx, query,
		rec.ReferenceNumber, rec.StorageRoot, rec.EncryptedManifest, rec.CreatedAt).Scan(&rec.ID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) FindByReferenceNumber(ctx context.Context, ref string) (*models.ManifestRecord, error) {
	return findOne(ctx, r.db, selectColumns+` WHERE no_surat = $1 ORDER BY id DESC LIMIT 1`, ref)
}

func (r *PostgresRepository) FindByEncryptedManifest(ctx context.Context, token string) (*models.ManifestRecord, error) {
	return findOne(ctx, r.db, selectColumns+` WHERE encrip = $1 LIMIT 1`, token)
}
