// Package manifests persists manifest records: one row per upload linking a
// reference number to the encrypted manifest and the storage root used.
package manifests

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/filedo/internal/common"
	"github.com/dmitrijs2005/filedo/internal/dbx"
	"github.com/dmitrijs2005/filedo/internal/server/models"
)

// Repository is the record store used by the retrieval service.
type Repository interface {
	// Insert stores a new record and fills in its ID (and CreatedAt when zero).
	Insert(ctx context.Context, rec *models.ManifestRecord) error
	// FindByReferenceNumber returns the most recent record for ref, or
	// common.ErrorNotFound.
	FindByReferenceNumber(ctx context.Context, ref string) (*models.ManifestRecord, error)
	// FindByEncryptedManifest returns the record holding exactly token, or
	// common.ErrorNotFound.
	FindByEncryptedManifest(ctx context.Context, token string) (*models.ManifestRecord, error)
}

const selectColumns = `SELECT id, no_surat, path, encrip, created_at FROM surat`

func findOne(ctx context.Context, db dbx.DBTX, query string, arg any) (*models.ManifestRecord, error) {
	rec := &models.ManifestRecord{}
	err := db.QueryRowContext(ctx, query, arg).Scan(
		&rec.ID, &rec.ReferenceNumber, &rec.StorageRoot, &rec.EncryptedManifest, &rec.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return rec, nil
}
