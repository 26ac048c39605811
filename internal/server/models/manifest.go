// Package models holds the persistent records of the server.
package models

import (
	"database/sql"
	"time"
)

// ManifestRecord links a reference number to the encrypted manifest issued
// for one upload. StorageRoot is NULL for rows written before the root was
// recorded.
type ManifestRecord struct {
	ID                int64          `db:"id"`
	ReferenceNumber   string         `db:"no_surat"`
	StorageRoot       sql.NullString `db:"path"`
	EncryptedManifest string         `db:"encrip"`
	CreatedAt         time.Time      `db:"created_at"`
}

// Root returns the recorded storage root, or "" when none was stored.
func (r *ManifestRecord) Root() string {
	if r == nil || !r.StorageRoot.Valid {
		return ""
	}
	return r.StorageRoot.String
}
