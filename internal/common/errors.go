// Package common defines shared constants and sentinel errors used across
// the storage, packaging and server layers of filedo. Callers should use
// errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// ErrPersistence means the manifest record store is unreachable or
	// rejected a write. Callers may retry.
	ErrPersistence = errors.New("record store failure")

	// Configuration errors.
	ErrNoStorageConfigured = errors.New("no storage roots configured")
	ErrMalformedKey        = errors.New("malformed secret key")

	// Manifest codec errors.
	ErrEmptyManifest    = errors.New("empty manifest")
	ErrDecryptionFailed = errors.New("invalid key or decryption failed")

	// Upload errors.
	ErrPersistFailure = errors.New("failed to save file")
	ErrNoValidFiles   = errors.New("no valid files saved")

	// Packaging errors (staging dir or archive container could not be written).
	ErrPackaging = errors.New("failed to package files")
)
