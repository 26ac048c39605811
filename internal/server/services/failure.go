package services

import (
	"errors"

	"github.com/dmitrijs2005/filedo/internal/common"
)

// Failure kinds reported to clients.
const (
	KindNotFound         = "not_found"
	KindDecryptionFailed = "decryption_failed"
	KindDBUnreachable    = "db_unreachable"
	KindZipFailed        = "zip_failed"
	KindNoStorage        = "no_storage"
	KindSaveFailed       = "save_failed"
	KindNoValidFiles     = "no_valid_files"
	KindInternal         = "internal"
)

// FailureKind classifies an error returned by RetrievalService.
func FailureKind(err error) string {
	switch {
	case errors.Is(err, common.ErrorNotFound):
		return KindNotFound
	case errors.Is(err, common.ErrDecryptionFailed):
		return KindDecryptionFailed
	case errors.Is(err, common.ErrPersistence):
		return KindDBUnreachable
	case errors.Is(err, common.ErrPackaging):
		return KindZipFailed
	case errors.Is(err, common.ErrNoStorageConfigured):
		return KindNoStorage
	case errors.Is(err, common.ErrPersistFailure):
		return KindSaveFailed
	case errors.Is(err, common.ErrNoValidFiles):
		return KindNoValidFiles
	default:
		return KindInternal
	}
}
