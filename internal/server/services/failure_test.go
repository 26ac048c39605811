package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/dmitrijs2005/filedo/internal/common"
	"github.com/stretchr/testify/assert"
)

func TestFailureKind(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{fmt.Errorf("%w: none present", common.ErrorNotFound), KindNotFound},
		{common.ErrDecryptionFailed, KindDecryptionFailed},
		{fmt.Errorf("%w: dial tcp", common.ErrPersistence), KindDBUnreachable},
		{fmt.Errorf("%w: disk full", common.ErrPackaging), KindZipFailed},
		{common.ErrNoStorageConfigured, KindNoStorage},
		{fmt.Errorf("%w: read-only fs", common.ErrPersistFailure), KindSaveFailed},
		{common.ErrNoValidFiles, KindNoValidFiles},
		{errors.New("something else"), KindInternal},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FailureKind(tt.err), tt.err.Error())
	}
}
