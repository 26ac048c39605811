// Package cryptox implements the manifest codec: authenticated encryption of
// a filename list into an opaque, URL-safe retrieval token and back.
package cryptox

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/filedo/internal/common"
	"golang.org/x/crypto/hkdf"
)

// KeySize is the length in bytes of a decoded secret key.
const KeySize = 32

// manifestKeyInfo labels the HKDF subkey used for manifest sealing, so the
// configured secret can never be confused with a key for another purpose.
var manifestKeyInfo = []byte("filedo manifest v1")

// ParseKey decodes a secret key given as base64url text (padded or not).
// Surrounding whitespace is trimmed first since keys usually come from
// environment variables or files with a trailing newline.
// Anything that does not decode to exactly KeySize bytes is ErrMalformedKey.
func ParseKey(secretKey string) ([]byte, error) {
	s := strings.TrimSpace(secretKey)
	if s == "" {
		return nil, fmt.Errorf("%w: empty", common.ErrMalformedKey)
	}

	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(s, "="))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrMalformedKey, err)
	}
	if len(raw) != KeySize {
		return nil, fmt.Errorf("%w: want %d bytes, got %d", common.ErrMalformedKey, KeySize, len(raw))
	}
	return raw, nil
}

// GenerateKey returns a new random secret key in the text form accepted by
// ParseKey (padded base64url, 44 characters).
func GenerateKey() string {
	raw := common.GenerateRandByteArray(KeySize)
	defer common.WipeByteArray(raw)
	return base64.URLEncoding.EncodeToString(raw)
}

// deriveManifestKey expands the configured secret into the AES-256 key used
// for manifests.
func deriveManifestKey(secret []byte) ([]byte, error) {
	key := make([]byte, KeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, secret, nil, manifestKeyInfo), key); err != nil {
		return nil, err
	}
	return key, nil
}
