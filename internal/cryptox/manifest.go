package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/filedo/internal/common"
)

// tokenVersion is the first byte of every sealed token.
const tokenVersion byte = 0x01

// ManifestCodec seals filename manifests into retrieval tokens and opens
// them again. It holds one process-wide key and is safe for concurrent use.
//
// Tokens never expire and cannot be revoked individually: anyone holding a
// token can retrieve its files until the secret key is rotated.
type ManifestCodec struct {
	aead cipher.AEAD
}

// NewManifestCodec builds a codec from the configured secret key (see
// ParseKey for the accepted format). A malformed key yields ErrMalformedKey.
func NewManifestCodec(secretKey string) (*ManifestCodec, error) {
	secret, err := ParseKey(secretKey)
	if err != nil {
		return nil, err
	}
	defer common.WipeByteArray(secret)

	key, err := deriveManifestKey(secret)
	if err != nil {
		return nil, fmt.Errorf("derive manifest key: %w", err)
	}
	defer common.WipeByteArray(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	return &ManifestCodec{aead: aead}, nil
}

// Encrypt serializes the manifest as a JSON array and seals it with AES-GCM
// under a fresh random nonce. The token is unpadded base64url text, safe to
// use as a URL query parameter.
//
// Encrypting the same manifest twice yields different tokens.
//
// Example:
//
//	codec, err := cryptox.NewManifestCodec(cfg.SecretKey)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	token, err := codec.Encrypt([]string{"r1.txt", "r2.txt"})
func (c *ManifestCodec) Encrypt(manifest []string) (string, error) {
	if len(manifest) == 0 {
		return "", common.ErrEmptyManifest
	}

	plaintext, err := json.Marshal(manifest)
	if err != nil {
		return "", err
	}

	return c.seal(plaintext), nil
}

// EncryptLegacy seals a bare filename, the encoding used by tokens issued
// before manifests carried several files. Decrypt returns it as a
// one-element list.
func (c *ManifestCodec) EncryptLegacy(filename string) (string, error) {
	if filename == "" {
		return "", common.ErrEmptyManifest
	}
	return c.seal([]byte(filename)), nil
}

// Decrypt authenticates and opens a token and returns its filenames in their
// original order. Both the list encoding and the legacy bare-filename
// encoding are accepted.
//
// Every failure (malformed text, truncated token, unknown version, wrong key,
// tampered ciphertext, empty payload) is reported as ErrDecryptionFailed so
// callers can treat it uniformly as an invalid key.
func (c *ManifestCodec) Decrypt(token string) ([]string, error) {
	decoded, err := c.open(token)
	if err != nil {
		return nil, err
	}
	return decoded.filenames, nil
}

// IsLegacy reports whether a valid token carries the bare-filename encoding.
func (c *ManifestCodec) IsLegacy(token string) (bool, error) {
	decoded, err := c.open(token)
	if err != nil {
		return false, err
	}
	return decoded.format == formatScalar, nil
}

func (c *ManifestCodec) seal(plaintext []byte) string {
	nonce := common.GenerateRandByteArray(c.aead.NonceSize())

	buf := make([]byte, 0, 1+len(nonce)+len(plaintext)+c.aead.Overhead())
	buf = append(buf, tokenVersion)
	buf = append(buf, nonce...)
	buf = c.aead.Seal(buf, nonce, plaintext, []byte{tokenVersion})

	return base64.RawURLEncoding.EncodeToString(buf)
}

func (c *ManifestCodec) open(token string) (decodedManifest, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return decodedManifest{}, common.ErrDecryptionFailed
	}

	ns := c.aead.NonceSize()
	if len(raw) < 1+ns+c.aead.Overhead() || raw[0] != tokenVersion {
		return decodedManifest{}, common.ErrDecryptionFailed
	}

	nonce, sealed := raw[1:1+ns], raw[1+ns:]
	plaintext, err := c.aead.Open(nil, nonce, sealed, []byte{tokenVersion})
	if err != nil {
		return decodedManifest{}, common.ErrDecryptionFailed
	}

	decoded, ok := decodePlaintext(plaintext)
	if !ok {
		return decodedManifest{}, common.ErrDecryptionFailed
	}
	return decoded, nil
}
