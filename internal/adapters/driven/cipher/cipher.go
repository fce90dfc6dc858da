// Package cipher implements the credential cipher using AES-256-GCM.
// Credential payloads are sealed with a random nonce and stored as a
// single base64 blob (nonce || ciphertext || tag).
package cipher

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"

	"github.com/inkwell-sync/inkwell/internal/core/domain"
	"github.com/inkwell-sync/inkwell/internal/core/ports/driven"
)

// KeySize is the required key length in bytes (AES-256).
const KeySize = 32

// Ensure Cipher implements the interface.
var _ driven.CredentialCipher = (*Cipher)(nil)

// Cipher is an authenticated symmetric cipher for credential blobs.
type Cipher struct {
	aead cipher.AEAD
}

// New creates a cipher from a raw 32-byte key.
func New(key []byte) (*Cipher, error) {
	if len(key) != KeySize {
		return nil, &domain.ValidationError{
			Field:  "cipher key",
			Reason: fmt.Sprintf("must be %d bytes, got %d", KeySize, len(key)),
		}
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("creating cipher: %w", err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("creating GCM: %w", err)
	}

	return &Cipher{aead: aead}, nil
}

// NewFromHex creates a cipher from a hex-encoded key, as supplied via
// configuration. The encoded key must decode to exactly 32 bytes.
func NewFromHex(hexKey string) (*Cipher, error) {
	key, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, &domain.ValidationError{
			Field:  "cipher key",
			Reason: "not valid hex",
		}
	}
	return New(key)
}

// Encrypt seals a plaintext credential payload into an opaque blob.
func (c *Cipher) Encrypt(plain string) (string, error) {
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("generating nonce: %w", err)
	}

	sealed := c.aead.Seal(nonce, nonce, []byte(plain), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt opens a blob produced by Encrypt. A tampered, truncated or
// foreign-key blob fails with an IntegrityError rather than returning
// garbage.
func (c *Cipher) Decrypt(blob string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(blob)
	if err != nil {
		return "", &domain.IntegrityError{Reason: "blob is not valid base64"}
	}

	nonceSize := c.aead.NonceSize()
	if len(raw) < nonceSize {
		return "", &domain.IntegrityError{Reason: "blob shorter than nonce"}
	}

	nonce, ciphertext := raw[:nonceSize], raw[nonceSize:]
	plain, err := c.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", &domain.IntegrityError{Reason: "authentication tag mismatch"}
	}

	return string(plain), nil
}
