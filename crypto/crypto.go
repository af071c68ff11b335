// Package crypto seals personally identifying fields, such as the hosts of
// moderated users, before they are written to the database. It uses
// XChaCha20-Poly1305 with the column name as associated data, so a value
// sealed for one column cannot be replayed into another.
package crypto

import (
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

// ErrOpen is returned when a sealed value fails authentication.
var ErrOpen = errors.New("sealed value failed authentication")

// Sealer encrypts and authenticates short strings for storage.
type Sealer interface {
	// Seal returns base64 text of nonce || ciphertext || tag.
	Seal(field, plaintext string) (string, error)
	// Open reverses Seal. field must match the one used to seal.
	Open(field, sealed string) (string, error)
}

// FieldSealer implements Sealer with XChaCha20-Poly1305. Random 24-byte
// nonces make collisions negligible without a counter.
type FieldSealer struct {
	aead cipher.AEAD
}

// NewFieldSealer creates a sealer from a base64-encoded 32-byte key, as
// produced by:
//
//	openssl rand -base64 32
func NewFieldSealer(base64Key string) (*FieldSealer, error) {
	if base64Key == "" {
		return nil, fmt.Errorf("encryption key is empty")
	}
	key, err := base64.StdEncoding.DecodeString(base64Key)
	if err != nil {
		return nil, fmt.Errorf("invalid encryption key: base64 decode failed: %w", err)
	}
	if len(key) != chacha20poly1305.KeySize {
		return nil, fmt.Errorf("invalid encryption key: must be %d bytes, got %d bytes", chacha20poly1305.KeySize, len(key))
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("create aead: %w", err)
	}
	return &FieldSealer{aead: aead}, nil
}

// Seal encrypts plaintext bound to field. Empty input stays empty.
func (s *FieldSealer) Seal(field, plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}
	nonce := make([]byte, s.aead.NonceSize(), s.aead.NonceSize()+len(plaintext)+s.aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}
	out := s.aead.Seal(nonce, nonce, []byte(plaintext), []byte(field))
	return base64.StdEncoding.EncodeToString(out), nil
}

// Open decrypts a value produced by Seal for the same field.
func (s *FieldSealer) Open(field, sealed string) (string, error) {
	if sealed == "" {
		return "", nil
	}
	raw, err := base64.StdEncoding.DecodeString(sealed)
	if err != nil {
		return "", fmt.Errorf("base64 decode failed: %w", err)
	}
	ns := s.aead.NonceSize()
	if len(raw) < ns+s.aead.Overhead() {
		return "", fmt.Errorf("sealed value too short: %d bytes", len(raw))
	}
	plain, err := s.aead.Open(nil, raw[:ns], raw[ns:], []byte(field))
	if err != nil {
		// the aead error carries no detail worth exposing
		return "", ErrOpen
	}
	return string(plain), nil
}
