package mfa

import (
	"encoding/base64"
	"strings"
)

// SealedPrefix marks stored values produced by Sealer.Seal.
const SealedPrefix = "enc:v1:"

// Sealer converts secrets to and from their stored text form. Without an
// Encryptor it stores plaintext unchanged; with one it stores
// SealedPrefix + base64(ciphertext). Open accepts both forms so rows written
// before encryption was enabled stay readable.
type Sealer struct {
	enc Encryptor
}

// NewSealer returns a Sealer. A nil enc disables encryption.
func NewSealer(enc Encryptor) *Sealer {
	return &Sealer{enc: enc}
}

// Enabled reports whether new values are encrypted.
func (s *Sealer) Enabled() bool {
	return s != nil && s.enc != nil
}

// Seal returns the stored form of plaintext.
func (s *Sealer) Seal(plaintext string, scope Scope) (string, error) {
	if !s.Enabled() {
		return plaintext, nil
	}

	ct, err := s.enc.Encrypt([]byte(plaintext), scope)
	if err != nil {
		return "", err
	}

	return SealedPrefix + base64.RawStdEncoding.EncodeToString(ct), nil
}

// Open returns the plaintext for a stored value.
func (s *Sealer) Open(stored string, scope Scope) (string, error) {
	rest, sealed := strings.CutPrefix(stored, SealedPrefix)
	if !sealed {
		return stored, nil
	}
	if !s.Enabled() {
		return "", ErrEncryptorNotConfigured
	}

	ct, err := base64.RawStdEncoding.DecodeString(rest)
	if err != nil {
		return "", ErrDecryptFailed
	}

	pt, err := s.enc.Decrypt(ct, scope)
	if err != nil {
		return "", err
	}

	return string(pt), nil
}
