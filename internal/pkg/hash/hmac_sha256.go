package hash

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// HMACSHA256 produces keyed, hex encoded digests. It is used where a stable
// but unguessable name is needed, such as object keys for stored artifacts.
type HMACSHA256 struct {
	secret []byte
}

// NewHMACSHA256 creates a new hasher with a secret.
func NewHMACSHA256(secret string) *HMACSHA256 {
	return &HMACSHA256{secret: []byte(secret)}
}

// Hash returns the hex encoded HMAC SHA-256 of plaintext.
func (s *HMACSHA256) Hash(plaintext string) ([]byte, error) {
	return s.sum(plaintext), nil
}

// Verify checks whether plaintext matches the given digest.
func (s *HMACSHA256) Verify(hashed, plaintext string) bool {
	return subtle.ConstantTimeCompare([]byte(hashed), s.sum(plaintext)) == 1
}

func (s *HMACSHA256) sum(plaintext string) []byte {
	h := hmac.New(sha256.New, s.secret)
	h.Write([]byte(plaintext))

	out := make([]byte, hex.EncodedLen(sha256.Size))
	hex.Encode(out, h.Sum(nil))

	return out
}
