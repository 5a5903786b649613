package hash

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"

	"golang.org/x/crypto/bcrypt"
)

// bcryptMaxInput is the number of input bytes bcrypt actually uses.
const bcryptMaxInput = 72

// Bcrypt implements Hash using bcrypt.
//
// With a pepper, bcrypt is fed base64(HMAC-SHA256(pepper, plaintext)), which
// stays under bcrypt's 72-byte input limit whatever the password length. Keep
// the pepper secret and store it in configuration (not in the database).
// Without a pepper, input beyond 72 bytes is ignored, matching what bcrypt
// itself would consider.
type Bcrypt struct {
	cost   int
	pepper string
}

// NewBcrypt returns a bcrypt-based hasher. A cost outside bcrypt's accepted
// range falls back to bcrypt.DefaultCost.
func NewBcrypt(cost int, pepper string) *Bcrypt {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}

	return &Bcrypt{cost: cost, pepper: pepper}
}

// Hash hashes plaintext using bcrypt.
func (h *Bcrypt) Hash(plaintext string) ([]byte, error) {
	return bcrypt.GenerateFromPassword(h.input(plaintext), h.cost)
}

// Verify returns true when plaintext matches the hashed value.
func (h *Bcrypt) Verify(hashed, plaintext string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), h.input(plaintext)) == nil
}

func (h *Bcrypt) input(plaintext string) []byte {
	if h.pepper != "" {
		mac := hmac.New(sha256.New, []byte(h.pepper))
		mac.Write([]byte(plaintext))
		return []byte(base64.StdEncoding.EncodeToString(mac.Sum(nil)))
	}

	b := []byte(plaintext)
	if len(b) > bcryptMaxInput {
		b = b[:bcryptMaxInput]
	}

	return b
}
