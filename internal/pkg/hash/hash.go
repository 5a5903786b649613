package hash

import (
	"errors"
	"strings"
)

// ErrUnknownAlgorithm is returned for an unsupported password algorithm name.
var ErrUnknownAlgorithm = errors.New("hash: unknown algorithm")

const (
	// AlgorithmBcrypt selects bcrypt for new password hashes.
	AlgorithmBcrypt = "bcrypt"
	// AlgorithmArgon2id selects argon2id for new password hashes.
	AlgorithmArgon2id = "argon2id"
)

// Hash hashes plaintext and verifies plaintext against a stored hash.
type Hash interface {
	Hash(plaintext string) ([]byte, error)
	Verify(hashed, plaintext string) bool
}

// Adaptive hashes with one configured algorithm and verifies with whichever
// algorithm produced the stored hash.
type Adaptive struct {
	primary  Hash
	bcrypt   Hash
	argon2id Hash

	argonPrimary bool
}

// NewAdaptive returns an Adaptive hasher that creates new hashes with
// algorithm ("bcrypt" or "argon2id"; empty means bcrypt).
func NewAdaptive(algorithm string, bcrypt, argon2id Hash) (*Adaptive, error) {
	a := &Adaptive{bcrypt: bcrypt, argon2id: argon2id}

	switch strings.ToLower(strings.TrimSpace(algorithm)) {
	case "", AlgorithmBcrypt:
		a.primary = bcrypt
	case AlgorithmArgon2id:
		a.primary = argon2id
		a.argonPrimary = true
	default:
		return nil, ErrUnknownAlgorithm
	}

	return a, nil
}

// Hash hashes plaintext with the primary algorithm.
func (a *Adaptive) Hash(plaintext string) ([]byte, error) {
	return a.primary.Hash(plaintext)
}

// Verify checks plaintext against hashed using the algorithm encoded in
// the hash prefix.
func (a *Adaptive) Verify(hashed, plaintext string) bool {
	if strings.HasPrefix(hashed, argon2idPrefix) {
		return a.argon2id.Verify(hashed, plaintext)
	}

	return a.bcrypt.Verify(hashed, plaintext)
}

// NeedsRehash reports whether hashed was produced by an algorithm other than
// the one new hashes use.
func (a *Adaptive) NeedsRehash(hashed string) bool {
	return strings.HasPrefix(hashed, argon2idPrefix) != a.argonPrimary
}
