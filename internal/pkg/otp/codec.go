package otp

import (
	"crypto/rand"
	"encoding/base32"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// SecretSize is the number of random bytes in a generated secret (160 bits).
const SecretSize = 20

// ErrInvalidSecretFormat is returned when secret text is not unpadded base32.
var ErrInvalidSecretFormat = errors.New("otp: invalid secret format")

var encoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// Secret is the raw shared key used to compute codes.
type Secret []byte

// LogValue keeps secrets out of structured logs.
func (Secret) LogValue() slog.Value {
	return slog.StringValue("****")
}

// GenerateSecret returns a fresh secret read from crypto/rand.
func GenerateSecret() (Secret, error) {
	s := make(Secret, SecretSize)
	if _, err := rand.Read(s); err != nil {
		return nil, fmt.Errorf("otp: generate secret: %w", err)
	}

	return s, nil
}

// EncodeSecret returns the unpadded base32 text form of s.
func EncodeSecret(s Secret) string {
	return encoding.EncodeToString(s)
}

// DecodeSecret parses the text form produced by EncodeSecret.
//
// Only the upper-case alphabet A-Z2-7 is accepted. Padding characters and
// lengths that do not describe whole bytes are rejected with
// ErrInvalidSecretFormat.
func DecodeSecret(text string) (Secret, error) {
	if text == "" || strings.ContainsRune(text, '=') {
		return nil, ErrInvalidSecretFormat
	}

	// 1, 3 and 6 trailing characters never describe whole bytes
	switch len(text) % 8 {
	case 1, 3, 6:
		return nil, ErrInvalidSecretFormat
	}

	for i := 0; i < len(text); i++ {
		c := text[i]
		if (c < 'A' || c > 'Z') && (c < '2' || c > '7') {
			return nil, ErrInvalidSecretFormat
		}
	}

	b, err := encoding.DecodeString(text)
	if err != nil {
		return nil, ErrInvalidSecretFormat
	}

	return b, nil
}
