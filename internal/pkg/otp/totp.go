package otp

import (
	"crypto/subtle"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/hotp"
)

// DefaultPeriod is the time step used when none is configured.
const DefaultPeriod uint = 30

// CodeLength is the number of digits in every code.
const CodeLength = 6

// OTP defines the contract for TOTP operations.
type OTP interface {
	// Period returns the length of one time step.
	Period() time.Duration
	// Counter returns the time-step index containing now.
	Counter(now time.Time) uint64
	// CurrentCode returns the code for the time step containing now.
	CurrentCode(secret Secret, now time.Time) (string, error)
	// Verify reports whether code matches the time step containing now.
	Verify(secret Secret, code string, now time.Time) bool
}

// TOTP implements OTP with HMAC-SHA1 and six digit codes.
type TOTP struct {
	period uint64
}

// NewTOTP constructs a TOTP engine. A zero period falls back to DefaultPeriod.
func NewTOTP(period uint) *TOTP {
	if period == 0 {
		period = DefaultPeriod
	}

	return &TOTP{period: uint64(period)}
}

// Period returns the length of one time step.
func (t *TOTP) Period() time.Duration {
	return time.Duration(t.period) * time.Second
}

// Counter returns floor(unix seconds / period). Sub-second precision is
// truncated.
func (t *TOTP) Counter(now time.Time) uint64 {
	sec := now.UTC().Unix()
	if sec < 0 {
		return 0
	}

	return uint64(sec) / t.period
}

// CurrentCode returns the six digit, zero padded code for now.
func (t *TOTP) CurrentCode(secret Secret, now time.Time) (string, error) {
	return hotp.GenerateCodeCustom(EncodeSecret(secret), t.Counter(now), hotp.ValidateOpts{
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
}

// Verify reports whether code equals the code of the step containing now.
// Malformed codes are simply not valid.
func (t *TOTP) Verify(secret Secret, code string, now time.Time) bool {
	if !wellFormed(code) {
		return false
	}

	expected, err := t.CurrentCode(secret, now)
	if err != nil {
		return false
	}

	return subtle.ConstantTimeCompare([]byte(expected), []byte(code)) == 1
}

func wellFormed(code string) bool {
	if len(code) != CodeLength {
		return false
	}

	for i := 0; i < len(code); i++ {
		if code[i] < '0' || code[i] > '9' {
			return false
		}
	}

	return true
}
