package otp

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test vectors from RFC 6238 appendix B (SHA1), truncated to six digits.
var rfcSecret = Secret("12345678901234567890")

func TestTOTP_CurrentCode_RFC6238(t *testing.T) {
	t.Parallel()

	tests := []struct {
		unix int64
		want string
	}{
		{unix: 59, want: "287082"},
		{unix: 1111111109, want: "081804"},
		{unix: 1111111111, want: "050471"},
		{unix: 1234567890, want: "005924"},
		{unix: 2000000000, want: "279037"},
		{unix: 20000000000, want: "353130"},
	}

	engine := NewTOTP(0)
	for _, tt := range tests {
		got, err := engine.CurrentCode(rfcSecret, time.Unix(tt.unix, 0))
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "unix=%d", tt.unix)
	}
}

func TestTOTP_CurrentCode_StableWithinStep(t *testing.T) {
	t.Parallel()

	engine := NewTOTP(30)
	start := time.Unix(1700000010, 0) // step boundary at 1700000010

	first, err := engine.CurrentCode(rfcSecret, start)
	require.NoError(t, err)

	for offset := range 30 {
		at := start.Add(time.Duration(offset) * time.Second).Add(999 * time.Millisecond)
		got, err := engine.CurrentCode(rfcSecret, at)
		require.NoError(t, err)
		assert.Equal(t, first, got)
	}

	assert.Equal(t, engine.Counter(start)+1, engine.Counter(start.Add(30*time.Second)))
}

func TestTOTP_CurrentCode_IgnoresLocation(t *testing.T) {
	t.Parallel()

	engine := NewTOTP(30)
	at := time.Unix(1234567890, 0)
	loc := time.FixedZone("UTC+7", 7*60*60)

	a, err := engine.CurrentCode(rfcSecret, at)
	require.NoError(t, err)
	b, err := engine.CurrentCode(rfcSecret, at.In(loc))
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestTOTP_Verify(t *testing.T) {
	t.Parallel()

	engine := NewTOTP(30)
	at := time.Unix(1234567890, 0)

	secret, err := GenerateSecret()
	require.NoError(t, err)
	code, err := engine.CurrentCode(secret, at)
	require.NoError(t, err)

	assert.True(t, engine.Verify(secret, code, at))
	assert.True(t, engine.Verify(rfcSecret, "005924", at))

	// zero tolerance: the neighbouring steps do not count
	assert.False(t, engine.Verify(rfcSecret, "005924", at.Add(-30*time.Second)))
	assert.False(t, engine.Verify(rfcSecret, "005924", at.Add(30*time.Second)))
}

func TestTOTP_Verify_Malformed(t *testing.T) {
	t.Parallel()

	engine := NewTOTP(30)
	at := time.Unix(1234567890, 0)

	for _, code := range []string{"", "05924", "0059240", "00592a", " 05924", "００５９２４", "-05924"} {
		assert.False(t, engine.Verify(rfcSecret, code, at), "code=%q", code)
	}
}

func TestTOTP_Verify_WrongCode(t *testing.T) {
	t.Parallel()

	engine := NewTOTP(30)
	at := time.Unix(1234567890, 0)

	assert.False(t, engine.Verify(rfcSecret, "005925", at))
	assert.False(t, engine.Verify(rfcSecret, "105924", at))
}

func TestTOTP_Period(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 30*time.Second, NewTOTP(0).Period())
	assert.Equal(t, 60*time.Second, NewTOTP(60).Period())
}
