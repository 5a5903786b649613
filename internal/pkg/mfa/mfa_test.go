package mfa

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testKey = bytes.Repeat([]byte{0x42}, 32)

func TestAESGCMEncryptor_RoundTrip(t *testing.T) {
	t.Parallel()

	enc := NewAESGCMEncryptor(StaticKeyProvider{KeyBytes: testKey})

	ct, err := enc.Encrypt([]byte("GEZDGNBVGY3TQOJQ"), OTPSeed("alice"))
	require.NoError(t, err)

	pt, err := enc.Decrypt(ct, OTPSeed("alice"))
	require.NoError(t, err)
	assert.Equal(t, "GEZDGNBVGY3TQOJQ", string(pt))

	_, err = enc.Decrypt(ct, OTPSeed("bob"))
	assert.ErrorIs(t, err, ErrDecryptFailed)

	ct[len(ct)-1] ^= 0xff
	_, err = enc.Decrypt(ct, OTPSeed("alice"))
	assert.ErrorIs(t, err, ErrDecryptFailed)
}

func TestAESGCMEncryptor_Errors(t *testing.T) {
	t.Parallel()

	enc := NewAESGCMEncryptor(StaticKeyProvider{KeyBytes: testKey})

	_, err := enc.Encrypt(nil, OTPSeed("alice"))
	require.ErrorIs(t, err, ErrPlaintextEmpty)

	_, err = enc.Decrypt([]byte{0, 1, 2}, OTPSeed("alice"))
	require.ErrorIs(t, err, ErrCiphertextTooShort)

	bad := make([]byte, 40)
	bad[1] = 9
	_, err = enc.Decrypt(bad, OTPSeed("alice"))
	require.ErrorIs(t, err, ErrUnsupportedCiphertextVersion)

	_, err = NewAESGCMEncryptor(StaticKeyProvider{KeyBytes: []byte("short")}).Encrypt([]byte("x"), OTPSeed("a"))
	require.ErrorIs(t, err, ErrInvalidKeyLength)

	_, err = NewAESGCMEncryptor(StaticKeyProvider{}).Encrypt([]byte("x"), OTPSeed("a"))
	require.ErrorIs(t, err, ErrMissingStaticKey)
}

func TestSealer(t *testing.T) {
	t.Parallel()

	plain := NewSealer(nil)
	stored, err := plain.Seal("SECRET", OTPSeed("alice"))
	require.NoError(t, err)
	assert.Equal(t, "SECRET", stored)

	sealer := NewSealer(NewAESGCMEncryptor(StaticKeyProvider{KeyBytes: testKey}))
	sealed, err := sealer.Seal("SECRET", OTPSeed("alice"))
	require.NoError(t, err)
	assert.Contains(t, sealed, SealedPrefix)
	assert.NotContains(t, sealed, "SECRET")

	got, err := sealer.Open(sealed, OTPSeed("alice"))
	require.NoError(t, err)
	assert.Equal(t, "SECRET", got)

	// legacy plaintext rows remain readable
	got, err = sealer.Open("LEGACY", OTPSeed("alice"))
	require.NoError(t, err)
	assert.Equal(t, "LEGACY", got)

	_, err = plain.Open(sealed, OTPSeed("alice"))
	assert.ErrorIs(t, err, ErrEncryptorNotConfigured)

	_, err = sealer.Open(SealedPrefix+"!!!", OTPSeed("alice"))
	assert.ErrorIs(t, err, ErrDecryptFailed)
}
