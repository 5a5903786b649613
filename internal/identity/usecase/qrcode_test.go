package usecase

import (
	"context"
	"testing"

	"github.com/shandysiswandi/otpservice/internal/identity/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsecase_QRCode_FromStorage(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, nil)
	key, err := env.uc.qrcodeKey("alice")
	require.NoError(t, err)
	require.NoError(t, env.store.Put(context.Background(), key, []byte("stored"), qrcodeContentType))

	out, err := env.uc.QRCode(context.Background(), QRCodeInput{Username: "alice"})
	require.NoError(t, err)
	assert.Equal(t, []byte("stored"), out.PNG)
	assert.Empty(t, env.qr.contents)
}

func TestUsecase_QRCode_RendersMissingArtifact(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, []entity.User{{Username: "alice", OTPSecret: mustSecret(t)}})

	out, err := env.uc.QRCode(context.Background(), QRCodeInput{Username: "alice", Host: "otp.example.com"})
	require.NoError(t, err)
	require.Len(t, env.qr.contents, 1)
	assert.Contains(t, env.qr.contents[0], "issuer=Example%20Corp")
	assert.Equal(t, []byte("png:"+env.qr.contents[0]), out.PNG)
	assert.Equal(t, 1, env.store.len())
}

func TestUsecase_QRCode_StorageErrorFallsBackToRender(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, []entity.User{{Username: "alice", OTPSecret: mustSecret(t)}})
	env.store.getErr = errBoom

	out, err := env.uc.QRCode(context.Background(), QRCodeInput{Username: "alice"})
	require.NoError(t, err)
	assert.NotEmpty(t, out.PNG)
}

func TestUsecase_QRCode_NotFound(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, []entity.User{{Username: "bob"}})

	_, err := env.uc.QRCode(context.Background(), QRCodeInput{Username: "bob"})
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = env.uc.QRCode(context.Background(), QRCodeInput{Username: "ghost"})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUsecase_qrcodeKey(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, nil)

	a, err := env.uc.qrcodeKey("alice")
	require.NoError(t, err)
	b, err := env.uc.qrcodeKey("bob")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.NotContains(t, a, "alice")
	assert.Regexp(t, `^qrcode/[0-9a-f]{64}\.png$`, a)
}
