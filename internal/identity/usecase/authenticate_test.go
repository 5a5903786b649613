package usecase

import (
	"context"
	"strings"
	"testing"

	"github.com/shandysiswandi/otpservice/internal/identity/entity"
	"github.com/shandysiswandi/otpservice/internal/pkg/goerror"
	"github.com/shandysiswandi/otpservice/internal/pkg/hash"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestUsecase_Authenticate(t *testing.T) {
	t.Parallel()

	alice := entity.User{Username: "alice", PasswordHash: passwordHash(t, testPassword)}

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t, []entity.User{alice})

		user, err := env.uc.Authenticate(context.Background(), "alice", testPassword)
		require.NoError(t, err)
		assert.Equal(t, "alice", user.Username)
		assert.Equal(t, []string{alice.PasswordHash}, env.hasher.verified)
	})

	t.Run("wrong password", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t, []entity.User{alice})

		user, err := env.uc.Authenticate(context.Background(), "alice", "not-the-password")
		assert.Nil(t, user)
		assert.ErrorIs(t, err, ErrUnauthorized)
		assert.Len(t, env.hasher.verified, 1)
	})

	t.Run("repo failure", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t, []entity.User{alice})
		env.repo.getErr = errBoom

		_, err := env.uc.Authenticate(context.Background(), "alice", testPassword)
		assert.ErrorIs(t, err, errBoom)
		assert.Equal(t, goerror.CodeInternal, goerror.CodeOf(err))
	})
}

func TestUsecase_Authenticate_UnknownUserMatchesWrongPassword(t *testing.T) {
	t.Parallel()

	alice := entity.User{Username: "alice", PasswordHash: passwordHash(t, testPassword)}
	env := newTestEnv(t, []entity.User{alice})
	ctx := context.Background()

	_, errUnknown := env.uc.Authenticate(ctx, "mallory", testPassword)
	_, errWrong := env.uc.Authenticate(ctx, "alice", "wrong-password")

	assert.Equal(t, errWrong, errUnknown)
	assert.Equal(t, errWrong.Error(), errUnknown.Error())
	assert.Equal(t, goerror.CodeUnauthorized, goerror.CodeOf(errUnknown))

	// one hash comparison per attempt, the first one against the dummy hash
	require.Len(t, env.hasher.verified, 2)
	assert.Equal(t, env.uc.dummyHash, env.hasher.verified[0])
	assert.Equal(t, alice.PasswordHash, env.hasher.verified[1])
	assert.NotEmpty(t, env.uc.dummyHash)
}

func TestUsecase_Authenticate_UpgradesRetiredHash(t *testing.T) {
	t.Parallel()

	alice := entity.User{Username: "alice", PasswordHash: passwordHash(t, testPassword)}
	preferArgon := func(dep *Dependency) {
		adaptive, err := hash.NewAdaptive(hash.AlgorithmArgon2id,
			hash.NewBcrypt(bcrypt.MinCost, ""), hash.NewArgon2id(""))
		require.NoError(t, err)
		dep.Password = adaptive
	}

	t.Run("bcrypt hash is rewritten with argon2id", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t, []entity.User{alice}, preferArgon)

		_, err := env.uc.Authenticate(context.Background(), "alice", testPassword)
		require.NoError(t, err)

		env.wait(t)
		assert.Equal(t, []string{"alice"}, env.repo.rehashed)
		stored := env.repo.user("alice").PasswordHash
		assert.True(t, strings.HasPrefix(stored, "$argon2id$"))
		assert.True(t, env.uc.password.Verify(stored, testPassword))
		assert.True(t, strings.HasPrefix(env.uc.dummyHash, "$argon2id$"))
	})

	t.Run("wrong password leaves the hash alone", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t, []entity.User{alice}, preferArgon)

		_, err := env.uc.Authenticate(context.Background(), "alice", "wrong-password")
		require.ErrorIs(t, err, ErrUnauthorized)

		env.wait(t)
		assert.Empty(t, env.repo.rehashed)
	})

	t.Run("current algorithm is not rewritten", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t, []entity.User{alice}, func(dep *Dependency) {
			adaptive, err := hash.NewAdaptive(hash.AlgorithmBcrypt,
				hash.NewBcrypt(bcrypt.MinCost, ""), hash.NewArgon2id(""))
			require.NoError(t, err)
			dep.Password = adaptive
		})

		_, err := env.uc.Authenticate(context.Background(), "alice", testPassword)
		require.NoError(t, err)

		env.wait(t)
		assert.Empty(t, env.repo.rehashed)
	})
}
