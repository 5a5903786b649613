//go:build integration

package db

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shandysiswandi/otpservice/internal/identity/entity"
	"github.com/shandysiswandi/otpservice/internal/migrations"
	"github.com/shandysiswandi/otpservice/internal/pkg/goerror"
	"github.com/shandysiswandi/otpservice/internal/pkg/instrument"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()

	ctx := context.Background()
	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("otp"),
		tcpostgres.WithUsername("otp"),
		tcpostgres.WithPassword("otp"),
		tcpostgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err)

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, migrations.Up(ctx, pool))

	return NewDB(pool, instrument.NewNoop())
}

func TestDB_Users(t *testing.T) {
	s := newTestDB(t)
	ctx := context.Background()

	_, err := s.GetUserByUsername(ctx, "alice")
	require.ErrorIs(t, err, goerror.ErrNotFound)

	require.NoError(t, s.CreateUser(ctx, entity.NewUser{Username: "alice", PasswordHash: "h1", IsAdmin: true}))
	require.NoError(t, s.CreateUser(ctx, entity.NewUser{Username: "bob", PasswordHash: "h2"}))

	err = s.CreateUser(ctx, entity.NewUser{Username: "alice", PasswordHash: "h3"})
	require.ErrorIs(t, err, goerror.ErrConflict)

	alice, err := s.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "h1", alice.PasswordHash)
	assert.True(t, alice.IsAdmin)
	assert.False(t, alice.HasSecret())
	assert.Nil(t, alice.LastLogin)

	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, s.TouchLastLogin(ctx, "alice", at))
	require.ErrorIs(t, s.TouchLastLogin(ctx, "nobody", at), goerror.ErrNotFound)

	alice, err = s.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, alice.LastLogin)
	assert.True(t, at.Equal(*alice.LastLogin))

	require.NoError(t, s.UpdatePasswordHash(ctx, "alice", "h1-upgraded"))
	require.ErrorIs(t, s.UpdatePasswordHash(ctx, "nobody", "h"), goerror.ErrNotFound)

	alice, err = s.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "h1-upgraded", alice.PasswordHash)

	users, err := s.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "alice", users[0].Username)
	assert.Equal(t, "bob", users[1].Username)
}

func TestDB_SetOTPSecretIfAbsent(t *testing.T) {
	s := newTestDB(t)
	ctx := context.Background()

	_, err := s.SetOTPSecretIfAbsent(ctx, "ghost", "AAAA")
	require.ErrorIs(t, err, goerror.ErrNotFound)

	require.NoError(t, s.CreateUser(ctx, entity.NewUser{Username: "carol", PasswordHash: "h"}))

	first, err := s.SetOTPSecretIfAbsent(ctx, "carol", "FIRSTSECRET")
	require.NoError(t, err)
	assert.Equal(t, "FIRSTSECRET", first)

	second, err := s.SetOTPSecretIfAbsent(ctx, "carol", "SECONDSECRET")
	require.NoError(t, err)
	assert.Equal(t, "FIRSTSECRET", second)
}

func TestDB_SetOTPSecretIfAbsent_Concurrent(t *testing.T) {
	s := newTestDB(t)
	ctx := context.Background()

	require.NoError(t, s.CreateUser(ctx, entity.NewUser{Username: "dave", PasswordHash: "h"}))

	const workers = 16
	var (
		wg      sync.WaitGroup
		results = make([]string, workers)
		errs    = make([]error, workers)
	)
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = s.SetOTPSecretIfAbsent(ctx, "dave", fmt.Sprintf("SECRET%02d", i))
		}()
	}
	wg.Wait()

	for i := range workers {
		require.NoError(t, errs[i])
		assert.Equal(t, results[0], results[i])
	}

	dave, err := s.GetUserByUsername(ctx, "dave")
	require.NoError(t, err)
	assert.Equal(t, results[0], dave.OTPSecret)
}
