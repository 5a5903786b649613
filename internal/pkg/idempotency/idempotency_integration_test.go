//go:build integration

package idempotency

import (
	"context"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

func TestRedisGuard_Claim(t *testing.T) {
	ctx := context.Background()

	container, err := tcredis.Run(ctx, "redis:7-alpine")
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, nat.Port("6379/tcp"))
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: host + ":" + port.Port()})
	t.Cleanup(func() { _ = client.Close() })

	guard := New(client, "otp:test:")

	ok, err := guard.Claim(ctx, "alice:1", time.Second)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = guard.Claim(ctx, "alice:1", time.Second)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = guard.Claim(ctx, "alice:2", time.Second)
	require.NoError(t, err)
	assert.True(t, ok)

	assert.Eventually(t, func() bool {
		ok, err := guard.Claim(ctx, "alice:1", time.Second)
		return err == nil && ok
	}, 5*time.Second, 200*time.Millisecond)
}
