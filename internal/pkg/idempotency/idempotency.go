// Package idempotency records one-time claims on keys so that a value
// accepted once is refused on every later attempt within its TTL.
package idempotency

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrInvalidTTL is returned when a claim is requested without a positive TTL.
var ErrInvalidTTL = errors.New("idempotency: ttl must be positive")

const defaultPrefix = "idempotency:"

// Guard claims keys exactly once per TTL window.
type Guard interface {
	// Claim reports true when key was not claimed yet and is now held for ttl.
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

// RedisGuard implements Guard with SET NX.
type RedisGuard struct {
	client redis.Cmdable
	prefix string
}

// New returns a RedisGuard that stores keys under prefix. An empty prefix
// falls back to "idempotency:".
func New(client redis.Cmdable, prefix string) *RedisGuard {
	if prefix == "" {
		prefix = defaultPrefix
	}

	return &RedisGuard{client: client, prefix: prefix}
}

// Claim sets key when it is absent.
func (g *RedisGuard) Claim(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		return false, ErrInvalidTTL
	}

	return g.client.SetNX(ctx, g.prefix+key, "1", ttl).Result()
}

// Noop accepts every claim. It is used when no Redis is configured.
type Noop struct{}

// Claim always succeeds.
func (Noop) Claim(context.Context, string, time.Duration) (bool, error) {
	return true, nil
}
