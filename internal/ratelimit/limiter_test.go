package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"

	"github.com/immolinksenegal/chat-gateway/internal/config"
)

type stubStore struct {
	allowed bool
	err     error
	calls   int
}

func (s *stubStore) Increment(ctx context.Context, ip string, max int, window time.Duration) (bool, error) {
	s.calls++
	return s.allowed, s.err
}

func limiterConfig() config.RateLimitConfig {
	return config.RateLimitConfig{MaxRequests: 20, Window: time.Hour}
}

func TestLimiter_AllowsWhenStoreAllows(t *testing.T) {
	store := &stubStore{allowed: true}
	l := NewLimiter(store, nil, limiterConfig())

	dec := l.Allow(context.Background(), "203.0.113.5")
	assert.True(t, dec.Allowed)
	assert.Equal(t, 1, store.calls)
}

func TestLimiter_DeniesWithHourScope(t *testing.T) {
	store := &stubStore{allowed: false}
	l := NewLimiter(store, nil, limiterConfig())

	dec := l.Allow(context.Background(), "203.0.113.5")
	assert.False(t, dec.Allowed)
	assert.Equal(t, ScopeHour, dec.Scope)
	assert.Equal(t, time.Hour, dec.RetryAfter)
}

func TestLimiter_FailsOpenOnStoreError(t *testing.T) {
	store := &stubStore{err: errors.New("connection refused")}
	l := NewLimiter(store, nil, limiterConfig())

	dec := l.Allow(context.Background(), "203.0.113.5")
	assert.True(t, dec.Allowed, "store errors must not block requests")
}

func TestLimiter_BurstDenialShortCircuits(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	store := &stubStore{allowed: true}
	burst := NewBurstLimiter(rdb, 1, time.Minute)
	l := NewLimiter(store, burst, limiterConfig())
	ctx := context.Background()

	dec := l.Allow(ctx, "203.0.113.5")
	assert.True(t, dec.Allowed)

	dec = l.Allow(ctx, "203.0.113.5")
	assert.False(t, dec.Allowed)
	assert.Equal(t, ScopeBurst, dec.Scope)
	// A burst denial must not touch the hourly counter.
	assert.Equal(t, 1, store.calls)
}

func TestLimiter_BurstFailsOpenOnRedisError(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	mr.Close() // kill Redis

	store := &stubStore{allowed: true}
	l := NewLimiter(store, NewBurstLimiter(rdb, 1, time.Minute), limiterConfig())

	dec := l.Allow(context.Background(), "203.0.113.5")
	assert.True(t, dec.Allowed, "Redis failure must fall through to the store")
	assert.Equal(t, 1, store.calls)
}
