package ratelimit

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMiniredis(t *testing.T) *redis.Client {
	t.Helper()
	s := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: s.Addr()})
}

func TestBurstLimiter_AllowsUnderLimit(t *testing.T) {
	rdb := setupMiniredis(t)
	bl := NewBurstLimiter(rdb, 5, time.Minute)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		allowed, err := bl.Allow(ctx, "203.0.113.5")
		require.NoError(t, err)
		assert.True(t, allowed, "request %d should be allowed", i+1)
	}
}

func TestBurstLimiter_DeniesOverLimit(t *testing.T) {
	rdb := setupMiniredis(t)
	bl := NewBurstLimiter(rdb, 3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, err := bl.Allow(ctx, "203.0.113.5")
		require.NoError(t, err)
		require.True(t, allowed)
	}

	allowed, err := bl.Allow(ctx, "203.0.113.5")
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestBurstLimiter_DifferentIPsIndependent(t *testing.T) {
	rdb := setupMiniredis(t)
	bl := NewBurstLimiter(rdb, 2, time.Minute)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		allowed, err := bl.Allow(ctx, "198.51.100.1")
		require.NoError(t, err)
		require.True(t, allowed)
	}

	allowed, err := bl.Allow(ctx, "198.51.100.1")
	require.NoError(t, err)
	assert.False(t, allowed)

	allowed, err = bl.Allow(ctx, "198.51.100.2")
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestBurstLimiter_ExpiredEntriesCleaned(t *testing.T) {
	rdb := setupMiniredis(t)
	bl := NewBurstLimiter(rdb, 3, time.Minute)
	ctx := context.Background()

	// Entries older than the window must not count.
	key := burstKeyPrefix + "203.0.113.5"
	oldScore := float64(time.Now().Add(-2 * time.Minute).UnixMilli())
	for i := 0; i < 3; i++ {
		rdb.ZAdd(ctx, key, redis.Z{Score: oldScore + float64(i), Member: fmt.Sprintf("old:%d", i)})
	}

	allowed, err := bl.Allow(ctx, "203.0.113.5")
	require.NoError(t, err)
	assert.True(t, allowed, "expired entries should have been cleaned")
}
