package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const burstKeyPrefix = "ratelimit:burst:"

// BurstLimiter is a Redis sorted-set sliding window in front of the hourly
// Postgres window. It exists to absorb short floods before they reach the
// database; the Postgres window stays the source of truth.
type BurstLimiter struct {
	rdb    redis.Cmdable
	max    int
	window time.Duration
}

// NewBurstLimiter creates a limiter allowing max requests per window.
func NewBurstLimiter(rdb redis.Cmdable, max int, window time.Duration) *BurstLimiter {
	return &BurstLimiter{rdb: rdb, max: max, window: window}
}

// Allow reports whether ip is under the burst limit, recording the request
// when it is. Denial does not add an entry.
func (b *BurstLimiter) Allow(ctx context.Context, ip string) (bool, error) {
	key := burstKeyPrefix + ip
	now := time.Now()
	windowStart := float64(now.Add(-b.window).UnixMilli())

	pipe := b.rdb.Pipeline()
	pipe.ZRemRangeByScore(ctx, key, "-inf", strconv.FormatFloat(windowStart, 'f', 0, 64))
	countCmd := pipe.ZCard(ctx, key)

	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("burst limiter pipeline (clean+count): %w", err)
	}

	count := countCmd.Val()
	if count >= int64(b.max) {
		return false, nil
	}

	member := fmt.Sprintf("%d:%d", now.UnixNano(), count)
	pipe2 := b.rdb.Pipeline()
	pipe2.ZAdd(ctx, key, redis.Z{Score: float64(now.UnixMilli()), Member: member})
	pipe2.Expire(ctx, key, b.window+time.Second)

	if _, err := pipe2.Exec(ctx); err != nil {
		return false, fmt.Errorf("burst limiter pipeline (add): %w", err)
	}

	return true, nil
}
