package ratelimit

import (
	"context"
	"log/slog"
	"time"

	"github.com/immolinksenegal/chat-gateway/internal/config"
)

// Store is the durable fixed-window counter behind the limiter.
type Store interface {
	Increment(ctx context.Context, ip string, max int, window time.Duration) (bool, error)
}

// Limiter combines the optional Redis burst check with the Postgres fixed
// window. Store errors fail open: a broken counter backend must not take
// the assistant down with it.
type Limiter struct {
	store Store
	burst *BurstLimiter
	cfg   config.RateLimitConfig
}

// NewLimiter creates a Limiter. burst may be nil when the fast path is
// disabled.
func NewLimiter(store Store, burst *BurstLimiter, cfg config.RateLimitConfig) *Limiter {
	return &Limiter{store: store, burst: burst, cfg: cfg}
}

// Allow checks both limits for ip in order: burst first, then the hourly
// window. Only an allowed request counts toward the hourly window.
func (l *Limiter) Allow(ctx context.Context, ip string) Decision {
	if l.burst != nil {
		ok, err := l.burst.Allow(ctx, ip)
		if err != nil {
			slog.Warn("burst limiter check failed, failing open", "error", err, "ip", ip)
		} else if !ok {
			return Decision{Allowed: false, Scope: ScopeBurst, RetryAfter: l.cfg.BurstWindow}
		}
	}

	ok, err := l.store.Increment(ctx, ip, l.cfg.MaxRequests, l.cfg.Window)
	if err != nil {
		slog.Warn("rate limit store check failed, failing open", "error", err, "ip", ip)
		return Decision{Allowed: true, Scope: ScopeHour}
	}
	if !ok {
		return Decision{Allowed: false, Scope: ScopeHour, RetryAfter: l.cfg.Window}
	}
	return Decision{Allowed: true, Scope: ScopeHour}
}
