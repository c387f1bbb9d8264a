package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository handles rate_limits PostgreSQL operations.
//
// Increment never does a separate read followed by a write: each step is a
// single conditional statement, so concurrent requests from the same IP
// cannot lose updates on the counter.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new rate-limit Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const (
	// A row aged exactly one window is still in-window; only strictly
	// older rows reset.
	incrementSQL = `UPDATE rate_limits
		 SET request_count = request_count + 1,
		     last_request = NOW()
		 WHERE ip_address = $1
		   AND window_start >= NOW() - make_interval(secs => $2)
		   AND request_count < $3`

	resetWindowSQL = `UPDATE rate_limits
		 SET request_count = 1,
		     window_start = NOW(),
		     last_request = NOW()
		 WHERE ip_address = $1
		   AND window_start < NOW() - make_interval(secs => $2)`

	insertSQL = `INSERT INTO rate_limits (ip_address) VALUES ($1)
		 ON CONFLICT (ip_address) DO NOTHING`
)

// Increment records one request for ip and reports whether it is allowed
// under max requests per window. Denial leaves the row untouched.
//
// Order of attempts: in-window increment, expired-window reset, first-seen
// insert. If the insert loses a race with a concurrent first request, one
// more increment attempt runs before denying.
func (r *Repository) Increment(ctx context.Context, ip string, max int, window time.Duration) (bool, error) {
	secs := window.Seconds()

	tag, err := r.pool.Exec(ctx, incrementSQL, ip, secs, max)
	if err != nil {
		return false, fmt.Errorf("incrementing rate limit: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return true, nil
	}

	tag, err = r.pool.Exec(ctx, resetWindowSQL, ip, secs)
	if err != nil {
		return false, fmt.Errorf("resetting rate limit window: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return true, nil
	}

	tag, err = r.pool.Exec(ctx, insertSQL, ip)
	if err != nil {
		return false, fmt.Errorf("inserting rate limit row: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return true, nil
	}

	// Insert conflicted: a concurrent request created the row first.
	tag, err = r.pool.Exec(ctx, incrementSQL, ip, secs, max)
	if err != nil {
		return false, fmt.Errorf("incrementing rate limit after conflict: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// Get returns the record for ip, or nil when the IP has never been seen.
func (r *Repository) Get(ctx context.Context, ip string) (*Record, error) {
	var rec Record
	err := r.pool.QueryRow(ctx,
		`SELECT ip_address, request_count, window_start, last_request
		 FROM rate_limits WHERE ip_address = $1`, ip,
	).Scan(&rec.IPAddress, &rec.RequestCount, &rec.WindowStart, &rec.LastRequest)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetching rate limit record: %w", err)
	}
	return &rec, nil
}

// DeleteStale removes rows whose window started more than retention ago.
// Returns the number of rows removed.
func (r *Repository) DeleteStale(ctx context.Context, retention time.Duration) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM rate_limits
		 WHERE window_start < NOW() - make_interval(secs => $1)`, retention.Seconds())
	if err != nil {
		return 0, fmt.Errorf("deleting stale rate limit rows: %w", err)
	}
	return tag.RowsAffected(), nil
}
