package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/immolinksenegal/chat-gateway/internal/config"
)

// StaleDeleter removes rate-limit rows older than a retention period.
type StaleDeleter interface {
	DeleteStale(ctx context.Context, retention time.Duration) (int64, error)
}

// Sweeper periodically deletes stale rate_limits rows so the table does not
// grow without bound: rows are never deleted on the request path.
type Sweeper struct {
	store StaleDeleter
	cfg   config.SweepConfig
	cron  *cron.Cron
}

// NewSweeper creates a Sweeper driven by the configured cron schedule.
func NewSweeper(store StaleDeleter, cfg config.SweepConfig) *Sweeper {
	return &Sweeper{store: store, cfg: cfg, cron: cron.New()}
}

// Start validates the schedule and begins periodic sweeping. It returns
// immediately; sweeps run on the cron goroutine until Stop or ctx is done.
func (s *Sweeper) Start(ctx context.Context) error {
	if s.cfg.Schedule == "" {
		slog.Info("sweep schedule not configured, skipping sweeper")
		return nil
	}

	if _, err := cron.ParseStandard(s.cfg.Schedule); err != nil {
		return fmt.Errorf("invalid sweep schedule %q: %w", s.cfg.Schedule, err)
	}

	_, err := s.cron.AddFunc(s.cfg.Schedule, func() {
		s.sweep(ctx)
	})
	if err != nil {
		return fmt.Errorf("scheduling sweep: %w", err)
	}

	s.cron.Start()
	slog.Info("rate limit sweeper started",
		"schedule", s.cfg.Schedule,
		"retention", s.cfg.Retention,
	)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// Stop halts scheduled sweeps, waiting for a running sweep to finish.
func (s *Sweeper) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Sweeper) sweep(ctx context.Context) {
	deleted, err := s.store.DeleteStale(ctx, s.cfg.Retention)
	if err != nil {
		slog.Error("sweeping stale rate limit rows", "error", err)
		return
	}
	if deleted > 0 {
		slog.Info("swept stale rate limit rows", "deleted", deleted)
	}
}
