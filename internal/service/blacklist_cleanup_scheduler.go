package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/snic-labs/policy-api/internal/observability"
)

const (
	DefaultCleanupInterval = time.Hour
	DefaultCleanupTimeout  = 2 * time.Minute
)

type ExpiredTokenPurger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// BlacklistCleanupScheduler purges expired blacklist entries on a fixed
// delay measured from the end of the previous cycle.
type BlacklistCleanupScheduler struct {
	purger   ExpiredTokenPurger
	interval time.Duration
	timeout  time.Duration
	logger   *slog.Logger
}

func NewBlacklistCleanupScheduler(purger ExpiredTokenPurger, interval, timeout time.Duration, logger *slog.Logger) *BlacklistCleanupScheduler {
	if interval <= 0 {
		interval = DefaultCleanupInterval
	}
	if timeout <= 0 {
		timeout = DefaultCleanupTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &BlacklistCleanupScheduler{purger: purger, interval: interval, timeout: timeout, logger: logger}
}

// Run executes a cycle immediately and then once per interval until ctx is
// cancelled. It always returns nil; cycle failures are logged.
func (s *BlacklistCleanupScheduler) Run(ctx context.Context) error {
	s.logger.Info("blacklist cleanup scheduler started", "interval", s.interval.String())
	timer := time.NewTimer(0)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("blacklist cleanup scheduler stopped")
			return nil
		case <-timer.C:
		}
		if ctx.Err() != nil {
			return nil
		}
		_, _ = s.RunOnce(ctx)
		timer.Reset(s.interval)
	}
}

// RunOnce performs a single purge bounded by the cycle timeout.
func (s *BlacklistCleanupScheduler) RunOnce(ctx context.Context) (int64, error) {
	cycleCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	started := time.Now()
	purged, err := s.purger.PurgeExpired(cycleCtx)
	if err != nil {
		s.logger.Error("blacklist cleanup failed", "error", err, "duration", time.Since(started).String())
		observability.RecordBlacklistCleanup(ctx, "error", 0)
		return 0, err
	}
	s.logger.Info("blacklist cleanup completed", "purged", purged, "duration", time.Since(started).String())
	observability.RecordBlacklistCleanup(ctx, "success", purged)
	return purged, nil
}
