package jobs

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"parcelhub.backend/pkg/logger"
	"parcelhub.backend/pkg/metrics"
)

type staleTokenClearer interface {
	ClearStaleTokens(ctx context.Context, cutoff time.Time) (int64, error)
}

// TokenSweeper periodically drops verification and reset token hashes that
// expired longer than the retention window ago. Recently expired tokens are
// kept so their links still report "expired" rather than "invalid".
type TokenSweeper struct {
	repo      staleTokenClearer
	interval  time.Duration
	retention time.Duration
	now       func() time.Time
	stop      chan struct{}
	stopOnce  sync.Once
}

func NewTokenSweeper(repo staleTokenClearer, interval, retention time.Duration) *TokenSweeper {
	if interval <= 0 {
		interval = time.Hour
	}
	if retention < 0 {
		retention = 0
	}
	return &TokenSweeper{
		repo:      repo,
		interval:  interval,
		retention: retention,
		now:       time.Now,
		stop:      make(chan struct{}),
	}
}

// Start blocks until ctx is cancelled or Stop is called
func (j *TokenSweeper) Start(ctx context.Context) {
	logger.Info(ctx, "Starting token sweeper",
		zap.Duration("interval", j.interval),
		zap.Duration("retention", j.retention))

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info(context.Background(), "Token sweeper stopped (context cancelled)")
			return
		case <-j.stop:
			logger.Info(ctx, "Token sweeper stopped")
			return
		case <-ticker.C:
			j.sweep(ctx)
		}
	}
}

func (j *TokenSweeper) Stop() {
	j.stopOnce.Do(func() { close(j.stop) })
}

func (j *TokenSweeper) sweep(ctx context.Context) {
	cutoff := j.now().UTC().Add(-j.retention)
	cleared, err := j.repo.ClearStaleTokens(ctx, cutoff)
	if err != nil {
		logger.Error(ctx, "Token sweep failed", zap.Error(err))
		return
	}
	metrics.RecordSweptTokens(cleared)
	if cleared > 0 {
		logger.Info(ctx, "Cleared stale tokens", zap.Int64("accounts", cleared))
	}
}
