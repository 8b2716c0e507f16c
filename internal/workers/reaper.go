// Package workers hosts the background maintenance loops of the service.
package workers

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// LikePurger removes likes whose soft-expiry marker predates the cutoff.
type LikePurger interface {
	PurgeTweetDeleted(ctx context.Context, olderThan time.Time) (int64, error)
}

// LikeReaperConfig controls the purge cadence and the grace period a marked
// like survives before removal.
type LikeReaperConfig struct {
	Interval time.Duration
	Grace    time.Duration
}

// LikeReaper periodically deletes likes orphaned by tweet deletions whose
// immediate cleanup failed. Those rows carry a soft-expiry timestamp instead
// of being removed inline, so the user-visible deletion never waited on them.
type LikeReaper struct {
	purger   LikePurger
	interval time.Duration
	grace    time.Duration
	logger   *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	once   sync.Once
}

// NewLikeReaper constructs and starts the reaper loop.
func NewLikeReaper(purger LikePurger, cfg LikeReaperConfig, logger *slog.Logger) *LikeReaper {
	if cfg.Interval <= 0 {
		cfg.Interval = 10 * time.Minute
	}
	if cfg.Grace < 0 {
		cfg.Grace = 0
	}
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())

	r := &LikeReaper{
		purger:   purger,
		interval: cfg.Interval,
		grace:    cfg.Grace,
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
	}

	r.wg.Add(1)
	go r.run()

	return r
}

// Shutdown stops the loop and waits for an in-flight purge to finish.
func (r *LikeReaper) Shutdown(ctx context.Context) error {
	r.once.Do(r.cancel)

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}

func (r *LikeReaper) run() {
	defer r.wg.Done()

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.ctx.Done():
			return
		case <-ticker.C:
			r.purge()
		}
	}
}

func (r *LikeReaper) purge() {
	ctx, cancel := context.WithTimeout(r.ctx, r.interval)
	defer cancel()

	cutoff := time.Now().UTC().Add(-r.grace)
	removed, err := r.purger.PurgeTweetDeleted(ctx, cutoff)
	if err != nil {
		r.logger.Error("like reaper purge failed", "error", err)
		return
	}
	if removed > 0 {
		r.logger.Info("purged expired tweet likes", "removed", removed)
	}
}
