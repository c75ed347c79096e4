package cleanup

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// IdleReaper drops hosted games that have not changed for a while.
type IdleReaper interface {
	CleanupIdle(idle time.Duration) int
}

type Worker struct {
	Games    IdleReaper
	Idle     time.Duration
	Interval time.Duration
	logger   *zap.Logger
}

func NewWorker(games IdleReaper, idle, interval time.Duration, logger *zap.Logger) *Worker {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &Worker{Games: games, Idle: idle, Interval: interval, logger: logger.Named("cleanup")}
}

// Start runs one pass immediately and then one per interval until ctx is done.
func (w *Worker) Start(ctx context.Context) {
	go func() {
		w.runCleanup()

		ticker := time.NewTicker(w.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				w.logger.Info("background worker stopped")
				return
			case <-ticker.C:
				w.runCleanup()
			}
		}
	}()
	w.logger.Info("background worker started", zap.Duration("interval", w.Interval), zap.Duration("idle", w.Idle))
}

func (w *Worker) runCleanup() int {
	removed := w.Games.CleanupIdle(w.Idle)
	if removed > 0 {
		w.logger.Info("removed idle games", zap.Int("count", removed))
	}
	return removed
}
