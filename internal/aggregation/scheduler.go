package aggregation

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const shutdownPassTimeout = 30 * time.Second

// Scheduler runs pipeline passes on a fixed wall-clock interval,
// independent of request traffic. Passes are single-flighted: a tick that
// fires while a pass is still running is dropped rather than overlapped,
// which is the mutual-exclusion guarantee the read-modify-write counter
// update relies on within one process.
type Scheduler struct {
	interval time.Duration
	pipeline *Pipeline

	mu sync.Mutex
}

// NewScheduler creates a scheduler running the pipeline every interval.
func NewScheduler(interval time.Duration, pipeline *Pipeline) *Scheduler {
	return &Scheduler{
		interval: interval,
		pipeline: pipeline,
	}
}

// Start begins periodic aggregation and blocks until the context is
// cancelled. An initial pass runs immediately to catch up with any backlog,
// and a final pass runs on shutdown with a bounded context.
func (s *Scheduler) Start(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	slog.Info("[Scheduler] Starting aggregation scheduler", "interval", s.interval)

	s.runOnce(ctx)

	for {
		select {
		case <-ticker.C:
			s.runOnce(ctx)
		case <-ctx.Done():
			slog.Info("[Scheduler] Stopping (context cancelled)")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownPassTimeout)
			defer cancel()

			slog.Info("[Scheduler] Running final pass before shutdown...")
			s.runOnce(shutdownCtx)
			slog.Info("[Scheduler] Final pass complete")

			return nil
		}
	}
}

// runOnce executes one pass under the single-flight guard.
func (s *Scheduler) runOnce(ctx context.Context) {
	if !s.mu.TryLock() {
		slog.Warn("[Scheduler] Previous pass still running, skipping tick")
		return
	}
	defer s.mu.Unlock()

	s.pipeline.RunPass(ctx)
}
