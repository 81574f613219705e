package aggregation

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/bookpulse-lab/bookpulse/internal/storage"
)

// Checkpoint manages the timestamp boundary up to which events have been
// aggregated. The value lives in a shared cache so it survives restarts;
// initialization falls back to the earliest stored event, then to a fixed
// epoch when the event store is empty.
type Checkpoint struct {
	cache  storage.CheckpointCache
	events storage.EventStore
	epoch  time.Time
	nowFn  func() time.Time
}

// NewCheckpoint creates a checkpoint manager with the given fallback epoch.
func NewCheckpoint(cache storage.CheckpointCache, events storage.EventStore, epoch time.Time) *Checkpoint {
	return &Checkpoint{
		cache:  cache,
		events: events,
		epoch:  epoch.UTC(),
		nowFn: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Current returns the checkpoint, initializing it on first use. It never
// fails the caller: if the cache or the event store misbehaves, it falls
// back to "now" and logs, trading completeness for availability.
func (c *Checkpoint) Current(ctx context.Context) time.Time {
	cached, err := c.cache.Get(ctx)
	if err == nil {
		return cached
	}
	if !errors.Is(err, storage.ErrNotFound) {
		// Transient read failure. The stored value may still be valid, so it
		// must not be overwritten; the fallback is for this pass only.
		slog.Error("[Checkpoint] Cache read failed, falling back to now", "error", err)
		return c.nowFn()
	}

	// First run: seed from the earliest known event, or the epoch when the
	// store is empty. Fetching is exclusive of the boundary, so the seed sits
	// just before the earliest event to include it.
	initial, err := c.events.EarliestEventTime(ctx)
	switch {
	case err == nil:
		initial = initial.Add(-time.Nanosecond)
	case errors.Is(err, storage.ErrNotFound):
		initial = c.epoch
	default:
		slog.Error("[Checkpoint] Earliest-event query failed, falling back to now", "error", err)
		initial = c.nowFn()
	}

	c.persist(ctx, initial)
	slog.Info("[Checkpoint] Initialized", "checkpoint", initial)
	return initial
}

// Advance sets the checkpoint to candidate only if candidate is strictly
// greater than the current value. The checkpoint never regresses.
func (c *Checkpoint) Advance(ctx context.Context, candidate time.Time) error {
	candidate = candidate.UTC()

	current, err := c.cache.Get(ctx)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return err
	}
	if err == nil && !candidate.After(current) {
		slog.Debug("[Checkpoint] Skipping non-monotonic advance",
			"current", current, "candidate", candidate)
		return nil
	}

	if err := c.cache.Set(ctx, candidate); err != nil {
		return err
	}

	slog.Info("[Checkpoint] Advanced", "checkpoint", candidate)
	return nil
}

func (c *Checkpoint) persist(ctx context.Context, t time.Time) {
	if err := c.cache.Set(ctx, t); err != nil {
		slog.Error("[Checkpoint] Failed to persist initial checkpoint", "error", err, "checkpoint", t)
	}
}
