package aggregation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	v1 "github.com/bookpulse-lab/bookpulse/internal/api/v1"
	"github.com/bookpulse-lab/bookpulse/internal/storage"
)

// Aggregator applies one event to the daily and monthly counters it
// touches. Each application is a read-current-then-write-new, not an atomic
// increment: the read path treats a missing row (and a failed read) as a
// current total of zero, which keeps row creation and row update on one
// code path. The window this opens against concurrent writers is closed by
// single-flighting the pipeline; an atomic upsert-increment at the storage
// layer would be the alternative.
type Aggregator struct {
	store storage.DashboardStore
}

// NewAggregator creates an aggregator writing to the given store.
func NewAggregator(store storage.DashboardStore) *Aggregator {
	return &Aggregator{store: store}
}

// PeriodResult reports the outcome of applying one event. Day and month are
// attempted independently; either may fail without affecting the other.
type PeriodResult struct {
	Day      v1.Counter
	Month    v1.Counter
	DayErr   error
	MonthErr error
}

// Failed reports whether either period update failed.
func (r PeriodResult) Failed() bool {
	return r.DayErr != nil || r.MonthErr != nil
}

// Apply updates the day and month counters for the event. A failure on the
// day row never skips the month row; both errors are reported in the result
// and the caller decides what the pass does with them.
func (a *Aggregator) Apply(ctx context.Context, evt v1.Event) PeriodResult {
	delta := evt.Delta()

	var res PeriodResult
	res.Day, res.DayErr = a.applyPeriod(ctx, v1.DayKey(evt), delta)
	res.Month, res.MonthErr = a.applyPeriod(ctx, v1.MonthKey(evt), delta)

	if res.DayErr != nil {
		slog.Error("[Aggregator] Day counter update failed",
			"event_id", evt.ID, "key", v1.DayKey(evt).String(), "error", res.DayErr)
	}
	if res.MonthErr != nil {
		slog.Error("[Aggregator] Month counter update failed",
			"event_id", evt.ID, "key", v1.MonthKey(evt).String(), "error", res.MonthErr)
	}

	return res
}

func (a *Aggregator) applyPeriod(ctx context.Context, key v1.CounterKey, delta int64) (v1.Counter, error) {
	current, err := a.store.ReadCount(ctx, key)
	if err != nil {
		// Missing rows already read as zero; this is a real query failure.
		// Treat the current total as zero and continue, per the single
		// create-or-update code path.
		slog.Error("[Aggregator] Counter read failed, treating current total as 0",
			"key", key.String(), "error", err)
		current = 0
	}

	updated := current + delta
	if err := a.store.UpsertCount(ctx, key, updated); err != nil {
		return v1.Counter{}, fmt.Errorf("%w: %v", ErrStore, err)
	}

	slog.Debug("[Aggregator] Counter updated",
		"key", key.String(), "booking_count", updated)
	return v1.NewCounter(key, updated), nil
}

// classifyEventError maps a canonicalization failure onto the taxonomy used
// in pass logging.
func classifyEventError(err error) string {
	switch {
	case errors.Is(err, v1.ErrBadTimestamp):
		return "parse_error"
	case errors.Is(err, v1.ErrInvalidEvent):
		return "validation_error"
	default:
		return "unknown_error"
	}
}
