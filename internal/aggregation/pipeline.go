package aggregation

import (
	"context"
	"log/slog"
	"sort"
	"time"

	v1 "github.com/bookpulse-lab/bookpulse/internal/api/v1"
)

// Pipeline is one fetch+aggregate+checkpoint unit of work. Each pass is
// independent: it reads the checkpoint, fetches events strictly newer than
// it, applies each event to its day and month counters, and advances the
// checkpoint. A single bad event never aborts the batch or corrupts the
// checkpoint.
type Pipeline struct {
	source     EventSource
	checkpoint *Checkpoint
	aggregator *Aggregator
}

// NewPipeline wires the fetcher, checkpoint manager and aggregator together.
func NewPipeline(source EventSource, checkpoint *Checkpoint, aggregator *Aggregator) *Pipeline {
	return &Pipeline{
		source:     source,
		checkpoint: checkpoint,
		aggregator: aggregator,
	}
}

// PassStats summarizes one pipeline pass, for logging and tests.
type PassStats struct {
	Fetched    int
	Applied    int
	Skipped    int // unparseable or invalid events, never retried
	Failed     int // store failures, retried on a later pass
	Checkpoint time.Time
	Advanced   bool
}

// RunPass executes one pass. It never returns an error: every failure mode
// is logged and absorbed here so the scheduler always completes a tick.
func (p *Pipeline) RunPass(ctx context.Context) PassStats {
	since := p.checkpoint.Current(ctx)

	records, err := p.source.FetchSince(ctx, since)
	if err != nil {
		// Treated as "no events this pass". The checkpoint stays put, so
		// nothing is lost; the next tick refetches from the same boundary.
		slog.Error("[Pipeline] Fetch failed", "since", since, "error", err)
		return PassStats{Checkpoint: since}
	}

	if len(records) == 0 {
		slog.Debug("[Pipeline] No new events", "since", since)
		return PassStats{Checkpoint: since}
	}

	slog.Info("[Pipeline] Processing events", "count", len(records), "since", since)

	items, skipped := canonicalizeBatch(records)

	// The source does not guarantee ordering, and the checkpoint candidate
	// is a running boundary that must reflect true progress. The counter
	// totals themselves are order-independent sums.
	sort.Slice(items, func(i, j int) bool {
		return items[i].ts.Before(items[j].ts)
	})

	stats := PassStats{Fetched: len(records), Skipped: skipped, Checkpoint: since}

	// candidate carries the highest timestamp T such that every event with
	// timestamp <= T was either applied or permanently unprocessable.
	// Unprocessable events count as progress: holding the boundary below
	// them would refetch and re-log them on every tick forever. Store
	// failures stop the candidate from moving so those events are refetched;
	// later events are still applied this pass (and re-applied next pass,
	// accepted at-least-once semantics).
	var (
		candidate    time.Time
		storeFailure bool
	)

	for _, it := range items {
		if it.skip {
			if !storeFailure {
				candidate = it.ts
			}
			continue
		}

		res := p.aggregator.Apply(ctx, it.event)
		if res.Failed() {
			stats.Failed++
			storeFailure = true
			continue
		}

		stats.Applied++
		if !storeFailure {
			candidate = it.ts
		} else {
			slog.Warn("[Pipeline] Event applied after an earlier store failure; it will be re-applied next pass",
				"event_id", it.event.ID, "event_timestamp", it.ts)
		}
	}

	if !candidate.IsZero() {
		if err := p.checkpoint.Advance(ctx, candidate); err != nil {
			slog.Error("[Pipeline] Checkpoint advance failed", "candidate", candidate, "error", err)
		} else {
			stats.Checkpoint = candidate
			stats.Advanced = true
		}
	}

	slog.Info("[Pipeline] Pass complete",
		"fetched", stats.Fetched,
		"applied", stats.Applied,
		"skipped", stats.Skipped,
		"failed", stats.Failed,
		"checkpoint", stats.Checkpoint,
		"advanced", stats.Advanced,
	)
	return stats
}

// passItem is one record placed in the pass's timestamp order. Skipped
// items carry only the timestamp; they count as checkpoint progress but are
// never applied.
type passItem struct {
	ts    time.Time
	event v1.Event
	skip  bool
}

// canonicalizeBatch converts wire records to ordered pass items. Records
// that fail to parse or validate are logged and marked skipped: retrying
// them can never succeed, so they count as progress rather than holding the
// batch back. A record whose timestamp itself is unreadable cannot be placed
// on the timeline at all and is dropped from the candidate computation.
func canonicalizeBatch(records []v1.EventRecord) ([]passItem, int) {
	items := make([]passItem, 0, len(records))
	skipped := 0
	for _, rec := range records {
		evt, err := rec.Canonicalize()
		if err != nil {
			skipped++
			slog.Error("[Pipeline] Skipping unprocessable event",
				"event_id", rec.ID,
				"hotel_id", rec.HotelID,
				"kind", classifyEventError(err),
				"error", err,
			)
			if ts, ok := recordTime(rec); ok {
				items = append(items, passItem{ts: ts, skip: true})
			}
			continue
		}
		items = append(items, passItem{ts: evt.Timestamp, event: evt})
	}
	return items, skipped
}

// recordTime extracts the record's timestamp without full canonicalization.
func recordTime(rec v1.EventRecord) (time.Time, bool) {
	raw := rec.EventTimestamp
	if raw == "" {
		raw = rec.LegacyTimestamp
	}
	ts, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, false
	}
	return ts.UTC(), true
}
