package storage

import (
	"context"
	"errors"
	"time"

	v1 "github.com/bookpulse-lab/bookpulse/internal/api/v1"
)

// ErrNotFound is returned when a requested row or cache entry does not exist.
var ErrNotFound = errors.New("not found")

// EventFilter narrows an event listing. Nil/zero fields are unconstrained;
// all set fields are additive (AND).
type EventFilter struct {
	HotelID           int64
	Status            v1.Status
	RoomReservationID string

	// UpdatedGTE/UpdatedLTE are inclusive bounds on event_timestamp.
	UpdatedGTE *time.Time
	UpdatedLTE *time.Time

	// NightOfStayGTE/NightOfStayLTE are inclusive bounds on night_of_stay.
	NightOfStayGTE *time.Time
	NightOfStayLTE *time.Time

	// FromTimestamp is a strictly-greater bound on event_timestamp. This is
	// the aggregation pipeline's fetch contract: events newer than the
	// checkpoint.
	FromTimestamp *time.Time
}

// EventStore persists booking events and serves time-ordered reads.
type EventStore interface {
	// SaveEvent inserts the event and populates its ID.
	SaveEvent(ctx context.Context, event *v1.Event) error

	// ListEvents returns events matching the filter ordered by
	// (event_timestamp, id) ascending, capped at limit.
	ListEvents(ctx context.Context, filter EventFilter, limit int) ([]*v1.Event, error)

	// EarliestEventTime returns the timestamp of the oldest stored event.
	// Returns ErrNotFound when the store is empty.
	EarliestEventTime(ctx context.Context) (time.Time, error)
}

// CounterFilter narrows a dashboard counter query. Zero fields are
// unconstrained. Day is only honored when Period is PeriodDay.
type CounterFilter struct {
	HotelID int64
	Period  v1.PeriodKind
	Year    int
	Month   int
	Day     int
}

// DashboardStore owns the aggregate counter rows. The aggregation pipeline
// is the only writer; the dashboard query API reads.
type DashboardStore interface {
	// ReadCount returns the current booking_count for the identity, or
	// (0, nil) when no row exists yet.
	ReadCount(ctx context.Context, key v1.CounterKey) (int64, error)

	// UpsertCount creates or replaces the row for the identity with count.
	UpsertCount(ctx context.Context, key v1.CounterKey, count int64) error

	// QueryCounters returns counter rows matching the filter.
	QueryCounters(ctx context.Context, filter CounterFilter) ([]v1.Counter, error)
}

// CheckpointCache records the timestamp boundary up to which events have
// been aggregated. It must survive process restarts.
type CheckpointCache interface {
	// Get returns the stored checkpoint. Returns ErrNotFound when no
	// checkpoint has been written yet.
	Get(ctx context.Context) (time.Time, error)

	// Set overwrites the checkpoint. Entries carry no TTL.
	Set(ctx context.Context, t time.Time) error
}
