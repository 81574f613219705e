package v1

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"time"
)

// Status distinguishes bookings from cancellations. The numeric codes are
// part of the wire contract with upstream producers.
type Status int

const (
	StatusBooking      Status = 1
	StatusCancellation Status = 2
)

// Valid reports whether the status is one of the known codes.
func (s Status) Valid() bool {
	return s == StatusBooking || s == StatusCancellation
}

// Delta returns the signed unit this status contributes to a counter.
func (s Status) Delta() int64 {
	if s == StatusBooking {
		return 1
	}
	return -1
}

func (s Status) String() string {
	switch s {
	case StatusBooking:
		return "booking"
	case StatusCancellation:
		return "cancellation"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

var (
	// ErrBadTimestamp marks an event whose timestamp could not be parsed.
	// Such events are skipped; retrying them can never succeed.
	ErrBadTimestamp = errors.New("malformed event timestamp")

	// ErrInvalidEvent marks an event missing required fields.
	ErrInvalidEvent = errors.New("invalid event")
)

const dateLayout = "2006-01-02"

// Date is a calendar date without a time component. It marshals as
// "YYYY-MM-DD" and maps to a SQL DATE column.
type Date struct {
	time.Time
}

// NewDate builds a Date at midnight UTC.
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte(`null`), nil
	}
	return []byte(`"` + d.Format(dateLayout) + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := string(b)
	if s == "null" || s == `""` {
		d.Time = time.Time{}
		return nil
	}
	t, err := time.Parse(`"`+dateLayout+`"`, s)
	if err != nil {
		return fmt.Errorf("parse date %s: %w", s, err)
	}
	d.Time = t
	return nil
}

// Value implements driver.Valuer so Date binds to a DATE column.
func (d Date) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}
	return d.Time, nil
}

// Scan implements sql.Scanner.
func (d *Date) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		d.Time = time.Time{}
		return nil
	case time.Time:
		d.Time = v
		return nil
	case []byte:
		t, err := time.Parse(dateLayout, string(v))
		if err != nil {
			return fmt.Errorf("scan date %q: %w", v, err)
		}
		d.Time = t
		return nil
	case string:
		t, err := time.Parse(dateLayout, v)
		if err != nil {
			return fmt.Errorf("scan date %q: %w", v, err)
		}
		d.Time = t
		return nil
	default:
		return fmt.Errorf("scan date: unsupported type %T", src)
	}
}

// Event is a single booking or cancellation, produced once by an upstream
// system and never mutated. The aggregation pipeline only reads events.
type Event struct {
	// ID is assigned by the event store on insert. Used for logging and
	// error correlation only; it is not a dedup key for aggregation.
	ID int64 `json:"id"`

	// HotelID is the partition key for all aggregation.
	HotelID int64 `json:"hotel_id"`

	// Timestamp is the UTC instant the event occurred. It is the ordering
	// key for checkpointing.
	Timestamp time.Time `json:"event_timestamp"`

	// Status maps to a signed counter delta: booking +1, cancellation -1.
	Status Status `json:"status"`

	// RoomReservationID and NightOfStay are descriptive attributes carried
	// for downstream consumers; they play no role in aggregation math.
	RoomReservationID string `json:"room_reservation_id"`
	NightOfStay       Date   `json:"night_of_stay"`
}

// Validate ensures the event has all required fields.
func (e *Event) Validate() error {
	if e.HotelID <= 0 {
		return fmt.Errorf("%w: hotel_id is required", ErrInvalidEvent)
	}
	if !e.Status.Valid() {
		return fmt.Errorf("%w: status must be %d (booking) or %d (cancellation), got %d",
			ErrInvalidEvent, StatusBooking, StatusCancellation, e.Status)
	}
	if e.Timestamp.IsZero() {
		return fmt.Errorf("%w: event_timestamp is required", ErrInvalidEvent)
	}
	return nil
}

// Delta returns the signed unit this event contributes to its counters.
func (e *Event) Delta() int64 {
	return e.Status.Delta()
}

// EventRecord is the tolerant wire form of an event. Upstream producers are
// inconsistent about field names (event_timestamp vs timestamp, status vs
// rpg_status), and timestamps arrive as strings that may not parse. Keeping
// the raw form here means one malformed record cannot poison a whole batch
// decode; Canonicalize resolves each record independently.
type EventRecord struct {
	ID                int64  `json:"id"`
	HotelID           int64  `json:"hotel_id"`
	EventTimestamp    string `json:"event_timestamp,omitempty"`
	LegacyTimestamp   string `json:"timestamp,omitempty"`
	Status            Status `json:"status,omitempty"`
	LegacyStatus      Status `json:"rpg_status,omitempty"`
	RoomReservationID string `json:"room_reservation_id,omitempty"`
	NightOfStay       string `json:"night_of_stay,omitempty"`
}

// Canonicalize folds the legacy field aliases into a canonical Event.
// Returns ErrBadTimestamp for an unparseable timestamp and ErrInvalidEvent
// for missing required fields.
func (r EventRecord) Canonicalize() (Event, error) {
	raw := r.EventTimestamp
	if raw == "" {
		raw = r.LegacyTimestamp
	}
	if raw == "" {
		return Event{}, fmt.Errorf("%w: event_timestamp is required", ErrInvalidEvent)
	}

	ts, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return Event{}, fmt.Errorf("%w: %q: %v", ErrBadTimestamp, raw, err)
	}

	status := r.Status
	if status == 0 {
		status = r.LegacyStatus
	}

	evt := Event{
		ID:                r.ID,
		HotelID:           r.HotelID,
		Timestamp:         ts.UTC(),
		Status:            status,
		RoomReservationID: r.RoomReservationID,
	}

	if r.NightOfStay != "" {
		night, nightErr := time.Parse(dateLayout, r.NightOfStay)
		if nightErr != nil {
			return Event{}, fmt.Errorf("%w: night_of_stay %q: %v", ErrBadTimestamp, r.NightOfStay, nightErr)
		}
		evt.NightOfStay = Date{night}
	}

	if err := evt.Validate(); err != nil {
		return Event{}, err
	}
	return evt, nil
}
