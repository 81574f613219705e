package v1

import "fmt"

// PeriodKind selects the aggregation granularity of a dashboard counter.
type PeriodKind string

const (
	PeriodDay   PeriodKind = "day"
	PeriodMonth PeriodKind = "month"
)

// Valid reports whether the period kind is known.
func (p PeriodKind) Valid() bool {
	return p == PeriodDay || p == PeriodMonth
}

// CounterKey is the identity tuple of one dashboard counter. Day is zero if
// and only if Period is PeriodMonth; the storage layer maps zero to NULL.
type CounterKey struct {
	HotelID int64
	Period  PeriodKind
	Year    int
	Month   int
	Day     int
}

func (k CounterKey) String() string {
	if k.Period == PeriodMonth {
		return fmt.Sprintf("hotel=%d %s %04d-%02d", k.HotelID, k.Period, k.Year, k.Month)
	}
	return fmt.Sprintf("hotel=%d %s %04d-%02d-%02d", k.HotelID, k.Period, k.Year, k.Month, k.Day)
}

// DayKey derives the daily counter identity an event contributes to.
func DayKey(e Event) CounterKey {
	ts := e.Timestamp.UTC()
	return CounterKey{
		HotelID: e.HotelID,
		Period:  PeriodDay,
		Year:    ts.Year(),
		Month:   int(ts.Month()),
		Day:     ts.Day(),
	}
}

// MonthKey derives the monthly counter identity an event contributes to.
func MonthKey(e Event) CounterKey {
	ts := e.Timestamp.UTC()
	return CounterKey{
		HotelID: e.HotelID,
		Period:  PeriodMonth,
		Year:    ts.Year(),
		Month:   int(ts.Month()),
	}
}

// Counter is one dashboard aggregate row. BookingCount is the net sum of
// deltas applied to this identity across all processed events.
type Counter struct {
	HotelID      int64      `json:"hotel_id"`
	Period       PeriodKind `json:"period"`
	Year         int        `json:"year"`
	Month        int        `json:"month"`
	Day          *int       `json:"day"`
	BookingCount int64      `json:"booking_count"`
}

// Key returns the identity tuple of the counter.
func (c Counter) Key() CounterKey {
	k := CounterKey{
		HotelID: c.HotelID,
		Period:  c.Period,
		Year:    c.Year,
		Month:   c.Month,
	}
	if c.Day != nil {
		k.Day = *c.Day
	}
	return k
}

// NewCounter builds a Counter for the given identity and count.
func NewCounter(key CounterKey, count int64) Counter {
	c := Counter{
		HotelID:      key.HotelID,
		Period:       key.Period,
		Year:         key.Year,
		Month:        key.Month,
		BookingCount: count,
	}
	if key.Period == PeriodDay {
		day := key.Day
		c.Day = &day
	}
	return c
}
