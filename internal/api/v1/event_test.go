package v1

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventRecord_CanonicalizeCanonicalFields(t *testing.T) {
	r := EventRecord{
		ID:                7,
		HotelID:           1,
		EventTimestamp:    "2024-01-01T12:30:45.123Z",
		Status:            StatusBooking,
		RoomReservationID: "0013e338-0158-4d5c-8698-aebe00cba360",
		NightOfStay:       "2024-01-02",
	}

	evt, err := r.Canonicalize()
	require.NoError(t, err)

	assert.Equal(t, int64(7), evt.ID)
	assert.Equal(t, int64(1), evt.HotelID)
	assert.Equal(t, time.Date(2024, 1, 1, 12, 30, 45, 123000000, time.UTC), evt.Timestamp)
	assert.Equal(t, StatusBooking, evt.Status)
	assert.Equal(t, NewDate(2024, time.January, 2), evt.NightOfStay)
}

func TestEventRecord_CanonicalizeLegacyAliases(t *testing.T) {
	r := EventRecord{
		ID:              8,
		HotelID:         2,
		LegacyTimestamp: "2024-05-05T00:00:00Z",
		LegacyStatus:    StatusCancellation,
	}

	evt, err := r.Canonicalize()
	require.NoError(t, err)

	assert.Equal(t, StatusCancellation, evt.Status)
	assert.Equal(t, time.Date(2024, 5, 5, 0, 0, 0, 0, time.UTC), evt.Timestamp)
}

func TestEventRecord_CanonicalPrevailsOverLegacy(t *testing.T) {
	r := EventRecord{
		HotelID:         2,
		EventTimestamp:  "2024-05-05T00:00:00Z",
		LegacyTimestamp: "2020-01-01T00:00:00Z",
		Status:          StatusBooking,
		LegacyStatus:    StatusCancellation,
	}

	evt, err := r.Canonicalize()
	require.NoError(t, err)

	assert.Equal(t, StatusBooking, evt.Status)
	assert.Equal(t, 2024, evt.Timestamp.Year())
}

func TestEventRecord_CanonicalizeNormalizesToUTC(t *testing.T) {
	r := EventRecord{
		HotelID:        1,
		EventTimestamp: "2024-01-01T23:30:00+02:00",
		Status:         StatusBooking,
	}

	evt, err := r.Canonicalize()
	require.NoError(t, err)

	// 23:30+02:00 is 21:30 UTC, still January 1st.
	assert.Equal(t, time.UTC, evt.Timestamp.Location())
	assert.Equal(t, 21, evt.Timestamp.Hour())
	assert.Equal(t, 1, evt.Timestamp.Day())
}

func TestEventRecord_CanonicalizeErrors(t *testing.T) {
	tests := []struct {
		name    string
		record  EventRecord
		wantErr error
	}{
		{
			name:    "bad timestamp",
			record:  EventRecord{HotelID: 1, EventTimestamp: "yesterday", Status: StatusBooking},
			wantErr: ErrBadTimestamp,
		},
		{
			name:    "bad night of stay",
			record:  EventRecord{HotelID: 1, EventTimestamp: "2024-01-01T00:00:00Z", Status: StatusBooking, NightOfStay: "01/02/2024"},
			wantErr: ErrBadTimestamp,
		},
		{
			name:    "missing timestamp",
			record:  EventRecord{HotelID: 1, Status: StatusBooking},
			wantErr: ErrInvalidEvent,
		},
		{
			name:    "missing hotel id",
			record:  EventRecord{EventTimestamp: "2024-01-01T00:00:00Z", Status: StatusBooking},
			wantErr: ErrInvalidEvent,
		},
		{
			name:    "unknown status",
			record:  EventRecord{HotelID: 1, EventTimestamp: "2024-01-01T00:00:00Z", Status: 9},
			wantErr: ErrInvalidEvent,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.record.Canonicalize()
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestStatus_Delta(t *testing.T) {
	assert.Equal(t, int64(1), StatusBooking.Delta())
	assert.Equal(t, int64(-1), StatusCancellation.Delta())
}

func TestDayAndMonthKeys(t *testing.T) {
	evt := Event{
		HotelID:   42,
		Timestamp: time.Date(2024, 7, 15, 18, 0, 0, 0, time.UTC),
		Status:    StatusBooking,
	}

	day := DayKey(evt)
	assert.Equal(t, CounterKey{HotelID: 42, Period: PeriodDay, Year: 2024, Month: 7, Day: 15}, day)

	month := MonthKey(evt)
	assert.Equal(t, CounterKey{HotelID: 42, Period: PeriodMonth, Year: 2024, Month: 7}, month)
	assert.Zero(t, month.Day)
}

func TestDayKey_UsesUTCCalendarDate(t *testing.T) {
	// 01:00+03:00 on July 16 is 22:00 UTC on July 15.
	loc := time.FixedZone("EAT", 3*60*60)
	evt := Event{
		HotelID:   1,
		Timestamp: time.Date(2024, 7, 16, 1, 0, 0, 0, loc),
		Status:    StatusBooking,
	}

	assert.Equal(t, 15, DayKey(evt).Day)
}

func TestDate_JSONRoundTrip(t *testing.T) {
	d := NewDate(2024, time.March, 9)

	b, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2024-03-09"`, string(b))

	var back Date
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, d, back)
}

func TestDate_JSONNull(t *testing.T) {
	b, err := json.Marshal(Date{})
	require.NoError(t, err)
	assert.Equal(t, `null`, string(b))

	var d Date
	require.NoError(t, json.Unmarshal([]byte(`null`), &d))
	assert.True(t, d.IsZero())
}

func TestCounter_KeyRoundTrip(t *testing.T) {
	dayKey := CounterKey{HotelID: 3, Period: PeriodDay, Year: 2024, Month: 2, Day: 29}
	assert.Equal(t, dayKey, NewCounter(dayKey, 4).Key())

	monthKey := CounterKey{HotelID: 3, Period: PeriodMonth, Year: 2024, Month: 2}
	c := NewCounter(monthKey, 10)
	assert.Nil(t, c.Day)
	assert.Equal(t, monthKey, c.Key())
}
