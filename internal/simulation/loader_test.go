package simulation

import (
	"testing"

	v1 "github.com/bookpulse-lab/bookpulse/internal/api/v1"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexColumns_CanonicalHeader(t *testing.T) {
	cols := indexColumns([]string{
		"id", "room_reservation_id", "night_of_stay", "event_timestamp", "status", "hotel_id",
	})

	require.NoError(t, cols.validate())
	assert.Equal(t, 0, cols.id)
	assert.Equal(t, 1, cols.reservation)
	assert.Equal(t, 2, cols.nightOfStay)
	assert.Equal(t, 3, cols.timestamp)
	assert.Equal(t, 4, cols.status)
	assert.Equal(t, 5, cols.hotelID)
}

func TestIndexColumns_LegacyAliases(t *testing.T) {
	cols := indexColumns([]string{
		"hotel_id", "timestamp", "rpg_status", "room_reservation_id",
	})

	require.NoError(t, cols.validate())
	assert.Equal(t, 1, cols.timestamp)
	assert.Equal(t, 2, cols.status)
}

func TestIndexColumns_IsCaseAndSpaceInsensitive(t *testing.T) {
	cols := indexColumns([]string{
		" Hotel_ID ", "Event_Timestamp", "STATUS", "Room_Reservation_ID",
	})
	require.NoError(t, cols.validate())
}

func TestColumnIndex_ValidateMissingColumns(t *testing.T) {
	tests := []struct {
		name   string
		header []string
	}{
		{"no hotel_id", []string{"event_timestamp", "status", "room_reservation_id"}},
		{"no timestamp", []string{"hotel_id", "status", "room_reservation_id"}},
		{"no status", []string{"hotel_id", "event_timestamp", "room_reservation_id"}},
		{"no reservation", []string{"hotel_id", "event_timestamp", "status"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cols := indexColumns(tc.header)
			assert.Error(t, cols.validate())
		})
	}
}

func TestColumnIndex_Record(t *testing.T) {
	cols := indexColumns([]string{
		"id", "hotel_id", "event_timestamp", "status", "room_reservation_id", "night_of_stay",
	})

	rec, err := cols.record([]string{
		"12", "3", "2024-01-01T10:00:00Z", "1", "0013e338-0158-4d5c-8698-aebe00cba360", "2024-01-05",
	})
	require.NoError(t, err)

	assert.Equal(t, int64(12), rec.ID)
	assert.Equal(t, int64(3), rec.HotelID)
	assert.Equal(t, "2024-01-01T10:00:00Z", rec.EventTimestamp)
	assert.Equal(t, v1.StatusBooking, rec.Status)
	assert.Equal(t, "2024-01-05", rec.NightOfStay)
}

func TestColumnIndex_RecordRejectsBadValues(t *testing.T) {
	cols := indexColumns([]string{"hotel_id", "event_timestamp", "status", "room_reservation_id"})

	tests := []struct {
		name string
		row  []string
	}{
		{"bad hotel_id", []string{"abc", "2024-01-01T10:00:00Z", "1", "0013e338-0158-4d5c-8698-aebe00cba360"}},
		{"bad status", []string{"1", "2024-01-01T10:00:00Z", "one", "0013e338-0158-4d5c-8698-aebe00cba360"}},
		{"bad reservation id", []string{"1", "2024-01-01T10:00:00Z", "1", "not-a-uuid"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := cols.record(tc.row)
			assert.Error(t, err)
		})
	}
}

func TestColumnIndex_RecordToleratesShortRows(t *testing.T) {
	cols := indexColumns([]string{
		"hotel_id", "event_timestamp", "status", "room_reservation_id", "night_of_stay",
	})

	// Row ends before the night_of_stay column; it stays empty.
	rec, err := cols.record([]string{"1", "2024-01-01T10:00:00Z", "2", "0013e338-0158-4d5c-8698-aebe00cba360"})
	require.NoError(t, err)
	assert.Empty(t, rec.NightOfStay)
	assert.Equal(t, v1.StatusCancellation, rec.Status)
}
