package simulation

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"

	v1 "github.com/bookpulse-lab/bookpulse/internal/api/v1"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// QueueKey is the Redis list the simulator stages events on before posting
// them to the events API.
const QueueKey = "event_queue"

// LoadStats summarizes one CSV load.
type LoadStats struct {
	Rows     int
	Enqueued int
	Invalid  int
}

// LoadCSV reads historical booking events from a CSV file, drops rows with
// an invalid room_reservation_id, sorts the remainder chronologically and
// enqueues each row on the Redis queue as a JSON event record.
//
// Columns are resolved by header name; the legacy aliases (timestamp,
// rpg_status) are accepted alongside the canonical names.
func LoadCSV(ctx context.Context, path string, client *redis.Client) (LoadStats, error) {
	f, err := os.Open(path)
	if err != nil {
		return LoadStats{}, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return LoadStats{}, fmt.Errorf("read csv header: %w", err)
	}
	cols := indexColumns(header)
	if err := cols.validate(); err != nil {
		return LoadStats{}, err
	}

	var (
		stats   LoadStats
		records []v1.EventRecord
	)

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return stats, fmt.Errorf("read csv row: %w", err)
		}
		stats.Rows++

		rec, err := cols.record(row)
		if err != nil {
			stats.Invalid++
			slog.Warn("[Simulation] Skipping invalid CSV row", "row", stats.Rows, "error", err)
			continue
		}
		records = append(records, rec)
	}

	slog.Info("[Simulation] Read CSV file", "path", path, "rows", stats.Rows, "invalid", stats.Invalid)

	// Events must reach the API in chronological order so the pipeline sees
	// a realistic stream. ISO-8601 strings compare lexically.
	sort.Slice(records, func(i, j int) bool {
		return records[i].EventTimestamp < records[j].EventTimestamp
	})

	for _, rec := range records {
		payload, err := json.Marshal(rec)
		if err != nil {
			return stats, fmt.Errorf("marshal event record: %w", err)
		}
		if err := client.RPush(ctx, QueueKey, payload).Err(); err != nil {
			return stats, fmt.Errorf("enqueue event record: %w", err)
		}
		stats.Enqueued++
	}

	slog.Info("[Simulation] Enqueued events", "count", stats.Enqueued, "queue", QueueKey)
	return stats, nil
}

// columnIndex maps the CSV columns this loader understands to their
// positions, -1 when absent.
type columnIndex struct {
	id          int
	hotelID     int
	timestamp   int
	status      int
	reservation int
	nightOfStay int
}

func indexColumns(header []string) columnIndex {
	cols := columnIndex{id: -1, hotelID: -1, timestamp: -1, status: -1, reservation: -1, nightOfStay: -1}
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "id":
			cols.id = i
		case "hotel_id":
			cols.hotelID = i
		case "event_timestamp", "timestamp":
			cols.timestamp = i
		case "status", "rpg_status":
			cols.status = i
		case "room_reservation_id":
			cols.reservation = i
		case "night_of_stay":
			cols.nightOfStay = i
		}
	}
	return cols
}

func (c columnIndex) validate() error {
	if c.hotelID < 0 {
		return fmt.Errorf("csv is missing a hotel_id column")
	}
	if c.timestamp < 0 {
		return fmt.Errorf("csv is missing an event_timestamp column")
	}
	if c.status < 0 {
		return fmt.Errorf("csv is missing a status column")
	}
	if c.reservation < 0 {
		return fmt.Errorf("csv is missing a room_reservation_id column")
	}
	return nil
}

func (c columnIndex) record(row []string) (v1.EventRecord, error) {
	get := func(idx int) string {
		if idx < 0 || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	hotelID, err := strconv.ParseInt(get(c.hotelID), 10, 64)
	if err != nil {
		return v1.EventRecord{}, fmt.Errorf("bad hotel_id %q", get(c.hotelID))
	}

	status, err := strconv.Atoi(get(c.status))
	if err != nil {
		return v1.EventRecord{}, fmt.Errorf("bad status %q", get(c.status))
	}

	reservation := get(c.reservation)
	if _, err := uuid.Parse(reservation); err != nil {
		return v1.EventRecord{}, fmt.Errorf("bad room_reservation_id %q", reservation)
	}

	rec := v1.EventRecord{
		HotelID:           hotelID,
		EventTimestamp:    get(c.timestamp),
		Status:            v1.Status(status),
		RoomReservationID: reservation,
		NightOfStay:       get(c.nightOfStay),
	}

	if raw := get(c.id); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			rec.ID = id
		}
	}

	return rec, nil
}
