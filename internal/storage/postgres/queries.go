package postgres

// SQL statements for the events and dashboard_data tables.

const (
	// querySaveEvent inserts one booking event. RETURNING retrieves the
	// auto-generated id for logging/correlation.
	querySaveEvent = `
		INSERT INTO events (
			hotel_id, event_timestamp, rpg_status, room_reservation_id, night_of_stay
		)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	// queryEarliestEventTime backs checkpoint initialization on first run.
	queryEarliestEventTime = `
		SELECT event_timestamp FROM events ORDER BY event_timestamp ASC LIMIT 1
	`

	// queryListEventsBase is the prefix for filtered event listings. Filter
	// predicates are appended dynamically; ordering by (event_timestamp, id)
	// gives the pipeline a stable chronological order.
	queryListEventsBase = `
		SELECT id, hotel_id, event_timestamp, rpg_status, room_reservation_id, night_of_stay
		FROM events
	`

	// queryReadCount reads the current value of one counter identity.
	// IS NOT DISTINCT FROM matches the NULL day of month rows.
	queryReadCount = `
		SELECT booking_count
		FROM dashboard_data
		WHERE hotel_id = $1
		  AND period = $2
		  AND year = $3
		  AND month = $4
		  AND day IS NOT DISTINCT FROM $5
	`

	// queryUpsertCount writes the recomputed count for one identity. The
	// dashboard_identity constraint treats NULL days as equal, so month rows
	// conflict correctly.
	queryUpsertCount = `
		INSERT INTO dashboard_data (hotel_id, period, year, month, day, booking_count, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT ON CONSTRAINT dashboard_identity
		DO UPDATE SET
			booking_count = EXCLUDED.booking_count,
			updated_at    = EXCLUDED.updated_at
	`

	// queryCountersBase is the prefix for filtered dashboard queries.
	queryCountersBase = `
		SELECT hotel_id, period, year, month, day, booking_count
		FROM dashboard_data
	`
)
