package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	v1 "github.com/bookpulse-lab/bookpulse/internal/api/v1"
	"github.com/bookpulse-lab/bookpulse/internal/storage"
)

// DashboardAdapter implements storage.DashboardStore using PostgreSQL.
// It shares the events adapter's connection.
//
// Counter updates are read-current-then-write-new rather than a single
// atomic increment; UpsertCount replaces the stored value with the count
// the aggregator computed.
type DashboardAdapter struct {
	db    *sql.DB
	nowFn func() time.Time
}

// NewDashboardAdapter creates a DashboardAdapter on the given connection.
func NewDashboardAdapter(db *sql.DB) *DashboardAdapter {
	return &DashboardAdapter{
		db: db,
		nowFn: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// dayColumn maps a CounterKey's day to its column value: NULL for month
// rows, the day-of-month for day rows.
func dayColumn(key v1.CounterKey) sql.NullInt64 {
	if key.Period == v1.PeriodMonth {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(key.Day), Valid: true}
}

// ReadCount returns the current booking_count for the identity, or (0, nil)
// when no row exists yet.
func (a *DashboardAdapter) ReadCount(ctx context.Context, key v1.CounterKey) (int64, error) {
	var count int64
	err := a.db.QueryRowContext(ctx, queryReadCount,
		key.HotelID,
		string(key.Period),
		key.Year,
		key.Month,
		dayColumn(key),
	).Scan(&count)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read counter %s: %w", key, err)
	}
	return count, nil
}

// UpsertCount creates or replaces the counter row for the identity.
func (a *DashboardAdapter) UpsertCount(ctx context.Context, key v1.CounterKey, count int64) error {
	_, err := a.db.ExecContext(ctx, queryUpsertCount,
		key.HotelID,
		string(key.Period),
		key.Year,
		key.Month,
		dayColumn(key),
		count,
		a.nowFn(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert counter %s: %w", key, err)
	}

	slog.Debug("[Postgres] Upserted counter", "key", key.String(), "booking_count", count)
	return nil
}

// QueryCounters returns counter rows matching the filter, ordered by
// (hotel_id, period, year, month, day).
func (a *DashboardAdapter) QueryCounters(ctx context.Context, filter storage.CounterFilter) ([]v1.Counter, error) {
	query, args := buildCountersQuery(filter)

	rows, err := a.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query counters: %w", err)
	}
	defer rows.Close()

	var counters []v1.Counter
	for rows.Next() {
		var (
			c   v1.Counter
			day sql.NullInt64
		)
		if err := rows.Scan(&c.HotelID, &c.Period, &c.Year, &c.Month, &day, &c.BookingCount); err != nil {
			return nil, fmt.Errorf("failed to scan counter row: %w", err)
		}
		if day.Valid {
			d := int(day.Int64)
			c.Day = &d
		}
		counters = append(counters, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating counters: %w", err)
	}

	return counters, nil
}

func buildCountersQuery(filter storage.CounterFilter) (string, []interface{}) {
	var (
		sb    strings.Builder
		conds []string
		args  []interface{}
	)
	sb.WriteString(queryCountersBase)

	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.HotelID > 0 {
		conds = append(conds, "hotel_id = "+arg(filter.HotelID))
	}
	if filter.Period != "" {
		conds = append(conds, "period = "+arg(string(filter.Period)))
	}
	if filter.Year > 0 {
		conds = append(conds, "year = "+arg(filter.Year))
	}
	if filter.Month > 0 {
		conds = append(conds, "month = "+arg(filter.Month))
	}
	// A day filter only makes sense against day rows; month rows have no day.
	if filter.Day > 0 && filter.Period == v1.PeriodDay {
		conds = append(conds, "day = "+arg(filter.Day))
	}

	if len(conds) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(conds, " AND "))
	}

	sb.WriteString(" ORDER BY hotel_id ASC, period ASC, year ASC, month ASC, day ASC NULLS FIRST")

	return sb.String(), args
}
