package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	v1 "github.com/bookpulse-lab/bookpulse/internal/api/v1"
	"github.com/bookpulse-lab/bookpulse/internal/httperr"
	"github.com/bookpulse-lab/bookpulse/internal/storage"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubDashboardStore serves canned counters and records the filter it saw.
type stubDashboardStore struct {
	counters   []v1.Counter
	queryErr   error
	lastFilter storage.CounterFilter
}

func (s *stubDashboardStore) ReadCount(context.Context, v1.CounterKey) (int64, error) {
	return 0, errors.New("not implemented")
}

func (s *stubDashboardStore) UpsertCount(context.Context, v1.CounterKey, int64) error {
	return errors.New("not implemented")
}

func (s *stubDashboardStore) QueryCounters(_ context.Context, filter storage.CounterFilter) ([]v1.Counter, error) {
	s.lastFilter = filter
	if s.queryErr != nil {
		return nil, s.queryErr
	}
	return s.counters, nil
}

func newTestRouter(store *stubDashboardStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	svc := NewService(store)
	r := gin.New()
	svc.RegisterRoutes(r)
	return r
}

func TestQueryHandler_ReturnsCounters(t *testing.T) {
	day := 15
	store := &stubDashboardStore{counters: []v1.Counter{
		{HotelID: 1, Period: v1.PeriodDay, Year: 2024, Month: 1, Day: &day, BookingCount: 3},
		{HotelID: 1, Period: v1.PeriodMonth, Year: 2024, Month: 1, BookingCount: 20},
	}}
	r := newTestRouter(store)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard?hotel_id=1", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)

	var counters []v1.Counter
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &counters))
	require.Len(t, counters, 2)

	require.NotNil(t, counters[0].Day)
	assert.Equal(t, 15, *counters[0].Day)
	assert.Nil(t, counters[1].Day)
	assert.Equal(t, int64(1), store.lastFilter.HotelID)
}

func TestQueryHandler_ParsesAllFilters(t *testing.T) {
	store := &stubDashboardStore{}
	r := newTestRouter(store)

	req := httptest.NewRequest(http.MethodGet,
		"/api/v1/dashboard?hotel_id=7&period=day&year=2024&month=2&day=29", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, storage.CounterFilter{
		HotelID: 7,
		Period:  v1.PeriodDay,
		Year:    2024,
		Month:   2,
		Day:     29,
	}, store.lastFilter)
}

func TestQueryHandler_EmptyResultIsArray(t *testing.T) {
	r := newTestRouter(&stubDashboardStore{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "[]", resp.Body.String())
}

func TestQueryHandler_BadQueryParams(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{"bad hotel_id", "hotel_id=abc"},
		{"zero hotel_id", "hotel_id=0"},
		{"unknown period", "period=week"},
		{"year out of range", "year=1800"},
		{"month out of range", "month=13"},
		{"day out of range", "day=32"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := newTestRouter(&stubDashboardStore{})

			req := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard?"+tc.query, nil)
			resp := httptest.NewRecorder()
			r.ServeHTTP(resp, req)

			require.Equal(t, http.StatusBadRequest, resp.Code)

			var errResp httperr.ErrorResponse
			require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &errResp))
			assert.Equal(t, httperr.TypeInvalidQuery, errResp.ErrorType)
		})
	}
}

func TestQueryHandler_StoreFailure(t *testing.T) {
	store := &stubDashboardStore{queryErr: errors.New("database unavailable")}
	r := newTestRouter(store)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	require.Equal(t, http.StatusInternalServerError, resp.Code)

	var errResp httperr.ErrorResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &errResp))
	assert.Equal(t, httperr.TypeInternalError, errResp.ErrorType)
}
