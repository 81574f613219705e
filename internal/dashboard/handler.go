package dashboard

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	v1 "github.com/bookpulse-lab/bookpulse/internal/api/v1"
	"github.com/bookpulse-lab/bookpulse/internal/httperr"
	"github.com/bookpulse-lab/bookpulse/internal/storage"
	"github.com/gin-gonic/gin"
)

// QueryHandler handles GET /api/v1/dashboard. Filters (hotel_id, period,
// year, month, day) are optional and additive; a day filter is only honored
// when period=day, since month rows carry no day.
func (s *Service) QueryHandler(c *gin.Context) {
	filter, err := parseCounterFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.TypeInvalidQuery,
			Message:   err.Error(),
		})
		return
	}

	counters, err := s.store.QueryCounters(c.Request.Context(), filter)
	if err != nil {
		slog.Error("Failed to query dashboard data", "error", err)
		c.JSON(http.StatusInternalServerError, httperr.ErrorResponse{
			ErrorType: httperr.TypeInternalError,
			Message:   "Failed to query dashboard data",
		})
		return
	}

	if counters == nil {
		counters = []v1.Counter{}
	}
	c.JSON(http.StatusOK, counters)
}

func parseCounterFilter(c *gin.Context) (storage.CounterFilter, error) {
	var filter storage.CounterFilter

	if raw := c.Query("hotel_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			return filter, errors.New("hotel_id must be a positive integer")
		}
		filter.HotelID = id
	}

	if raw := c.Query("period"); raw != "" {
		period := v1.PeriodKind(raw)
		if !period.Valid() {
			return filter, errors.New("period must be 'month' or 'day'")
		}
		filter.Period = period
	}

	if raw := c.Query("year"); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil || year < 1950 || year > 2050 {
			return filter, errors.New("year must be between 1950 and 2050")
		}
		filter.Year = year
	}

	if raw := c.Query("month"); raw != "" {
		month, err := strconv.Atoi(raw)
		if err != nil || month < 1 || month > 12 {
			return filter, errors.New("month must be between 1 and 12")
		}
		filter.Month = month
	}

	if raw := c.Query("day"); raw != "" {
		day, err := strconv.Atoi(raw)
		if err != nil || day < 1 || day > 31 {
			return filter, errors.New("day must be between 1 and 31")
		}
		filter.Day = day
	}

	return filter, nil
}
