package provider

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	v1 "github.com/bookpulse-lab/bookpulse/internal/api/v1"
	"github.com/bookpulse-lab/bookpulse/internal/httperr"
	"github.com/bookpulse-lab/bookpulse/internal/storage"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CreateEventHandler handles POST /api/v1/events.
func (s *Service) CreateEventHandler(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxBodySizeBytes)

	var rec v1.EventRecord
	if err := c.ShouldBindJSON(&rec); err != nil {
		slog.Warn("Invalid JSON body received", "error", err)
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.TypeInvalidJSON,
			Message:   "Invalid JSON body",
		})
		return
	}

	evt, err := rec.Canonicalize()
	if err != nil {
		slog.Warn("Event validation failed", "error", err)
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.TypeValidationFailed,
			Message:   err.Error(),
		})
		return
	}

	if evt.RoomReservationID == "" {
		evt.RoomReservationID = uuid.NewString()
	} else if _, err := uuid.Parse(evt.RoomReservationID); err != nil {
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.TypeValidationFailed,
			Message:   "room_reservation_id must be a valid UUID",
		})
		return
	}

	if err := s.store.SaveEvent(c.Request.Context(), &evt); err != nil {
		slog.Error("Failed to persist event", "error", err, "hotel_id", evt.HotelID)
		c.JSON(http.StatusInternalServerError, httperr.ErrorResponse{
			ErrorType: httperr.TypeInternalError,
			Message:   "Failed to persist event",
		})
		return
	}

	slog.Info("Created event",
		"event_id", evt.ID,
		"hotel_id", evt.HotelID,
		"status", evt.Status.String(),
		"event_timestamp", evt.Timestamp,
	)
	c.JSON(http.StatusCreated, evt)
}

// ListEventsHandler handles GET /api/v1/events. All filters are optional
// and additive; results are ordered by event timestamp ascending and capped
// at the configured page size.
func (s *Service) ListEventsHandler(c *gin.Context) {
	filter, err := parseEventFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.TypeInvalidQuery,
			Message:   err.Error(),
		})
		return
	}

	events, err := s.store.ListEvents(c.Request.Context(), filter, s.maxPageSize)
	if err != nil {
		slog.Error("Failed to list events", "error", err)
		c.JSON(http.StatusInternalServerError, httperr.ErrorResponse{
			ErrorType: httperr.TypeInternalError,
			Message:   "Failed to list events",
		})
		return
	}

	if events == nil {
		events = []*v1.Event{}
	}
	c.JSON(http.StatusOK, events)
}

func parseEventFilter(c *gin.Context) (storage.EventFilter, error) {
	var filter storage.EventFilter

	if raw := c.Query("hotel_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			return filter, errors.New("hotel_id must be a positive integer")
		}
		filter.HotelID = id
	}

	if raw := c.Query("rpg_status"); raw != "" {
		code, err := strconv.Atoi(raw)
		if err != nil || !v1.Status(code).Valid() {
			return filter, errors.New("rpg_status must be 1 (booking) or 2 (cancellation)")
		}
		filter.Status = v1.Status(code)
	}

	if raw := c.Query("room_reservation_id"); raw != "" {
		if _, err := uuid.Parse(raw); err != nil {
			return filter, errors.New("room_reservation_id must be a valid UUID")
		}
		filter.RoomReservationID = raw
	}

	var err error
	if filter.UpdatedGTE, err = parseTimeParam(c, "updated_gte"); err != nil {
		return filter, err
	}
	if filter.UpdatedLTE, err = parseTimeParam(c, "updated_lte"); err != nil {
		return filter, err
	}
	if filter.FromTimestamp, err = parseTimeParam(c, "from_timestamp"); err != nil {
		return filter, err
	}
	if filter.NightOfStayGTE, err = parseDateParam(c, "night_of_stay_gte"); err != nil {
		return filter, err
	}
	if filter.NightOfStayLTE, err = parseDateParam(c, "night_of_stay_lte"); err != nil {
		return filter, err
	}

	return filter, nil
}

func parseTimeParam(c *gin.Context, name string) (*time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return nil, errors.New(name + " must be an RFC3339 timestamp")
	}
	t = t.UTC()
	return &t, nil
}

func parseDateParam(c *gin.Context, name string) (*time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, errors.New(name + " must be a YYYY-MM-DD date")
	}
	return &t, nil
}
