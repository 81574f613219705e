package provider

import (
	"github.com/bookpulse-lab/bookpulse/internal/storage"
	"github.com/gin-gonic/gin"
)

// Service exposes the events API: producers POST booking events, and the
// aggregation pipeline (or any other consumer) reads them back with
// time-range filters.
type Service struct {
	store            storage.EventStore
	maxBodySizeBytes int64
	maxPageSize      int
}

// NewService creates the events API service.
func NewService(store storage.EventStore, maxBodySizeMB, maxPageSize int) *Service {
	if store == nil {
		panic("provider: store must not be nil")
	}
	if maxBodySizeMB <= 0 {
		maxBodySizeMB = 1
	}
	if maxPageSize <= 0 {
		maxPageSize = 10000
	}
	return &Service{
		store:            store,
		maxBodySizeBytes: int64(maxBodySizeMB) * 1024 * 1024,
		maxPageSize:      maxPageSize,
	}
}

// RegisterRoutes registers the events API routes.
func (s *Service) RegisterRoutes(r gin.IRouter) {
	r.POST("/api/v1/events", s.CreateEventHandler)
	r.GET("/api/v1/events", s.ListEventsHandler)
}
