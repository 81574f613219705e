package dashboard

import (
	"github.com/bookpulse-lab/bookpulse/internal/storage"
	"github.com/gin-gonic/gin"
)

// Service exposes the read-only dashboard query API over the aggregate
// counters the pipeline maintains.
type Service struct {
	store storage.DashboardStore
}

// NewService creates the dashboard query service.
func NewService(store storage.DashboardStore) *Service {
	if store == nil {
		panic("dashboard: store must not be nil")
	}
	return &Service{store: store}
}

// RegisterRoutes registers the dashboard API routes.
func (s *Service) RegisterRoutes(r gin.IRouter) {
	r.GET("/api/v1/dashboard", s.QueryHandler)
}
