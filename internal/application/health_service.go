package application

import (
	"context"

	"github.com/alorle/playlist-manager/internal/port/driven"
)

// HealthService orchestrates health checks for the application and its dependencies.
type HealthService struct {
	cache     driven.SourceCache
	workspace *WorkspaceService
}

// NewHealthService creates a new health check service.
// cache may be nil when no source cache is configured.
func NewHealthService(cache driven.SourceCache, workspace *WorkspaceService) *HealthService {
	return &HealthService{
		cache:     cache,
		workspace: workspace,
	}
}

// ComponentHealth represents the health status of a single component.
type ComponentHealth struct {
	Status string // "ok", "disabled" or "error"
	Error  string // empty unless status is "error"
}

// HealthStatus represents the overall health status of the application.
type HealthStatus struct {
	Status   string          // "ok" if all components are healthy, "degraded" otherwise
	Cache    ComponentHealth // source cache health
	Channels int             // channels in the working playlist
}

// Check performs health checks on all dependencies.
func (s *HealthService) Check(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status: "ok",
		Cache:  ComponentHealth{Status: "ok"},
	}

	switch {
	case s.cache == nil:
		status.Cache = ComponentHealth{Status: "disabled"}
	default:
		if err := s.cache.Ping(ctx); err != nil {
			status.Cache = ComponentHealth{Status: "error", Error: err.Error()}
			status.Status = "degraded"
		}
	}

	if s.workspace != nil {
		status.Channels = s.workspace.View().Total
	}

	return status
}
