package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerHealthRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "healthCheck",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
		Description: "Reports the store and the search index separately. An empty index is degraded, not unhealthy.",
		Tags:        []string{"Health"},
	}, s.handleHealthCheck)
}

// Component statuses, ordered from best to worst.
const (
	statusHealthy   = "healthy"
	statusDegraded  = "degraded"
	statusUnhealthy = "unhealthy"
)

var statusRank = map[string]int{statusHealthy: 0, statusDegraded: 1, statusUnhealthy: 2}

// ComponentHealth describes the health of a single component.
type ComponentHealth struct {
	Status  string `json:"status" doc:"Component status: healthy, degraded, or unhealthy"`
	Latency string `json:"latency,omitempty" doc:"Time the probe took"`
	Message string `json:"message,omitempty" doc:"Additional status information"`
}

// HealthResponse contains health check data in API responses.
type HealthResponse struct {
	Status     string                     `json:"status" doc:"Worst status among the components"`
	Components map[string]ComponentHealth `json:"components" doc:"Individual component statuses"`
}

// HealthOutput wraps the health response for Huma.
type HealthOutput struct {
	Body HealthResponse
}

func (s *Server) handleHealthCheck(ctx context.Context, _ *struct{}) (*HealthOutput, error) {
	resp := HealthResponse{
		Status: statusHealthy,
		Components: map[string]ComponentHealth{
			"database": probe(func() (string, string) { return s.checkDatabase(ctx) }),
			"search":   probe(s.checkSearchIndex),
		},
	}
	for _, c := range resp.Components {
		if statusRank[c.Status] > statusRank[resp.Status] {
			resp.Status = c.Status
		}
	}
	return &HealthOutput{Body: resp}, nil
}

// probe times check and wraps its status and message.
func probe(check func() (status, message string)) ComponentHealth {
	start := time.Now()
	status, message := check()
	return ComponentHealth{
		Status:  status,
		Latency: time.Since(start).String(),
		Message: message,
	}
}

func (s *Server) checkDatabase(ctx context.Context) (string, string) {
	if s.store == nil {
		return statusDegraded, "database not configured"
	}
	if err := s.store.Ping(ctx); err != nil {
		return statusUnhealthy, "database ping failed"
	}
	return statusHealthy, ""
}

// checkSearchIndex reports how many genres the index holds. The index is
// filled in the background after startup, so empty means degraded.
func (s *Server) checkSearchIndex() (string, string) {
	if s.services == nil || s.services.Genre == nil {
		return statusDegraded, "search service not configured"
	}
	n, err := s.services.Genre.IndexedCount()
	switch {
	case err != nil:
		return statusUnhealthy, "search index unreachable"
	case n == 0:
		return statusDegraded, "search index empty"
	default:
		return statusHealthy, fmt.Sprintf("%d genres indexed", n)
	}
}
