package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/listenupapp/autosort/internal/domain"
)

func (s *Server) registerHealthRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "healthCheck",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
		Description: "Returns daemon health with component checks",
		Tags:        []string{"Health"},
	}, s.handleHealthCheck)
}

// ComponentHealth describes the health of a single component.
type ComponentHealth struct {
	Status  string `json:"status" doc:"Component status: healthy, degraded, or unhealthy"`
	Latency string `json:"latency,omitempty" doc:"Response time for this component"`
	Message string `json:"message,omitempty" doc:"Additional status information"`
}

// HealthResponse contains health check data in API responses.
type HealthResponse struct {
	Status     string                     `json:"status" doc:"Overall status: healthy, degraded, or unhealthy"`
	Uptime     string                     `json:"uptime" doc:"Time since the server started"`
	Components map[string]ComponentHealth `json:"components" doc:"Individual component statuses"`
}

// HealthOutput wraps the health response for Huma.
type HealthOutput struct {
	Body HealthResponse
}

func (s *Server) handleHealthCheck(ctx context.Context, _ *struct{}) (*HealthOutput, error) {
	components := map[string]ComponentHealth{
		"history": s.checkHistory(ctx),
		"watches": s.checkWatches(),
	}

	overall := "healthy"
	for _, c := range components {
		switch c.Status {
		case "unhealthy":
			overall = "unhealthy"
		case "degraded":
			if overall == "healthy" {
				overall = "degraded"
			}
		}
	}

	return &HealthOutput{
		Body: HealthResponse{
			Status:     overall,
			Uptime:     time.Since(s.startedAt).Round(time.Second).String(),
			Components: components,
		},
	}, nil
}

func (s *Server) checkHistory(ctx context.Context) ComponentHealth {
	if s.history == nil {
		return ComponentHealth{Status: "healthy", Message: "history disabled"}
	}

	start := time.Now()
	err := s.history.Ping(ctx)
	latency := time.Since(start)

	if err != nil {
		return ComponentHealth{
			Status:  "unhealthy",
			Latency: latency.String(),
			Message: "history database unreachable",
		}
	}
	return ComponentHealth{Status: "healthy", Latency: latency.String()}
}

// checkWatches reports degraded when a session died on its own.
func (s *Server) checkWatches() ComponentHealth {
	watches := s.organizer.Watches()
	failed := 0
	for _, w := range watches {
		if w.State == domain.SessionStopped && w.LastError != nil {
			failed++
		}
	}
	if failed > 0 {
		return ComponentHealth{Status: "degraded", Message: formatCount(failed, "stopped watch", "stopped watches")}
	}
	return ComponentHealth{Status: "healthy", Message: formatCount(len(watches), "watch", "watches")}
}

func formatCount(n int, one, many string) string {
	if n == 1 {
		return "1 " + one
	}
	return itoa(n) + " " + many
}
