// Package api serves the optional debug HTTP API of the overlay.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	service "github.com/okian/twinkle/internal/app"
	"github.com/okian/twinkle/internal/domain/scene"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to the overlay service.
type Dependencies interface {
	// Snapshot returns the scene currently playing.
	Snapshot() (scene.Scene, bool)

	// Settings and Reconfigure read and replace the overlay settings.
	Settings() service.Settings
	Reconfigure(ctx context.Context, settings service.Settings) error

	// Stats exposes counters of the live overlay.
	Stats() service.Stats
}

// Server wires HTTP routes for the debug API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	timelineHandler *TimelineHandler
	sampleHandler   *SampleHandler
	settingsHandler *SettingsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies) *Server {
	return &Server{
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(deps),
		timelineHandler: NewTimelineHandler(deps),
		sampleHandler:   NewSampleHandler(deps),
		settingsHandler: NewSettingsHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/timeline", MetricsMiddleware(s.timelineHandler.HandleTimeline, "timeline"))
	mux.HandleFunc("/sample", MetricsMiddleware(s.sampleHandler.HandleSample, "sample"))
	mux.HandleFunc("/settings", MetricsMiddleware(s.settingsHandler.HandleSettings, "settings"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
