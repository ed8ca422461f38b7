package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/hmpps/incentives-ui/internal/upstream"
)

// HealthChecker reports the health of upstream APIs.
type HealthChecker interface {
	Check(ctx context.Context) map[string]upstream.Status
}

// BuildInfo identifies the running build.
type BuildInfo struct {
	BuildNumber string `json:"buildNumber"`
	GitRef      string `json:"gitRef"`
}

// PlatformHandler serves the health, ping and info endpoints.
type PlatformHandler struct {
	health  HealthChecker
	build   BuildInfo
	started time.Time
	now     func() time.Time
}

// NewPlatformHandler creates a new PlatformHandler.
func NewPlatformHandler(health HealthChecker, build BuildInfo) *PlatformHandler {
	return &PlatformHandler{
		health:  health,
		build:   build,
		started: time.Now(),
		now:     time.Now,
	}
}

// RegisterRoutes registers the platform routes. They need no session.
//
// Routes registered:
// - GET /health -> Health
// - GET /ping   -> Ping
// - GET /info   -> Info
func (h *PlatformHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.Health)
	mux.HandleFunc("GET /ping", h.Ping)
	mux.HandleFunc("GET /info", h.Info)
}

type healthResponse struct {
	Status     string                     `json:"status"`
	Components map[string]upstream.Status `json:"components"`
	Uptime     float64                    `json:"uptime"`
	Build      BuildInfo                  `json:"build"`
}

// Health checks every upstream API. It responds 503 when any is down.
func (h *PlatformHandler) Health(w http.ResponseWriter, r *http.Request) {
	components := h.health.Check(r.Context())

	resp := healthResponse{
		Status:     "UP",
		Components: components,
		Uptime:     h.now().Sub(h.started).Seconds(),
		Build:      h.build,
	}
	status := http.StatusOK
	if !upstream.Healthy(components) {
		resp.Status = "DOWN"
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, resp)
}

// Ping reports that the service is running without checking upstream APIs.
func (h *PlatformHandler) Ping(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "UP"})
}

// Info reports the running build.
func (h *PlatformHandler) Info(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"build":  h.build,
		"uptime": h.now().Sub(h.started).Seconds(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
