package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"automlcli/internal/infrastructure"
	"automlcli/pkg/contracts"
)

// RuntimeStatsProvider reports a snapshot of process runtime health.
type RuntimeStatsProvider interface {
	GetCurrentStats(ctx context.Context) *infrastructure.SystemStats
}

// HealthHandler handles health-related HTTP requests.
type HealthHandler struct {
	version string
	started time.Time
	stats   RuntimeStatsProvider
	logger  *slog.Logger
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(version string, logger *slog.Logger) *HealthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthHandler{
		version: version,
		started: time.Now(),
		logger:  logger.With(slog.String("handler", "health")),
	}
}

// SetRuntimeStats attaches a runtime stats source; the health response
// includes its snapshot when present.
func (h *HealthHandler) SetRuntimeStats(stats RuntimeStatsProvider) {
	h.stats = stats
}

// HealthCheck handles GET /api/health
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	resp := map[string]interface{}{
		"status":  "ok",
		"version": h.version,
		"uptime":  time.Since(h.started).String(),
	}
	if h.stats != nil {
		resp["runtime"] = h.stats.GetCurrentStats(r.Context()).FormatStats()
	}
	render.JSON(w, r, resp)
}

// LivenessCheck handles GET /api/health/live
func (h *HealthHandler) LivenessCheck(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]interface{}{"status": "alive"})
}

// ReadinessCheck handles GET /api/health/ready. The service holds all
// wizard state in memory, so readiness follows liveness.
func (h *HealthHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]interface{}{"status": "ready"})
}

// Version handles GET /api/version
func (h *HealthHandler) Version(w http.ResponseWriter, r *http.Request) {
	info := contracts.GetVersionInfo()
	render.JSON(w, r, map[string]interface{}{
		"version": h.version,
		"uptime":  time.Since(h.started).String(),
		"build":   info,
	})
}
