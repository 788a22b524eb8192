package handlers

import (
	"net/http"
	"time"

	"collab-match-backend/internal/repository"
)

// StatsSource reports record counts
type StatsSource interface {
	Stats() repository.Stats
}

// SystemHandler serves health and stats endpoints
type SystemHandler struct {
	stats   StatsSource
	started time.Time
}

// NewSystemHandler creates a new system handler
func NewSystemHandler(stats StatsSource) *SystemHandler {
	return &SystemHandler{stats: stats, started: time.Now()}
}

// Health handles GET /health
func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"uptime": time.Since(h.started).Round(time.Second).String(),
	})
}

// Stats handles GET /api/v1/stats
func (h *SystemHandler) Stats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.stats.Stats())
}
