// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"

	service "github.com/rankdesk/rankdesk/internal/app"
)

// StatsProvider exposes a monitoring snapshot of the editing service.
type StatsProvider interface {
	GetStats() service.Stats
}

// StatsHandler serves the /stats endpoint.
type StatsHandler struct {
	provider StatsProvider
}

// NewStatsHandler creates a stats handler over the given provider.
func NewStatsHandler(provider StatsProvider) *StatsHandler {
	return &StatsHandler{provider: provider}
}

// HandleStats writes the current service snapshot as JSON.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, h.provider.GetStats())
}
