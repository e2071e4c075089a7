package handler

import (
	"net/http"

	"github.com/monsoonwatch/monsoonwatch/internal/api/models"
	"github.com/monsoonwatch/monsoonwatch/internal/api/response"
	"github.com/monsoonwatch/monsoonwatch/internal/monitor"
	"github.com/monsoonwatch/monsoonwatch/internal/provider/resilience"
	"github.com/monsoonwatch/monsoonwatch/internal/zone"
)

// StatusHandler serves GET /v1/status.
type StatusHandler struct {
	monitor  *monitor.Monitor
	registry *resilience.Registry
	channels map[string]bool
	version  string
}

// NewStatusHandler creates a new StatusHandler. The channels map records
// which notification channels are configured.
func NewStatusHandler(m *monitor.Monitor, registry *resilience.Registry, channels map[string]bool, version string) *StatusHandler {
	return &StatusHandler{
		monitor:  m,
		registry: registry,
		channels: channels,
		version:  version,
	}
}

// GetStatus handles GET /v1/status.
func (h *StatusHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	_, lastUpdate := h.monitor.Snapshot()

	resp := models.StatusResponse{
		State:        string(h.monitor.State()),
		InSeason:     h.monitor.InSeasonNow(),
		CycleRunning: h.monitor.CycleRunning(),
		ZoneCount:    zone.Count,
		Channels:     h.channels,
		Providers:    []models.ProviderStatus{},
		Version:      h.version,
	}
	if !lastUpdate.IsZero() {
		resp.LastUpdateAt = &lastUpdate
	}

	if h.registry != nil {
		for _, health := range h.registry.AllHealth() {
			resp.Providers = append(resp.Providers, models.ProviderStatus{
				Name:          health.Name,
				Healthy:       health.IsHealthy(),
				CircuitState:  health.CircuitState.String(),
				LastSuccessAt: health.LastSuccessAt,
				LastFailureAt: health.LastFailureAt,
				LastError:     health.LastError,
			})
		}
	}

	response.JSON(w, r, http.StatusOK, resp)
}
