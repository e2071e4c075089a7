package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/monsoonwatch/monsoonwatch/internal/api/models"
	"github.com/monsoonwatch/monsoonwatch/internal/api/response"
	"github.com/monsoonwatch/monsoonwatch/internal/monitor"
)

// ControlHandler serves the monitoring state transition endpoints.
type ControlHandler struct {
	monitor *monitor.Monitor
	logger  zerolog.Logger
}

// NewControlHandler creates a new ControlHandler.
func NewControlHandler(m *monitor.Monitor, logger zerolog.Logger) *ControlHandler {
	return &ControlHandler{monitor: m, logger: logger}
}

// Start handles POST /v1/start.
func (h *ControlHandler) Start(w http.ResponseWriter, r *http.Request) {
	if err := h.monitor.Start(r.Context()); err != nil {
		if errors.Is(err, monitor.ErrOutOfSeason) {
			response.Conflict(w, r, "monitoring can only start during the monsoon season (July through January)")
			return
		}
		response.InternalError(w, r, "failed to start monitoring")
		return
	}

	response.JSON(w, r, http.StatusOK, models.StateResponse{
		State:   string(h.monitor.State()),
		Message: "monitoring active",
	})
}

// Stop handles POST /v1/stop.
func (h *ControlHandler) Stop(w http.ResponseWriter, r *http.Request) {
	h.monitor.Stop()

	response.JSON(w, r, http.StatusOK, models.StateResponse{
		State:   string(h.monitor.State()),
		Message: "monitoring stopped",
	})
}

// TriggerCycle handles POST /v1/cycle. The cycle runs in the background; an
// overlapping trigger gets a 409.
func (h *ControlHandler) TriggerCycle(w http.ResponseWriter, r *http.Request) {
	if h.monitor.CycleRunning() {
		response.Conflict(w, r, "an update cycle is already in progress")
		return
	}

	go func() {
		if err := h.monitor.RunCycle(context.Background()); err != nil {
			h.logger.Warn().Err(err).Msg("manual update cycle skipped")
		}
	}()

	response.Accepted(w, r, models.StateResponse{
		State:   string(h.monitor.State()),
		Message: "update cycle started",
	})
}
