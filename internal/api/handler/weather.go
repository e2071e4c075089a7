// Package handler provides HTTP handlers for the MonsoonWatch API.
package handler

import (
	"net/http"
	"strconv"

	"github.com/monsoonwatch/monsoonwatch/internal/api/models"
	"github.com/monsoonwatch/monsoonwatch/internal/api/response"
	"github.com/monsoonwatch/monsoonwatch/internal/monitor"
)

// DefaultAlertsLimit bounds GET /v1/alerts when no limit is given.
const DefaultAlertsLimit = 20

// WeatherHandler serves the snapshot and alert history endpoints.
type WeatherHandler struct {
	monitor *monitor.Monitor
}

// NewWeatherHandler creates a new WeatherHandler.
func NewWeatherHandler(m *monitor.Monitor) *WeatherHandler {
	return &WeatherHandler{monitor: m}
}

// GetWeather handles GET /v1/weather.
func (h *WeatherHandler) GetWeather(w http.ResponseWriter, r *http.Request) {
	snapshot, lastUpdate := h.monitor.Snapshot()

	zones := make(map[string]models.ZoneWeather, len(snapshot))
	for name, reading := range snapshot {
		zones[name] = models.NewZoneWeather(reading)
	}

	resp := models.WeatherResponse{
		Zones:     zones,
		FloodRisk: string(h.monitor.FloodRisk()),
	}
	if !lastUpdate.IsZero() {
		resp.LastUpdateAt = &lastUpdate
	}

	response.JSON(w, r, http.StatusOK, resp)
}

// ListAlerts handles GET /v1/alerts?limit=N.
func (h *WeatherHandler) ListAlerts(w http.ResponseWriter, r *http.Request) {
	limit := DefaultAlertsLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			response.BadRequest(w, r, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	history := h.monitor.History()
	alerts := history.Recent(limit)

	views := make([]models.AlertView, 0, len(alerts))
	for _, a := range alerts {
		views = append(views, models.NewAlertView(a))
	}

	response.JSON(w, r, http.StatusOK, models.AlertsResponse{
		Alerts: views,
		Total:  history.Len(),
	})
}
