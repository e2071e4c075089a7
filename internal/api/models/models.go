package models

import (
	"time"

	"github.com/monsoonwatch/monsoonwatch/internal/alert"
	"github.com/monsoonwatch/monsoonwatch/internal/weather"
)

// ZoneWeather is the per-zone entry of the weather snapshot response.
type ZoneWeather struct {
	Zone          string   `json:"zone"`
	Lat           float64  `json:"lat"`
	Lon           float64  `json:"lon"`
	RainfallMm    float64  `json:"rainfall_mm"`
	Intensity     string   `json:"intensity"`
	TemperatureC  float64  `json:"temperature_c"`
	HumidityPct   float64  `json:"humidity_pct"`
	PressureHpa   float64  `json:"pressure_hpa"`
	WindSpeedMs   float64  `json:"wind_speed_ms"`
	CloudCoverPct float64  `json:"cloud_cover_pct"`
	Condition     string   `json:"condition"`
	Sources       []string `json:"sources"`
	Confidence    string   `json:"confidence"`
	Stale         bool     `json:"stale"`
}

// NewZoneWeather converts a reconciled reading to its API shape.
func NewZoneWeather(r weather.ReconciledReading) ZoneWeather {
	sources := make([]string, 0, len(r.SourcesUsed))
	for _, s := range r.SourcesUsed {
		sources = append(sources, string(s))
	}

	return ZoneWeather{
		Zone:          r.Zone.Name,
		Lat:           r.Zone.Lat,
		Lon:           r.Zone.Lon,
		RainfallMm:    r.RainfallMm,
		Intensity:     string(r.Intensity),
		TemperatureC:  r.TemperatureC,
		HumidityPct:   r.HumidityPct,
		PressureHpa:   r.PressureHpa,
		WindSpeedMs:   r.WindSpeedMs,
		CloudCoverPct: r.CloudCoverPct,
		Condition:     r.ConditionText,
		Sources:       sources,
		Confidence:    string(r.Confidence),
		Stale:         r.Stale,
	}
}

// WeatherResponse is the response body for GET /v1/weather.
type WeatherResponse struct {
	Zones        map[string]ZoneWeather `json:"zones"`
	FloodRisk    string                 `json:"flood_risk"`
	LastUpdateAt *time.Time             `json:"last_update_at,omitempty"`
}

// AlertView is the API shape of one alert.
type AlertView struct {
	ID         string    `json:"id"`
	Zone       string    `json:"zone"`
	RainfallMm float64   `json:"rainfall_mm"`
	Intensity  string    `json:"intensity"`
	Message    string    `json:"message"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewAlertView converts an alert to its API shape.
func NewAlertView(a alert.Alert) AlertView {
	return AlertView{
		ID:         a.ID,
		Zone:       a.Zone,
		RainfallMm: a.RainfallMm,
		Intensity:  string(a.Intensity),
		Message:    a.Message,
		CreatedAt:  a.CreatedAt,
	}
}

// AlertsResponse is the response body for GET /v1/alerts.
type AlertsResponse struct {
	Alerts []AlertView `json:"alerts"`
	Total  int         `json:"total"`
}

// ProviderStatus is the health of one weather provider.
type ProviderStatus struct {
	Name          string     `json:"name"`
	Healthy       bool       `json:"healthy"`
	CircuitState  string     `json:"circuit_state"`
	LastSuccessAt *time.Time `json:"last_success_at,omitempty"`
	LastFailureAt *time.Time `json:"last_failure_at,omitempty"`
	LastError     string     `json:"last_error,omitempty"`
}

// StatusResponse is the response body for GET /v1/status.
type StatusResponse struct {
	State        string           `json:"state"`
	InSeason     bool             `json:"in_season"`
	CycleRunning bool             `json:"cycle_running"`
	ZoneCount    int              `json:"zone_count"`
	LastUpdateAt *time.Time       `json:"last_update_at,omitempty"`
	Channels     map[string]bool  `json:"channels"`
	Providers    []ProviderStatus `json:"providers"`
	Version      string           `json:"version"`
}

// StateResponse is the response body for the start/stop/cycle endpoints.
type StateResponse struct {
	State   string `json:"state"`
	Message string `json:"message,omitempty"`
}

// TestResult is the response body for the test notification endpoints.
type TestResult struct {
	Success bool   `json:"success"`
	Channel string `json:"channel"`
	Error   string `json:"error,omitempty"`
}

// Health is the response body for the ops endpoints.
type Health struct {
	Status  string                 `json:"status"`
	Time    time.Time              `json:"time"`
	Details map[string]interface{} `json:"details,omitempty"`
}
