// Package alert evaluates reconciled rainfall readings against the alert
// threshold and classifies the aggregate flood risk for a cycle.
package alert

import (
	"time"

	"github.com/monsoonwatch/monsoonwatch/internal/weather"
)

// FloodRisk classifies the city-wide flood risk for one update cycle.
type FloodRisk string

const (
	FloodRiskNone   FloodRisk = "NONE"
	FloodRiskLow    FloodRisk = "LOW"
	FloodRiskMedium FloodRisk = "MEDIUM"
	FloodRiskHigh   FloodRisk = "HIGH"
)

// Alert is a single per-zone rainfall alert.
type Alert struct {
	ID         string            `json:"id"`
	Zone       string            `json:"zone"`
	RainfallMm float64           `json:"rainfall_mm"`
	Intensity  weather.Intensity `json:"intensity"`
	Message    string            `json:"message"`
	CreatedAt  time.Time         `json:"created_at"`
}

// CycleResult holds the alerts raised during one update cycle together with
// the flood risk classified over them.
type CycleResult struct {
	Alerts    []Alert   `json:"alerts"`
	FloodRisk FloodRisk `json:"flood_risk"`
}
