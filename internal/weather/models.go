// Package weather defines the common reading model shared by all provider
// clients and the reconciliation logic that fuses per-provider readings into
// one authoritative value per zone.
package weather

import (
	"context"
	"errors"
	"time"

	"github.com/monsoonwatch/monsoonwatch/internal/zone"
)

// Weather errors.
var (
	ErrProviderUnavailable = errors.New("weather provider unavailable")
	ErrMalformedResponse   = errors.New("malformed provider response")
)

// Source identifies a weather data provider.
type Source string

const (
	SourceOpenMeteo   Source = "openmeteo"
	SourceOpenWeather Source = "openweathermap"
	SourceWeatherAPI  Source = "weatherapi"
	SourceMeteomatics Source = "meteomatics"
)

// sourceTrustOrder ranks providers for single-value fields such as the
// textual condition description. Earlier entries win.
var sourceTrustOrder = []Source{
	SourceOpenMeteo,
	SourceOpenWeather,
	SourceWeatherAPI,
	SourceMeteomatics,
}

// Provider is the capability interface implemented by each provider client.
// Implementations return an error on any transport or parse failure; the
// pipeline converts errors into absence of data and never propagates them.
type Provider interface {
	// FetchCurrent fetches the current conditions for a zone.
	FetchCurrent(ctx context.Context, z zone.Zone) (*SourceReading, error)

	// Name returns the provider name for logging.
	Name() Source
}

// SourceReading is one provider's view of a zone's current conditions,
// normalized into the common shape. Readings are ephemeral: they are
// discarded after reconciliation.
type SourceReading struct {
	Zone   zone.Zone
	Source Source

	// RainfallMm is rainfall in mm over the last hour. Never negative:
	// clients clamp negative provider values to 0.
	RainfallMm float64

	TemperatureC  float64
	HumidityPct   float64
	PressureHpa   float64
	WindSpeedMs   float64
	CloudCoverPct float64
	ConditionText string

	FetchedAt time.Time
}

// Intensity buckets the fused rainfall value.
type Intensity string

const (
	IntensityNoRain    Intensity = "No Rain"
	IntensityLight     Intensity = "Light"
	IntensityMedium    Intensity = "Medium"
	IntensityHeavy     Intensity = "Heavy"
	IntensityVeryHeavy Intensity = "Very Heavy"

	// IntensityNoData marks a zone for which no provider returned data
	// in the cycle.
	IntensityNoData Intensity = "No Data"
)

// Intensity band boundaries in mm/hr, aligned with IMD rainfall categories.
const (
	bandLight     = 0.01
	bandMedium    = 2.5
	bandHeavy     = 7.5
	bandVeryHeavy = 35.0
)

// IntensityFor buckets a rainfall value. Monotonic non-decreasing in mm.
func IntensityFor(mm float64) Intensity {
	switch {
	case mm < bandLight:
		return IntensityNoRain
	case mm < bandMedium:
		return IntensityLight
	case mm < bandHeavy:
		return IntensityMedium
	case mm < bandVeryHeavy:
		return IntensityHeavy
	default:
		return IntensityVeryHeavy
	}
}

// Confidence indicates how many independent sources backed a reading.
type Confidence string

const (
	ConfidenceLow    Confidence = "LOW"
	ConfidenceMedium Confidence = "MEDIUM"
	ConfidenceHigh   Confidence = "HIGH"
)

// ReconciledReading is the single authoritative reading for a zone in one
// update cycle. The full map of zone name to ReconciledReading forms the
// current weather snapshot, replaced wholesale every cycle.
type ReconciledReading struct {
	Zone          zone.Zone
	RainfallMm    float64
	Intensity     Intensity
	TemperatureC  float64
	HumidityPct   float64
	PressureHpa   float64
	WindSpeedMs   float64
	CloudCoverPct float64
	ConditionText string
	SourcesUsed   []Source
	Confidence    Confidence

	// Stale is set when no source produced data for the zone this cycle.
	Stale bool

	ComputedAt time.Time
}
