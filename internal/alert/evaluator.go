package alert

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/monsoonwatch/monsoonwatch/internal/weather"
)

const (
	// ThresholdMm is the per-zone rainfall rate at which an alert is raised.
	ThresholdMm = 1.0

	// Flood risk classification over the triggering zones of one cycle.
	floodHeavyZoneMm   = 7.0
	floodHighZoneCount = 3
	floodMediumSumMm   = 20.0
	floodMediumZones   = 5
)

// Evaluator turns reconciled readings into alerts. Evaluation is
// level-triggered: a zone above the threshold raises an alert every cycle it
// stays above, not only on the crossing.
type Evaluator struct {
	now func() time.Time
}

// NewEvaluator creates an Evaluator using the wall clock.
func NewEvaluator() *Evaluator {
	return &Evaluator{now: time.Now}
}

// NewEvaluatorWithClock creates an Evaluator with an injected clock.
func NewEvaluatorWithClock(now func() time.Time) *Evaluator {
	return &Evaluator{now: now}
}

// Evaluate checks one reconciled reading against the threshold. It returns
// nil when the zone does not trigger.
func (e *Evaluator) Evaluate(r weather.ReconciledReading) *Alert {
	if r.RainfallMm < ThresholdMm {
		return nil
	}

	return &Alert{
		ID:         uuid.New().String(),
		Zone:       r.Zone.Name,
		RainfallMm: r.RainfallMm,
		Intensity:  r.Intensity,
		Message:    fmt.Sprintf("Rain alert for %s: %.1f mm/hr (%s)", r.Zone.Name, r.RainfallMm, r.Intensity),
		CreatedAt:  e.now(),
	}
}

// EvaluateCycle evaluates a full cycle of readings and classifies the flood
// risk over the zones that triggered.
func (e *Evaluator) EvaluateCycle(readings []weather.ReconciledReading) CycleResult {
	var alerts []Alert
	for _, r := range readings {
		if a := e.Evaluate(r); a != nil {
			alerts = append(alerts, *a)
		}
	}

	return CycleResult{
		Alerts:    alerts,
		FloodRisk: ClassifyFloodRisk(alerts),
	}
}

// ClassifyFloodRisk classifies the aggregate flood risk over the alerts of
// one cycle. With no alerts there is nothing to classify.
func ClassifyFloodRisk(alerts []Alert) FloodRisk {
	if len(alerts) == 0 {
		return FloodRiskNone
	}

	heavyZones := 0
	sum := 0.0
	for _, a := range alerts {
		sum += a.RainfallMm
		if a.RainfallMm >= floodHeavyZoneMm {
			heavyZones++
		}
	}

	switch {
	case heavyZones >= floodHighZoneCount:
		return FloodRiskHigh
	case sum > floodMediumSumMm || len(alerts) >= floodMediumZones:
		return FloodRiskMedium
	default:
		return FloodRiskLow
	}
}
