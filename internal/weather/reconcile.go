package weather

import (
	"math"
	"sort"
	"time"

	"github.com/monsoonwatch/monsoonwatch/internal/zone"
)

// wetThresholdMm separates "effectively dry" from "raining" when sources
// disagree. Values at or below it count as dry in the majority vote.
const wetThresholdMm = 0.01

// Reconcile fuses the per-source readings obtained for one zone in one cycle
// into a single authoritative ReconciledReading.
//
// Rainfall policy (majority-clear vote; the weighted-average variant was
// deliberately not implemented, see DESIGN.md): if a strict majority of
// sources report at most 0.01 mm the zone is declared clear and rainfall is
// forced to 0. Otherwise rainfall is the arithmetic mean of only the sources
// reporting more than 0.01 mm. The result is rounded to 2 decimals.
//
// All other numeric fields are straight arithmetic means across the
// successful sources. The condition text comes from the most-trusted source
// present. The function is deterministic: identical inputs produce
// bit-identical output, with now used verbatim as ComputedAt.
func Reconcile(z zone.Zone, readings []SourceReading, now time.Time) ReconciledReading {
	if len(readings) == 0 {
		return ReconciledReading{
			Zone:       z,
			RainfallMm: 0,
			Intensity:  IntensityNoData,
			Confidence: ConfidenceLow,
			Stale:      true,
			ComputedAt: now,
		}
	}

	var (
		dryCount int
		wetSum   float64
		wetCount int

		tempSum, humSum, pressSum, windSum, cloudSum float64
	)

	sources := make([]Source, 0, len(readings))
	for _, r := range readings {
		mm := r.RainfallMm
		if mm < 0 {
			mm = 0
		}

		if mm <= wetThresholdMm {
			dryCount++
		} else {
			wetSum += mm
			wetCount++
		}

		tempSum += r.TemperatureC
		humSum += r.HumidityPct
		pressSum += r.PressureHpa
		windSum += r.WindSpeedMs
		cloudSum += r.CloudCoverPct
		sources = append(sources, r.Source)
	}

	n := float64(len(readings))

	var rainfall float64
	if dryCount*2 > len(readings) {
		// Strict majority clear: the wet minority is treated as noise.
		rainfall = 0
	} else if wetCount > 0 {
		rainfall = wetSum / float64(wetCount)
	}
	rainfall = round2(rainfall)

	sort.Slice(sources, func(i, j int) bool { return sources[i] < sources[j] })

	return ReconciledReading{
		Zone:          z,
		RainfallMm:    rainfall,
		Intensity:     IntensityFor(rainfall),
		TemperatureC:  tempSum / n,
		HumidityPct:   humSum / n,
		PressureHpa:   pressSum / n,
		WindSpeedMs:   windSum / n,
		CloudCoverPct: cloudSum / n,
		ConditionText: trustedCondition(readings),
		SourcesUsed:   sources,
		Confidence:    confidenceFor(len(readings)),
		ComputedAt:    now,
	}
}

// trustedCondition returns the condition text of the highest-ranked source
// that supplied one.
func trustedCondition(readings []SourceReading) string {
	for _, src := range sourceTrustOrder {
		for _, r := range readings {
			if r.Source == src && r.ConditionText != "" {
				return r.ConditionText
			}
		}
	}
	return ""
}

func confidenceFor(sourceCount int) Confidence {
	switch {
	case sourceCount >= 2:
		return ConfidenceHigh
	case sourceCount == 1:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
