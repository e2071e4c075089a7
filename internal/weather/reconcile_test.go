package weather_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/monsoonwatch/monsoonwatch/internal/weather"
	"github.com/monsoonwatch/monsoonwatch/internal/zone"
)

var testZone = zone.Zone{Name: "Dadar", Lat: 19.0178, Lon: 72.8478}

func reading(src weather.Source, mm float64) weather.SourceReading {
	return weather.SourceReading{
		Zone:          testZone,
		Source:        src,
		RainfallMm:    mm,
		TemperatureC:  28.0,
		HumidityPct:   80.0,
		PressureHpa:   1005.0,
		WindSpeedMs:   4.0,
		CloudCoverPct: 75.0,
		FetchedAt:     time.Now(),
	}
}

func TestReconcile_NoSources(t *testing.T) {
	r := weather.Reconcile(testZone, nil, time.Now())

	assert.Equal(t, 0.0, r.RainfallMm)
	assert.Equal(t, weather.IntensityNoData, r.Intensity)
	assert.Equal(t, weather.ConfidenceLow, r.Confidence)
	assert.True(t, r.Stale)
}

func TestReconcile_MajorityClearOverridesWetMinority(t *testing.T) {
	readings := []weather.SourceReading{
		reading(weather.SourceOpenMeteo, 0),
		reading(weather.SourceOpenWeather, 0),
		reading(weather.SourceWeatherAPI, 5.0),
	}

	r := weather.Reconcile(testZone, readings, time.Now())

	assert.Equal(t, 0.0, r.RainfallMm)
	assert.Equal(t, weather.IntensityNoRain, r.Intensity)
	assert.Equal(t, weather.ConfidenceHigh, r.Confidence)
	assert.False(t, r.Stale)
}

func TestReconcile_MeanOfWetSourcesWhenNoMajority(t *testing.T) {
	// 1 dry vs 1 wet is not a strict dry majority.
	readings := []weather.SourceReading{
		reading(weather.SourceOpenMeteo, 0),
		reading(weather.SourceWeatherAPI, 6.0),
	}

	r := weather.Reconcile(testZone, readings, time.Now())

	assert.Equal(t, 6.0, r.RainfallMm)
	assert.Equal(t, weather.IntensityMedium, r.Intensity)
}

func TestReconcile_DadarScenario(t *testing.T) {
	// OpenMeteo 8.5, OpenWeather absent, WeatherAPI 7.9.
	readings := []weather.SourceReading{
		reading(weather.SourceOpenMeteo, 8.5),
		reading(weather.SourceWeatherAPI, 7.9),
	}

	r := weather.Reconcile(testZone, readings, time.Now())

	assert.Equal(t, 8.2, r.RainfallMm)
	assert.Equal(t, weather.IntensityHeavy, r.Intensity)
	assert.Equal(t, weather.ConfidenceHigh, r.Confidence)
	assert.ElementsMatch(t,
		[]weather.Source{weather.SourceOpenMeteo, weather.SourceWeatherAPI},
		r.SourcesUsed)
}

func TestReconcile_NegativeRainfallClamped(t *testing.T) {
	readings := []weather.SourceReading{
		reading(weather.SourceOpenMeteo, -3.5),
	}

	r := weather.Reconcile(testZone, readings, time.Now())
	assert.GreaterOrEqual(t, r.RainfallMm, 0.0)
	assert.Equal(t, 0.0, r.RainfallMm)
}

func TestReconcile_RoundsToTwoDecimals(t *testing.T) {
	readings := []weather.SourceReading{
		reading(weather.SourceOpenMeteo, 1.111),
		reading(weather.SourceOpenWeather, 2.222),
	}

	r := weather.Reconcile(testZone, readings, time.Now())
	assert.Equal(t, 1.67, r.RainfallMm)
}

func TestReconcile_MeansAcrossAllSources(t *testing.T) {
	a := reading(weather.SourceOpenMeteo, 2.0)
	a.TemperatureC = 26.0
	a.HumidityPct = 70.0
	b := reading(weather.SourceOpenWeather, 4.0)
	b.TemperatureC = 30.0
	b.HumidityPct = 90.0

	r := weather.Reconcile(testZone, []weather.SourceReading{a, b}, time.Now())

	assert.Equal(t, 28.0, r.TemperatureC)
	assert.Equal(t, 80.0, r.HumidityPct)
	assert.Equal(t, 3.0, r.RainfallMm)
}

func TestReconcile_ConditionFromMostTrustedSource(t *testing.T) {
	a := reading(weather.SourceWeatherAPI, 1.0)
	a.ConditionText = "Patchy rain"
	b := reading(weather.SourceOpenMeteo, 1.0)
	b.ConditionText = "Rain"

	r := weather.Reconcile(testZone, []weather.SourceReading{a, b}, time.Now())
	assert.Equal(t, "Rain", r.ConditionText)

	// Trusted source without a condition falls through to the next.
	b.ConditionText = ""
	r = weather.Reconcile(testZone, []weather.SourceReading{a, b}, time.Now())
	assert.Equal(t, "Patchy rain", r.ConditionText)
}

func TestReconcile_Deterministic(t *testing.T) {
	readings := []weather.SourceReading{
		reading(weather.SourceWeatherAPI, 3.33),
		reading(weather.SourceOpenMeteo, 1.27),
		reading(weather.SourceOpenWeather, 0),
	}
	now := time.Date(2026, 7, 15, 12, 0, 0, 0, time.UTC)

	first := weather.Reconcile(testZone, readings, now)
	for i := 0; i < 10; i++ {
		again := weather.Reconcile(testZone, readings, now)
		require.Equal(t, first, again)
	}
}

func TestReconcile_SingleSourceConfidenceMedium(t *testing.T) {
	r := weather.Reconcile(testZone, []weather.SourceReading{
		reading(weather.SourceMeteomatics, 0.5),
	}, time.Now())

	assert.Equal(t, weather.ConfidenceMedium, r.Confidence)
	assert.Equal(t, 0.5, r.RainfallMm)
	assert.Equal(t, weather.IntensityLight, r.Intensity)
}

func TestIntensityFor_Bands(t *testing.T) {
	cases := []struct {
		mm   float64
		want weather.Intensity
	}{
		{0, weather.IntensityNoRain},
		{0.009, weather.IntensityNoRain},
		{0.01, weather.IntensityLight},
		{2.49, weather.IntensityLight},
		{2.5, weather.IntensityMedium},
		{7.49, weather.IntensityMedium},
		{7.5, weather.IntensityHeavy},
		{34.99, weather.IntensityHeavy},
		{35, weather.IntensityVeryHeavy},
		{120, weather.IntensityVeryHeavy},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, weather.IntensityFor(tc.mm), "mm=%v", tc.mm)
	}
}

func TestIntensityFor_Monotonic(t *testing.T) {
	rank := map[weather.Intensity]int{
		weather.IntensityNoRain:    0,
		weather.IntensityLight:     1,
		weather.IntensityMedium:    2,
		weather.IntensityHeavy:     3,
		weather.IntensityVeryHeavy: 4,
	}

	prev := -1
	for mm := 0.0; mm < 50; mm += 0.005 {
		cur := rank[weather.IntensityFor(mm)]
		require.GreaterOrEqual(t, cur, prev, "intensity decreased at %v mm", mm)
		prev = cur
	}
}
