package email_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/monsoonwatch/monsoonwatch/internal/alert"
	"github.com/monsoonwatch/monsoonwatch/internal/notify"
	"github.com/monsoonwatch/monsoonwatch/internal/notify/email"
	"github.com/monsoonwatch/monsoonwatch/internal/weather"
)

func TestRenderHTML(t *testing.T) {
	s := notify.Summary{
		GeneratedAt: time.Date(2026, time.July, 15, 14, 30, 0, 0, time.UTC),
		FloodRisk:   alert.FloodRiskHigh,
		Alerts: []alert.Alert{
			{Zone: "Dadar", RainfallMm: 8.2, Intensity: weather.IntensityHeavy},
			{Zone: "Andheri", RainfallMm: 38.0, Intensity: weather.IntensityVeryHeavy},
			{Zone: "Colaba", RainfallMm: 1.5, Intensity: weather.IntensityLight},
		},
	}

	html, err := email.RenderHTML(s)
	require.NoError(t, err)

	assert.Contains(t, html, "Flood risk: HIGH")
	assert.Contains(t, html, "Dadar")
	assert.Contains(t, html, "8.2")
	assert.Contains(t, html, "Andheri")
	assert.Contains(t, html, "38.0")
	assert.Contains(t, html, "2026-07-15T14:30:00Z")
	assert.NotContains(t, html, "[TEST]")

	// Heavy and very heavy get distinct card colors.
	assert.Contains(t, html, "#d32f2f")
	assert.Contains(t, html, "#7b1fa2")
}

func TestRenderHTML_TestFlag(t *testing.T) {
	html, err := email.RenderHTML(notify.Summary{
		GeneratedAt: time.Now(),
		FloodRisk:   alert.FloodRiskLow,
		Test:        true,
	})
	require.NoError(t, err)
	assert.Contains(t, html, "[TEST]")
}

func TestRenderHTML_EscapesZoneName(t *testing.T) {
	html, err := email.RenderHTML(notify.Summary{
		GeneratedAt: time.Now(),
		FloodRisk:   alert.FloodRiskLow,
		Alerts: []alert.Alert{
			{Zone: "<script>alert(1)</script>", RainfallMm: 2.0, Intensity: weather.IntensityLight},
		},
	})
	require.NoError(t, err)
	assert.NotContains(t, html, "<script>")
}
