package notify_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/monsoonwatch/monsoonwatch/internal/alert"
	"github.com/monsoonwatch/monsoonwatch/internal/notify"
	"github.com/monsoonwatch/monsoonwatch/internal/weather"
)

type stubChannel struct {
	name  string
	err   error
	calls int
	last  notify.Summary
}

func (s *stubChannel) Type() string { return s.name }

func (s *stubChannel) Send(_ context.Context, sum notify.Summary) error {
	s.calls++
	s.last = sum
	return s.err
}

func summary() notify.Summary {
	return notify.Summary{
		GeneratedAt: time.Date(2026, time.July, 15, 14, 30, 0, 0, time.UTC),
		FloodRisk:   alert.FloodRiskMedium,
		Alerts: []alert.Alert{
			{Zone: "Dadar", RainfallMm: 8.2, Intensity: weather.IntensityHeavy},
			{Zone: "Bandra", RainfallMm: 3.1, Intensity: weather.IntensityMedium},
		},
	}
}

func TestDispatcher_Dispatch(t *testing.T) {
	tg := &stubChannel{name: "telegram"}
	em := &stubChannel{name: "email"}
	d := notify.NewDispatcher(zerolog.Nop(), tg, em)

	delivered := d.Dispatch(context.Background(), summary())

	assert.Equal(t, 2, delivered)
	assert.Equal(t, 1, tg.calls)
	assert.Equal(t, 1, em.calls)
	assert.Len(t, tg.last.Alerts, 2)
}

func TestDispatcher_Dispatch_FailureIsolated(t *testing.T) {
	tg := &stubChannel{name: "telegram", err: errors.New("api down")}
	em := &stubChannel{name: "email"}
	d := notify.NewDispatcher(zerolog.Nop(), tg, em)

	delivered := d.Dispatch(context.Background(), summary())

	assert.Equal(t, 1, delivered, "email still delivered when telegram fails")
	assert.Equal(t, 1, em.calls)
}

func TestDispatcher_SkipsNilChannels(t *testing.T) {
	em := &stubChannel{name: "email"}
	d := notify.NewDispatcher(zerolog.Nop(), nil, em)

	assert.Equal(t, []string{"email"}, d.ChannelTypes())
	assert.Equal(t, 1, d.Dispatch(context.Background(), summary()))
}

func TestSummary_PlainText(t *testing.T) {
	text := summary().PlainText()

	assert.Contains(t, text, "2 zone(s) above alert threshold")
	assert.Contains(t, text, "Flood risk: MEDIUM")
	assert.Contains(t, text, "Dadar: 8.2 mm/hr (Heavy)")
	assert.Contains(t, text, "Bandra: 3.1 mm/hr (Medium)")
	assert.Contains(t, text, "2026-07-15T14:30:00Z")
	assert.NotContains(t, text, "[TEST]")

	test := summary()
	test.Test = true
	assert.Contains(t, test.PlainText(), "[TEST]")
}
