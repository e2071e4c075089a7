// Package notify fans alert summaries out to the configured notification
// channels. Delivery is best-effort: a channel failure is logged and never
// affects other channels or the update cycle.
package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/monsoonwatch/monsoonwatch/internal/alert"
)

// Summary is one cycle's worth of alerting, handed to every channel.
type Summary struct {
	GeneratedAt time.Time
	FloodRisk   alert.FloodRisk
	Alerts      []alert.Alert

	// Test marks synthetic summaries sent through the test endpoints.
	Test bool
}

// PlainText renders the summary as a plain text message suitable for
// Telegram and log output.
func (s Summary) PlainText() string {
	var b strings.Builder

	if s.Test {
		b.WriteString("[TEST] ")
	}
	fmt.Fprintf(&b, "MonsoonWatch: %d zone(s) above alert threshold\n", len(s.Alerts))
	fmt.Fprintf(&b, "Flood risk: %s\n\n", s.FloodRisk)

	for _, a := range s.Alerts {
		fmt.Fprintf(&b, "%s: %.1f mm/hr (%s)\n", a.Zone, a.RainfallMm, a.Intensity)
	}

	fmt.Fprintf(&b, "\nGenerated at %s", s.GeneratedAt.Format(time.RFC3339))
	return b.String()
}

// Channel delivers a summary over one transport.
type Channel interface {
	// Type returns the channel identifier for logging ("telegram", "email").
	Type() string

	// Send delivers the summary. Implementations do not retry.
	Send(ctx context.Context, s Summary) error
}

// Dispatcher fans a summary out to all registered channels.
type Dispatcher struct {
	channels []Channel
	logger   zerolog.Logger
}

// NewDispatcher creates a Dispatcher over the given channels. Channels that
// are nil (not configured) are skipped.
func NewDispatcher(logger zerolog.Logger, channels ...Channel) *Dispatcher {
	var active []Channel
	for _, ch := range channels {
		if ch != nil {
			active = append(active, ch)
		}
	}

	return &Dispatcher{
		channels: active,
		logger:   logger.With().Str("component", "notify").Logger(),
	}
}

// ChannelTypes returns the identifiers of the configured channels.
func (d *Dispatcher) ChannelTypes() []string {
	types := make([]string, 0, len(d.channels))
	for _, ch := range d.channels {
		types = append(types, ch.Type())
	}
	return types
}

// Dispatch sends the summary to every channel, logging failures. It returns
// the number of channels that accepted the summary.
func (d *Dispatcher) Dispatch(ctx context.Context, s Summary) int {
	delivered := 0
	for _, ch := range d.channels {
		start := time.Now()
		if err := ch.Send(ctx, s); err != nil {
			d.logger.Error().
				Err(err).
				Str("channel", ch.Type()).
				Dur("duration", time.Since(start)).
				Msg("notification delivery failed")
			continue
		}

		d.logger.Info().
			Str("channel", ch.Type()).
			Int("alerts", len(s.Alerts)).
			Dur("duration", time.Since(start)).
			Msg("notification delivered")
		delivered++
	}
	return delivered
}
