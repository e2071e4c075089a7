// Package monitor owns the monitoring state machine and the update cycle
// pipeline: fetch every provider for every zone, reconcile, evaluate alerts,
// maintain the snapshot and history, and dispatch notifications.
package monitor

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/monsoonwatch/monsoonwatch/internal/alert"
	"github.com/monsoonwatch/monsoonwatch/internal/notify"
	"github.com/monsoonwatch/monsoonwatch/internal/provider/resilience"
	"github.com/monsoonwatch/monsoonwatch/internal/weather"
	"github.com/monsoonwatch/monsoonwatch/internal/zone"
)

// Monitor errors.
var (
	ErrOutOfSeason     = errors.New("monitoring out of season")
	ErrCycleInProgress = errors.New("update cycle already in progress")
)

// State is the monitoring state.
type State string

const (
	StateStopped State = "STOPPED"
	StateActive  State = "ACTIVE"
)

const (
	// DefaultInterval is the pause between automatic update cycles.
	DefaultInterval = 30 * time.Minute

	// DefaultZoneDelay spaces out the per-zone provider bursts so the
	// cycle does not hammer four APIs for 18 zones at once.
	DefaultZoneDelay = 200 * time.Millisecond
)

// Config holds Monitor tuning knobs.
type Config struct {
	Interval     time.Duration
	ZoneDelay    time.Duration
	HistoryLimit int
}

// Metrics receives pipeline measurements. Implemented by the API metrics
// package; optional.
type Metrics interface {
	RecordFetch(provider, zone string, duration time.Duration, err error)
	RecordCycle(duration time.Duration, alerts int, floodRisk string)
}

// MonitorConfig holds the dependencies needed to create a Monitor.
type MonitorConfig struct {
	Config     Config
	Providers  []weather.Provider
	Dispatcher *notify.Dispatcher
	Registry   *resilience.Registry
	Metrics    Metrics
	Logger     zerolog.Logger

	// Now overrides the clock (optional, for tests).
	Now func() time.Time
}

// Monitor coordinates the update cycle and owns the snapshot and history.
type Monitor struct {
	cfg        Config
	providers  []weather.Provider
	dispatcher *notify.Dispatcher
	registry   *resilience.Registry
	metrics    Metrics
	evaluator  *alert.Evaluator
	history    *alert.History
	logger     zerolog.Logger
	now        func() time.Time

	active  atomic.Bool
	cycling atomic.Bool

	mu            sync.RWMutex
	snapshot      map[string]weather.ReconciledReading
	lastFloodRisk alert.FloodRisk
	lastUpdateAt  time.Time
}

// New creates a Monitor.
func New(cfg MonitorConfig) *Monitor {
	config := cfg.Config
	if config.Interval <= 0 {
		config.Interval = DefaultInterval
	}
	if config.ZoneDelay <= 0 {
		config.ZoneDelay = DefaultZoneDelay
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Monitor{
		cfg:           config,
		providers:     cfg.Providers,
		dispatcher:    cfg.Dispatcher,
		registry:      cfg.Registry,
		metrics:       cfg.Metrics,
		evaluator:     alert.NewEvaluatorWithClock(now),
		history:       alert.NewHistory(config.HistoryLimit),
		logger:        cfg.Logger.With().Str("component", "monitor").Logger(),
		now:           now,
		snapshot:      make(map[string]weather.ReconciledReading),
		lastFloodRisk: alert.FloodRiskNone,
	}
}

// State returns the current monitoring state.
func (m *Monitor) State() State {
	if m.active.Load() {
		return StateActive
	}
	return StateStopped
}

// CycleRunning reports whether an update cycle is currently executing.
func (m *Monitor) CycleRunning() bool {
	return m.cycling.Load()
}

// Start transitions to Active and kicks off an immediate update cycle. It is
// rejected out of season and idempotent while already active.
func (m *Monitor) Start(ctx context.Context) error {
	if !InSeason(m.now()) {
		return ErrOutOfSeason
	}

	if !m.active.CompareAndSwap(false, true) {
		return nil
	}

	m.logger.Info().Msg("monitoring started")

	go func() {
		if err := m.RunCycle(ctx); err != nil {
			m.logger.Warn().Err(err).Msg("initial update cycle skipped")
		}
	}()

	return nil
}

// Stop transitions to Stopped. Idempotent.
func (m *Monitor) Stop() {
	if m.active.CompareAndSwap(true, false) {
		m.logger.Info().Msg("monitoring stopped")
	}
}

// Run drives the periodic update loop until the context is cancelled. Ticks
// while Stopped are no-ops.
func (m *Monitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !m.active.Load() {
				continue
			}
			if err := m.RunCycle(ctx); err != nil {
				m.logger.Warn().Err(err).Msg("scheduled update cycle skipped")
			}
		}
	}
}

// RunCycle executes one full update cycle. An overlapping call returns
// ErrCycleInProgress without queueing.
func (m *Monitor) RunCycle(ctx context.Context) error {
	if !m.cycling.CompareAndSwap(false, true) {
		return ErrCycleInProgress
	}
	defer m.cycling.Store(false)

	start := time.Now()
	zones := zone.All()

	m.logger.Info().
		Int("zones", len(zones)).
		Int("providers", len(m.providers)).
		Msg("starting update cycle")

	readings := make([]weather.ReconciledReading, 0, len(zones))
	snapshot := make(map[string]weather.ReconciledReading, len(zones))

	for i, z := range zones {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		sources := m.fetchZone(ctx, z)
		reconciled := weather.Reconcile(z, sources, m.now())
		readings = append(readings, reconciled)
		snapshot[z.Name] = reconciled

		if i < len(zones)-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(m.cfg.ZoneDelay):
			}
		}
	}

	result := m.evaluator.EvaluateCycle(readings)
	m.history.Append(result.Alerts...)

	m.mu.Lock()
	m.snapshot = snapshot
	m.lastFloodRisk = result.FloodRisk
	m.lastUpdateAt = m.now()
	m.mu.Unlock()

	if len(result.Alerts) > 0 && m.dispatcher != nil {
		m.dispatcher.Dispatch(ctx, notify.Summary{
			GeneratedAt: m.now(),
			FloodRisk:   result.FloodRisk,
			Alerts:      result.Alerts,
		})
	}

	if m.metrics != nil {
		m.metrics.RecordCycle(time.Since(start), len(result.Alerts), string(result.FloodRisk))
	}

	m.logger.Info().
		Dur("duration", time.Since(start)).
		Int("alerts", len(result.Alerts)).
		Str("flood_risk", string(result.FloodRisk)).
		Msg("update cycle completed")

	return nil
}

// fetchZone fires all providers concurrently for one zone and returns the
// successful readings. Failures are logged and recorded against the
// provider health registry, never propagated.
func (m *Monitor) fetchZone(ctx context.Context, z zone.Zone) []weather.SourceReading {
	type fetchResult struct {
		reading *weather.SourceReading
		source  weather.Source
		err     error
	}

	results := make(chan fetchResult, len(m.providers))

	var wg sync.WaitGroup
	for _, p := range m.providers {
		wg.Add(1)
		go func(p weather.Provider) {
			defer wg.Done()
			fetchStart := time.Now()
			r, err := p.FetchCurrent(ctx, z)
			if m.metrics != nil {
				m.metrics.RecordFetch(string(p.Name()), z.Name, time.Since(fetchStart), err)
			}
			results <- fetchResult{reading: r, source: p.Name(), err: err}
		}(p)
	}

	wg.Wait()
	close(results)

	readings := make([]weather.SourceReading, 0, len(m.providers))
	for fr := range results {
		if fr.err != nil {
			m.logger.Warn().
				Err(fr.err).
				Str("provider", string(fr.source)).
				Str("zone", z.Name).
				Msg("provider fetch failed")
			if m.registry != nil {
				m.registry.RecordFailure(string(fr.source), fr.err)
			}
			continue
		}

		if m.registry != nil {
			m.registry.RecordSuccess(string(fr.source))
		}
		readings = append(readings, *fr.reading)
	}

	return readings
}

// Snapshot returns a copy of the current per-zone snapshot with the time it
// was computed.
func (m *Monitor) Snapshot() (map[string]weather.ReconciledReading, time.Time) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]weather.ReconciledReading, len(m.snapshot))
	for k, v := range m.snapshot {
		out[k] = v
	}
	return out, m.lastUpdateAt
}

// FloodRisk returns the flood risk classified in the most recent cycle.
func (m *Monitor) FloodRisk() alert.FloodRisk {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastFloodRisk
}

// History returns the alert history.
func (m *Monitor) History() *alert.History {
	return m.history
}

// InSeasonNow reports whether the current time falls in the monsoon window.
func (m *Monitor) InSeasonNow() bool {
	return InSeason(m.now())
}

// TriggerTestAlert pushes a synthetic alert through the evaluator path,
// history, and notification channels.
func (m *Monitor) TriggerTestAlert(ctx context.Context) alert.Alert {
	r := weather.ReconciledReading{
		Zone:       zone.Zone{Name: "Test Zone", Lat: 19.0760, Lon: 72.8777},
		RainfallMm: 12.5,
		Intensity:  weather.IntensityFor(12.5),
	}

	a := m.evaluator.Evaluate(r)
	m.history.Append(*a)

	if m.dispatcher != nil {
		m.dispatcher.Dispatch(ctx, notify.Summary{
			GeneratedAt: m.now(),
			FloodRisk:   alert.ClassifyFloodRisk([]alert.Alert{*a}),
			Alerts:      []alert.Alert{*a},
			Test:        true,
		})
	}

	return *a
}
