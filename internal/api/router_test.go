package api_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/monsoonwatch/monsoonwatch/internal/api"
	"github.com/monsoonwatch/monsoonwatch/internal/api/models"
	"github.com/monsoonwatch/monsoonwatch/internal/monitor"
	"github.com/monsoonwatch/monsoonwatch/internal/notify"
	"github.com/monsoonwatch/monsoonwatch/internal/weather"
	"github.com/monsoonwatch/monsoonwatch/internal/zone"
)

// fixedProvider returns a constant rainfall for every zone.
type fixedProvider struct {
	rainfall float64
}

func (p *fixedProvider) Name() weather.Source { return weather.SourceOpenMeteo }

func (p *fixedProvider) FetchCurrent(_ context.Context, z zone.Zone) (*weather.SourceReading, error) {
	return &weather.SourceReading{
		Zone:       z,
		Source:     weather.SourceOpenMeteo,
		RainfallMm: p.rainfall,
		FetchedAt:  time.Now(),
	}, nil
}

type recordingChannel struct {
	name string
	sent int
}

func (c *recordingChannel) Type() string { return c.name }

func (c *recordingChannel) Send(_ context.Context, _ notify.Summary) error {
	c.sent++
	return nil
}

func monsoonClock() func() time.Time {
	t := time.Date(2026, time.July, 15, 14, 30, 0, 0, time.UTC)
	return func() time.Time { return t }
}

func drySeasonClock() func() time.Time {
	t := time.Date(2026, time.April, 1, 10, 0, 0, 0, time.UTC)
	return func() time.Time { return t }
}

func newTestMonitor(now func() time.Time, rainfall float64) *monitor.Monitor {
	return monitor.New(monitor.MonitorConfig{
		Config:    monitor.Config{ZoneDelay: time.Millisecond},
		Providers: []weather.Provider{&fixedProvider{rainfall: rainfall}},
		Logger:    zerolog.Nop(),
		Now:       now,
	})
}

func newTestRouter(m *monitor.Monitor, telegram, email notify.Channel) http.Handler {
	return api.NewRouter(api.RouterConfig{
		Version:   "test",
		BuildTime: "2026-01-01T00:00:00Z",
		Logger:    zerolog.New(io.Discard),
		Monitor:   m,
		Telegram:  telegram,
		Email:     email,
	})
}

func TestRouter_HealthCheck(t *testing.T) {
	router := newTestRouter(newTestMonitor(monsoonClock(), 0), nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/ops/health", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))

	var health models.Health
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &health))
	assert.Equal(t, "ok", health.Status)
}

func TestRouter_ReadinessCheck(t *testing.T) {
	router := newTestRouter(newTestMonitor(monsoonClock(), 0), nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/ops/ready", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_GetWeather_Empty(t *testing.T) {
	router := newTestRouter(newTestMonitor(monsoonClock(), 0), nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/weather", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp models.WeatherResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Empty(t, resp.Zones)
	assert.Nil(t, resp.LastUpdateAt)
	assert.Equal(t, "NONE", resp.FloodRisk)
}

func TestRouter_GetWeather_AfterCycle(t *testing.T) {
	m := newTestMonitor(monsoonClock(), 3.2)
	require.NoError(t, m.RunCycle(context.Background()))

	router := newTestRouter(m, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/weather", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp models.WeatherResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Zones, zone.Count)
	require.NotNil(t, resp.LastUpdateAt)

	dadar := resp.Zones["Dadar"]
	assert.Equal(t, 3.2, dadar.RainfallMm)
	assert.Equal(t, "Medium", dadar.Intensity)
	assert.Equal(t, "MEDIUM", dadar.Confidence)
}

func TestRouter_ListAlerts(t *testing.T) {
	m := newTestMonitor(monsoonClock(), 8.0)
	require.NoError(t, m.RunCycle(context.Background()))

	router := newTestRouter(m, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/alerts?limit=5", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp models.AlertsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Alerts, 5)
	assert.Equal(t, zone.Count, resp.Total)
	assert.NotEmpty(t, resp.Alerts[0].ID)
	assert.Contains(t, resp.Alerts[0].Message, "Rain alert for")
}

func TestRouter_ListAlerts_InvalidLimit(t *testing.T) {
	router := newTestRouter(newTestMonitor(monsoonClock(), 0), nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/alerts?limit=abc", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))

	var problem models.Problem
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &problem))
	assert.Equal(t, models.ProblemTypeValidation, problem.Type)
}

func TestRouter_GetStatus(t *testing.T) {
	tg := &recordingChannel{name: "telegram"}
	router := newTestRouter(newTestMonitor(monsoonClock(), 0), tg, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/status", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp models.StatusResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "STOPPED", resp.State)
	assert.True(t, resp.InSeason)
	assert.False(t, resp.CycleRunning)
	assert.Equal(t, zone.Count, resp.ZoneCount)
	assert.True(t, resp.Channels["telegram"])
	assert.False(t, resp.Channels["email"])
}

func TestRouter_StartStop(t *testing.T) {
	router := newTestRouter(newTestMonitor(monsoonClock(), 0), nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/start", http.NoBody)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp models.StateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ACTIVE", resp.State)

	req = httptest.NewRequest(http.MethodPost, "/v1/stop", http.NoBody)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "STOPPED", resp.State)
}

func TestRouter_Start_OutOfSeason(t *testing.T) {
	router := newTestRouter(newTestMonitor(drySeasonClock(), 0), nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/start", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))

	var problem models.Problem
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &problem))
	assert.Equal(t, models.ProblemTypeConflict, problem.Type)
}

func TestRouter_TriggerCycle(t *testing.T) {
	m := newTestMonitor(monsoonClock(), 0)
	router := newTestRouter(m, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/cycle", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusAccepted, w.Code)

	require.Eventually(t, func() bool {
		snapshot, _ := m.Snapshot()
		return len(snapshot) == zone.Count
	}, 5*time.Second, 10*time.Millisecond)
}

func TestRouter_TestTelegram(t *testing.T) {
	tg := &recordingChannel{name: "telegram"}
	router := newTestRouter(newTestMonitor(monsoonClock(), 0), tg, nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/test/telegram", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var result models.TestResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.True(t, result.Success)
	assert.Equal(t, "telegram", result.Channel)
	assert.Equal(t, 1, tg.sent)
}

func TestRouter_TestEmail_NotConfigured(t *testing.T) {
	router := newTestRouter(newTestMonitor(monsoonClock(), 0), nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/test/email", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var result models.TestResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.False(t, result.Success)
	assert.Equal(t, "channel not configured", result.Error)
}

func TestRouter_TestAlert(t *testing.T) {
	m := newTestMonitor(monsoonClock(), 0)
	router := newTestRouter(m, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/test/alert", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var view models.AlertView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.Equal(t, "Test Zone", view.Zone)
	assert.NotEmpty(t, view.ID)
	assert.Equal(t, 1, m.History().Len())
}

func TestRouter_RequestID_Generated(t *testing.T) {
	router := newTestRouter(newTestMonitor(monsoonClock(), 0), nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/ops/health", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	requestID := w.Header().Get("X-Request-Id")
	assert.NotEmpty(t, requestID)
	assert.Contains(t, requestID, "req_")
}

func TestRouter_RequestID_Preserved(t *testing.T) {
	router := newTestRouter(newTestMonitor(monsoonClock(), 0), nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/ops/health", http.NoBody)
	req.Header.Set("X-Request-Id", "custom_request_id")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, "custom_request_id", w.Header().Get("X-Request-Id"))
}

func TestRouter_NotFound(t *testing.T) {
	router := newTestRouter(newTestMonitor(monsoonClock(), 0), nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/nonexistent", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
