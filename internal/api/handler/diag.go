package handler

import (
	"net/http"
	"time"

	"github.com/monsoonwatch/monsoonwatch/internal/alert"
	"github.com/monsoonwatch/monsoonwatch/internal/api/models"
	"github.com/monsoonwatch/monsoonwatch/internal/api/response"
	"github.com/monsoonwatch/monsoonwatch/internal/monitor"
	"github.com/monsoonwatch/monsoonwatch/internal/notify"
)

// DiagHandler serves the test-notification endpoints. These always respond
// 200; delivery failures are reported in the body.
type DiagHandler struct {
	monitor  *monitor.Monitor
	telegram notify.Channel
	email    notify.Channel
}

// NewDiagHandler creates a new DiagHandler. Unconfigured channels may be nil.
func NewDiagHandler(m *monitor.Monitor, telegram, email notify.Channel) *DiagHandler {
	return &DiagHandler{monitor: m, telegram: telegram, email: email}
}

// TestTelegram handles POST /v1/test/telegram.
func (h *DiagHandler) TestTelegram(w http.ResponseWriter, r *http.Request) {
	h.testChannel(w, r, "telegram", h.telegram)
}

// TestEmail handles POST /v1/test/email.
func (h *DiagHandler) TestEmail(w http.ResponseWriter, r *http.Request) {
	h.testChannel(w, r, "email", h.email)
}

// TestAlert handles POST /v1/test/alert: a synthetic alert pushed through
// the evaluator, history, and every configured channel.
func (h *DiagHandler) TestAlert(w http.ResponseWriter, r *http.Request) {
	a := h.monitor.TriggerTestAlert(r.Context())
	response.JSON(w, r, http.StatusOK, models.NewAlertView(a))
}

func (h *DiagHandler) testChannel(w http.ResponseWriter, r *http.Request, name string, ch notify.Channel) {
	result := models.TestResult{Channel: name}

	if ch == nil {
		result.Error = "channel not configured"
		response.JSON(w, r, http.StatusOK, result)
		return
	}

	err := ch.Send(r.Context(), testSummary())
	if err != nil {
		result.Error = err.Error()
	} else {
		result.Success = true
	}

	response.JSON(w, r, http.StatusOK, result)
}

func testSummary() notify.Summary {
	return notify.Summary{
		GeneratedAt: time.Now(),
		FloodRisk:   alert.FloodRiskLow,
		Alerts: []alert.Alert{
			{
				Zone:       "Test Zone",
				RainfallMm: 2.5,
				Intensity:  "Medium",
				Message:    "Test notification from MonsoonWatch",
				CreatedAt:  time.Now(),
			},
		},
		Test: true,
	}
}
