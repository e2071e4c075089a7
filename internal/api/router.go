// Package api provides the HTTP API for MonsoonWatch.
package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/monsoonwatch/monsoonwatch/internal/api/handler"
	"github.com/monsoonwatch/monsoonwatch/internal/api/middleware"
	"github.com/monsoonwatch/monsoonwatch/internal/monitor"
	"github.com/monsoonwatch/monsoonwatch/internal/notify"
	"github.com/monsoonwatch/monsoonwatch/internal/provider/resilience"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version     string
	BuildTime   string
	Logger      zerolog.Logger
	ServiceName string
	Metrics     *middleware.Metrics
	Monitor     *monitor.Monitor
	Registry    *resilience.Registry

	// Telegram and Email are the individual channels, nil when not
	// configured. Used by the test endpoints and the status report.
	Telegram notify.Channel
	Email    notify.Channel
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "monsoonwatch-api"
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID)
	r.Use(middleware.Tracing(serviceName))
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware())
	}
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.RequireTLS)
	r.Use(middleware.ContentTypeJSON)

	channels := map[string]bool{
		"telegram": cfg.Telegram != nil,
		"email":    cfg.Email != nil,
	}

	opsHandler := handler.NewOpsHandler(cfg.Version, cfg.BuildTime)
	weatherHandler := handler.NewWeatherHandler(cfg.Monitor)
	statusHandler := handler.NewStatusHandler(cfg.Monitor, cfg.Registry, channels, cfg.Version)
	controlHandler := handler.NewControlHandler(cfg.Monitor, cfg.Logger)
	diagHandler := handler.NewDiagHandler(cfg.Monitor, cfg.Telegram, cfg.Email)

	standardRateLimit := middleware.RateLimitByIP(middleware.StandardRateLimit) // 100 req/min
	triggerRateLimit := middleware.RateLimitByIP(middleware.TriggerRateLimit)   // 10 req/min

	r.Route("/v1", func(r chi.Router) {
		// Ops endpoints (no rate limit, probed by the platform)
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
		})

		// Read endpoints
		r.Group(func(r chi.Router) {
			r.Use(standardRateLimit)
			r.Get("/weather", weatherHandler.GetWeather)
			r.Get("/alerts", weatherHandler.ListAlerts)
			r.Get("/status", statusHandler.GetStatus)
		})

		// Control endpoints - these kick off work, strict rate limiting
		r.Group(func(r chi.Router) {
			r.Use(triggerRateLimit)
			r.Post("/start", controlHandler.Start)
			r.Post("/stop", controlHandler.Stop)
			r.Post("/cycle", controlHandler.TriggerCycle)
		})

		// Test endpoints
		r.Route("/test", func(r chi.Router) {
			r.Use(triggerRateLimit)
			r.Post("/telegram", diagHandler.TestTelegram)
			r.Post("/email", diagHandler.TestEmail)
			r.Post("/alert", diagHandler.TestAlert)
		})
	})

	return r
}
