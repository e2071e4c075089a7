// Package main provides the entrypoint for the MonsoonWatch background worker.
//
// The worker runs the monitoring loop without the HTTP API surface. It exposes
// a minimal health endpoint and optionally consumes cycle triggers from a
// Pub/Sub subscription.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/monsoonwatch/monsoonwatch/internal/api/middleware"
	"github.com/monsoonwatch/monsoonwatch/internal/config"
	"github.com/monsoonwatch/monsoonwatch/internal/monitor"
	"github.com/monsoonwatch/monsoonwatch/internal/notify"
	"github.com/monsoonwatch/monsoonwatch/internal/notify/email"
	"github.com/monsoonwatch/monsoonwatch/internal/notify/telegram"
	"github.com/monsoonwatch/monsoonwatch/internal/provider/resilience"
	"github.com/monsoonwatch/monsoonwatch/internal/telemetry"
	"github.com/monsoonwatch/monsoonwatch/internal/weather"
	"github.com/monsoonwatch/monsoonwatch/internal/weather/meteomatics"
	"github.com/monsoonwatch/monsoonwatch/internal/weather/openmeteo"
	"github.com/monsoonwatch/monsoonwatch/internal/weather/openweathermap"
	"github.com/monsoonwatch/monsoonwatch/internal/weather/weatherapi"
	"github.com/monsoonwatch/monsoonwatch/internal/worker"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "monsoonwatch-worker"

	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting MonsoonWatch worker")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    cfg.Env,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		Enabled:        cfg.OTELEnabled,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancelShutdown()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	cycleMetrics, err := middleware.NewCycleMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize cycle metrics")
	}

	registry := resilience.NewRegistry()
	providers := buildProviders(cfg, registry, log)
	log.Info().Int("providers", len(providers)).Msg("weather providers initialized")

	telegramChannel, emailChannel := buildChannels(cfg, log)
	dispatcher := notify.NewDispatcher(log, telegramChannel, emailChannel)

	mon := monitor.New(monitor.MonitorConfig{
		Config: monitor.Config{
			Interval:     cfg.UpdateInterval,
			ZoneDelay:    cfg.ZoneDelay,
			HistoryLimit: cfg.HistoryLimit,
		},
		Providers:  providers,
		Dispatcher: dispatcher,
		Registry:   registry,
		Metrics:    cycleMetrics,
		Logger:     log,
	})

	// The worker always tries to monitor; out of season it just waits for
	// the operator or a Pub/Sub trigger.
	if err := mon.Start(ctx); err != nil {
		if errors.Is(err, monitor.ErrOutOfSeason) {
			log.Warn().Msg("outside monsoon season, monitoring not started")
		} else {
			log.Error().Err(err).Msg("failed to start monitoring")
		}
	}
	go mon.Run(ctx)

	if cfg.PubSubConfigured() {
		handler, err := worker.NewPubSubHandler(ctx, worker.PubSubConfig{
			ProjectID:        cfg.PubSubProjectID,
			SubscriptionName: cfg.PubSubSubscription,
			Monitor:          mon,
			Logger:           log,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create pubsub handler")
		}
		defer handler.Close()

		go func() {
			if err := handler.Start(ctx); err != nil && ctx.Err() == nil {
				log.Error().Err(err).Msg("pubsub handler stopped")
			}
		}()
	} else {
		log.Info().Msg("pubsub not configured, running on interval only")
	}

	server := newHealthServer(cfg.Port, mon, Version)

	go func() {
		log.Info().Str("addr", server.Addr).Msg("health server listening")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("health server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down worker")
	cancel()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("health server forced to shutdown")
	}

	log.Info().Msg("worker stopped")
}

// newHealthServer builds the minimal HTTP surface the platform probes.
func newHealthServer(port string, mon *monitor.Monitor, version string) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status":    "ok",
			"version":   version,
			"state":     string(mon.State()),
			"in_season": mon.InSeasonNow(),
		})
	})

	return &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}
}

// buildProviders constructs the configured provider clients. Open-Meteo is
// always available; the others require credentials.
func buildProviders(cfg *config.Config, registry *resilience.Registry, log zerolog.Logger) []weather.Provider {
	var providers []weather.Provider

	register := func(source weather.Source) *resilience.Client {
		client := resilience.NewClient(resilience.DefaultClientConfig(string(source)))
		registry.Register(string(source), client)
		return client
	}

	providers = append(providers, openmeteo.NewClient(openmeteo.ClientConfig{
		HTTPClient: register(weather.SourceOpenMeteo),
		Logger:     log,
	}))

	if cfg.OpenWeatherAPIKey != "" {
		providers = append(providers, openweathermap.NewClient(openweathermap.ClientConfig{
			APIKey:     cfg.OpenWeatherAPIKey,
			HTTPClient: register(weather.SourceOpenWeather),
			Logger:     log,
		}))
	}

	if cfg.WeatherAPIKey != "" {
		providers = append(providers, weatherapi.NewClient(weatherapi.ClientConfig{
			APIKey:     cfg.WeatherAPIKey,
			HTTPClient: register(weather.SourceWeatherAPI),
			Logger:     log,
		}))
	}

	if cfg.MeteomaticsUsername != "" && cfg.MeteomaticsPassword != "" {
		providers = append(providers, meteomatics.NewClient(meteomatics.ClientConfig{
			Username:   cfg.MeteomaticsUsername,
			Password:   cfg.MeteomaticsPassword,
			HTTPClient: register(weather.SourceMeteomatics),
			Logger:     log,
		}))
	}

	return providers
}

// buildChannels constructs the configured notification channels.
func buildChannels(cfg *config.Config, log zerolog.Logger) (notify.Channel, notify.Channel) {
	var telegramChannel, emailChannel notify.Channel

	if cfg.TelegramConfigured() {
		telegramChannel = telegram.NewChannel(telegram.ChannelConfig{
			BotToken: cfg.TelegramBotToken,
			ChatID:   cfg.TelegramChatID,
			Logger:   log,
		})
	}

	if cfg.EmailConfigured() {
		emailChannel = email.NewChannel(email.ChannelConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.EmailFrom,
			To:       cfg.EmailTo,
			Logger:   log,
		})
	}

	return telegramChannel, emailChannel
}
