// Package main provides the entrypoint for the MonsoonWatch API server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/monsoonwatch/monsoonwatch/internal/api"
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
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "monsoonwatch-api"

	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting MonsoonWatch API")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	ctx := context.Background()

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
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	if cfg.OTELEnabled {
		log.Info().
			Str("otlp_endpoint", cfg.OTLPEndpoint).
			Msg("OpenTelemetry initialized")
	}

	metrics, err := middleware.NewMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize metrics")
	}
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

	// Drive the periodic cycle loop for as long as the process lives.
	// Ticks are no-ops until monitoring is started.
	monCtx, monCancel := context.WithCancel(ctx)
	defer monCancel()
	go mon.Run(monCtx)

	router := api.NewRouter(api.RouterConfig{
		Version:     Version,
		BuildTime:   BuildTime,
		Logger:      log,
		ServiceName: serviceName,
		Metrics:     metrics,
		Monitor:     mon,
		Registry:    registry,
		Telegram:    telegramChannel,
		Email:       emailChannel,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().
			Str("addr", server.Addr).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")
	monCancel()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("server stopped")
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
	} else {
		log.Warn().Msg("OpenWeatherMap not configured")
	}

	if cfg.WeatherAPIKey != "" {
		providers = append(providers, weatherapi.NewClient(weatherapi.ClientConfig{
			APIKey:     cfg.WeatherAPIKey,
			HTTPClient: register(weather.SourceWeatherAPI),
			Logger:     log,
		}))
	} else {
		log.Warn().Msg("WeatherAPI not configured")
	}

	if cfg.MeteomaticsUsername != "" && cfg.MeteomaticsPassword != "" {
		providers = append(providers, meteomatics.NewClient(meteomatics.ClientConfig{
			Username:   cfg.MeteomaticsUsername,
			Password:   cfg.MeteomaticsPassword,
			HTTPClient: register(weather.SourceMeteomatics),
			Logger:     log,
		}))
	} else {
		log.Warn().Msg("Meteomatics not configured")
	}

	return providers
}

// buildChannels constructs the configured notification channels. Missing
// credentials disable a channel silently.
func buildChannels(cfg *config.Config, log zerolog.Logger) (notify.Channel, notify.Channel) {
	var telegramChannel, emailChannel notify.Channel

	if cfg.TelegramConfigured() {
		telegramChannel = telegram.NewChannel(telegram.ChannelConfig{
			BotToken: cfg.TelegramBotToken,
			ChatID:   cfg.TelegramChatID,
			Logger:   log,
		})
		log.Info().Msg("telegram channel configured")
	} else {
		log.Warn().Msg("telegram channel not configured")
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
		log.Info().Msg("email channel configured")
	} else {
		log.Warn().Msg("email channel not configured")
	}

	return telegramChannel, emailChannel
}
