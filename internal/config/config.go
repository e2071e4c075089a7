// Package config loads the MonsoonWatch configuration from the environment.
// A .env file in the working directory is loaded first (non-fatal if absent)
// and never overrides variables already set in the environment.
package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config is the full service configuration.
type Config struct {
	// Server
	Port string `envconfig:"APP_PORT" default:"8080"`
	Env  string `envconfig:"APP_ENV" default:"development"`

	// Monitor
	UpdateInterval time.Duration `envconfig:"UPDATE_INTERVAL" default:"30m"`
	ZoneDelay      time.Duration `envconfig:"ZONE_DELAY" default:"200ms"`
	HistoryLimit   int           `envconfig:"HISTORY_LIMIT" default:"100"`

	// Weather providers. Open-Meteo needs no key; the others are enabled
	// only when their credentials are present.
	OpenWeatherAPIKey   string `envconfig:"OPENWEATHER_API_KEY"`
	WeatherAPIKey       string `envconfig:"WEATHERAPI_KEY"`
	MeteomaticsUsername string `envconfig:"METEOMATICS_USERNAME"`
	MeteomaticsPassword string `envconfig:"METEOMATICS_PASSWORD"`

	// Telegram
	TelegramBotToken string `envconfig:"TELEGRAM_BOT_TOKEN"`
	TelegramChatID   string `envconfig:"TELEGRAM_CHAT_ID"`

	// SMTP
	SMTPHost     string   `envconfig:"SMTP_HOST"`
	SMTPPort     int      `envconfig:"SMTP_PORT" default:"587"`
	SMTPUsername string   `envconfig:"SMTP_USERNAME"`
	SMTPPassword string   `envconfig:"SMTP_PASSWORD"`
	EmailFrom    string   `envconfig:"EMAIL_FROM"`
	EmailTo      []string `envconfig:"EMAIL_TO"`

	// Telemetry
	OTELEnabled  bool   `envconfig:"OTEL_ENABLED" default:"false"`
	OTLPEndpoint string `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT" default:"localhost:4317"`

	// Pub/Sub cycle trigger (worker only, optional).
	PubSubProjectID    string `envconfig:"PUBSUB_PROJECT_ID"`
	PubSubSubscription string `envconfig:"PUBSUB_SUBSCRIPTION"`
}

// Load reads the configuration from .env and the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("processing environment: %w", err)
	}

	return &cfg, nil
}

// TelegramConfigured reports whether the Telegram channel can be enabled.
func (c *Config) TelegramConfigured() bool {
	return c.TelegramBotToken != "" && c.TelegramChatID != ""
}

// EmailConfigured reports whether the email channel can be enabled.
func (c *Config) EmailConfigured() bool {
	return c.SMTPHost != "" && c.EmailFrom != "" && len(c.EmailTo) > 0
}

// PubSubConfigured reports whether the worker should subscribe to a cycle
// trigger topic.
func (c *Config) PubSubConfigured() bool {
	return c.PubSubProjectID != "" && c.PubSubSubscription != ""
}
