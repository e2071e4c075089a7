// Package weatherapi implements the WeatherAPI.com weather provider.
package weatherapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/monsoonwatch/monsoonwatch/internal/provider/resilience"
	"github.com/monsoonwatch/monsoonwatch/internal/weather"
	"github.com/monsoonwatch/monsoonwatch/internal/zone"
)

const (
	// DefaultBaseURL is the WeatherAPI.com base URL.
	DefaultBaseURL = "https://api.weatherapi.com"

	// clearConditionCode is WeatherAPI's code for sunny/clear conditions.
	clearConditionCode = 1000
)

// ClientConfig holds configuration for the WeatherAPI.com client.
type ClientConfig struct {
	// APIKey is the WeatherAPI.com key (required).
	APIKey string

	// BaseURL overrides the API base URL (optional).
	BaseURL string

	// HTTPClient is the resilient HTTP client to use (optional).
	HTTPClient *resilience.Client

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client is a WeatherAPI.com client.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *resilience.Client
	logger     zerolog.Logger
}

// NewClient creates a new WeatherAPI.com client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = resilience.NewClient(resilience.DefaultClientConfig(string(weather.SourceWeatherAPI)))
	}

	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     cfg.Logger,
	}
}

// Name returns the provider name.
func (c *Client) Name() weather.Source {
	return weather.SourceWeatherAPI
}

// FetchCurrent fetches current conditions for a zone.
func (c *Client) FetchCurrent(ctx context.Context, z zone.Zone) (*weather.SourceReading, error) {
	url := fmt.Sprintf("%s/v1/current.json?key=%s&q=%.4f,%.4f",
		c.baseURL, c.apiKey, z.Lat, z.Lon)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var waResp currentResponse
	if err := json.NewDecoder(resp.Body).Decode(&waResp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	return c.toReading(z, &waResp), nil
}

// toReading converts the WeatherAPI.com response to the common reading shape.
func (c *Client) toReading(z zone.Zone, resp *currentResponse) *weather.SourceReading {
	cur := resp.Current

	rainfall := cur.PrecipMm
	if rainfall < 0 {
		rainfall = 0
	}
	if cur.Condition.Code == clearConditionCode {
		rainfall = 0
	}

	return &weather.SourceReading{
		Zone:          z,
		Source:        weather.SourceWeatherAPI,
		RainfallMm:    rainfall,
		TemperatureC:  cur.TempC,
		HumidityPct:   cur.Humidity,
		PressureHpa:   cur.PressureMb, // millibars equal hPa
		WindSpeedMs:   cur.WindKph / 3.6,
		CloudCoverPct: cur.Cloud,
		ConditionText: cur.Condition.Text,
		FetchedAt:     time.Now(),
	}
}

// WeatherAPI.com response structure.

type currentResponse struct {
	Current struct {
		TempC      float64 `json:"temp_c"`
		Humidity   float64 `json:"humidity"`
		PressureMb float64 `json:"pressure_mb"`
		WindKph    float64 `json:"wind_kph"`
		Cloud      float64 `json:"cloud"`
		PrecipMm   float64 `json:"precip_mm"`
		Condition  struct {
			Text string `json:"text"`
			Code int    `json:"code"`
		} `json:"condition"`
	} `json:"current"`
}
