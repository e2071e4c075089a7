// Package openweathermap implements the OpenWeatherMap weather provider.
package openweathermap

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

// DefaultBaseURL is the OpenWeatherMap API base URL.
const DefaultBaseURL = "https://api.openweathermap.org/data/2.5"

// ClientConfig holds configuration for the OpenWeatherMap client.
type ClientConfig struct {
	// APIKey is the OpenWeatherMap API key (required).
	APIKey string

	// BaseURL overrides the API base URL (optional).
	BaseURL string

	// HTTPClient is the resilient HTTP client to use (optional).
	HTTPClient *resilience.Client

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client is an OpenWeatherMap API client.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *resilience.Client
	logger     zerolog.Logger
}

// NewClient creates a new OpenWeatherMap client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = resilience.NewClient(resilience.DefaultClientConfig(string(weather.SourceOpenWeather)))
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
	return weather.SourceOpenWeather
}

// FetchCurrent fetches current conditions for a zone.
func (c *Client) FetchCurrent(ctx context.Context, z zone.Zone) (*weather.SourceReading, error) {
	url := fmt.Sprintf("%s/weather?lat=%.4f&lon=%.4f&appid=%s&units=metric",
		c.baseURL, z.Lat, z.Lon, c.apiKey)

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

	var owmResp currentWeatherResponse
	if err := json.NewDecoder(resp.Body).Decode(&owmResp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	return c.toReading(z, &owmResp), nil
}

// toReading converts the OpenWeatherMap response to the common reading shape.
func (c *Client) toReading(z zone.Zone, resp *currentWeatherResponse) *weather.SourceReading {
	// Prefer the 1h precipitation figure, fall back to 3h, else 0.
	rainfall := resp.Rain.OneH
	if rainfall == 0 {
		rainfall = resp.Rain.ThreeH
	}
	if rainfall < 0 {
		rainfall = 0
	}

	condition := ""
	if len(resp.Weather) > 0 {
		condition = resp.Weather[0].Description
		// Clear-sky override: trust the provider's own condition over a
		// residual precipitation figure.
		if resp.Weather[0].Main == "Clear" {
			rainfall = 0
		}
	}

	return &weather.SourceReading{
		Zone:          z,
		Source:        weather.SourceOpenWeather,
		RainfallMm:    rainfall,
		TemperatureC:  resp.Main.Temp,
		HumidityPct:   resp.Main.Humidity,
		PressureHpa:   resp.Main.Pressure,
		WindSpeedMs:   resp.Wind.Speed,
		CloudCoverPct: resp.Clouds.All,
		ConditionText: condition,
		FetchedAt:     time.Now(),
	}
}

// OpenWeatherMap API response structure.

type currentWeatherResponse struct {
	Weather []struct {
		ID          int    `json:"id"`
		Main        string `json:"main"`
		Description string `json:"description"`
	} `json:"weather"`
	Main struct {
		Temp     float64 `json:"temp"`
		Pressure float64 `json:"pressure"`
		Humidity float64 `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
		Deg   float64 `json:"deg"`
	} `json:"wind"`
	Clouds struct {
		All float64 `json:"all"`
	} `json:"clouds"`
	Rain struct {
		OneH   float64 `json:"1h"`
		ThreeH float64 `json:"3h"`
	} `json:"rain"`
	Dt   int64  `json:"dt"`
	Name string `json:"name"`
}
