// Package openmeteo implements the Open-Meteo weather provider.
// Open-Meteo requires no API key.
package openmeteo

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
	// DefaultBaseURL is the Open-Meteo API base URL.
	DefaultBaseURL = "https://api.open-meteo.com"

	currentParams = "temperature_2m,relative_humidity_2m,surface_pressure," +
		"wind_speed_10m,cloud_cover,precipitation,weather_code"
)

// ClientConfig holds configuration for the Open-Meteo client.
type ClientConfig struct {
	// BaseURL overrides the API base URL (optional).
	BaseURL string

	// HTTPClient is the resilient HTTP client to use (optional).
	HTTPClient *resilience.Client

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client is an Open-Meteo API client.
type Client struct {
	baseURL    string
	httpClient *resilience.Client
	logger     zerolog.Logger
}

// NewClient creates a new Open-Meteo client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = resilience.NewClient(resilience.DefaultClientConfig(string(weather.SourceOpenMeteo)))
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     cfg.Logger,
	}
}

// Name returns the provider name.
func (c *Client) Name() weather.Source {
	return weather.SourceOpenMeteo
}

// FetchCurrent fetches current conditions for a zone.
func (c *Client) FetchCurrent(ctx context.Context, z zone.Zone) (*weather.SourceReading, error) {
	url := fmt.Sprintf("%s/v1/forecast?latitude=%.4f&longitude=%.4f&current=%s&wind_speed_unit=ms",
		c.baseURL, z.Lat, z.Lon, currentParams)

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

	var omResp forecastResponse
	if err := json.NewDecoder(resp.Body).Decode(&omResp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	return c.toReading(z, &omResp), nil
}

// toReading converts the Open-Meteo response to the common reading shape.
func (c *Client) toReading(z zone.Zone, resp *forecastResponse) *weather.SourceReading {
	cur := resp.Current

	rainfall := cur.Precipitation
	if rainfall < 0 {
		rainfall = 0
	}
	// Clear-sky override: a nonzero trace under a clear sky is instrument noise.
	if isClearCode(cur.WeatherCode) {
		rainfall = 0
	}

	return &weather.SourceReading{
		Zone:          z,
		Source:        weather.SourceOpenMeteo,
		RainfallMm:    rainfall,
		TemperatureC:  cur.Temperature2m,
		HumidityPct:   cur.RelativeHumidity2m,
		PressureHpa:   cur.SurfacePressure,
		WindSpeedMs:   cur.WindSpeed10m,
		CloudCoverPct: cur.CloudCover,
		ConditionText: conditionText(cur.WeatherCode),
		FetchedAt:     time.Now(),
	}
}

// isClearCode reports whether a WMO weather code means clear or mainly clear.
func isClearCode(code int) bool {
	return code == 0 || code == 1
}

// conditionText maps WMO weather codes to a human-readable description.
func conditionText(code int) string {
	switch code {
	case 0:
		return "Clear sky"
	case 1:
		return "Mainly clear"
	case 2:
		return "Partly cloudy"
	case 3:
		return "Overcast"
	case 45, 48:
		return "Fog"
	case 51, 53, 55:
		return "Drizzle"
	case 56, 57:
		return "Freezing drizzle"
	case 61:
		return "Slight rain"
	case 63:
		return "Moderate rain"
	case 65:
		return "Heavy rain"
	case 66, 67:
		return "Freezing rain"
	case 80, 81:
		return "Rain showers"
	case 82:
		return "Violent rain showers"
	case 95:
		return "Thunderstorm"
	case 96, 99:
		return "Thunderstorm with hail"
	default:
		return "Unknown"
	}
}

// Open-Meteo API response structure.

type forecastResponse struct {
	Current struct {
		Temperature2m      float64 `json:"temperature_2m"`
		RelativeHumidity2m float64 `json:"relative_humidity_2m"`
		SurfacePressure    float64 `json:"surface_pressure"`
		WindSpeed10m       float64 `json:"wind_speed_10m"`
		CloudCover         float64 `json:"cloud_cover"`
		Precipitation      float64 `json:"precipitation"`
		WeatherCode        int     `json:"weather_code"`
	} `json:"current"`
}
