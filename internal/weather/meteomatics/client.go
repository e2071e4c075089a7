// Package meteomatics implements the Meteomatics weather provider.
// Meteomatics uses HTTP basic auth and a path-encoded parameter list.
package meteomatics

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
	// DefaultBaseURL is the Meteomatics API base URL.
	DefaultBaseURL = "https://api.meteomatics.com"

	paramPrecip      = "precip_1h:mm"
	paramTemperature = "t_2m:C"
	paramHumidity    = "relative_humidity_2m:p"
	paramPressure    = "msl_pressure:hPa"
	paramWindSpeed   = "wind_speed_10m:ms"
	paramCloudCover  = "total_cloud_cover:p"
	paramSymbol      = "weather_symbol_1h:idx"
)

// ClientConfig holds configuration for the Meteomatics client.
type ClientConfig struct {
	// Username and Password are the Meteomatics basic auth credentials
	// (both required).
	Username string
	Password string

	// BaseURL overrides the API base URL (optional).
	BaseURL string

	// HTTPClient is the resilient HTTP client to use (optional).
	HTTPClient *resilience.Client

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client is a Meteomatics API client.
type Client struct {
	username   string
	password   string
	baseURL    string
	httpClient *resilience.Client
	logger     zerolog.Logger
}

// NewClient creates a new Meteomatics client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = resilience.NewClient(resilience.DefaultClientConfig(string(weather.SourceMeteomatics)))
	}

	return &Client{
		username:   cfg.Username,
		password:   cfg.Password,
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     cfg.Logger,
	}
}

// Name returns the provider name.
func (c *Client) Name() weather.Source {
	return weather.SourceMeteomatics
}

// FetchCurrent fetches current conditions for a zone.
func (c *Client) FetchCurrent(ctx context.Context, z zone.Zone) (*weather.SourceReading, error) {
	params := fmt.Sprintf("%s,%s,%s,%s,%s,%s,%s",
		paramPrecip, paramTemperature, paramHumidity, paramPressure,
		paramWindSpeed, paramCloudCover, paramSymbol)

	url := fmt.Sprintf("%s/%s/%s/%.4f,%.4f/json",
		c.baseURL, time.Now().UTC().Format(time.RFC3339), params, z.Lat, z.Lon)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.SetBasicAuth(c.username, c.password)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var mmResp queryResponse
	if err := json.NewDecoder(resp.Body).Decode(&mmResp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	return c.toReading(z, &mmResp)
}

// toReading converts the Meteomatics response to the common reading shape.
func (c *Client) toReading(z zone.Zone, resp *queryResponse) (*weather.SourceReading, error) {
	values := make(map[string]float64, len(resp.Data))
	for _, d := range resp.Data {
		if len(d.Coordinates) == 0 || len(d.Coordinates[0].Dates) == 0 {
			continue
		}
		values[d.Parameter] = d.Coordinates[0].Dates[0].Value
	}

	if _, ok := values[paramPrecip]; !ok {
		return nil, fmt.Errorf("%w: missing %s", weather.ErrMalformedResponse, paramPrecip)
	}

	rainfall := values[paramPrecip]
	if rainfall < 0 {
		rainfall = 0
	}

	symbol := int(values[paramSymbol])
	if isClearSymbol(symbol) {
		rainfall = 0
	}

	return &weather.SourceReading{
		Zone:          z,
		Source:        weather.SourceMeteomatics,
		RainfallMm:    rainfall,
		TemperatureC:  values[paramTemperature],
		HumidityPct:   values[paramHumidity],
		PressureHpa:   values[paramPressure],
		WindSpeedMs:   values[paramWindSpeed],
		CloudCoverPct: values[paramCloudCover],
		ConditionText: symbolText(symbol),
		FetchedAt:     time.Now(),
	}, nil
}

// isClearSymbol reports whether a Meteomatics weather symbol means clear sky.
// Night symbols are the day symbol plus 100.
func isClearSymbol(symbol int) bool {
	return symbol == 1 || symbol == 101
}

// symbolText maps Meteomatics weather symbols to a description.
func symbolText(symbol int) string {
	if symbol > 100 {
		symbol -= 100
	}
	switch symbol {
	case 1:
		return "Clear sky"
	case 2:
		return "Light clouds"
	case 3:
		return "Partly cloudy"
	case 4:
		return "Cloudy"
	case 5:
		return "Rain"
	case 6:
		return "Rain and snow"
	case 7:
		return "Snow"
	case 8:
		return "Rain shower"
	case 9:
		return "Snow shower"
	case 10:
		return "Sleet shower"
	case 11:
		return "Light fog"
	case 12:
		return "Dense fog"
	case 13:
		return "Freezing rain"
	case 14:
		return "Thunderstorm"
	case 15:
		return "Drizzle"
	case 16:
		return "Sandstorm"
	default:
		return "Unknown"
	}
}

// Meteomatics API response structure.

type queryResponse struct {
	Data []struct {
		Parameter   string `json:"parameter"`
		Coordinates []struct {
			Lat   float64 `json:"lat"`
			Lon   float64 `json:"lon"`
			Dates []struct {
				Date  string  `json:"date"`
				Value float64 `json:"value"`
			} `json:"dates"`
		} `json:"coordinates"`
	} `json:"data"`
}
