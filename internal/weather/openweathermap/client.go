// Package openweathermap provides a client for the OpenWeatherMap current weather API.
package openweathermap

import (
	"context"
	"time"

	"github.com/breatheroute/airtracker/internal/provider/owmapi"
	"github.com/breatheroute/airtracker/internal/weather"
)

const (
	// ProviderName identifies this provider.
	ProviderName = "openweathermap-weather"

	// DefaultBaseURL is the base URL for the OpenWeatherMap data API.
	DefaultBaseURL = "https://api.openweathermap.org/data/2.5"
)

// ErrUnexpectedStatus is returned for non-200 responses.
var ErrUnexpectedStatus = owmapi.ErrUnexpectedStatus

// ClientConfig holds configuration for the weather client.
type ClientConfig struct {
	// APIKey is the OpenWeatherMap API key (required).
	APIKey string

	// BaseURL is the API base URL (defaults to DefaultBaseURL).
	BaseURL string

	// HTTPClient is the HTTP client to use.
	// If nil, a default resilient client will be created.
	HTTPClient owmapi.HTTPDoer

	// Timeout for individual API requests (default: 10s).
	Timeout time.Duration
}

// Client is an OpenWeatherMap current weather client.
type Client struct {
	api *owmapi.API
}

// NewClient creates a new weather client.
func NewClient(cfg ClientConfig) *Client {
	return &Client{
		api: owmapi.New(owmapi.Config{
			APIKey:     cfg.APIKey,
			BaseURL:    cfg.BaseURL,
			HTTPClient: cfg.HTTPClient,
			Provider:   ProviderName,
			Timeout:    cfg.Timeout,
		}, DefaultBaseURL),
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

type currentResponse struct {
	Coord struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	} `json:"coord"`
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
	} `json:"weather"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Pressure  float64 `json:"pressure"`
		Humidity  float64 `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
		Deg   float64 `json:"deg"`
	} `json:"wind"`
	Dt   int64  `json:"dt"`
	Name string `json:"name"`
}

// GetCurrentWeather fetches current weather in metric units.
func (c *Client) GetCurrentWeather(ctx context.Context, lat, lon float64) (*weather.Observation, error) {
	q := owmapi.Coordinates(lat, lon)
	q.Set("units", "metric")

	var resp currentResponse
	if err := c.api.Get(ctx, "weather", q, &resp); err != nil {
		return nil, err
	}

	obs := &weather.Observation{
		Station:      resp.Name,
		Lat:          resp.Coord.Lat,
		Lon:          resp.Coord.Lon,
		TemperatureC: resp.Main.Temp,
		FeelsLikeC:   resp.Main.FeelsLike,
		HumidityPct:  resp.Main.Humidity,
		PressureHPa:  resp.Main.Pressure,
		WindSpeedMs:  resp.Wind.Speed,
		WindDeg:      resp.Wind.Deg,
		Condition:    weather.ConditionUnknown,
		FetchedAt:    time.Now(),
	}
	if resp.Dt > 0 {
		obs.ObservedAt = time.Unix(resp.Dt, 0).UTC()
	}
	if len(resp.Weather) > 0 {
		obs.Condition = weather.ParseCondition(resp.Weather[0].Main)
		obs.Description = resp.Weather[0].Description
	}
	return obs, nil
}
