// Package openweathermap provides a client for the OpenWeatherMap air pollution API.
package openweathermap

import (
	"context"
	"time"

	"github.com/breatheroute/airtracker/internal/airquality"
	"github.com/breatheroute/airtracker/internal/provider/owmapi"
)

const (
	// DefaultBaseURL is the base URL for the OpenWeatherMap data API.
	DefaultBaseURL = "https://api.openweathermap.org/data/2.5"

	// ProviderName identifies this provider.
	ProviderName = "openweathermap-air"
)

// ErrUnexpectedStatus is returned for non-200 responses.
var ErrUnexpectedStatus = owmapi.ErrUnexpectedStatus

// ClientConfig holds configuration for the air pollution client.
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

// Client is an OpenWeatherMap air pollution API client.
type Client struct {
	api *owmapi.API
}

// NewClient creates a new air pollution client.
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

// API response types.

type pollutionResponse struct {
	Coord struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	} `json:"coord"`
	List []pollutionData `json:"list"`
}

type pollutionData struct {
	Main struct {
		AQI int `json:"aqi"`
	} `json:"main"`
	Components struct {
		CO   float64 `json:"co"`
		NO   float64 `json:"no"`
		NO2  float64 `json:"no2"`
		O3   float64 `json:"o3"`
		SO2  float64 `json:"so2"`
		PM25 float64 `json:"pm2_5"`
		PM10 float64 `json:"pm10"`
		NH3  float64 `json:"nh3"`
	} `json:"components"`
	Dt int64 `json:"dt"`
}

// FetchPollution retrieves the current air pollution reading for a location.
func (c *Client) FetchPollution(ctx context.Context, lat, lon float64) (*airquality.Pollution, error) {
	var result pollutionResponse
	if err := c.api.Get(ctx, "air_pollution", owmapi.Coordinates(lat, lon), &result); err != nil {
		return nil, err
	}

	if len(result.List) == 0 {
		return nil, airquality.ErrNoData
	}

	return toPollution(&result), nil
}

func toPollution(r *pollutionResponse) *airquality.Pollution {
	d := r.List[0]
	return &airquality.Pollution{
		Lat: r.Coord.Lat,
		Lon: r.Coord.Lon,
		AQI: d.Main.AQI,
		Components: airquality.Components{
			CO:   d.Components.CO,
			NO:   d.Components.NO,
			NO2:  d.Components.NO2,
			O3:   d.Components.O3,
			SO2:  d.Components.SO2,
			PM25: d.Components.PM25,
			PM10: d.Components.PM10,
			NH3:  d.Components.NH3,
		},
		MeasuredAt: time.Unix(d.Dt, 0),
		FetchedAt:  time.Now(),
		Provider:   ProviderName,
	}
}
