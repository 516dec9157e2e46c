// Package openweathermap provides a client for the OpenWeatherMap direct geocoding API.
package openweathermap

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/breatheroute/airtracker/internal/geocoding"
	"github.com/breatheroute/airtracker/internal/provider/owmapi"
)

const (
	// DefaultBaseURL is the base URL for the OpenWeatherMap geocoding API.
	DefaultBaseURL = "https://api.openweathermap.org/geo/1.0"

	// ProviderName identifies this provider.
	ProviderName = "openweathermap-geo"
)

// ErrUnexpectedStatus is returned for non-200 responses.
var ErrUnexpectedStatus = owmapi.ErrUnexpectedStatus

// ClientConfig holds configuration for the geocoding client.
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

// Client is an OpenWeatherMap geocoding client.
type Client struct {
	api *owmapi.API
}

// NewClient creates a new geocoding client.
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

type directResult struct {
	Name    string  `json:"name"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Country string  `json:"country"`
	State   string  `json:"state"`
}

// Lookup resolves a city name to the first match returned by the API.
func (c *Client) Lookup(ctx context.Context, city string) (*geocoding.Location, error) {
	q := url.Values{}
	q.Set("q", city)
	q.Set("limit", "1")

	var results []directResult
	if err := c.api.Get(ctx, "direct", q, &results); err != nil {
		return nil, fmt.Errorf("geocode %q: %w", city, err)
	}

	if len(results) == 0 {
		return nil, geocoding.ErrCityNotFound
	}

	r := results[0]
	return &geocoding.Location{
		Name:    r.Name,
		Country: r.Country,
		State:   r.State,
		Lat:     r.Lat,
		Lon:     r.Lon,
	}, nil
}
