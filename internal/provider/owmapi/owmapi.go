// Package owmapi holds the request plumbing shared by the OpenWeatherMap
// geocoding, air pollution and weather clients.
package owmapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/breatheroute/airtracker/internal/provider/resilience"
)

// ErrUnexpectedStatus is matched by every non-200 response.
var ErrUnexpectedStatus = errors.New("unexpected status code")

// StatusError carries the status of a non-200 response.
type StatusError struct {
	Endpoint   string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: %d from %s endpoint", ErrUnexpectedStatus, e.StatusCode, e.Endpoint)
}

func (e *StatusError) Unwrap() error {
	return ErrUnexpectedStatus
}

// HTTPDoer abstracts HTTP request execution.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config describes one API family.
type Config struct {
	APIKey  string
	BaseURL string

	// HTTPClient defaults to a resilient client registered under Provider.
	HTTPClient HTTPDoer

	// Provider names the default resilient client.
	Provider string

	// Timeout is the per-attempt timeout of the default client (default: 10s).
	Timeout time.Duration
}

// API performs keyed GET requests against one OpenWeatherMap base URL.
type API struct {
	apiKey  string
	baseURL string
	http    HTTPDoer
}

// New creates an API. defaultBaseURL is used when cfg.BaseURL is empty.
func New(cfg Config, defaultBaseURL string) *API {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	doer := cfg.HTTPClient
	if doer == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = 10 * time.Second
		}
		rc := resilience.DefaultClientConfig(cfg.Provider)
		rc.Timeout = timeout
		rc.InitialInterval = 200 * time.Millisecond
		doer = resilience.NewClient(rc)
	}

	return &API{
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    doer,
	}
}

// Get requests baseURL/endpoint with q plus the API key and decodes the
// JSON body into out.
func (a *API) Get(ctx context.Context, endpoint string, q url.Values, out any) error {
	if q == nil {
		q = url.Values{}
	}
	q.Set("appid", a.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"/"+endpoint+"?"+q.Encode(), http.NoBody)
	if err != nil {
		return fmt.Errorf("create %s request: %w", endpoint, err)
	}

	resp, err := a.http.Do(req)
	if err != nil {
		return fmt.Errorf("call %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &StatusError{Endpoint: endpoint, StatusCode: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", endpoint, err)
	}
	return nil
}

// Coordinates returns lat/lon query parameters at the precision the API uses.
func Coordinates(lat, lon float64) url.Values {
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(lat, 'f', 6, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', 6, 64))
	return q
}
