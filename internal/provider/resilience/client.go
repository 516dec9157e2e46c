package resilience

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
)

// ErrCircuitOpen matches every *CircuitOpenError.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// ClientConfig configures a Client. Zero values take the defaults of
// DefaultClientConfig.
type ClientConfig struct {
	// Name identifies the upstream provider (e.g. "openweathermap-geo").
	Name string

	// Timeout bounds each attempt, not the whole call.
	Timeout time.Duration

	// MaxRetries is the number of attempts after the first.
	MaxRetries uint64

	// InitialInterval and MaxInterval bound the exponential backoff. A
	// Retry-After hint from the upstream is honored up to MaxInterval.
	InitialInterval time.Duration
	MaxInterval     time.Duration

	CircuitBreaker *CircuitBreakerConfig

	// Registry, when set, receives every call outcome and the client
	// registers itself under Name.
	Registry *Registry

	Transport http.RoundTripper

	// Logger receives retries, and breaker transitions unless the breaker
	// config sets its own OnStateChange hook.
	Logger zerolog.Logger
}

// DefaultClientConfig returns defaults suited to OpenWeatherMap style APIs.
func DefaultClientConfig(name string) ClientConfig {
	cb := DefaultCircuitBreakerConfig(name)
	return ClientConfig{
		Name:            name,
		Timeout:         10 * time.Second,
		MaxRetries:      3,
		InitialInterval: 100 * time.Millisecond,
		MaxInterval:     5 * time.Second,
		CircuitBreaker:  &cb,
	}
}

// Client is an HTTP client that retries transient failures with backoff
// behind a per-provider circuit breaker.
type Client struct {
	name        string
	cfg         ClientConfig
	http        *http.Client
	breaker     *gobreaker.CircuitBreaker[*http.Response]
	openTimeout time.Duration
}

// NewClient creates a resilient client and registers it with cfg.Registry.
func NewClient(cfg ClientConfig) *Client {
	def := DefaultClientConfig(cfg.Name)
	if cfg.Timeout == 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = def.MaxRetries
	}
	if cfg.InitialInterval == 0 {
		cfg.InitialInterval = def.InitialInterval
	}
	if cfg.MaxInterval == 0 {
		cfg.MaxInterval = def.MaxInterval
	}

	cb := *def.CircuitBreaker
	if cfg.CircuitBreaker != nil {
		cb = *cfg.CircuitBreaker
	}
	if cb.OnStateChange == nil {
		cb.OnStateChange = LogStateChanges(cfg.Logger)
	}

	c := &Client{
		name:        cfg.Name,
		cfg:         cfg,
		http:        &http.Client{Timeout: cfg.Timeout, Transport: cfg.Transport},
		breaker:     NewCircuitBreaker[*http.Response](cb), //nolint:bodyclose // type param, not response
		openTimeout: cb.Timeout,
	}
	if cfg.Registry != nil {
		cfg.Registry.Register(c.name, c)
	}
	return c
}

// Name returns the provider name this client was created for.
func (c *Client) Name() string {
	return c.name
}

// Do sends req, retrying 5xx, 429 and transport errors. While the breaker
// is open it fails fast with a *CircuitOpenError. A retryable status that
// outlives the retry budget is returned as a response, not an error, so
// callers can map it themselves.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	policy := &hintedBackOff{
		BackOff: backoff.WithMaxRetries(c.exponential(), c.cfg.MaxRetries),
		max:     c.cfg.MaxInterval,
	}

	var last *http.Response
	discard := func() {
		if last != nil {
			last.Body.Close()
			last = nil
		}
	}

	attempt := func() error {
		discard()
		resp, err := c.breaker.Execute(func() (*http.Response, error) { //nolint:bodyclose // caller closes
			r, err := c.http.Do(req.Clone(ctx))
			if err != nil {
				return nil, err
			}
			if retryable(r.StatusCode) {
				return r, &ServerError{StatusCode: r.StatusCode}
			}
			return r, nil
		})
		last = resp

		switch {
		case err == nil:
			return nil
		case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
			discard()
			return backoff.Permanent(&CircuitOpenError{Provider: c.name, RetryAfter: c.openTimeout})
		}
		if resp != nil {
			policy.hint = retryAfter(resp.Header.Get("Retry-After"))
		}
		return err
	}

	notify := func(err error, wait time.Duration) {
		c.cfg.Logger.Debug().Err(err).
			Str("provider", c.name).
			Dur("wait", wait).
			Msg("retrying provider request")
	}

	err := backoff.RetryNotify(attempt, backoff.WithContext(policy, ctx), notify)
	if err != nil {
		c.record(err)
		if last != nil {
			return last, nil
		}
		return nil, err
	}

	if last.StatusCode >= 400 {
		c.record(&ServerError{StatusCode: last.StatusCode})
	} else {
		c.record(nil)
	}
	return last, nil
}

func (c *Client) exponential() *backoff.ExponentialBackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.cfg.InitialInterval
	bo.MaxInterval = c.cfg.MaxInterval
	bo.MaxElapsedTime = 0
	return bo
}

func (c *Client) record(err error) {
	if c.cfg.Registry == nil {
		return
	}
	if err != nil {
		c.cfg.Registry.RecordFailure(c.name, err)
		return
	}
	c.cfg.Registry.RecordSuccess(c.name)
}

// CircuitBreakerState returns the current state of the circuit breaker.
func (c *Client) CircuitBreakerState() gobreaker.State {
	return c.breaker.State()
}

// CircuitBreakerCounts returns the current counts of the circuit breaker.
func (c *Client) CircuitBreakerCounts() gobreaker.Counts {
	return c.breaker.Counts()
}

// ServerError is a retryable upstream status (5xx or 429).
type ServerError struct {
	StatusCode int
}

func (e *ServerError) Error() string {
	return "upstream error: " + http.StatusText(e.StatusCode)
}

func retryable(status int) bool {
	return status >= 500 || status == http.StatusTooManyRequests
}

// hintedBackOff waits at least the upstream's Retry-After hint, capped at max,
// before the next attempt.
type hintedBackOff struct {
	backoff.BackOff
	max  time.Duration
	hint time.Duration
}

func (h *hintedBackOff) NextBackOff() time.Duration {
	next := h.BackOff.NextBackOff()
	hint := h.hint
	h.hint = 0
	if next == backoff.Stop {
		return next
	}
	if hint > h.max {
		hint = h.max
	}
	if hint > next {
		return hint
	}
	return next
}

// retryAfter parses a Retry-After header given in seconds or as an HTTP date.
func retryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(v); err == nil {
		if d := time.Until(at); d > 0 {
			return d
		}
	}
	return 0
}
