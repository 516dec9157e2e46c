package middleware

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/httprate"

	"github.com/breatheroute/airtracker/internal/api/models"
)

// RateLimitConfig is a request budget per client IP.
type RateLimitConfig struct {
	RequestLimit int
	WindowLength time.Duration
}

var (
	// ReportRateLimit guards endpoints that may call OpenWeatherMap (30 req/min).
	ReportRateLimit = RateLimitConfig{
		RequestLimit: 30,
		WindowLength: time.Minute,
	}

	// StandardRateLimit guards endpoints served from memory (100 req/min).
	StandardRateLimit = RateLimitConfig{
		RequestLimit: 100,
		WindowLength: time.Minute,
	}
)

// PerMinute returns a config allowing n requests per minute.
// Non-positive n yields ReportRateLimit.
func PerMinute(n int) RateLimitConfig {
	if n <= 0 {
		return ReportRateLimit
	}
	return RateLimitConfig{RequestLimit: n, WindowLength: time.Minute}
}

// RetryAfter is the Retry-After value, in whole seconds, sent when the budget is spent.
func (c RateLimitConfig) RetryAfter() int {
	secs := int(math.Ceil(c.WindowLength.Seconds()))
	if secs < 1 {
		return 1
	}
	return secs
}

// RateLimitByIP limits requests per client IP (as resolved by chi's RealIP).
// Exhausted clients get a 429 problem with Retry-After set to the window length.
func RateLimitByIP(cfg RateLimitConfig) func(http.Handler) http.Handler {
	return httprate.Limit(
		cfg.RequestLimit,
		cfg.WindowLength,
		httprate.WithKeyFuncs(httprate.KeyByRealIP),
		httprate.WithLimitHandler(limitExceeded(cfg)),
	)
}

func limitExceeded(cfg RateLimitConfig) http.HandlerFunc {
	retryAfter := strconv.Itoa(cfg.RetryAfter())
	return func(w http.ResponseWriter, r *http.Request) {
		problem := models.NewProblem(models.ProblemTypeTooManyRequests, GetRequestID(r.Context()), "Rate limit exceeded. Please try again later.")
		problem.Instance = r.URL.Path

		w.Header().Set("Retry-After", retryAfter)
		problem.Write(w)
	}
}
