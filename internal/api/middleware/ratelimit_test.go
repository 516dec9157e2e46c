package middleware_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/breatheroute/airtracker/internal/api/middleware"
	"github.com/breatheroute/airtracker/internal/api/models"
)

func limited(cfg middleware.RateLimitConfig) http.Handler {
	return middleware.RequestID(middleware.RateLimitByIP(cfg)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})))
}

// burst sends n requests from remoteAddr and returns the status codes.
func burst(h http.Handler, remoteAddr, path string, n int) ([]int, *httptest.ResponseRecorder) {
	codes := make([]int, 0, n)
	var rec *httptest.ResponseRecorder
	for i := 0; i < n; i++ {
		req := httptest.NewRequest(http.MethodGet, path, http.NoBody)
		req.RemoteAddr = remoteAddr
		rec = httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	return codes, rec
}

func TestRateLimitByIP_Budget(t *testing.T) {
	tests := []struct {
		name     string
		limit    int
		requests int
		blocked  int
	}{
		{"within budget", 5, 5, 0},
		{"one over", 3, 4, 1},
		{"far over", 2, 6, 4},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := limited(middleware.RateLimitConfig{RequestLimit: tc.limit, WindowLength: time.Minute})

			codes, _ := burst(h, "198.51.100.7:4000", "/v1/reports", tc.requests)

			blocked := 0
			for i, code := range codes {
				if i < tc.limit {
					assert.Equal(t, http.StatusOK, code, "request %d", i+1)
					continue
				}
				assert.Equal(t, http.StatusTooManyRequests, code, "request %d", i+1)
				blocked++
			}
			assert.Equal(t, tc.blocked, blocked)
		})
	}
}

func TestRateLimitByIP_KeysByClient(t *testing.T) {
	h := limited(middleware.RateLimitConfig{RequestLimit: 1, WindowLength: time.Minute})

	codes, _ := burst(h, "172.16.0.1:1111", "/v1/reports", 2)
	assert.Equal(t, []int{http.StatusOK, http.StatusTooManyRequests}, codes)

	codes, _ = burst(h, "172.16.0.2:1111", "/v1/reports", 1)
	assert.Equal(t, []int{http.StatusOK}, codes, "another client has its own budget")

	codes, _ = burst(h, "172.16.0.1:2222", "/v1/reports", 1)
	assert.Equal(t, []int{http.StatusTooManyRequests}, codes, "source port is not part of the key")
}

func TestRateLimitByIP_ProblemResponse(t *testing.T) {
	h := limited(middleware.RateLimitConfig{RequestLimit: 1, WindowLength: 10 * time.Second})

	_, rec := burst(h, "203.0.113.1:5000", "/v1/airbot", 2)

	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "10", rec.Header().Get("Retry-After"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))

	var problem models.Problem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	assert.Equal(t, models.ProblemTypeTooManyRequests, problem.Type)
	assert.Equal(t, "/v1/airbot", problem.Instance)
	assert.Equal(t, rec.Header().Get("X-Request-Id"), problem.TraceID)
	assert.Contains(t, problem.Detail, "Rate limit exceeded")
}

func TestRateLimitConfigs(t *testing.T) {
	tests := []struct {
		name       string
		cfg        middleware.RateLimitConfig
		limit      int
		retryAfter int
	}{
		{"report", middleware.ReportRateLimit, 30, 60},
		{"standard", middleware.StandardRateLimit, 100, 60},
		{"per minute", middleware.PerMinute(12), 12, 60},
		{"per minute zero falls back", middleware.PerMinute(0), 30, 60},
		{"per minute negative falls back", middleware.PerMinute(-3), 30, 60},
		{"fractional window rounds up", middleware.RateLimitConfig{RequestLimit: 1, WindowLength: 1500 * time.Millisecond}, 1, 2},
		{"zero window floors at one", middleware.RateLimitConfig{RequestLimit: 1}, 1, 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.limit, tc.cfg.RequestLimit)
			assert.Equal(t, tc.retryAfter, tc.cfg.RetryAfter())
		})
	}
}
