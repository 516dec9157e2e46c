package middleware_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/breatheroute/airtracker/internal/api/middleware"
)

// logLines decodes every JSON log line written to buf.
func logLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var out []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		out = append(out, entry)
	}
	return out
}

func TestLogger_RequestLine(t *testing.T) {
	var buf bytes.Buffer

	r := chi.NewRouter()
	r.Use(middleware.Logger(zerolog.New(&buf)))
	r.Get("/v1/reports", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"city":"Delhi"}`))
	})

	req := httptest.NewRequest(http.MethodGet, "/v1/reports?city=Delhi", http.NoBody)
	req.Header.Set("User-Agent", "airtracker-test")
	r.ServeHTTP(httptest.NewRecorder(), req)

	lines := logLines(t, &buf)
	require.Len(t, lines, 1)
	entry := lines[0]
	assert.Equal(t, "request completed", entry["message"])
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "GET", entry["method"])
	assert.Equal(t, "/v1/reports", entry["path"])
	assert.Equal(t, "/v1/reports", entry["route"])
	assert.Equal(t, float64(200), entry["status"])
	assert.Equal(t, float64(16), entry["bytes"])
	assert.Equal(t, "airtracker-test", entry["user_agent"])
	assert.Contains(t, entry, "duration")
}

func TestLogger_LevelByStatus(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		status int
		level  string
	}{
		{"server error", "/v1/reports", http.StatusBadGateway, "error"},
		{"client error", "/v1/reports", http.StatusNotFound, "warn"},
		{"success", "/v1/reports", http.StatusOK, "info"},
		{"quiet probe", "/v1/ops/health", http.StatusOK, "debug"},
		{"failing probe stays loud", "/v1/ops/ready", http.StatusServiceUnavailable, "error"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			handler := middleware.Logger(zerolog.New(&buf), "/v1/ops/health", "/v1/ops/ready")(
				http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
					w.WriteHeader(tc.status)
				}))

			handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, tc.path, http.NoBody))

			lines := logLines(t, &buf)
			require.Len(t, lines, 1)
			assert.Equal(t, tc.level, lines[0]["level"])
			assert.Equal(t, float64(tc.status), lines[0]["status"])
		})
	}
}

func TestLogger_ImplicitOKStatus(t *testing.T) {
	var buf bytes.Buffer
	handler := middleware.Logger(zerolog.New(&buf))(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/airbot", http.NoBody))

	lines := logLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, float64(200), lines[0]["status"])
}

func TestLogger_RequestScopedLogger(t *testing.T) {
	var buf bytes.Buffer

	handler := middleware.RequestID(middleware.Logger(zerolog.New(&buf))(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			middleware.LoggerFrom(r.Context(), zerolog.Nop()).Info().Str("city", "Delhi").Msg("generating report")
			w.WriteHeader(http.StatusOK)
		})))

	req := httptest.NewRequest(http.MethodGet, "/v1/reports", http.NoBody)
	req.Header.Set("X-Request-Id", "req-123")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	lines := logLines(t, &buf)
	require.Len(t, lines, 2)
	assert.Equal(t, "generating report", lines[0]["message"])
	assert.Equal(t, "req-123", lines[0]["request_id"])
	assert.Equal(t, "Delhi", lines[0]["city"])
	assert.Equal(t, "request completed", lines[1]["message"])
	assert.Equal(t, "req-123", lines[1]["request_id"])
}

func TestLogger_IncludesTraceContext(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})
	defer func() { _ = tp.Shutdown(context.Background()) }()

	var buf bytes.Buffer
	handler := middleware.Tracing()(middleware.Logger(zerolog.New(&buf))(
		http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		})))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/reports", http.NoBody))

	lines := logLines(t, &buf)
	require.Len(t, lines, 1)
	traceID, _ := lines[0]["trace_id"].(string)
	spanID, _ := lines[0]["span_id"].(string)
	assert.Len(t, traceID, 32)
	assert.Len(t, spanID, 16)
}

func TestLoggerFrom_Fallback(t *testing.T) {
	var buf bytes.Buffer
	fallback := zerolog.New(&buf)

	l := middleware.LoggerFrom(context.Background(), fallback)
	l.Info().Msg("fallback used")

	assert.Contains(t, buf.String(), "fallback used")
}
