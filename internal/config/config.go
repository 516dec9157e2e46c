// Package config loads service configuration from the environment,
// optionally seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ErrMissingAPIKey is returned when OPENWEATHER_API_KEY is not set.
var ErrMissingAPIKey = errors.New("OPENWEATHER_API_KEY is required")

// Config holds settings shared by the tracker, API and worker binaries.
type Config struct {
	// OpenWeatherAPIKey authenticates every upstream call. Environment only.
	OpenWeatherAPIKey string

	Env  string
	Port string

	OTelEnabled     bool
	OTLPEndpoint    string
	OTLPInsecure    bool
	OTelSampleRatio float64

	// DatabaseEnabled switches history to PostgreSQL (see database.ConfigFromEnv).
	DatabaseEnabled bool

	ReportCacheTTL     time.Duration
	AirQualityCacheTTL time.Duration
	WeatherCacheTTL    time.Duration

	// RateLimitPerMinute is the per-IP budget for report lookups.
	RateLimitPerMinute int

	// RequireTLS rejects requests forwarded over plain HTTP.
	RequireTLS bool

	// NarrationLineDelay paces the console speaker.
	NarrationLineDelay time.Duration

	// WarmCities are refreshed by the worker.
	WarmCities       []string
	WarmInterval     time.Duration
	WarmConcurrency  int
	PubSubProjectID  string
	PubSubSubscriber string

	// DotEnvLoaded reports whether a .env file was read.
	DotEnvLoaded bool
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first when present; real environment variables win.
// Every missing or malformed variable is reported in one joined error.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := godotenv.Load(); err == nil {
		cfg.DotEnvLoaded = true
	}

	var env envReader
	cfg.OpenWeatherAPIKey = strings.TrimSpace(os.Getenv("OPENWEATHER_API_KEY"))
	if cfg.OpenWeatherAPIKey == "" {
		env.errs = append(env.errs, ErrMissingAPIKey)
	}

	cfg.Env = getenvDefault("APP_ENV", "development")
	cfg.Port = getenvDefault("APP_PORT", "8080")
	cfg.OTelEnabled = env.bool("OTEL_ENABLED", false)
	cfg.OTLPEndpoint = getenvDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317")
	cfg.OTLPInsecure = env.bool("OTEL_EXPORTER_OTLP_INSECURE", true)
	cfg.OTelSampleRatio = env.float("OTEL_TRACES_SAMPLER_ARG", 1)
	cfg.DatabaseEnabled = env.bool("DB_ENABLED", false)
	cfg.RequireTLS = env.bool("REQUIRE_TLS", false)

	cfg.ReportCacheTTL = env.duration("REPORT_CACHE_TTL", 5*time.Minute)
	cfg.AirQualityCacheTTL = env.duration("AIR_QUALITY_CACHE_TTL", 5*time.Minute)
	cfg.WeatherCacheTTL = env.duration("WEATHER_CACHE_TTL", 10*time.Minute)
	cfg.NarrationLineDelay = env.duration("NARRATION_LINE_DELAY", 0)
	cfg.WarmInterval = env.duration("WARM_INTERVAL", 15*time.Minute)

	cfg.RateLimitPerMinute = env.int("RATE_LIMIT_PER_MINUTE", 60)
	cfg.WarmConcurrency = env.int("WARM_CONCURRENCY", 3)
	cfg.WarmCities = splitList(os.Getenv("WARM_CITIES"))
	cfg.PubSubProjectID = os.Getenv("PUBSUB_PROJECT_ID")
	cfg.PubSubSubscriber = os.Getenv("PUBSUB_SUBSCRIPTION")

	if err := errors.Join(env.errs...); err != nil {
		return nil, err
	}
	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// envReader parses typed variables, collecting a parse error per bad key.
type envReader struct {
	errs []error
}

func (e *envReader) fail(key, v string, err error) {
	e.errs = append(e.errs, fmt.Errorf("invalid %s %q: %w", key, v, err))
}

func (e *envReader) int(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		e.fail(key, v, err)
		return def
	}
	return n
}

func (e *envReader) float(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		e.fail(key, v, err)
		return def
	}
	return f
}

func (e *envReader) bool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		e.fail(key, v, err)
		return def
	}
	return b
}

func (e *envReader) duration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		e.fail(key, v, err)
		return def
	}
	return d
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if s := strings.TrimSpace(part); s != "" {
			out = append(out, s)
		}
	}
	return out
}
