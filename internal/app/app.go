// Package app wires the upstream providers, caches and report service
// shared by the tracker, API and worker binaries.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/breatheroute/airtracker/internal/airquality"
	airqualityowm "github.com/breatheroute/airtracker/internal/airquality/openweathermap"
	"github.com/breatheroute/airtracker/internal/config"
	"github.com/breatheroute/airtracker/internal/database"
	"github.com/breatheroute/airtracker/internal/geocoding"
	geocodingowm "github.com/breatheroute/airtracker/internal/geocoding/openweathermap"
	"github.com/breatheroute/airtracker/internal/history"
	"github.com/breatheroute/airtracker/internal/provider/resilience"
	"github.com/breatheroute/airtracker/internal/report"
	"github.com/breatheroute/airtracker/internal/telemetry"
	"github.com/breatheroute/airtracker/internal/weather"
	weatherowm "github.com/breatheroute/airtracker/internal/weather/openweathermap"
)

// BaseURLs overrides the OpenWeatherMap endpoints. Empty fields use the defaults.
type BaseURLs struct {
	Geocoding string
	Data      string
}

// Options configures Build.
type Options struct {
	Config  *config.Config
	Logger  zerolog.Logger
	Metrics *telemetry.ReportMetrics

	// History receives a record of every generated report (optional).
	History history.Repository

	BaseURLs BaseURLs
}

// Stack is the assembled report pipeline.
type Stack struct {
	Registry   *resilience.Registry
	Geocoding  *geocoding.Service
	AirQuality *airquality.Service
	Weather    *weather.Service
	Reports    *report.Service
}

// Build creates one resilient client per upstream, registers each with a
// shared provider registry, and layers the cached services on top.
func Build(opts Options) *Stack {
	cfg := opts.Config
	registry := resilience.NewRegistry()

	geoClient := geocodingowm.NewClient(geocodingowm.ClientConfig{
		APIKey:     cfg.OpenWeatherAPIKey,
		BaseURL:    opts.BaseURLs.Geocoding,
		HTTPClient: newResilientClient(geocodingowm.ProviderName, registry, opts.Logger),
	})
	airClient := airqualityowm.NewClient(airqualityowm.ClientConfig{
		APIKey:     cfg.OpenWeatherAPIKey,
		BaseURL:    opts.BaseURLs.Data,
		HTTPClient: newResilientClient(airqualityowm.ProviderName, registry, opts.Logger),
	})
	weatherClient := weatherowm.NewClient(weatherowm.ClientConfig{
		APIKey:     cfg.OpenWeatherAPIKey,
		BaseURL:    opts.BaseURLs.Data,
		HTTPClient: newResilientClient(weatherowm.ProviderName, registry, opts.Logger),
	})

	geo := geocoding.NewService(geocoding.ServiceConfig{
		Provider: geoClient,
		Logger:   opts.Logger.With().Str("component", "geocoding").Logger(),
	})
	air := airquality.NewService(airquality.ServiceConfig{
		Provider: airClient,
		Logger:   opts.Logger.With().Str("component", "airquality").Logger(),
		CacheTTL: cfg.AirQualityCacheTTL,
	})
	wx := weather.NewService(weather.ServiceConfig{
		Provider: weatherClient,
		Logger:   opts.Logger.With().Str("component", "weather").Logger(),
		CacheTTL: cfg.WeatherCacheTTL,
	})

	reports := report.NewService(report.ServiceConfig{
		Geocoder:   geo,
		AirQuality: air,
		Weather:    wx,
		History:    opts.History,
		Logger:     opts.Logger.With().Str("component", "report").Logger(),
		Metrics:    opts.Metrics,
		CacheTTL:   cfg.ReportCacheTTL,
	})

	return &Stack{
		Registry:   registry,
		Geocoding:  geo,
		AirQuality: air,
		Weather:    wx,
		Reports:    reports,
	}
}

func newResilientClient(name string, registry *resilience.Registry, logger zerolog.Logger) *resilience.Client {
	cfg := resilience.DefaultClientConfig(name)
	cfg.Registry = registry
	cfg.Logger = logger.With().Str("component", "resilience").Logger()
	return resilience.NewClient(cfg)
}

// OpenHistory returns the history repository selected by configuration:
// PostgreSQL when enabled, otherwise an in-memory store. The returned close
// function releases the pool and is never nil. pinger is nil for the
// in-memory store.
func OpenHistory(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (repo history.Repository, pinger *database.Pinger, closeFn func(), err error) {
	if !cfg.DatabaseEnabled {
		logger.Info().Msg("history stored in memory")
		return history.NewInMemoryRepository(0), nil, func() {}, nil
	}

	dbConfig, err := database.ConfigFromEnv()
	if err != nil {
		return nil, nil, nil, err
	}
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := database.Connect(connectCtx, dbConfig)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("connect history database: %w", err)
	}

	pg := history.NewPostgresRepository(pool)
	if err := pg.EnsureSchema(connectCtx); err != nil {
		pool.Close()
		return nil, nil, nil, fmt.Errorf("ensure history schema: %w", err)
	}

	logger.Info().Str("dsn", dbConfig.Redacted()).Msg("database connected")

	return pg, &database.Pinger{Pool: pool}, pool.Close, nil
}
