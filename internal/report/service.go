// Package report turns a city name into a classified, narrated air quality report.
package report

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/breatheroute/airtracker/internal/advisory"
	"github.com/breatheroute/airtracker/internal/airquality"
	"github.com/breatheroute/airtracker/internal/geocoding"
	"github.com/breatheroute/airtracker/internal/history"
	"github.com/breatheroute/airtracker/internal/telemetry"
	"github.com/breatheroute/airtracker/internal/weather"
)

const tracerName = "github.com/breatheroute/airtracker/internal/report"

// ErrPollutionUnavailable is returned when no pollution reading could be obtained.
var ErrPollutionUnavailable = errors.New("air pollution data unavailable")

// Geocoder resolves city names.
type Geocoder interface {
	Resolve(ctx context.Context, city string) (*geocoding.Location, error)
}

// PollutionSource returns current pollution readings.
type PollutionSource interface {
	GetPollution(ctx context.Context, lat, lon float64) (*airquality.Pollution, error)
}

// WeatherSource returns current weather.
type WeatherSource interface {
	GetCurrentWeather(ctx context.Context, lat, lon float64) (*weather.Observation, error)
}

// ServiceConfig holds configuration for the report service.
type ServiceConfig struct {
	Geocoder   Geocoder
	AirQuality PollutionSource

	// Weather is optional. Without it, or when it fails, reports omit weather.
	Weather WeatherSource

	// History is optional. Recording failures never fail a report.
	History history.Repository

	Logger  zerolog.Logger
	Metrics *telemetry.ReportMetrics

	// CacheTTL is how long a generated report is reused (default: 5 minutes).
	CacheTTL time.Duration

	// Now overrides the clock (tests).
	Now func() time.Time
}

// Result is a generated report together with its narrative.
type Result struct {
	Location    geocoding.Location
	Pollution   *airquality.Pollution
	Weather     *weather.Observation
	Report      *advisory.Report
	Narrative   advisory.Narrative
	GeneratedAt time.Time
}

// Service generates reports with a per-city cache.
type Service struct {
	geocoder   Geocoder
	airQuality PollutionSource
	weather    WeatherSource
	history    history.Repository
	logger     zerolog.Logger
	metrics    *telemetry.ReportMetrics
	cacheTTL   time.Duration
	now        func() time.Time

	mu    sync.RWMutex
	cache map[string]*cachedResult
}

type cachedResult struct {
	result    *Result
	expiresAt time.Time
}

// NewService creates a new report service.
func NewService(cfg ServiceConfig) *Service {
	cacheTTL := cfg.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 5 * time.Minute
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Service{
		geocoder:   cfg.Geocoder,
		airQuality: cfg.AirQuality,
		weather:    cfg.Weather,
		history:    cfg.History,
		logger:     cfg.Logger,
		metrics:    cfg.Metrics,
		cacheTTL:   cacheTTL,
		now:        now,
		cache:      make(map[string]*cachedResult),
	}
}

// Generate returns the report for a city, reusing a cached one when fresh.
func (s *Service) Generate(ctx context.Context, city string) (*Result, error) {
	key := geocoding.NormalizeCity(city)
	if key == "" {
		return nil, geocoding.ErrEmptyCity
	}

	s.mu.RLock()
	cached, ok := s.cache[key]
	s.mu.RUnlock()
	hit := ok && s.now().Before(cached.expiresAt)
	s.metrics.RecordCacheLookup(ctx, hit)
	if hit {
		return cached.result, nil
	}

	return s.generate(ctx, key, city)
}

// Refresh regenerates the report for a city regardless of the cache.
func (s *Service) Refresh(ctx context.Context, city string) (*Result, error) {
	key := geocoding.NormalizeCity(city)
	if key == "" {
		return nil, geocoding.ErrEmptyCity
	}
	return s.generate(ctx, key, city)
}

// InvalidateCache drops all cached reports.
func (s *Service) InvalidateCache() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache = make(map[string]*cachedResult)
}

func (s *Service) generate(ctx context.Context, key, city string) (*Result, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "report.Generate")
	defer span.End()
	span.SetAttributes(attribute.String("city", key))

	result, err := s.build(ctx, city)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.metrics.RecordReport(ctx, outcome(err))
		return nil, err
	}
	s.metrics.RecordReport(ctx, "ok")

	for _, r := range result.Report.Readings {
		s.metrics.RecordReading(ctx, string(r.Pollutant), r.Band.Code())
	}

	s.mu.Lock()
	s.cache[key] = &cachedResult{result: result, expiresAt: result.GeneratedAt.Add(s.cacheTTL)}
	s.mu.Unlock()

	s.record(ctx, result)

	s.logger.Info().
		Str("city", result.Report.City).
		Int("aqi", int(result.Report.AQI)).
		Str("worst_band", result.Report.WorstBand().Code()).
		Bool("weather", result.Report.Weather != nil).
		Msg("report generated")

	return result, nil
}

func (s *Service) build(ctx context.Context, city string) (*Result, error) {
	start := time.Now()
	loc, err := s.geocoder.Resolve(ctx, city)
	s.metrics.RecordProviderRequest(ctx, "geocode", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("resolve city: %w", err)
	}

	start = time.Now()
	pollution, err := s.airQuality.GetPollution(ctx, loc.Lat, loc.Lon)
	s.metrics.RecordProviderRequest(ctx, "pollution", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPollutionUnavailable, err)
	}

	obs := s.fetchWeather(ctx, loc)

	name := loc.Name
	if name == "" {
		name = city
	}

	in := advisory.Input{
		City: name,
		Lat:  loc.Lat,
		Lon:  loc.Lon,
		AQI:  advisory.AQICategory(pollution.AQI),
		PM25: pollution.Components.PM25,
		PM10: pollution.Components.PM10,
		CO:   pollution.Components.CO,
		NO2:  pollution.Components.NO2,
	}
	if obs != nil {
		in.Weather = &advisory.WeatherSnapshot{
			TemperatureC: obs.TemperatureC,
			WindSpeedMs:  obs.WindSpeedMs,
			HumidityPct:  obs.HumidityPct,
		}
	}

	r, err := advisory.BuildReport(in)
	if err != nil {
		return nil, fmt.Errorf("build report for %s: %w", name, err)
	}

	return &Result{
		Location:    *loc,
		Pollution:   pollution,
		Weather:     obs,
		Report:      r,
		Narrative:   advisory.Compose(r),
		GeneratedAt: s.now(),
	}, nil
}

// fetchWeather returns nil when weather is not configured or unavailable.
func (s *Service) fetchWeather(ctx context.Context, loc *geocoding.Location) *weather.Observation {
	if s.weather == nil {
		return nil
	}

	start := time.Now()
	obs, err := s.weather.GetCurrentWeather(ctx, loc.Lat, loc.Lon)
	s.metrics.RecordProviderRequest(ctx, "weather", time.Since(start), err)
	if err != nil {
		s.logger.Warn().Err(err).
			Str("city", loc.Name).
			Msg("weather unavailable, omitting weather from report")
		return nil
	}
	return obs
}

func (s *Service) record(ctx context.Context, result *Result) {
	if s.history == nil {
		return
	}
	if err := s.history.Record(ctx, history.NewEntry(result.Report, result.GeneratedAt)); err != nil {
		s.logger.Warn().Err(err).
			Str("city", result.Report.City).
			Msg("failed to record report history")
	}
}

func outcome(err error) string {
	switch {
	case errors.Is(err, geocoding.ErrCityNotFound):
		return "not_found"
	case errors.Is(err, advisory.ErrInvalidReading):
		return "invalid"
	default:
		return "error"
	}
}
