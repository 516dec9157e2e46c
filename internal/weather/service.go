package weather

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/breatheroute/airtracker/internal/pointcache"
)

// Provider fetches current weather.
type Provider interface {
	GetCurrentWeather(ctx context.Context, lat, lon float64) (*Observation, error)
	Name() string
}

// ServiceConfig holds configuration for the weather service.
type ServiceConfig struct {
	Provider Provider
	Logger   zerolog.Logger

	// CacheTTL is how long an observation is reused (default: 10 minutes).
	CacheTTL time.Duration

	// CacheGridSize is the cache cell size in degrees (default: 0.1).
	CacheGridSize float64

	// StaleIfErrorTTL is how old an observation may be and still be served
	// when the provider fails (default: 1 hour, negative disables).
	StaleIfErrorTTL time.Duration

	// Now overrides the cache clock.
	Now func() time.Time
}

// Service serves cached current weather.
type Service struct {
	provider Provider
	logger   zerolog.Logger
	cache    *pointcache.Cache[*Observation]
}

// NewService creates a new weather service.
func NewService(cfg ServiceConfig) *Service {
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = 10 * time.Minute
	}
	if cfg.CacheGridSize == 0 {
		cfg.CacheGridSize = 0.1
	}
	switch {
	case cfg.StaleIfErrorTTL == 0:
		cfg.StaleIfErrorTTL = time.Hour
	case cfg.StaleIfErrorTTL < 0:
		cfg.StaleIfErrorTTL = 0
	}

	return &Service{
		provider: cfg.Provider,
		logger:   cfg.Logger,
		cache: pointcache.New[*Observation](pointcache.Config{
			Name:     "weather",
			TTL:      cfg.CacheTTL,
			StaleTTL: cfg.StaleIfErrorTTL,
			GridSize: cfg.CacheGridSize,
			Now:      cfg.Now,
			Logger:   cfg.Logger,
		}),
	}
}

// GetCurrentWeather returns current weather for a location.
func (s *Service) GetCurrentWeather(ctx context.Context, lat, lon float64) (*Observation, error) {
	if !pointcache.ValidCoordinates(lat, lon) {
		return nil, ErrInvalidCoordinates
	}

	obs, err := s.cache.Get(ctx, lat, lon, func(ctx context.Context) (*Observation, error) {
		s.logger.Debug().
			Float64("lat", lat).
			Float64("lon", lon).
			Str("provider", s.provider.Name()).
			Msg("fetching weather from provider")
		obs, err := s.provider.GetCurrentWeather(ctx, lat, lon)
		if err == nil && obs == nil {
			return nil, ErrNoData
		}
		return obs, err
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProviderUnavailable, err)
	}
	return obs, nil
}

// InvalidateCache clears all cached observations.
func (s *Service) InvalidateCache() {
	s.cache.Invalidate()
}

// CacheStats returns cache statistics.
func (s *Service) CacheStats() pointcache.Stats {
	return s.cache.Stats()
}
