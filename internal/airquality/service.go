package airquality

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/breatheroute/airtracker/internal/pointcache"
)

// Provider fetches current pollution for a coordinate.
type Provider interface {
	FetchPollution(ctx context.Context, lat, lon float64) (*Pollution, error)
	Name() string
}

// Cache defaults.
const (
	DefaultCacheTTL      = 5 * time.Minute
	DefaultCacheGridSize = 0.05
	DefaultStaleTTL      = 30 * time.Minute
)

// ServiceConfig configures a Service. Zero durations and grid size take the
// package defaults. A negative StaleIfErrorTTL disables stale fallback.
type ServiceConfig struct {
	Provider        Provider
	Logger          zerolog.Logger
	CacheTTL        time.Duration
	CacheGridSize   float64
	StaleIfErrorTTL time.Duration

	// Now overrides the cache clock.
	Now func() time.Time
}

// Service serves pollution readings through a grid cache in front of a
// Provider.
type Service struct {
	provider Provider
	logger   zerolog.Logger
	cache    *pointcache.Cache[*Pollution]
}

// NewService creates a new air quality service.
func NewService(cfg ServiceConfig) *Service {
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = DefaultCacheTTL
	}
	if cfg.CacheGridSize == 0 {
		cfg.CacheGridSize = DefaultCacheGridSize
	}
	switch {
	case cfg.StaleIfErrorTTL == 0:
		cfg.StaleIfErrorTTL = DefaultStaleTTL
	case cfg.StaleIfErrorTTL < 0:
		cfg.StaleIfErrorTTL = 0
	}

	logger := cfg.Logger.With().Str("provider", cfg.Provider.Name()).Logger()
	return &Service{
		provider: cfg.Provider,
		logger:   logger,
		cache: pointcache.New[*Pollution](pointcache.Config{
			Name:     "air_quality",
			TTL:      cfg.CacheTTL,
			StaleTTL: cfg.StaleIfErrorTTL,
			GridSize: cfg.CacheGridSize,
			Now:      cfg.Now,
			Logger:   logger,
		}),
	}
}

// GetPollution returns the reading for the grid cell containing lat/lon.
// Provider failures are wrapped in ErrProviderUnavailable; a provider that
// answers with no reading yields ErrNoData.
func (s *Service) GetPollution(ctx context.Context, lat, lon float64) (*Pollution, error) {
	if !pointcache.ValidCoordinates(lat, lon) {
		return nil, ErrInvalidCoordinates
	}

	p, err := s.cache.Get(ctx, lat, lon, func(ctx context.Context) (*Pollution, error) {
		s.logger.Debug().Float64("lat", lat).Float64("lon", lon).Msg("fetching air pollution")

		p, err := s.provider.FetchPollution(ctx, lat, lon)
		switch {
		case err != nil:
			s.logger.Error().Err(err).Float64("lat", lat).Float64("lon", lon).Msg("air pollution fetch failed")
			return nil, err
		case p == nil:
			return nil, ErrNoData
		}
		return p, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProviderUnavailable, err)
	}
	return p, nil
}

// InvalidateCache drops every cached reading.
func (s *Service) InvalidateCache() {
	s.cache.Invalidate()
}

// CacheStatus is a cache snapshot tagged with the provider name.
type CacheStatus struct {
	pointcache.Stats
	Provider string
}

// CacheStatus reports the current cache contents.
func (s *Service) CacheStatus() CacheStatus {
	return CacheStatus{Stats: s.cache.Stats(), Provider: s.provider.Name()}
}
