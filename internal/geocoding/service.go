package geocoding

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Provider defines the interface for geocoding providers.
type Provider interface {
	// Lookup resolves a city name to its best matching location.
	Lookup(ctx context.Context, city string) (*Location, error)

	// Name returns the provider name for logging.
	Name() string
}

// ServiceConfig holds configuration for the geocoding service.
type ServiceConfig struct {
	Provider Provider
	Logger   zerolog.Logger

	// CacheTTL is how long resolved locations are kept (default: 24 hours).
	CacheTTL time.Duration

	// NegativeCacheTTL is how long a "not found" answer is kept (default: 10 minutes).
	NegativeCacheTTL time.Duration
}

// Service resolves city names with caching. City coordinates rarely change,
// so resolved locations are kept much longer than readings.
type Service struct {
	provider         Provider
	logger           zerolog.Logger
	cacheTTL         time.Duration
	negativeCacheTTL time.Duration

	mu    sync.RWMutex
	cache map[string]*cachedLocation
}

type cachedLocation struct {
	location  *Location // nil for a cached "not found"
	expiresAt time.Time
}

// NewService creates a new geocoding service.
func NewService(cfg ServiceConfig) *Service {
	cacheTTL := cfg.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 24 * time.Hour
	}

	negativeCacheTTL := cfg.NegativeCacheTTL
	if negativeCacheTTL == 0 {
		negativeCacheTTL = 10 * time.Minute
	}

	return &Service{
		provider:         cfg.Provider,
		logger:           cfg.Logger,
		cacheTTL:         cacheTTL,
		negativeCacheTTL: negativeCacheTTL,
		cache:            make(map[string]*cachedLocation),
	}
}

// Resolve returns the location for a city name.
func (s *Service) Resolve(ctx context.Context, city string) (*Location, error) {
	key := NormalizeCity(city)
	if key == "" {
		return nil, ErrEmptyCity
	}

	s.mu.RLock()
	cached, ok := s.cache[key]
	s.mu.RUnlock()
	if ok && time.Now().Before(cached.expiresAt) {
		if cached.location == nil {
			return nil, fmt.Errorf("%w: %s", ErrCityNotFound, city)
		}
		return cached.location, nil
	}

	s.logger.Debug().
		Str("city", key).
		Str("provider", s.provider.Name()).
		Msg("resolving city")

	loc, err := s.provider.Lookup(ctx, key)
	if err != nil {
		if errors.Is(err, ErrCityNotFound) {
			s.store(key, nil, s.negativeCacheTTL)
			return nil, fmt.Errorf("%w: %s", ErrCityNotFound, city)
		}
		s.logger.Error().Err(err).Str("city", key).Msg("failed to resolve city")
		return nil, fmt.Errorf("%w: %w", ErrProviderUnavailable, err)
	}

	s.store(key, loc, s.cacheTTL)
	return loc, nil
}

func (s *Service) store(key string, loc *Location, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache[key] = &cachedLocation{location: loc, expiresAt: time.Now().Add(ttl)}
}
