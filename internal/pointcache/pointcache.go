// Package pointcache caches per-coordinate provider readings.
//
// Nearby coordinates share a grid cell and therefore a cached value.
// Concurrent misses for the same cell collapse into a single provider
// call, and a failed refresh falls back to the last good value while it
// is younger than the stale window.
package pointcache

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// Config holds cache settings.
type Config struct {
	// Name labels log lines, usually the provider name.
	Name string

	// TTL is how long a value is served without refetching.
	TTL time.Duration

	// StaleTTL is how long after a fetch a value may still be served
	// when the provider fails. Zero disables stale fallback.
	StaleTTL time.Duration

	// GridSize is the cell size in degrees.
	GridSize float64

	// SweepInterval is the minimum time between evictions of dead entries
	// (default: 5 minutes).
	SweepInterval time.Duration

	// Now overrides the clock (optional).
	Now func() time.Time

	Logger zerolog.Logger
}

// FetchFunc loads a fresh value for a cell.
type FetchFunc[T any] func(ctx context.Context) (T, error)

// Stats describes the cache contents.
type Stats struct {
	Entries       int
	FreshEntries  int
	LastFetchedAt time.Time
}

// Cache is a grid keyed TTL cache. The zero value is not usable; use New.
type Cache[T any] struct {
	cfg   Config
	group singleflight.Group
	now   func() time.Time

	mu        sync.RWMutex
	entries   map[string]entry[T]
	lastSweep time.Time
}

type entry[T any] struct {
	value     T
	fetchedAt time.Time
}

// New creates a cache. GridSize and TTL must be positive.
func New[T any](cfg Config) *Cache[T] {
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = 5 * time.Minute
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Cache[T]{
		cfg:     cfg,
		now:     now,
		entries: make(map[string]entry[T]),
	}
}

// ValidCoordinates reports whether lat/lon are finite and in range.
func ValidCoordinates(lat, lon float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lon) {
		return false
	}
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

// Key returns the grid cell for a coordinate.
func (c *Cache[T]) Key(lat, lon float64) string {
	size := c.cfg.GridSize
	return fmt.Sprintf("%.4f:%.4f", math.Floor(lat/size)*size, math.Floor(lon/size)*size)
}

// Get returns the cached value for the cell containing lat/lon, calling
// fetch on a miss. The fetch error is returned only when no stale value
// can be served.
func (c *Cache[T]) Get(ctx context.Context, lat, lon float64, fetch FetchFunc[T]) (T, error) {
	key := c.Key(lat, lon)

	if v, ok := c.fresh(key); ok {
		return v, nil
	}

	ch := c.group.DoChan(key, func() (any, error) {
		// Another caller may have stored the cell while this one waited.
		if v, ok := c.fresh(key); ok {
			return v, nil
		}
		v, err := fetch(context.WithoutCancel(ctx))
		if err != nil {
			return v, err
		}
		c.store(key, v)
		return v, nil
	})

	var zero T
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err == nil {
			return res.Val.(T), nil
		}
		if v, fetchedAt, ok := c.stale(key); ok {
			c.cfg.Logger.Warn().Err(res.Err).
				Str("cache", c.cfg.Name).
				Str("cell", key).
				Time("fetched_at", fetchedAt).
				Msg("serving stale value after provider error")
			return v, nil
		}
		return zero, res.Err
	}
}

// Invalidate drops every entry.
func (c *Cache[T]) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry[T])
}

// Stats returns a snapshot of the cache contents.
func (c *Cache[T]) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	now := c.now()
	var s Stats
	s.Entries = len(c.entries)
	for _, e := range c.entries {
		if now.Before(e.fetchedAt.Add(c.cfg.TTL)) {
			s.FreshEntries++
		}
		if e.fetchedAt.After(s.LastFetchedAt) {
			s.LastFetchedAt = e.fetchedAt
		}
	}
	return s
}

func (c *Cache[T]) fresh(key string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok || !c.now().Before(e.fetchedAt.Add(c.cfg.TTL)) {
		var zero T
		return zero, false
	}
	return e.value, true
}

func (c *Cache[T]) stale(key string) (T, time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok || !c.now().Before(e.fetchedAt.Add(c.retention())) {
		var zero T
		return zero, time.Time{}, false
	}
	return e.value, e.fetchedAt, true
}

func (c *Cache[T]) store(key string, v T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	c.entries[key] = entry[T]{value: v, fetchedAt: now}
	c.sweep(now)
}

// retention is how long an entry is useful at all.
func (c *Cache[T]) retention() time.Duration {
	if c.cfg.StaleTTL > c.cfg.TTL {
		return c.cfg.StaleTTL
	}
	return c.cfg.TTL
}

// sweep evicts dead entries at most once per SweepInterval. Caller holds mu.
func (c *Cache[T]) sweep(now time.Time) {
	if now.Sub(c.lastSweep) < c.cfg.SweepInterval {
		return
	}
	c.lastSweep = now

	removed := 0
	for key, e := range c.entries {
		if !now.Before(e.fetchedAt.Add(c.retention())) {
			delete(c.entries, key)
			removed++
		}
	}
	if removed > 0 {
		c.cfg.Logger.Debug().
			Str("cache", c.cfg.Name).
			Int("removed", removed).
			Msg("evicted expired cache entries")
	}
}
