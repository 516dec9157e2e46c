// Package worker keeps the report cache warm for frequently requested cities.
package worker

import (
	"strings"
	"time"
)

// WarmConfig holds configuration for the cache warming job.
type WarmConfig struct {
	// Cities are refreshed on every run.
	// If empty, uses DefaultCities.
	Cities []string

	// Concurrency is the number of concurrent refresh operations.
	// Default: 3
	Concurrency int

	// Timeout is the timeout for each city.
	// Default: 30 seconds
	Timeout time.Duration

	// Interval is how often the scheduler runs the job.
	// Default: 15 minutes
	Interval time.Duration
}

// DefaultWarmConfig returns the default warming configuration.
func DefaultWarmConfig() WarmConfig {
	return WarmConfig{
		Cities:      DefaultCities(),
		Concurrency: 3,
		Timeout:     30 * time.Second,
		Interval:    15 * time.Minute,
	}
}

// DefaultCities returns the cities warmed when none are configured.
func DefaultCities() []string {
	return []string{
		"Delhi",
		"Mumbai",
		"Kolkata",
		"Chennai",
		"Bengaluru",
		"Hyderabad",
		"London",
		"Beijing",
	}
}

// withDefaults fills zero values and drops blank or duplicate cities.
func (c WarmConfig) withDefaults() WarmConfig {
	def := DefaultWarmConfig()
	if len(c.Cities) == 0 {
		c.Cities = def.Cities
	}
	if c.Concurrency <= 0 {
		c.Concurrency = def.Concurrency
	}
	if c.Timeout <= 0 {
		c.Timeout = def.Timeout
	}
	if c.Interval <= 0 {
		c.Interval = def.Interval
	}
	c.Cities = uniqueCities(c.Cities)
	return c
}

func uniqueCities(cities []string) []string {
	seen := make(map[string]struct{}, len(cities))
	out := make([]string, 0, len(cities))
	for _, city := range cities {
		city = strings.TrimSpace(city)
		key := strings.ToLower(city)
		if city == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, city)
	}
	return out
}
