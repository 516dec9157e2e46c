// Package geocoding resolves city names to coordinates.
package geocoding

import (
	"errors"
	"strings"
)

// Geocoding errors.
var (
	ErrEmptyCity           = errors.New("city name is required")
	ErrCityNotFound        = errors.New("city not found")
	ErrProviderUnavailable = errors.New("geocoding provider unavailable")
)

// Location is a resolved place.
type Location struct {
	Name    string
	Country string
	State   string
	Lat     float64
	Lon     float64
}

// NormalizeCity trims and lowercases a city query so lookups share cache entries.
func NormalizeCity(city string) string {
	return strings.ToLower(strings.Join(strings.Fields(city), " "))
}
