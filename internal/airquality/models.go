// Package airquality provides current air pollution readings for a location.
package airquality

import (
	"errors"
	"time"
)

// Air quality errors.
var (
	ErrProviderUnavailable = errors.New("air quality provider unavailable")
	ErrNoData              = errors.New("no air quality data for location")
	ErrInvalidCoordinates  = errors.New("invalid coordinates")
)

// Components holds pollutant concentrations in µg/m³.
type Components struct {
	CO   float64
	NO   float64
	NO2  float64
	O3   float64
	SO2  float64
	PM25 float64
	PM10 float64
	NH3  float64
}

// Pollution is a current air pollution reading at a point.
type Pollution struct {
	Lat float64
	Lon float64

	// AQI is the provider's 1-5 air quality index.
	AQI int

	Components Components

	MeasuredAt time.Time
	FetchedAt  time.Time
	Provider   string
}
