// Package weather provides the current conditions narrated alongside
// pollution: temperature, wind and humidity.
package weather

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrProviderUnavailable = errors.New("weather provider unavailable")
	ErrInvalidCoordinates  = errors.New("invalid coordinates")
	ErrNoData              = errors.New("no weather data for location")
)

// Observation is the current weather at a point in metric units.
type Observation struct {
	// Station is the place name the provider attached, possibly empty.
	Station string

	Lat float64
	Lon float64

	TemperatureC float64
	FeelsLikeC   float64
	HumidityPct  float64
	PressureHPa  float64
	WindSpeedMs  float64
	WindDeg      float64

	Condition   Condition
	Description string

	ObservedAt time.Time
	FetchedAt  time.Time
}

// Condition is the coarse sky condition.
type Condition string

const (
	ConditionClear        Condition = "CLEAR"
	ConditionClouds       Condition = "CLOUDS"
	ConditionRain         Condition = "RAIN"
	ConditionThunderstorm Condition = "THUNDERSTORM"
	ConditionSnow         Condition = "SNOW"
	// ConditionObscured covers mist, fog, haze, smoke, dust and sand.
	ConditionObscured Condition = "OBSCURED"
	ConditionUnknown  Condition = "UNKNOWN"
)

// ParseCondition maps a provider's main weather group to a Condition.
func ParseCondition(group string) Condition {
	switch strings.ToLower(strings.TrimSpace(group)) {
	case "clear":
		return ConditionClear
	case "clouds":
		return ConditionClouds
	case "rain", "drizzle":
		return ConditionRain
	case "thunderstorm", "squall", "tornado":
		return ConditionThunderstorm
	case "snow":
		return ConditionSnow
	case "mist", "fog", "haze", "smoke", "dust", "sand", "ash":
		return ConditionObscured
	default:
		return ConditionUnknown
	}
}

// ReducesVisibility reports whether airborne particles or droplets are
// visible, which usually accompanies elevated particulate readings.
func (c Condition) ReducesVisibility() bool {
	return c == ConditionObscured
}
