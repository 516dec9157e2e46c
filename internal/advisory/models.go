// Package advisory classifies pollutant readings against fixed health thresholds
// and turns the result into advice, plant suggestions and a narrated report.
//
// Everything in this package is pure: no I/O, no shared mutable state.
package advisory

import (
	"errors"
)

// ErrInvalidReading is returned for negative or non-finite pollutant values.
var ErrInvalidReading = errors.New("invalid pollutant reading")

// Pollutant identifies a measured air pollutant.
type Pollutant string

const (
	PollutantPM25 Pollutant = "PM2.5"
	PollutantPM10 Pollutant = "PM10"
	PollutantCO   Pollutant = "CO"
	PollutantNO2  Pollutant = "NO2"
)

// ReportPollutants is the fixed order pollutants appear in a report.
var ReportPollutants = []Pollutant{PollutantPM25, PollutantPM10, PollutantCO, PollutantNO2}

// Band is an ordinal severity classification for a single pollutant.
type Band int

const (
	BandUnknown Band = iota
	BandGood
	BandModerate
	BandUnhealthySensitive
	BandHazardous
)

// String returns the generic band name.
func (b Band) String() string {
	switch b {
	case BandGood:
		return "Good"
	case BandModerate:
		return "Moderate"
	case BandUnhealthySensitive:
		return "Unhealthy for Sensitive Groups"
	case BandHazardous:
		return "Hazardous"
	default:
		return "Unknown"
	}
}

// Code returns a stable upper-case identifier for APIs.
func (b Band) Code() string {
	switch b {
	case BandGood:
		return "GOOD"
	case BandModerate:
		return "MODERATE"
	case BandUnhealthySensitive:
		return "UNHEALTHY_SENSITIVE"
	case BandHazardous:
		return "HAZARDOUS"
	default:
		return "UNKNOWN"
	}
}

// AQICategory is the upstream 1-5 air quality index.
type AQICategory int

const (
	AQIGood     AQICategory = 1
	AQIFair     AQICategory = 2
	AQIModerate AQICategory = 3
	AQIPoor     AQICategory = 4
	AQIVeryPoor AQICategory = 5
)

// Valid reports whether the category is within 1-5.
func (c AQICategory) Valid() bool {
	return c >= AQIGood && c <= AQIVeryPoor
}

// String returns the status label for the category.
func (c AQICategory) String() string {
	switch c {
	case AQIGood:
		return "Good"
	case AQIFair:
		return "Fair"
	case AQIModerate:
		return "Moderate"
	case AQIPoor:
		return "Poor"
	case AQIVeryPoor:
		return "Very Poor"
	default:
		return "Unknown"
	}
}

// Quality returns a one-line description of what the category means.
func (c AQICategory) Quality() string {
	switch c {
	case AQIGood:
		return "Good – Air quality is satisfactory."
	case AQIFair:
		return "Fair – Air quality is acceptable."
	case AQIModerate:
		return "Moderate – May affect sensitive people."
	case AQIPoor:
		return "Poor – Health effects possible."
	case AQIVeryPoor:
		return "Very Poor – Everyone may experience effects."
	default:
		return "Unknown"
	}
}

// Advisory is the health text attached to a classified reading.
type Advisory struct {
	HealthMessage  string
	DiseaseRisk    string
	Recommendation string
}

// WeatherSnapshot holds the weather readings narrated alongside pollution.
type WeatherSnapshot struct {
	TemperatureC float64
	WindSpeedMs  float64
	HumidityPct  float64
}

// Input is the raw data a report is built from.
type Input struct {
	City string
	Lat  float64
	Lon  float64

	AQI  AQICategory
	PM25 float64
	PM10 float64
	CO   float64
	NO2  float64

	// Weather is nil when the upstream fetch had no usable weather data.
	Weather *WeatherSnapshot
}

// value returns the input value for a report pollutant.
func (in Input) value(p Pollutant) float64 {
	switch p {
	case PollutantPM25:
		return in.PM25
	case PollutantPM10:
		return in.PM10
	case PollutantCO:
		return in.CO
	case PollutantNO2:
		return in.NO2
	default:
		return 0
	}
}

// ClassifiedReading is a pollutant value with its band and advice.
type ClassifiedReading struct {
	Pollutant Pollutant
	Value     float64
	Band      Band
	// Label is the status label for the band as published for this pollutant.
	Label    string
	Advisory Advisory
}

// Report is the full result of one city lookup.
type Report struct {
	City     string
	Lat      float64
	Lon      float64
	AQI      AQICategory
	Readings []ClassifiedReading
	Weather  *WeatherSnapshot
	Plants   PlantSuggestion
}

// Reading returns the classified reading for a pollutant, if present.
func (r *Report) Reading(p Pollutant) (ClassifiedReading, bool) {
	for _, rd := range r.Readings {
		if rd.Pollutant == p {
			return rd, true
		}
	}
	return ClassifiedReading{}, false
}

// WorstBand returns the most severe band across all readings.
func (r *Report) WorstBand() Band {
	worst := BandUnknown
	for _, rd := range r.Readings {
		if rd.Band > worst {
			worst = rd.Band
		}
	}
	return worst
}
