// Package history records the reports generated for each city lookup.
package history

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/breatheroute/airtracker/internal/advisory"
)

// ErrInvalidEntry is returned when an entry is missing required fields.
var ErrInvalidEntry = errors.New("invalid history entry")

// DefaultListLimit caps List when no limit is given.
const DefaultListLimit = 20

// MaxListLimit is the largest page List will return.
const MaxListLimit = 100

// Entry is one recorded report.
type Entry struct {
	ID        string
	City      string
	Lat       float64
	Lon       float64
	AQI       int
	Readings  []Reading
	CreatedAt time.Time
}

// Reading is a classified pollutant value at the time of the lookup.
type Reading struct {
	Pollutant string  `json:"pollutant"`
	Value     float64 `json:"value"`
	Band      string  `json:"band"`
}

// ListOptions filters and limits List results.
type ListOptions struct {
	// City restricts results to one city (case-insensitive). Empty means all.
	City  string
	Limit int
}

func (o ListOptions) limit() int {
	switch {
	case o.Limit <= 0:
		return DefaultListLimit
	case o.Limit > MaxListLimit:
		return MaxListLimit
	default:
		return o.Limit
	}
}

// NewEntry builds an entry for a report with a fresh ID.
func NewEntry(r *advisory.Report, now time.Time) *Entry {
	readings := make([]Reading, 0, len(r.Readings))
	for _, cr := range r.Readings {
		readings = append(readings, Reading{
			Pollutant: string(cr.Pollutant),
			Value:     cr.Value,
			Band:      cr.Band.Code(),
		})
	}
	return &Entry{
		ID:        uuid.NewString(),
		City:      r.City,
		Lat:       r.Lat,
		Lon:       r.Lon,
		AQI:       int(r.AQI),
		Readings:  readings,
		CreatedAt: now.UTC(),
	}
}

func (e *Entry) validate() error {
	if e == nil || e.ID == "" || e.City == "" {
		return ErrInvalidEntry
	}
	return nil
}

func (e *Entry) clone() *Entry {
	cpy := *e
	cpy.Readings = append([]Reading(nil), e.Readings...)
	return &cpy
}
