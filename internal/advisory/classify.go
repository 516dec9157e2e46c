package advisory

import (
	"fmt"
	"math"
)

// Classify maps a pollutant value to its band.
// A value exactly on a boundary belongs to the safer band. Unknown pollutants
// classify as BandUnknown without error.
func Classify(p Pollutant, value float64) (Band, error) {
	bp, err := classify(p, value)
	if err != nil {
		return BandUnknown, err
	}
	return bp.Band, nil
}

// Label returns the published status label for a band of a pollutant.
func Label(p Pollutant, b Band) string {
	t, ok := ThresholdFor(p)
	if !ok {
		return BandUnknown.String()
	}
	for _, bp := range t.Breakpoints {
		if bp.Band == b {
			return bp.Label
		}
	}
	return BandUnknown.String()
}

func classify(p Pollutant, value float64) (Breakpoint, error) {
	if err := validate(p, value); err != nil {
		return Breakpoint{}, err
	}

	t, ok := ThresholdFor(p)
	if !ok {
		return Breakpoint{Band: BandUnknown, Label: BandUnknown.String()}, nil
	}

	for _, bp := range t.Breakpoints {
		if value <= bp.Upper {
			return bp, nil
		}
	}

	// Unreachable with an open-ended last breakpoint.
	return t.Breakpoints[len(t.Breakpoints)-1], nil
}

func validate(p Pollutant, value float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) || value < 0 {
		return fmt.Errorf("%w: %s=%v", ErrInvalidReading, p, value)
	}
	return nil
}
