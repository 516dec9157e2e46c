package advisory

import "math"

// Breakpoint is the inclusive upper bound of a band.
type Breakpoint struct {
	Upper float64
	Band  Band
	Label string
}

// Threshold lists a pollutant's breakpoints from safest to most severe.
// The last breakpoint is open-ended (Upper is +Inf).
type Threshold struct {
	Pollutant   Pollutant
	Breakpoints []Breakpoint
}

// SafeLimit returns the upper bound of the Good band.
func (t Threshold) SafeLimit() float64 {
	for _, bp := range t.Breakpoints {
		if bp.Band == BandGood {
			return bp.Upper
		}
	}
	return 0
}

// NO2 uses the console tracker's 53 µg/m³ safe limit. The web UI used a
// 50/100 split with a two-band table; see DESIGN.md.
var thresholdTable = []Threshold{
	{
		Pollutant: PollutantPM25,
		Breakpoints: []Breakpoint{
			{Upper: 12, Band: BandGood, Label: "Good"},
			{Upper: 35.4, Band: BandModerate, Label: "Moderate"},
			{Upper: 55.4, Band: BandUnhealthySensitive, Label: "Unhealthy for Sensitive Groups"},
			{Upper: math.Inf(1), Band: BandHazardous, Label: "Hazardous"},
		},
	},
	{
		Pollutant: PollutantPM10,
		Breakpoints: []Breakpoint{
			{Upper: 54, Band: BandGood, Label: "Good"},
			{Upper: 154, Band: BandModerate, Label: "Moderate"},
			{Upper: 254, Band: BandUnhealthySensitive, Label: "Unhealthy for Sensitive Groups"},
			{Upper: math.Inf(1), Band: BandHazardous, Label: "Hazardous"},
		},
	},
	{
		Pollutant: PollutantCO,
		Breakpoints: []Breakpoint{
			{Upper: 4000, Band: BandGood, Label: "Good"},
			{Upper: 10000, Band: BandModerate, Label: "High"},
			{Upper: math.Inf(1), Band: BandHazardous, Label: "Hazardous"},
		},
	},
	{
		Pollutant: PollutantNO2,
		Breakpoints: []Breakpoint{
			{Upper: 53, Band: BandGood, Label: "Good"},
			{Upper: 100, Band: BandModerate, Label: "Moderate"},
			{Upper: math.Inf(1), Band: BandHazardous, Label: "Hazardous"},
		},
	},
}

// Thresholds returns a copy of the threshold table.
func Thresholds() []Threshold {
	out := make([]Threshold, len(thresholdTable))
	for i, t := range thresholdTable {
		bps := make([]Breakpoint, len(t.Breakpoints))
		copy(bps, t.Breakpoints)
		out[i] = Threshold{Pollutant: t.Pollutant, Breakpoints: bps}
	}
	return out
}

// ThresholdFor looks up the threshold for a pollutant.
func ThresholdFor(p Pollutant) (Threshold, bool) {
	for _, t := range thresholdTable {
		if t.Pollutant == p {
			return t, true
		}
	}
	return Threshold{}, false
}
