package models

// AQICategoryInfo describes one value of the 1-5 air quality index.
type AQICategoryInfo struct {
	Value   int    `json:"value"`
	Label   string `json:"label"`
	Quality string `json:"quality"`
}

// Enums represents the enum values used by the API.
type Enums struct {
	Pollutants    []Pollutant       `json:"pollutants"`
	Bands         []Band            `json:"bands"`
	AQICategories []AQICategoryInfo `json:"aqiCategories"`
	BlockKinds    []string          `json:"blockKinds"`
	AirbotTopics  []string          `json:"airbotTopics"`
}

// Breakpoint is the inclusive upper bound of a band. Upper is omitted for the
// open-ended last band.
type Breakpoint struct {
	Band  Band     `json:"band"`
	Label string   `json:"label"`
	Upper *float64 `json:"upper,omitempty"`
}

// Threshold lists a pollutant's breakpoints from safest to most severe.
type Threshold struct {
	Pollutant   Pollutant    `json:"pollutant"`
	Unit        string       `json:"unit"`
	SafeLimit   float64      `json:"safeLimit"`
	Breakpoints []Breakpoint `json:"breakpoints"`
}

// ThresholdTable is the full classification table.
type ThresholdTable struct {
	Items []Threshold `json:"items"`
}
