package models

// AirQualityReport is the response body of GET /v1/reports.
type AirQualityReport struct {
	City        string           `json:"city"`
	Country     string           `json:"country,omitempty"`
	State       string           `json:"state,omitempty"`
	Point       Point            `json:"point"`
	AQI         AQI              `json:"aqi"`
	Readings    []Reading        `json:"readings"`
	Weather     *Weather         `json:"weather,omitempty"`
	Plants      *PlantSuggestion `json:"plants,omitempty"`
	WorstBand   Band             `json:"worstBand"`
	Narrative   Narrative        `json:"narrative"`
	MeasuredAt  *Timestamp       `json:"measuredAt,omitempty"`
	GeneratedAt Timestamp        `json:"generatedAt"`
}

// AQI is the upstream 1-5 index with its label.
type AQI struct {
	Value   int    `json:"value"`
	Label   string `json:"label"`
	Quality string `json:"quality"`
}

// Reading is one classified pollutant value.
type Reading struct {
	Pollutant      Pollutant `json:"pollutant"`
	Value          float64   `json:"value"`
	Unit           string    `json:"unit"`
	Band           Band      `json:"band"`
	Label          string    `json:"label"`
	HealthMessage  string    `json:"healthMessage"`
	DiseaseRisk    string    `json:"diseaseRisk"`
	Recommendation string    `json:"recommendation"`
}

// Weather holds the weather narrated alongside pollution.
type Weather struct {
	TemperatureC float64 `json:"temperatureC"`
	WindSpeedMs  float64 `json:"windSpeedMs"`
	HumidityPct  float64 `json:"humidityPct"`
	Condition    string  `json:"condition,omitempty"`
	Description  string  `json:"description,omitempty"`

	// ReducedVisibility is set for mist, haze, smoke and similar conditions.
	ReducedVisibility bool `json:"reducedVisibility,omitempty"`
}

// Plant is one entry of a plant suggestion.
type Plant struct {
	Name    string `json:"name"`
	Action  bool   `json:"action,omitempty"`
	Benefit string `json:"benefit,omitempty"`
}

// PlantSuggestion is the ordered plant list for the AQI category.
type PlantSuggestion struct {
	Plants  []Plant `json:"plants"`
	Summary string  `json:"summary"`
}

// Narrative is the display and spoken form of a report.
type Narrative struct {
	Blocks       []NarrativeBlock `json:"blocks"`
	SpokenScript string           `json:"spokenScript"`
}

// NarrativeBlock is a titled section of a narrative.
type NarrativeBlock struct {
	Kind  string          `json:"kind"`
	Title string          `json:"title"`
	Lines []string        `json:"lines"`
	Items []NarrativeItem `json:"items,omitempty"`
}

// NarrativeItem is one itemized entry of a block.
type NarrativeItem struct {
	Title string   `json:"title"`
	Lines []string `json:"lines"`
}
