package models

// HistoryEntry is one recorded report lookup.
type HistoryEntry struct {
	ID        string           `json:"id"`
	City      string           `json:"city"`
	Point     Point            `json:"point"`
	AQI       int              `json:"aqi"`
	Readings  []HistoryReading `json:"readings"`
	CreatedAt Timestamp        `json:"createdAt"`
}

// HistoryReading is a pollutant value and its band at lookup time.
type HistoryReading struct {
	Pollutant Pollutant `json:"pollutant"`
	Value     float64   `json:"value"`
	Band      Band      `json:"band"`
}

// PagedHistory represents a list of history entries.
type PagedHistory struct {
	Items []HistoryEntry    `json:"items"`
	Meta  PagedResponseMeta `json:"meta"`
}
