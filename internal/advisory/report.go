package advisory

// BuildReport classifies every reading of the input and assembles a report.
// It fails with ErrInvalidReading if any pollutant value is negative or
// non-finite; no partial report is returned in that case.
func BuildReport(in Input) (*Report, error) {
	readings := make([]ClassifiedReading, 0, len(ReportPollutants))
	for _, p := range ReportPollutants {
		value := in.value(p)
		bp, err := classify(p, value)
		if err != nil {
			return nil, err
		}
		readings = append(readings, ClassifiedReading{
			Pollutant: p,
			Value:     value,
			Band:      bp.Band,
			Label:     bp.Label,
			Advisory:  Advise(p, bp.Band),
		})
	}

	var weather *WeatherSnapshot
	if in.Weather != nil {
		w := *in.Weather
		weather = &w
	}

	return &Report{
		City:     in.City,
		Lat:      in.Lat,
		Lon:      in.Lon,
		AQI:      in.AQI,
		Readings: readings,
		Weather:  weather,
		Plants:   SuggestPlants(in.AQI),
	}, nil
}
