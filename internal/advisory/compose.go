package advisory

import (
	"fmt"
	"strconv"
	"strings"
)

// BlockKind identifies a section of a narrated report.
type BlockKind string

const (
	BlockHeader      BlockKind = "HEADER"
	BlockPollutants  BlockKind = "POLLUTANTS"
	BlockTemperature BlockKind = "TEMPERATURE"
	BlockWind        BlockKind = "WIND"
	BlockHumidity    BlockKind = "HUMIDITY"
	BlockPlants      BlockKind = "PLANTS"
)

// Item is one itemized entry inside a block.
type Item struct {
	Title string
	Lines []string
}

// Block is a titled section of a narrated report.
type Block struct {
	Kind  BlockKind
	Title string
	Lines []string
	Items []Item
}

// Body returns the block lines joined by newlines. Pollutant items are
// separate paragraphs, so the pollutants block joins them with a blank line.
func (b Block) Body() string {
	if b.Kind != BlockPollutants || len(b.Items) == 0 {
		return strings.Join(b.Lines, "\n")
	}
	paragraphs := make([]string, 0, len(b.Items))
	for _, it := range b.Items {
		paragraphs = append(paragraphs, strings.Join(it.Lines, "\n"))
	}
	return strings.Join(paragraphs, "\n\n")
}

// Narrative is the display and spoken form of a report.
type Narrative struct {
	Blocks       []Block
	SpokenScript string
}

// Compose renders a report into display blocks and a spoken script.
//
// Block order is fixed: header (city and AQI status), pollutants (PM2.5, PM10,
// CO, NO2), temperature, wind and humidity when weather is present, then
// plants when the AQI category yields any. The script is the block bodies in
// that order separated by a blank line; each pollutant is its own paragraph.
func Compose(r *Report) Narrative {
	blocks := []Block{headerBlock(r), pollutantBlock(r)}

	if r.Weather != nil {
		blocks = append(blocks, weatherBlocks(r.City, *r.Weather)...)
	}

	if !r.Plants.Empty() {
		blocks = append(blocks, plantBlock(r.Plants))
	}

	bodies := make([]string, 0, len(blocks))
	for _, b := range blocks {
		bodies = append(bodies, b.Body())
	}

	return Narrative{
		Blocks:       blocks,
		SpokenScript: strings.Join(bodies, "\n\n"),
	}
}

func headerBlock(r *Report) Block {
	n := int(r.AQI)
	status := r.AQI.String()
	return Block{
		Kind:  BlockHeader,
		Title: r.City,
		Lines: []string{
			"City: " + r.City,
			fmt.Sprintf("AQI: %d - %s", n, status),
			fmt.Sprintf("The Air Quality Index in %s is %d, which means the air quality is categorized as '%s'.",
				r.City, n, status),
		},
	}
}

func pollutantBlock(r *Report) Block {
	block := Block{
		Kind:  BlockPollutants,
		Title: "Pollutant Levels",
		Items: make([]Item, 0, len(ReportPollutants)),
	}

	for _, p := range ReportPollutants {
		rd, ok := r.Reading(p)
		if !ok {
			rd = ClassifiedReading{Pollutant: p, Label: BandUnknown.String(), Advisory: NeutralAdvisory}
		}
		item := Item{
			Title: string(p),
			Lines: []string{
				fmt.Sprintf("%s level in %s is %s micrograms per cubic meter and is considered %s.",
					p, r.City, formatValue(rd.Value), rd.Label),
				"Health Impact: " + rd.Advisory.HealthMessage,
				"Disease Risk: " + rd.Advisory.DiseaseRisk,
				"Recommended Solution: " + rd.Advisory.Recommendation,
			},
		}
		block.Items = append(block.Items, item)
		block.Lines = append(block.Lines, item.Lines...)
	}

	return block
}

func weatherBlocks(city string, w WeatherSnapshot) []Block {
	return []Block{
		{
			Kind:  BlockTemperature,
			Title: "Temperature",
			Lines: []string{
				fmt.Sprintf("The temperature in %s is %.1f degrees Celsius.", city, w.TemperatureC),
			},
		},
		{
			Kind:  BlockWind,
			Title: "Wind Speed",
			Lines: []string{
				fmt.Sprintf("Wind speed in %s is %.1f meters per second.", city, w.WindSpeedMs),
				"This helps disperse pollutants and improve air quality.",
			},
		},
		{
			Kind:  BlockHumidity,
			Title: "Humidity",
			Lines: []string{
				fmt.Sprintf("The humidity level in %s is %.0f percent.", city, w.HumidityPct),
				"High humidity allows pollutants to stay suspended in the air longer, increasing the risk of breathing difficulties.",
			},
		},
	}
}

func plantBlock(s PlantSuggestion) Block {
	lines := []string{
		"To improve indoor air quality, you can keep the following plants: " + strings.Join(s.Names(), ", ") + ".",
	}
	if s.Summary != "" {
		lines = append(lines, s.Summary)
	}

	items := make([]Item, 0, len(s.Plants))
	for _, p := range s.Plants {
		item := Item{Title: p.Name}
		if p.Benefit != "" {
			item.Lines = []string{p.Benefit}
		}
		items = append(items, item)
	}

	return Block{
		Kind:  BlockPlants,
		Title: "Recommended Indoor Plants",
		Lines: lines,
		Items: items,
	}
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
