package advisory

// PlantSummary explains why indoor plants are suggested.
const PlantSummary = "These plants help reduce indoor air pollutants, improve oxygen levels, " +
	"and protect you from respiratory problems, asthma, and allergies."

// Plant is one entry of a plant suggestion.
type Plant struct {
	Name string
	// Action marks an entry that is advice rather than a plant.
	Action bool
	// Benefit is a short note on what the plant does, if known.
	Benefit string
}

// PlantSuggestion is the ordered plant list for an AQI category.
type PlantSuggestion struct {
	Plants  []Plant
	Summary string
}

// Names returns the plant names in order, including action entries.
func (s PlantSuggestion) Names() []string {
	names := make([]string, 0, len(s.Plants))
	for _, p := range s.Plants {
		names = append(names, p.Name)
	}
	return names
}

// Empty reports whether there is nothing to suggest.
func (s PlantSuggestion) Empty() bool {
	return len(s.Plants) == 0
}

var plantBenefits = map[string]string{
	"Areca Palm":  "Releases moisture and removes toxins.",
	"Snake Plant": "Produces oxygen at night.",
	"Money Plant": "Filters air toxins and boosts oxygen.",
}

var plantTable = map[AQICategory][]string{
	AQIGood:     {"Money Plant", "Aloe Vera"},
	AQIFair:     {"Areca Palm", "Spider Plant"},
	AQIModerate: {"Snake Plant", "Peace Lily"},
	AQIPoor:     {"Bamboo Palm", "Rubber Plant"},
	AQIVeryPoor: {"English Ivy", "Areca Palm", airPurifierAction},
}

const airPurifierAction = "Use Air Purifier"

// SuggestPlants returns indoor plants for an AQI category.
// Categories outside 1-5 yield an empty suggestion.
func SuggestPlants(c AQICategory) PlantSuggestion {
	names, ok := plantTable[c]
	if !ok {
		return PlantSuggestion{}
	}

	plants := make([]Plant, 0, len(names))
	for _, name := range names {
		plants = append(plants, Plant{
			Name:    name,
			Action:  name == airPurifierAction,
			Benefit: plantBenefits[name],
		})
	}

	return PlantSuggestion{
		Plants:  plants,
		Summary: PlantSummary,
	}
}
