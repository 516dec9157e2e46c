package handler

import (
	"math"
	"net/http"

	"github.com/breatheroute/airtracker/internal/advisory"
	"github.com/breatheroute/airtracker/internal/airbot"
	"github.com/breatheroute/airtracker/internal/api/models"
	"github.com/breatheroute/airtracker/internal/api/response"
)

// Unit is the unit every pollutant value is reported in.
const Unit = "µg/m³"

// MetadataHandler handles metadata endpoints.
type MetadataHandler struct{}

// NewMetadataHandler creates a new MetadataHandler.
func NewMetadataHandler() *MetadataHandler {
	return &MetadataHandler{}
}

// GetEnums handles GET /v1/metadata/enums - get enum values used by the API.
func (h *MetadataHandler) GetEnums(w http.ResponseWriter, r *http.Request) {
	enums := models.Enums{
		Pollutants: make([]models.Pollutant, 0, len(advisory.ReportPollutants)),
		Bands: []models.Band{
			models.Band(advisory.BandGood.Code()),
			models.Band(advisory.BandModerate.Code()),
			models.Band(advisory.BandUnhealthySensitive.Code()),
			models.Band(advisory.BandHazardous.Code()),
			models.Band(advisory.BandUnknown.Code()),
		},
		BlockKinds: []string{
			string(advisory.BlockHeader),
			string(advisory.BlockPollutants),
			string(advisory.BlockTemperature),
			string(advisory.BlockWind),
			string(advisory.BlockHumidity),
			string(advisory.BlockPlants),
		},
		AirbotTopics: make([]string, 0, len(airbot.Topics)),
	}
	for _, p := range advisory.ReportPollutants {
		enums.Pollutants = append(enums.Pollutants, models.Pollutant(p))
	}
	for c := advisory.AQIGood; c <= advisory.AQIVeryPoor; c++ {
		enums.AQICategories = append(enums.AQICategories, models.AQICategoryInfo{
			Value:   int(c),
			Label:   c.String(),
			Quality: c.Quality(),
		})
	}
	for _, t := range airbot.Topics {
		enums.AirbotTopics = append(enums.AirbotTopics, string(t))
	}

	response.JSON(w, r, http.StatusOK, enums)
}

// GetThresholds handles GET /v1/metadata/thresholds - the band breakpoints per pollutant.
func (h *MetadataHandler) GetThresholds(w http.ResponseWriter, r *http.Request) {
	table := advisory.Thresholds()
	out := models.ThresholdTable{Items: make([]models.Threshold, 0, len(table))}

	for _, th := range table {
		item := models.Threshold{
			Pollutant:   models.Pollutant(th.Pollutant),
			Unit:        Unit,
			SafeLimit:   th.SafeLimit(),
			Breakpoints: make([]models.Breakpoint, 0, len(th.Breakpoints)),
		}
		for _, bp := range th.Breakpoints {
			b := models.Breakpoint{Band: models.Band(bp.Band.Code()), Label: bp.Label}
			if !math.IsInf(bp.Upper, 1) {
				upper := bp.Upper
				b.Upper = &upper
			}
			item.Breakpoints = append(item.Breakpoints, b)
		}
		out.Items = append(out.Items, item)
	}

	response.JSON(w, r, http.StatusOK, out)
}
