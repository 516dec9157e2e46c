package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/breatheroute/airtracker/internal/advisory"
	"github.com/breatheroute/airtracker/internal/api/middleware"
	"github.com/breatheroute/airtracker/internal/api/models"
	"github.com/breatheroute/airtracker/internal/api/response"
	"github.com/breatheroute/airtracker/internal/geocoding"
	"github.com/breatheroute/airtracker/internal/provider/resilience"
	"github.com/breatheroute/airtracker/internal/report"
)

// maxCityLength bounds the city query parameter.
const maxCityLength = 100

// ReportGenerator produces reports for a city.
type ReportGenerator interface {
	Generate(ctx context.Context, city string) (*report.Result, error)
}

// ReportHandler handles report endpoints.
type ReportHandler struct {
	reports ReportGenerator
	logger  zerolog.Logger
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(reports ReportGenerator, logger zerolog.Logger) *ReportHandler {
	return &ReportHandler{reports: reports, logger: logger}
}

// GetReport handles GET /v1/reports?city= - the classified, narrated report for a city.
func (h *ReportHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	city := strings.TrimSpace(r.URL.Query().Get("city"))
	if fe := validateCity(city); fe != nil {
		response.BadRequest(w, r, "invalid city", *fe)
		return
	}

	result, err := h.reports.Generate(r.Context(), city)
	if err != nil {
		h.writeError(w, r, city, err)
		return
	}

	response.JSON(w, r, http.StatusOK, toReport(result))
}

func (h *ReportHandler) writeError(w http.ResponseWriter, r *http.Request, city string, err error) {
	switch {
	case errors.Is(err, geocoding.ErrEmptyCity):
		response.BadRequest(w, r, "invalid city", models.Required("city"))
	case errors.Is(err, geocoding.ErrCityNotFound):
		response.NotFound(w, r, "city not found: "+city)
	case errors.Is(err, advisory.ErrInvalidReading):
		response.Unprocessable(w, r, "upstream returned an invalid pollutant reading")
	case errors.Is(err, resilience.ErrCircuitOpen):
		var retryAfter time.Duration
		var openErr *resilience.CircuitOpenError
		if errors.As(err, &openErr) {
			retryAfter = openErr.RetryAfter
		}
		response.ServiceUnavailable(w, r, "upstream provider temporarily unavailable", retryAfter)
	case errors.Is(err, report.ErrPollutionUnavailable), errors.Is(err, geocoding.ErrProviderUnavailable):
		response.BadGateway(w, r, "could not fetch air quality data")
	default:
		middleware.LoggerFrom(r.Context(), h.logger).Error().Err(err).
			Str("city", city).
			Msg("report generation failed")
		response.InternalError(w, r, "internal server error")
	}
}

func validateCity(city string) *models.FieldError {
	switch {
	case city == "":
		fe := models.Required("city")
		return &fe
	case utf8.RuneCountInString(city) > maxCityLength:
		fe := models.TooLong("city", maxCityLength, "characters")
		return &fe
	}
	return nil
}

func toReport(res *report.Result) models.AirQualityReport {
	rep := res.Report
	out := models.AirQualityReport{
		City:    rep.City,
		Country: res.Location.Country,
		State:   res.Location.State,
		Point:   models.Point{Lat: rep.Lat, Lon: rep.Lon},
		AQI: models.AQI{
			Value:   int(rep.AQI),
			Label:   rep.AQI.String(),
			Quality: rep.AQI.Quality(),
		},
		Readings:    make([]models.Reading, 0, len(rep.Readings)),
		WorstBand:   models.Band(rep.WorstBand().Code()),
		Narrative:   toNarrative(res.Narrative),
		GeneratedAt: models.Timestamp(res.GeneratedAt),
	}

	for _, rd := range rep.Readings {
		out.Readings = append(out.Readings, models.Reading{
			Pollutant:      models.Pollutant(rd.Pollutant),
			Value:          rd.Value,
			Unit:           Unit,
			Band:           models.Band(rd.Band.Code()),
			Label:          rd.Label,
			HealthMessage:  rd.Advisory.HealthMessage,
			DiseaseRisk:    rd.Advisory.DiseaseRisk,
			Recommendation: rd.Advisory.Recommendation,
		})
	}

	if rep.Weather != nil {
		out.Weather = &models.Weather{
			TemperatureC: rep.Weather.TemperatureC,
			WindSpeedMs:  rep.Weather.WindSpeedMs,
			HumidityPct:  rep.Weather.HumidityPct,
		}
		if res.Weather != nil {
			out.Weather.Condition = string(res.Weather.Condition)
			out.Weather.Description = res.Weather.Description
			out.Weather.ReducedVisibility = res.Weather.Condition.ReducesVisibility()
		}
	}

	if !rep.Plants.Empty() {
		ps := &models.PlantSuggestion{Summary: rep.Plants.Summary}
		for _, p := range rep.Plants.Plants {
			ps.Plants = append(ps.Plants, models.Plant{Name: p.Name, Action: p.Action, Benefit: p.Benefit})
		}
		out.Plants = ps
	}

	if res.Pollution != nil {
		out.MeasuredAt = models.OptionalTimestamp(res.Pollution.MeasuredAt)
	}

	return out
}

func toNarrative(n advisory.Narrative) models.Narrative {
	out := models.Narrative{
		Blocks:       make([]models.NarrativeBlock, 0, len(n.Blocks)),
		SpokenScript: n.SpokenScript,
	}
	for _, b := range n.Blocks {
		block := models.NarrativeBlock{Kind: string(b.Kind), Title: b.Title, Lines: b.Lines}
		for _, it := range b.Items {
			block.Items = append(block.Items, models.NarrativeItem{Title: it.Title, Lines: it.Lines})
		}
		out.Blocks = append(out.Blocks, block)
	}
	return out
}
