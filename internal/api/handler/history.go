package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/breatheroute/airtracker/internal/api/middleware"
	"github.com/breatheroute/airtracker/internal/api/models"
	"github.com/breatheroute/airtracker/internal/api/response"
	"github.com/breatheroute/airtracker/internal/history"
)

// HistoryLister lists recorded report lookups.
type HistoryLister interface {
	List(ctx context.Context, opts history.ListOptions) ([]*history.Entry, error)
}

// HistoryHandler handles history endpoints.
type HistoryHandler struct {
	history HistoryLister
	logger  zerolog.Logger
}

// NewHistoryHandler creates a new HistoryHandler.
func NewHistoryHandler(h HistoryLister, logger zerolog.Logger) *HistoryHandler {
	return &HistoryHandler{history: h, logger: logger}
}

// ListHistory handles GET /v1/history?city=&limit= - recent lookups, newest first.
func (h *HistoryHandler) ListHistory(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := history.ListOptions{City: strings.TrimSpace(q.Get("city"))}

	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > history.MaxListLimit {
			response.BadRequest(w, r, "invalid limit", models.OutOfRange("limit", 1, history.MaxListLimit))
			return
		}
		opts.Limit = limit
	}

	entries, err := h.history.List(r.Context(), opts)
	if err != nil {
		middleware.LoggerFrom(r.Context(), h.logger).Error().Err(err).Msg("failed to list history")
		response.InternalError(w, r, "internal server error")
		return
	}

	limit := opts.Limit
	if limit == 0 {
		limit = history.DefaultListLimit
	}
	out := models.PagedHistory{
		Items: make([]models.HistoryEntry, 0, len(entries)),
		Meta:  models.PagedResponseMeta{Limit: limit},
	}
	for _, e := range entries {
		item := models.HistoryEntry{
			ID:        e.ID,
			City:      e.City,
			Point:     models.Point{Lat: e.Lat, Lon: e.Lon},
			AQI:       e.AQI,
			Readings:  make([]models.HistoryReading, 0, len(e.Readings)),
			CreatedAt: models.Timestamp(e.CreatedAt),
		}
		for _, rd := range e.Readings {
			item.Readings = append(item.Readings, models.HistoryReading{
				Pollutant: models.Pollutant(rd.Pollutant),
				Value:     rd.Value,
				Band:      models.Band(rd.Band),
			})
		}
		out.Items = append(out.Items, item)
	}

	response.JSON(w, r, http.StatusOK, out)
}
