package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/breatheroute/airtracker/internal/api/models"
	"github.com/breatheroute/airtracker/internal/api/response"
	"github.com/breatheroute/airtracker/internal/narration"
)

// maxSessionIDLength bounds client supplied session ids.
const maxSessionIDLength = 128

// NarrationHandler decides when a web session should hear a report spoken.
type NarrationHandler struct {
	tracker *narration.Tracker
}

// NewNarrationHandler creates a new NarrationHandler.
func NewNarrationHandler(tracker *narration.Tracker) *NarrationHandler {
	return &NarrationHandler{tracker: tracker}
}

// Claim handles POST /v1/narrations:claim. The first claim for a (session, city)
// pair returns narrate=true; repeats return false until the session changes city.
func (h *NarrationHandler) Claim(w http.ResponseWriter, r *http.Request) {
	var input models.NarrationClaimRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4<<10)).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body")
		return
	}

	input.SessionID = strings.TrimSpace(input.SessionID)
	input.City = strings.TrimSpace(input.City)
	if fieldErrors := validateClaim(&input); len(fieldErrors) > 0 {
		response.BadRequest(w, r, "validation failed", fieldErrors...)
		return
	}

	greet, err := h.tracker.Greet(input.SessionID)
	if err != nil {
		response.BadRequest(w, r, err.Error())
		return
	}
	narrate, err := h.tracker.Claim(input.SessionID, input.City)
	if err != nil {
		response.BadRequest(w, r, err.Error())
		return
	}

	out := models.NarrationClaimResponse{Narrate: narrate}
	if greet {
		out.Greeting = narration.WebGreeting
	}
	response.JSON(w, r, http.StatusOK, out)
}

// Reset handles DELETE /v1/narrations/{sessionId}. The session's next claim
// is greeted again and narrates whatever city it names.
func (h *NarrationHandler) Reset(w http.ResponseWriter, r *http.Request) {
	sessionID := strings.TrimSpace(chi.URLParam(r, "sessionId"))
	if len(sessionID) > maxSessionIDLength {
		response.BadRequest(w, r, "validation failed", models.TooLong("sessionId", maxSessionIDLength, "characters"))
		return
	}

	h.tracker.Forget(sessionID)
	response.NoContent(w, r)
}

func validateClaim(input *models.NarrationClaimRequest) []models.FieldError {
	var fieldErrors []models.FieldError
	switch {
	case input.SessionID == "":
		fieldErrors = append(fieldErrors, models.Required("sessionId"))
	case len(input.SessionID) > maxSessionIDLength:
		fieldErrors = append(fieldErrors, models.TooLong("sessionId", maxSessionIDLength, "characters"))
	}
	if fe := validateCity(input.City); fe != nil {
		fieldErrors = append(fieldErrors, *fe)
	}
	return fieldErrors
}
