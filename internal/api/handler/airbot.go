package handler

import (
	"net/http"
	"strings"

	"github.com/breatheroute/airtracker/internal/airbot"
	"github.com/breatheroute/airtracker/internal/api/models"
	"github.com/breatheroute/airtracker/internal/api/response"
)

const maxQuestionLength = 500

// AirbotHandler answers short air quality questions.
type AirbotHandler struct{}

// NewAirbotHandler creates a new AirbotHandler.
func NewAirbotHandler() *AirbotHandler {
	return &AirbotHandler{}
}

// Ask handles GET /v1/airbot?q=.
func (h *AirbotHandler) Ask(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		response.BadRequest(w, r, "question is required", models.Required("q"))
		return
	}
	if len(q) > maxQuestionLength {
		response.BadRequest(w, r, "question too long", models.TooLong("q", maxQuestionLength, "bytes"))
		return
	}

	answer := airbot.Ask(q)
	response.JSON(w, r, http.StatusOK, models.AirbotAnswer{
		Question: q,
		Topic:    string(answer.Topic),
		Answer:   answer.Text,
	})
}
