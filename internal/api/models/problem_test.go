package models_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/breatheroute/airtracker/internal/api/models"
)

func TestNewProblem_Catalogue(t *testing.T) {
	tests := []struct {
		problemType string
		title       string
		status      int
	}{
		{models.ProblemTypeValidation, "Validation error", http.StatusBadRequest},
		{models.ProblemTypeNotFound, "Not found", http.StatusNotFound},
		{models.ProblemTypeUnprocessable, "Unprocessable data", http.StatusUnprocessableEntity},
		{models.ProblemTypeMediaType, "Unsupported media type", http.StatusUnsupportedMediaType},
		{models.ProblemTypeTooManyRequests, "Too many requests", http.StatusTooManyRequests},
		{models.ProblemTypeInternal, "Internal server error", http.StatusInternalServerError},
		{models.ProblemTypeBadGateway, "Upstream error", http.StatusBadGateway},
		{models.ProblemTypeUnavailable, "Service unavailable", http.StatusServiceUnavailable},
		{models.ProblemTypeTLSRequired, "TLS required", http.StatusForbidden},
	}

	for _, tc := range tests {
		t.Run(tc.title, func(t *testing.T) {
			p := models.NewProblem(tc.problemType, "req-1", "detail")
			assert.Equal(t, tc.problemType, p.Type)
			assert.Equal(t, tc.title, p.Title)
			assert.Equal(t, tc.status, p.Status)
			assert.Equal(t, "detail", p.Detail)
			assert.Equal(t, "req-1", p.TraceID)
			assert.Nil(t, p.Errors)
		})
	}
}

func TestNewProblem_UnknownTypeIsInternal(t *testing.T) {
	p := models.NewProblem("https://example.com/made-up", "req-1", "oops")

	assert.Equal(t, models.ProblemTypeInternal, p.Type)
	assert.Equal(t, http.StatusInternalServerError, p.Status)
	assert.Equal(t, "oops", p.Detail)
}

func TestFieldErrorHelpers(t *testing.T) {
	assert.Equal(t, models.FieldError{Field: "city", Message: "is required", Code: "REQUIRED"}, models.Required("city"))
	assert.Equal(t,
		models.FieldError{Field: "city", Message: "must be at most 100 characters", Code: "TOO_LONG"},
		models.TooLong("city", 100, "characters"))
	assert.Equal(t,
		models.FieldError{Field: "limit", Message: "must be between 1 and 100", Code: "OUT_OF_RANGE"},
		models.OutOfRange("limit", 1, 100))
}

func TestProblem_WriteValidation(t *testing.T) {
	p := models.NewValidationProblem("req-42", "validation failed",
		models.Required("sessionId"),
		models.TooLong("city", 100, "characters"),
	).WithInstance("/v1/narrations:claim")

	rec := httptest.NewRecorder()
	p.Write(rec)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "req-42", rec.Header().Get("X-Request-Id"))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, models.ProblemTypeValidation, body["type"])
	assert.Equal(t, "/v1/narrations:claim", body["instance"])
	assert.Equal(t, "req-42", body["traceId"])
	errs, ok := body["errors"].([]interface{})
	require.True(t, ok)
	assert.Len(t, errs, 2)
}

func TestProblem_WriteOmitsEmptyFields(t *testing.T) {
	rec := httptest.NewRecorder()
	models.NewProblem(models.ProblemTypeInternal, "", "").Write(rec)

	assert.Empty(t, rec.Header().Get("X-Request-Id"))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotContains(t, body, "detail")
	assert.NotContains(t, body, "instance")
	assert.NotContains(t, body, "errors")
	assert.Contains(t, body, "traceId")
}

func TestProblem_Error(t *testing.T) {
	assert.Equal(t, "Not found: city not found: Atlantis",
		models.NewProblem(models.ProblemTypeNotFound, "", "city not found: Atlantis").Error())
	assert.Equal(t, "Upstream error", models.NewProblem(models.ProblemTypeBadGateway, "", "").Error())
}
