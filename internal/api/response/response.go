// Package response writes JSON bodies and RFC7807 problems for the API handlers.
package response

import (
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/breatheroute/airtracker/internal/api/middleware"
	"github.com/breatheroute/airtracker/internal/api/models"
)

// JSON writes a JSON response with the given status code.
// Includes X-Request-Id header for correlation.
func JSON(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	requestID := middleware.GetRequestID(r.Context())
	if requestID != "" {
		w.Header().Set("X-Request-Id", requestID)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// NoContent writes a 204 No Content response.
func NoContent(w http.ResponseWriter, r *http.Request) {
	if requestID := middleware.GetRequestID(r.Context()); requestID != "" {
		w.Header().Set("X-Request-Id", requestID)
	}
	w.WriteHeader(http.StatusNoContent)
}

// Error writes problem with its Instance set to the request path.
func Error(w http.ResponseWriter, r *http.Request, problem *models.Problem) {
	problem.Instance = r.URL.Path
	problem.Write(w)
}

func writeProblem(w http.ResponseWriter, r *http.Request, problemType, detail string) {
	Error(w, r, models.NewProblem(problemType, middleware.GetRequestID(r.Context()), detail))
}

// BadRequest writes a 400 validation problem listing the invalid fields.
func BadRequest(w http.ResponseWriter, r *http.Request, detail string, errs ...models.FieldError) {
	Error(w, r, models.NewValidationProblem(middleware.GetRequestID(r.Context()), detail, errs...))
}

// NotFound writes a 404 problem.
func NotFound(w http.ResponseWriter, r *http.Request, detail string) {
	writeProblem(w, r, models.ProblemTypeNotFound, detail)
}

// Unprocessable writes a 422 problem for upstream data that cannot be reported on.
func Unprocessable(w http.ResponseWriter, r *http.Request, detail string) {
	writeProblem(w, r, models.ProblemTypeUnprocessable, detail)
}

// InternalError writes a 500 problem.
func InternalError(w http.ResponseWriter, r *http.Request, detail string) {
	writeProblem(w, r, models.ProblemTypeInternal, detail)
}

// BadGateway writes a 502 problem.
func BadGateway(w http.ResponseWriter, r *http.Request, detail string) {
	writeProblem(w, r, models.ProblemTypeBadGateway, detail)
}

// ServiceUnavailable writes a 503 problem.
// A positive retryAfter is sent as Retry-After, rounded up to whole seconds.
func ServiceUnavailable(w http.ResponseWriter, r *http.Request, detail string, retryAfter time.Duration) {
	if retryAfter > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(retryAfter.Seconds()))))
	}
	writeProblem(w, r, models.ProblemTypeUnavailable, detail)
}
