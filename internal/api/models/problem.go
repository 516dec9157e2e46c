package models

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Problem is an RFC7807 body served as application/problem+json.
type Problem struct {
	Type     string       `json:"type"`
	Title    string       `json:"title"`
	Status   int          `json:"status"`
	Detail   string       `json:"detail,omitempty"`
	Instance string       `json:"instance,omitempty"`
	TraceID  string       `json:"traceId"`
	Errors   []FieldError `json:"errors,omitempty"`
}

// FieldError describes one invalid request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Field error codes.
const (
	CodeRequired   = "REQUIRED"
	CodeTooLong    = "TOO_LONG"
	CodeOutOfRange = "OUT_OF_RANGE"
)

// Required reports a missing field.
func Required(field string) FieldError {
	return FieldError{Field: field, Message: "is required", Code: CodeRequired}
}

// TooLong reports a field over max units ("characters", "bytes").
func TooLong(field string, max int, unit string) FieldError {
	return FieldError{Field: field, Message: fmt.Sprintf("must be at most %d %s", max, unit), Code: CodeTooLong}
}

// OutOfRange reports a numeric field outside [min, max].
func OutOfRange(field string, min, max int) FieldError {
	return FieldError{Field: field, Message: fmt.Sprintf("must be between %d and %d", min, max), Code: CodeOutOfRange}
}

const problemBase = "https://airtracker.breatheroute.dev/problems/"

// Problem types served by the API.
const (
	ProblemTypeValidation      = problemBase + "validation-error"
	ProblemTypeNotFound        = problemBase + "not-found"
	ProblemTypeUnprocessable   = problemBase + "unprocessable"
	ProblemTypeMediaType       = problemBase + "unsupported-media-type"
	ProblemTypeTooManyRequests = problemBase + "too-many-requests"
	ProblemTypeInternal        = problemBase + "internal-error"
	ProblemTypeBadGateway      = problemBase + "upstream-error"
	ProblemTypeUnavailable     = problemBase + "service-unavailable"
	ProblemTypeTLSRequired     = problemBase + "tls-required"
)

type problemKind struct {
	title  string
	status int
}

var problemKinds = map[string]problemKind{
	ProblemTypeValidation:      {"Validation error", http.StatusBadRequest},
	ProblemTypeNotFound:        {"Not found", http.StatusNotFound},
	ProblemTypeUnprocessable:   {"Unprocessable data", http.StatusUnprocessableEntity},
	ProblemTypeMediaType:       {"Unsupported media type", http.StatusUnsupportedMediaType},
	ProblemTypeTooManyRequests: {"Too many requests", http.StatusTooManyRequests},
	ProblemTypeInternal:        {"Internal server error", http.StatusInternalServerError},
	ProblemTypeBadGateway:      {"Upstream error", http.StatusBadGateway},
	ProblemTypeUnavailable:     {"Service unavailable", http.StatusServiceUnavailable},
	ProblemTypeTLSRequired:     {"TLS required", http.StatusForbidden},
}

// NewProblem builds a problem of a known type, filling in its title and
// status. Unknown types map to internal errors.
func NewProblem(problemType, traceID, detail string) *Problem {
	kind, ok := problemKinds[problemType]
	if !ok {
		problemType = ProblemTypeInternal
		kind = problemKinds[ProblemTypeInternal]
	}
	return &Problem{
		Type:    problemType,
		Title:   kind.title,
		Status:  kind.status,
		Detail:  detail,
		TraceID: traceID,
	}
}

// NewValidationProblem is a 400 carrying the offending fields.
func NewValidationProblem(traceID, detail string, errs ...FieldError) *Problem {
	p := NewProblem(ProblemTypeValidation, traceID, detail)
	p.Errors = errs
	return p
}

// WithInstance sets the request path the problem refers to.
func (p *Problem) WithInstance(instance string) *Problem {
	p.Instance = instance
	return p
}

// Error makes a Problem usable as an error value.
func (p *Problem) Error() string {
	if p.Detail == "" {
		return p.Title
	}
	return p.Title + ": " + p.Detail
}

// Write sends the problem with its status code and the X-Request-Id header.
func (p *Problem) Write(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/problem+json")
	if p.TraceID != "" {
		w.Header().Set("X-Request-Id", p.TraceID)
	}
	w.WriteHeader(p.Status)
	_ = json.NewEncoder(w).Encode(p)
}
