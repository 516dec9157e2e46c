package models

// NarrationClaimRequest is the body of POST /v1/narrations:claim.
type NarrationClaimRequest struct {
	SessionID string `json:"sessionId"`
	City      string `json:"city"`
}

// NarrationClaimResponse tells the client whether to narrate the city's report.
// Greeting is set only on the session's first claim.
type NarrationClaimResponse struct {
	Narrate  bool   `json:"narrate"`
	Greeting string `json:"greeting,omitempty"`
}

// AirbotAnswer is the response body of GET /v1/airbot.
type AirbotAnswer struct {
	Question string `json:"question"`
	Topic    string `json:"topic"`
	Answer   string `json:"answer"`
}
