package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/breatheroute/airtracker/internal/api/middleware"
)

// echoRequestID serves one request and returns the id seen by the handler
// and the id echoed on the response.
func echoRequestID(header string) (seen, echoed string) {
	h := middleware.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = middleware.GetRequestID(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/v1/reports", http.NoBody)
	if header != "" {
		req.Header.Set("X-Request-Id", header)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return seen, rec.Header().Get("X-Request-Id")
}

func TestRequestID(t *testing.T) {
	tests := []struct {
		name   string
		header string
		minted bool
	}{
		{"missing", "", true},
		{"oversized", strings.Repeat("x", 129), true},
		{"newline", "abc\nforged=1", true},
		{"space", "abc def", true},
		{"non ascii", "réq-1", true},
		{"max length", strings.Repeat("x", 128), false},
		{"uuid", "7b2e4c1a-9f3d-4b8e-a1c2-0d5e6f7a8b9c", false},
		{"trace style", "trace:01.abc_DEF", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			seen, echoed := echoRequestID(tc.header)

			assert.Equal(t, seen, echoed)
			if tc.minted {
				assert.True(t, strings.HasPrefix(echoed, "req_"), echoed)
				assert.Len(t, echoed, len("req_")+22)
			} else {
				assert.Equal(t, tc.header, echoed)
			}
		})
	}
}

func TestRequestID_MintedIDsAreUnique(t *testing.T) {
	seen := make(map[string]struct{}, 200)
	for i := 0; i < 200; i++ {
		_, id := echoRequestID("")
		_, dup := seen[id]
		assert.False(t, dup, "duplicate request id %s", id)
		seen[id] = struct{}{}
	}
}

func TestRequestIDContext(t *testing.T) {
	assert.Empty(t, middleware.GetRequestID(context.Background()))

	ctx := middleware.WithRequestID(context.Background(), "req_fixed")
	assert.Equal(t, "req_fixed", middleware.GetRequestID(ctx))
}
