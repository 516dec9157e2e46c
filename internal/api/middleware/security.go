package middleware

import (
	"net/http"
	"strings"

	"github.com/breatheroute/airtracker/internal/api/models"
)

// securityHeaders are set on every response. The API serves JSON only, so
// framing, embedding and browser features are all denied.
var securityHeaders = [][2]string{
	{"X-Content-Type-Options", "nosniff"},
	{"X-Frame-Options", "DENY"},
	{"Strict-Transport-Security", "max-age=31536000; includeSubDomains"},
	{"Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'"},
	{"Referrer-Policy", "strict-origin-when-cross-origin"},
	{"Permissions-Policy", "geolocation=(), camera=(), microphone=()"},
	// Readings change hourly; intermediaries must not serve a stale report.
	{"Cache-Control", "no-store"},
}

// SecurityHeaders adds the standard security headers to all responses.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		for _, kv := range securityHeaders {
			h.Set(kv[0], kv[1])
		}
		next.ServeHTTP(w, r)
	})
}

// RequireTLS rejects requests that a proxy forwarded over plain HTTP. Only
// the first X-Forwarded-Proto hop counts. Requests without the header
// (direct connections, local runs) and the exempt paths pass.
func RequireTLS(enabled bool, exempt ...string) func(http.Handler) http.Handler {
	skip := make(map[string]struct{}, len(exempt))
	for _, p := range exempt {
		skip[p] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		if !enabled {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := skip[r.URL.Path]; ok || !forwardedInsecure(r) {
				next.ServeHTTP(w, r)
				return
			}
			models.NewProblem(models.ProblemTypeTLSRequired, GetRequestID(r.Context()), "This endpoint requires HTTPS").
				WithInstance(r.URL.Path).
				Write(w)
		})
	}
}

func forwardedInsecure(r *http.Request) bool {
	proto := r.Header.Get("X-Forwarded-Proto")
	if proto == "" {
		return false
	}
	if i := strings.IndexByte(proto, ','); i >= 0 {
		proto = proto[:i]
	}
	return !strings.EqualFold(strings.TrimSpace(proto), "https")
}
