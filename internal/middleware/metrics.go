package middleware

import (
	"crypto/sha256"
	"crypto/subtle"
	"net/http"
)

// MetricsAuthMiddleware protects /metrics with the basic auth credentials the
// Prometheus scraper is configured with (METRICS_USERNAME, METRICS_PASSWORD).
type MetricsAuthMiddleware struct {
	credentials [sha256.Size]byte
	enabled     bool
}

// NewMetricsAuthMiddleware creates the middleware. With no username and no
// password the endpoint is left open, which is only expected in development.
func NewMetricsAuthMiddleware(username, password string) *MetricsAuthMiddleware {
	return &MetricsAuthMiddleware{
		credentials: hashCredentials(username, password),
		enabled:     username != "" || password != "",
	}
}

// Handler returns middleware that requires the scraper's credentials.
func (m *MetricsAuthMiddleware) Handler(next http.Handler) http.Handler {
	if !m.enabled {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if ok {
			got := hashCredentials(user, pass)
			ok = subtle.ConstantTimeCompare(got[:], m.credentials[:]) == 1
		}
		if !ok {
			w.Header().Set("WWW-Authenticate", `Basic realm="incentives-ui metrics", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func hashCredentials(username, password string) [sha256.Size]byte {
	// The separator cannot appear in a basic auth username
	return sha256.Sum256([]byte(username + ":" + password))
}
