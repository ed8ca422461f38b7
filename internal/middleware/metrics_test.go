package middleware

import (
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func scrapeTarget() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("# HELP incentives_ui_http_requests_total"))
	})
}

func TestMetricsAuthMiddleware(t *testing.T) {
	mw := NewMetricsAuthMiddleware("prometheus", "scrape-secret")

	tests := []struct {
		name          string
		authorization string // raw header; empty means none
		user, pass    string
		wantStatus    int
	}{
		{name: "valid credentials", user: "prometheus", pass: "scrape-secret", wantStatus: http.StatusOK},
		{name: "wrong password", user: "prometheus", pass: "wrong", wantStatus: http.StatusUnauthorized},
		{name: "wrong username", user: "grafana", pass: "scrape-secret", wantStatus: http.StatusUnauthorized},
		{name: "empty credentials", user: "", pass: "", wantStatus: http.StatusUnauthorized},
		{name: "credentials split differently", user: "prometheus:scrape", pass: "secret", wantStatus: http.StatusUnauthorized},
		{name: "no header", wantStatus: http.StatusUnauthorized},
		{name: "bearer token", authorization: "Bearer abc", wantStatus: http.StatusUnauthorized},
		{name: "malformed base64", authorization: "Basic not-base64!!", wantStatus: http.StatusUnauthorized},
		{
			name:          "header injection",
			authorization: "Basic " + base64.StdEncoding.EncodeToString([]byte("prometheus:scrape-secret\r\nX-Injected: 1")),
			wantStatus:    http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
			switch {
			case tt.authorization != "":
				req.Header.Set("Authorization", tt.authorization)
			case tt.user != "" || tt.pass != "" || tt.name == "empty credentials":
				req.SetBasicAuth(tt.user, tt.pass)
			}
			rec := httptest.NewRecorder()
			mw.Handler(scrapeTarget()).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusUnauthorized {
				assert.Contains(t, rec.Header().Get("WWW-Authenticate"), `Basic realm="incentives-ui metrics"`)
				assert.NotContains(t, rec.Body.String(), "incentives_ui_http_requests_total")
			} else {
				assert.Contains(t, rec.Body.String(), "incentives_ui_http_requests_total")
			}
		})
	}
}

func TestMetricsAuthMiddleware_DisabledWithoutCredentials(t *testing.T) {
	mw := NewMetricsAuthMiddleware("", "")

	rec := httptest.NewRecorder()
	mw.Handler(scrapeTarget()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}
