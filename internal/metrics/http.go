package metrics

import (
	"net/http"
	"regexp"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// pathRules collapse prisoner numbers, location prefixes and level codes so
// each page is one series.
var pathRules = []struct {
	pattern *regexp.Regexp
	replace string
}{
	{regexp.MustCompile(`/[A-Z][0-9]{4}[A-Z]{2}(\.jpeg)?(/|$)`), "/{prisonerNumber}$1$2"},
	{regexp.MustCompile(`^/incentive-summary/[^/]+`), "/incentive-summary/{locationPrefix}"},
	{regexp.MustCompile(`^/incentive-levels/edit/[^/]+`), "/incentive-levels/edit/{code}"},
}

func normalizePath(path string) string {
	for _, rule := range pathRules {
		path = rule.pattern.ReplaceAllString(path, rule.replace)
	}
	return path
}

// Middleware counts and times requests by method, normalized path and status.
// The /metrics scrape itself is not recorded.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		route := prometheus.Labels{"path": normalizePath(r.URL.Path)}
		h := promhttp.InstrumentHandlerCounter(HTTPRequestsTotal.MustCurryWith(route), next)
		h = promhttp.InstrumentHandlerDuration(HTTPRequestDuration.MustCurryWith(route), h)
		promhttp.InstrumentHandlerInFlight(HTTPRequestsInFlight, h).ServeHTTP(w, r)
	})
}
