package metrics

import (
	"strconv"
	"time"
)

// UpstreamCompleted records a finished upstream request. statusCode is 0 when no
// response was received.
func UpstreamCompleted(api string, statusCode int, duration time.Duration) {
	status := "error"
	if statusCode > 0 {
		status = strconv.Itoa(statusCode)
	}
	UpstreamRequestsTotal.WithLabelValues(api, status).Inc()
	UpstreamRequestDuration.WithLabelValues(api).Observe(duration.Seconds())
}

// UpstreamRetried records a retry attempt against an upstream API.
func UpstreamRetried(api string) {
	UpstreamRetriesTotal.WithLabelValues(api).Inc()
}

// AnalyticsLoaded records an analytics table load.
func AnalyticsLoaded(source string, err error) {
	status := "ok"
	if err != nil {
		status = "failed"
	}
	AnalyticsLoads.WithLabelValues(source, status).Inc()
}
