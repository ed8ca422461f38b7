package upstream

import (
	"context"
	"sync"
	"time"
)

// Status is the health of one upstream API.
type Status struct {
	Healthy bool          `json:"healthy"`
	Status  int           `json:"status,omitempty"`
	Error   string        `json:"error,omitempty"`
	Latency time.Duration `json:"-"`
}

// HealthChecker pings the /health/ping endpoint of each registered API.
type HealthChecker struct {
	clients []*Client
}

// NewHealthChecker checks the given clients. They should be built without retries
// and with a short timeout so a slow API does not hold up the health endpoint.
func NewHealthChecker(clients ...*Client) *HealthChecker {
	return &HealthChecker{clients: clients}
}

// Check pings every API concurrently and returns the results keyed by API name.
func (h *HealthChecker) Check(ctx context.Context) map[string]Status {
	results := make(map[string]Status, len(h.clients))

	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, c := range h.clients {
		wg.Add(1)
		go func() {
			defer wg.Done()
			status := c.ping(ctx)
			mu.Lock()
			results[c.name] = status
			mu.Unlock()
		}()
	}
	wg.Wait()

	return results
}

// Healthy reports whether every result is healthy.
func Healthy(results map[string]Status) bool {
	for _, s := range results {
		if !s.Healthy {
			return false
		}
	}
	return true
}

func (c *Client) ping(ctx context.Context) Status {
	start := time.Now()
	resp, err := c.request(ctx, "").Get("/health/ping")
	status := Status{Latency: time.Since(start)}
	if err != nil {
		status.Error = err.Error()
		return status
	}
	status.Status = resp.StatusCode()
	status.Healthy = !resp.IsError()
	if !status.Healthy {
		status.Error = resp.Status()
	}
	return status
}
