package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	redisstore "github.com/ulule/limiter/v3/drivers/store/redis"

	"github.com/hmpps/incentives-ui/internal/auth"
	"github.com/hmpps/incentives-ui/internal/domain"
	"github.com/hmpps/incentives-ui/internal/handler"
)

const rateLimitPrefix = "incentives-ui:ratelimit:"

// NewMemoryRateStore keeps rate limit counters in this process.
func NewMemoryRateStore() limiter.Store {
	return memory.NewStoreWithOptions(limiter.StoreOptions{
		Prefix:          rateLimitPrefix,
		CleanUpInterval: 10 * time.Minute,
	})
}

// NewRedisRateStore keeps rate limit counters in redis so every replica sees
// the same counts.
func NewRedisRateStore(client redisstore.Client) (limiter.Store, error) {
	return redisstore.NewStoreWithOptions(client, limiter.StoreOptions{
		Prefix:   rateLimitPrefix,
		MaxRetry: 3,
	})
}

// RateLimitMiddleware limits how often one client may make a request, such as
// submitting the feedback form.
type RateLimitMiddleware struct {
	name    string
	limiter *limiter.Limiter
	logger  *slog.Logger
}

// NewRateLimitMiddleware allows limit requests per user (or client IP) per period. name
// keeps the counters of different limits apart in a shared store.
func NewRateLimitMiddleware(store limiter.Store, name string, limit int, period time.Duration, logger *slog.Logger) *RateLimitMiddleware {
	return &RateLimitMiddleware{
		name:    name,
		limiter: limiter.New(store, limiter.Rate{Period: period, Limit: int64(limit)}),
		logger:  logger,
	}
}

// Limit returns middleware that rate limits requests per signed-in user, or per
// client IP when there is no user. X-Forwarded-For is set by the client as much
// as by the ingress, so it only keys anonymous requests.
func (m *RateLimitMiddleware) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientIP := getClientIP(r)
		key := "ip:" + clientIP
		if user := auth.GetUser(r.Context()); user != nil {
			key = "user:" + user.Username
		}

		lctx, err := m.limiter.Get(r.Context(), m.name+":"+key)
		if err != nil {
			// A broken store must not stop staff using the service
			m.logger.Error("rate limit store failed", "limit", m.name, "error", err)
			next.ServeHTTP(w, r)
			return
		}

		w.Header().Set("X-RateLimit-Limit", strconv.FormatInt(lctx.Limit, 10))
		w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(lctx.Remaining, 10))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(lctx.Reset, 10))

		if lctx.Reached {
			m.logger.Warn("rate limit exceeded",
				"limit", m.name,
				"key", key,
				"ip", clientIP,
				"path", r.URL.Path,
				"method", r.Method,
			)

			retryAfter := max(lctx.Reset-time.Now().Unix(), 1)
			w.Header().Set("Retry-After", strconv.FormatInt(retryAfter, 10))
			handler.ErrorResponse(w, r, m.logger, domain.RateLimit("middleware.RateLimit"))
			return
		}

		next.ServeHTTP(w, r)
	})
}

// getClientIP returns the first X-Forwarded-For address set by the ingress,
// then X-Real-IP, then the connection's address.
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}

	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
