package middleware

import (
	"net/http"
	"net/url"
	"slices"
	"strings"
)

// SecurityHeadersMiddleware adds HTTP security headers to all responses.
type SecurityHeadersMiddleware struct {
	isSecure bool   // Whether to enable HTTPS-specific headers (true in production)
	csp      string // Built once; depends only on the allowed asset origins
}

// NewSecurityHeadersMiddleware creates a new security headers middleware.
// Set isSecure to true in production to enable HSTS and other HTTPS-specific headers.
// assetOrigins are extra origins allowed to serve scripts, styles, images and
// fonts, such as the frontend components host.
func NewSecurityHeadersMiddleware(isSecure bool, assetOrigins ...string) *SecurityHeadersMiddleware {
	return &SecurityHeadersMiddleware{
		isSecure: isSecure,
		csp:      buildCSP(assetOrigins),
	}
}

// Handler returns middleware that sets security headers on all responses.
func (m *SecurityHeadersMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Prevent clickjacking - deny all framing
		w.Header().Set("X-Frame-Options", "DENY")

		// Prevent MIME type sniffing
		w.Header().Set("X-Content-Type-Options", "nosniff")

		// Control referrer information
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		// XSS protection (legacy but still helpful for older browsers)
		w.Header().Set("X-XSS-Protection", "1; mode=block")

		// HSTS - only in production with HTTPS
		if m.isSecure {
			// max-age=31536000 = 1 year
			w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		w.Header().Set("Content-Security-Policy", m.csp)

		// Permissions Policy - disable browser features we don't need
		w.Header().Set("Permissions-Policy", "geolocation=(), microphone=(), camera=()")

		next.ServeHTTP(w, r)
	})
}

// buildCSP constructs the Content-Security-Policy header value. Asset origins
// may be given as full URLs; only their scheme and host are used.
func buildCSP(assetOrigins []string) string {
	sources := []string{"'self'"}
	for _, origin := range assetOrigins {
		u, err := url.Parse(strings.TrimSpace(origin))
		if err != nil || u.Scheme == "" || u.Host == "" {
			continue
		}
		if o := u.Scheme + "://" + u.Host; !slices.Contains(sources, o) {
			sources = append(sources, o)
		}
	}
	src := strings.Join(sources, " ")

	return strings.Join([]string{
		"default-src 'self'",
		// Scripts and styles: self + shared header/footer assets
		"script-src " + src,
		"style-src " + src,
		// Prisoner photos are proxied through this service
		"img-src " + src + " data:",
		"font-src " + src,
		"connect-src 'self'",
		"frame-ancestors 'none'",
		"base-uri 'self'",
		"form-action 'self'",
	}, "; ")
}
