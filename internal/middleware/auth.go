// Package middleware wraps the application's routes with sessions, access
// control, logging, security headers and rate limits.
package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/hmpps/incentives-ui/internal/auth"
	"github.com/hmpps/incentives-ui/internal/domain"
	"github.com/hmpps/incentives-ui/internal/handler"
	"github.com/hmpps/incentives-ui/internal/session"
)

// refreshMargin is how close to expiry an access token may get before it is refreshed.
const refreshMargin = 60 * time.Second

// TokenRefresher exchanges a refresh token for a new access token.
type TokenRefresher interface {
	Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error)
}

// AuthMiddleware loads the signed-in user from the session store.
type AuthMiddleware struct {
	sessions  session.Store
	refresher TokenRefresher
	logger    *slog.Logger
	isSecure  bool
	now       func() time.Time
}

// NewAuthMiddleware returns middleware that sets Secure cookies when isSecure.
func NewAuthMiddleware(sessions session.Store, refresher TokenRefresher, logger *slog.Logger, isSecure bool) *AuthMiddleware {
	return &AuthMiddleware{
		sessions:  sessions,
		refresher: refresher,
		logger:    logger,
		isSecure:  isSecure,
		now:       time.Now,
	}
}

// WithUser loads the session named by the session cookie and stores the user and
// their access token in the request context. Requests without a valid session
// continue without a user.
//
// An access token about to expire is refreshed first. If the refresh is refused
// the session is ended.
func (m *AuthMiddleware) WithUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := session.TokenFromRequest(r)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}

		s, err := m.sessions.Get(r.Context(), token)
		if err != nil {
			handler.ErrorResponse(w, r, m.logger, err)
			return
		}
		if s == nil {
			session.ClearCookie(w, m.isSecure)
			next.ServeHTTP(w, r)
			return
		}

		if s.NeedsRefresh(m.now(), refreshMargin) {
			if err := m.refresh(r.Context(), token, s); err != nil {
				m.logger.Info("session ended after failed token refresh",
					"username", s.User.Username,
					"error", err,
				)
				_ = m.sessions.Delete(r.Context(), token)
				session.ClearCookie(w, m.isSecure)
				next.ServeHTTP(w, r)
				return
			}
		}

		user := s.User
		ctx := auth.SetToken(auth.SetUser(r.Context(), &user), s.AccessToken)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *AuthMiddleware) refresh(ctx context.Context, rawToken string, s *session.Session) error {
	refreshed, err := m.refresher.Refresh(ctx, s.RefreshToken)
	if err != nil {
		return err
	}

	s.AccessToken = refreshed.AccessToken
	if refreshed.RefreshToken != "" {
		s.RefreshToken = refreshed.RefreshToken
	}
	s.TokenExpiry = refreshed.Expiry
	if err := m.sessions.Save(ctx, rawToken, s); err != nil {
		return err
	}

	m.logger.Debug("refreshed access token", "username", s.User.Username)
	return nil
}

// RequireUser requires a signed-in user. Page requests are redirected to sign in
// and returned to the same page afterwards; API requests get 401.
// It relies on WithUser having run.
func (m *AuthMiddleware) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth.GetUser(r.Context()) == nil {
			if isAPIRequest(r) {
				handler.UnauthorizedResponse(w, r, m.logger)
				return
			}

			returnTo := r.URL.Path
			if r.URL.RawQuery != "" {
				returnTo += "?" + r.URL.RawQuery
			}
			http.Redirect(w, r, "/sign-in?returnTo="+url.QueryEscape(returnTo), http.StatusFound)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RequireRole returns middleware that allows only users holding role.
func (m *AuthMiddleware) RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := auth.GetUser(r.Context())
			if !user.HasRole(role) {
				m.logger.Info("role required",
					"role", role,
					"path", r.URL.Path,
				)
				handler.ErrorResponse(w, r, m.logger, domain.Forbidden("middleware.RequireRole", "You do not have permission to see this page"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func isAPIRequest(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json") ||
		strings.Contains(r.Header.Get("Content-Type"), "application/json")
}

// Stack composes middleware; the first runs outermost.
func Stack(middlewares ...func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(h http.Handler) http.Handler {
		for _, mw := range slices.Backward(middlewares) {
			h = mw(h)
		}
		return h
	}
}
