// Package handler contains HTTP handlers for the incentives UI.
//
// This file implements sign-in through HMPPS Auth, the callback that starts a
// session, and sign-out.
package handler

import (
	"context"
	"net/http"

	"golang.org/x/oauth2"

	"github.com/hmpps/incentives-ui/internal/service"
	"github.com/hmpps/incentives-ui/internal/session"
)

// SignInFlow is the OAuth2 authorization code flow against the identity provider.
type SignInFlow interface {
	BeginSignIn(w http.ResponseWriter, returnTo string) (string, error)
	CompleteSignIn(w http.ResponseWriter, r *http.Request) (*oauth2.Token, string, error)
	SignOutURL() string
}

// AuthHandler handles authentication-related HTTP requests.
type AuthHandler struct {
	*Pages
	flow     SignInFlow
	users    service.UserService
	isSecure bool
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(pages *Pages, flow SignInFlow, users service.UserService, isSecure bool) *AuthHandler {
	return &AuthHandler{
		Pages:    pages,
		flow:     flow,
		users:    users,
		isSecure: isSecure,
	}
}

// RegisterRoutes registers all auth routes on the provided ServeMux.
//
// Routes registered:
// - GET /sign-in          -> SignIn
// - GET /sign-in/callback -> Callback
// - GET /sign-out         -> SignOut
// - GET /autherror        -> AuthError
func (h *AuthHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /sign-in", h.SignIn)
	mux.HandleFunc("GET /sign-in/callback", h.Callback)
	mux.HandleFunc("GET /sign-out", h.SignOut)
	mux.HandleFunc("GET /autherror", h.AuthError)
}

// =============================================================================
// GET /sign-in
// =============================================================================

// SignIn redirects to the identity provider.
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	target, err := h.flow.BeginSignIn(w, r.URL.Query().Get("returnTo"))
	if err != nil {
		ErrorResponse(w, r, h.Logger, err)
		return
	}
	http.Redirect(w, r, target, http.StatusFound)
}

// =============================================================================
// GET /sign-in/callback
// =============================================================================

// Callback completes sign-in and starts a session.
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	token, returnTo, err := h.flow.CompleteSignIn(w, r)
	if err != nil {
		h.Logger.Warn("sign-in failed", "error", err)
		http.Redirect(w, r, "/autherror", http.StatusFound)
		return
	}

	raw, sess, err := h.users.SignIn(r.Context(), token)
	if err != nil {
		h.Logger.Error("failed to start session", "error", err)
		http.Redirect(w, r, "/autherror", http.StatusFound)
		return
	}

	session.SetCookie(w, raw, sess.ExpiresAt(), h.isSecure)
	http.Redirect(w, r, returnTo, http.StatusFound)
}

// =============================================================================
// GET /sign-out
// =============================================================================

// SignOut ends the session here and at the identity provider.
func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	// Delete even if the client has gone away.
	if err := h.users.SignOut(context.WithoutCancel(r.Context()), session.TokenFromRequest(r)); err != nil {
		h.Logger.Warn("failed to delete session", "error", err)
	}
	session.ClearCookie(w, h.isSecure)
	http.Redirect(w, r, h.flow.SignOutURL(), http.StatusFound)
}

// =============================================================================
// GET /autherror
// =============================================================================

// AuthErrorPageData contains data for the sign-in error page.
type AuthErrorPageData struct {
	Layout
}

// AuthError explains that sign-in failed or the user lacks access.
func (h *AuthHandler) AuthError(w http.ResponseWriter, r *http.Request) {
	h.renderStatus(w, http.StatusUnauthorized, "auth/autherror", AuthErrorPageData{
		Layout: h.layout(r, "Sorry, you cannot sign in"),
	})
}
