package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/hmpps/incentives-ui/internal/domain"
)

const (
	stateCookieName   = "incentives_sign_in"
	stateCookieMaxAge = int(10 * time.Minute / time.Second)
	stateLength       = 24
)

// Provider runs the authorization code flow against HMPPS Auth.
type Provider struct {
	config      *oauth2.Config
	externalURL string
	ingressURL  string
	secure      bool
}

// ProviderConfig holds the settings a Provider needs.
type ProviderConfig struct {
	AuthURL         string // Server-side URL for the token endpoint
	AuthExternalURL string // Browser-facing URL for sign-in and sign-out
	ClientID        string
	ClientSecret    string
	IngressURL      string // Public URL of this service
	Secure          bool   // Mark the state cookie Secure
}

// NewProvider creates a provider.
func NewProvider(cfg ProviderConfig) *Provider {
	return &Provider{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint: oauth2.Endpoint{
				AuthURL:   cfg.AuthExternalURL + "/oauth/authorize",
				TokenURL:  cfg.AuthURL + "/oauth/token",
				AuthStyle: oauth2.AuthStyleInHeader,
			},
			RedirectURL: cfg.IngressURL + "/sign-in/callback",
			Scopes:      []string{"read"},
		},
		externalURL: cfg.AuthExternalURL,
		ingressURL:  cfg.IngressURL,
		secure:      cfg.Secure,
	}
}

// loginState is stored in a short-lived cookie between sign-in and callback.
type loginState struct {
	ID       string `json:"id"`
	ReturnTo string `json:"returnTo"`
}

// BeginSignIn sets the state cookie and returns the provider URL to redirect to.
func (p *Provider) BeginSignIn(w http.ResponseWriter, returnTo string) (string, error) {
	const op = "auth.BeginSignIn"

	b := make([]byte, stateLength)
	if _, err := rand.Read(b); err != nil {
		return "", domain.Internal(err, op, "failed to generate sign-in state")
	}
	state := loginState{
		ID:       base64.RawURLEncoding.EncodeToString(b),
		ReturnTo: SafeReturnTo(returnTo),
	}
	stateJSON, err := json.Marshal(state)
	if err != nil {
		return "", domain.Internal(err, op, "failed to encode sign-in state")
	}

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    base64.RawURLEncoding.EncodeToString(stateJSON),
		Path:     "/sign-in",
		MaxAge:   stateCookieMaxAge,
		Secure:   p.secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	return p.config.AuthCodeURL(state.ID), nil
}

// CompleteSignIn checks the callback state against the cookie, clears the cookie and
// exchanges the code. It returns the token and the path to return to.
func (p *Provider) CompleteSignIn(w http.ResponseWriter, r *http.Request) (*oauth2.Token, string, error) {
	const op = "auth.CompleteSignIn"

	cookie, err := r.Cookie(stateCookieName)
	if err != nil {
		return nil, "", domain.Invalid(op, "No sign-in was started")
	}
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    "",
		Path:     "/sign-in",
		MaxAge:   -1,
		Secure:   p.secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	stateJSON, err := base64.RawURLEncoding.DecodeString(cookie.Value)
	if err != nil {
		return nil, "", domain.Invalid(op, "Sign-in state is not valid")
	}
	var state loginState
	if err := json.Unmarshal(stateJSON, &state); err != nil {
		return nil, "", domain.Invalid(op, "Sign-in state is not valid")
	}

	query := r.URL.Query()
	if query.Get("error") != "" {
		return nil, "", domain.Unauthorized(op, "Sign-in was refused: "+query.Get("error"))
	}
	if state.ID == "" || query.Get("state") != state.ID {
		return nil, "", domain.Invalid(op, "Sign-in state does not match")
	}

	token, err := p.config.Exchange(r.Context(), query.Get("code"))
	if err != nil {
		return nil, "", tokenError(err, op)
	}
	return token, state.ReturnTo, nil
}

// Refresh exchanges a refresh token for a new access token.
func (p *Provider) Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	const op = "auth.Refresh"

	if refreshToken == "" {
		return nil, domain.Unauthorized(op, "No refresh token")
	}
	// Expiry in the past forces the token source to refresh.
	expired := &oauth2.Token{RefreshToken: refreshToken, Expiry: time.Unix(1, 0)}
	token, err := p.config.TokenSource(ctx, expired).Token()
	if err != nil {
		return nil, tokenError(err, op)
	}
	return token, nil
}

// SignOutURL is the provider page that ends the single sign-on session and then
// returns the browser to this service.
func (p *Provider) SignOutURL() string {
	q := url.Values{}
	q.Set("client_id", p.config.ClientID)
	q.Set("redirect_uri", p.ingressURL)
	return p.externalURL + "/sign-out?" + q.Encode()
}

// SafeReturnTo only allows local absolute paths, so sign-in cannot be used as an
// open redirect.
func SafeReturnTo(returnTo string) string {
	if !strings.HasPrefix(returnTo, "/") || strings.HasPrefix(returnTo, "//") || strings.HasPrefix(returnTo, "/\\") {
		return "/"
	}
	return returnTo
}

// tokenError maps token endpoint failures: a rejected grant means the user must sign
// in again, anything else means the provider is unavailable.
func tokenError(err error, op string) error {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) && retrieveErr.Response != nil && retrieveErr.Response.StatusCode < 500 {
		return domain.Wrap(err, domain.EUNAUTHORIZED, op, "Sign-in was not accepted")
	}
	return domain.Unavailable(err, op, "HMPPS Auth is unavailable")
}
