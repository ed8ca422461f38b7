// Package csrf protects form posts with a double-submit cookie: every form
// carries the token from the incentives_csrf cookie, and unsafe requests whose
// submitted token does not match the cookie are rejected. Another origin can
// make the browser send the cookie but cannot read it.
package csrf

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"net/http"
)

const (
	CookieName    = "incentives_csrf"
	FormFieldName = "_csrf"
	// HeaderName carries the token for requests that do not post a form.
	HeaderName = "X-CSRF-Token"

	tokenBytes   = 32
	cookieMaxAge = 3600
)

// GenerateToken returns 32 random bytes, base64url encoded.
func GenerateToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// ValidateToken reports whether submitted matches the cookie token, in
// constant time. Empty tokens never match.
func ValidateToken(cookieToken, submitted string) bool {
	if cookieToken == "" || submitted == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(cookieToken), []byte(submitted)) == 1
}

func validRequest(r *http.Request) bool {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return false
	}
	submitted := r.Header.Get(HeaderName)
	if submitted == "" {
		submitted = r.FormValue(FormFieldName)
	}
	return ValidateToken(cookie.Value, submitted)
}

// ensureToken returns the request's cookie token, issuing a new cookie when
// there is none.
func ensureToken(w http.ResponseWriter, r *http.Request, isSecure bool) (string, error) {
	if cookie, err := r.Cookie(CookieName); err == nil && cookie.Value != "" {
		return cookie.Value, nil
	}

	token, err := GenerateToken()
	if err != nil {
		return "", err
	}
	// Not HttpOnly: the value is rendered into forms, never read by script.
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   cookieMaxAge,
		Secure:   isSecure,
		SameSite: http.SameSiteStrictMode,
	})
	return token, nil
}

type contextKey struct{}

// Token returns the token placed in the context by Protect, or "".
func Token(ctx context.Context) string {
	token, _ := ctx.Value(contextKey{}).(string)
	return token
}

// Protect makes a token available to every request through Token and rejects
// unsafe requests whose submitted token does not match the cookie. Rejected
// requests are passed to onFailure.
func Protect(isSecure bool, onFailure http.Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
			default:
				if !validRequest(r) {
					onFailure.ServeHTTP(w, r)
					return
				}
			}

			token, err := ensureToken(w, r, isSecure)
			if err != nil {
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), contextKey{}, token)))
		})
	}
}
