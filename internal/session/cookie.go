// Package session stores signed-in users between requests. Sessions are keyed by
// a random token held in a cookie; stores only ever see the token's hash.
package session

import (
	"net/http"
	"time"
)

// CookieName holds the raw session token.
const CookieName = "incentives_session"

func cookie(value string, maxAge int, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// SetCookie writes the session cookie. It expires with the session.
func SetCookie(w http.ResponseWriter, token string, expires time.Time, secure bool) {
	c := cookie(token, int(time.Until(expires).Seconds()), secure)
	c.Expires = expires
	http.SetCookie(w, c)
}

// ClearCookie removes the session cookie.
func ClearCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, cookie("", -1, secure))
}

// TokenFromRequest returns the session token cookie value, or "".
func TokenFromRequest(r *http.Request) string {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}
