package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/hmpps/incentives-ui/internal/domain"
)

// Claims are the HMPPS Auth access token claims the UI reads.
type Claims struct {
	jwt.RegisteredClaims
	UserName    string   `json:"user_name"`
	AuthSource  string   `json:"auth_source"`
	Authorities []string `json:"authorities"`
}

// ParseClaims reads the claims of an access token. The signature is not verified:
// the token came straight from the token endpoint and upstream APIs verify it on
// every call.
func ParseClaims(accessToken string) (*Claims, error) {
	const op = "auth.ParseClaims"

	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(accessToken, claims); err != nil {
		return nil, domain.Wrap(err, domain.EUNAUTHORIZED, op, "Access token could not be read")
	}
	if claims.UserName == "" {
		claims.UserName = claims.Subject
	}
	if claims.UserName == "" {
		return nil, domain.Unauthorized(op, "Access token has no user name")
	}
	return claims, nil
}

// Expiry returns the token expiry, or the zero time when the claim is missing.
func (c *Claims) Expiry() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}
