package session

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"time"

	"github.com/hmpps/incentives-ui/internal/domain"
)

const tokenLength = 32

// Session is a signed-in user and their HMPPS Auth tokens.
type Session struct {
	Token        string      `json:"-"` // SHA-256 of the cookie token
	User         domain.User `json:"user"`
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken"`
	TokenExpiry  time.Time   `json:"tokenExpiry"`
	Expires      int64       `json:"expires"` // Unix seconds
}

// ExpiresAt returns when the session ends.
func (s *Session) ExpiresAt() time.Time {
	return time.Unix(s.Expires, 0)
}

// Expired reports whether the session has ended.
func (s *Session) Expired(now time.Time) bool {
	return now.Unix() >= s.Expires
}

// NeedsRefresh reports whether the access token expires within margin.
func (s *Session) NeedsRefresh(now time.Time, margin time.Duration) bool {
	return !s.TokenExpiry.IsZero() && !now.Add(margin).Before(s.TokenExpiry)
}

// Store persists sessions.
type Store interface {
	// Create stores s and returns the raw token to put in the cookie. s.Expires
	// must be set.
	Create(ctx context.Context, s *Session) (string, error)

	// Get returns the session for a raw token, or nil when there is none or it
	// has expired.
	Get(ctx context.Context, rawToken string) (*Session, error)

	// Save replaces the stored session for a raw token, keeping its expiry.
	Save(ctx context.Context, rawToken string, s *Session) error

	// Delete removes the session for a raw token.
	Delete(ctx context.Context, rawToken string) error
}

// newToken returns a random cookie token and its hash.
func newToken() (raw, hash string, err error) {
	b := make([]byte, tokenLength)
	if _, err := rand.Read(b); err != nil {
		return "", "", err
	}
	raw = base64.RawURLEncoding.EncodeToString(b)
	return raw, hashToken(raw), nil
}

func hashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
