package auth

import (
	"context"
	"net/url"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// SystemTokens issues client credentials tokens for calls the user's own token is
// not allowed to make. Tokens are cached per username until they expire.
type SystemTokens struct {
	clientID     string
	clientSecret string
	tokenURL     string

	mu     sync.Mutex
	tokens map[string]*oauth2.Token
}

// NewSystemTokens creates a token issuer for the system client.
func NewSystemTokens(authURL, clientID, clientSecret string) *SystemTokens {
	return &SystemTokens{
		clientID:     clientID,
		clientSecret: clientSecret,
		tokenURL:     authURL + "/oauth/token",
		tokens:       make(map[string]*oauth2.Token),
	}
}

// Token returns a system token on behalf of username. An empty username gets an
// anonymous system token.
func (s *SystemTokens) Token(ctx context.Context, username string) (string, error) {
	const op = "auth.SystemToken"

	s.mu.Lock()
	cached := s.tokens[username]
	s.mu.Unlock()
	if cached.Valid() {
		return cached.AccessToken, nil
	}

	cfg := &clientcredentials.Config{
		ClientID:     s.clientID,
		ClientSecret: s.clientSecret,
		TokenURL:     s.tokenURL,
		AuthStyle:    oauth2.AuthStyleInHeader,
	}
	if username != "" {
		cfg.EndpointParams = url.Values{"username": {username}}
	}

	token, err := cfg.Token(ctx)
	if err != nil {
		return "", tokenError(err, op)
	}

	s.mu.Lock()
	s.tokens[username] = token
	s.mu.Unlock()
	return token.AccessToken, nil
}
