// Package auth signs staff in against HMPPS Auth and carries the signed-in user
// through request contexts.
//
// The context helpers are imported by both middleware and handler packages
// without causing import cycles.
package auth

import (
	"context"
	"net/http"

	"github.com/hmpps/incentives-ui/internal/domain"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	userContextKey  contextKey = "user"
	tokenContextKey contextKey = "token"
)

// GetUser retrieves the signed-in user from the context.
//
// Returns nil if no user is signed in.
func GetUser(ctx context.Context) *domain.User {
	user, ok := ctx.Value(userContextKey).(*domain.User)
	if !ok {
		return nil
	}
	return user
}

// GetUserFromRequest retrieves the signed-in user from the request context.
func GetUserFromRequest(r *http.Request) *domain.User {
	return GetUser(r.Context())
}

// SetUser stores a user in the context.
func SetUser(ctx context.Context, user *domain.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// GetToken returns the signed-in user's access token, or "".
func GetToken(ctx context.Context) string {
	token, _ := ctx.Value(tokenContextKey).(string)
	return token
}

// SetToken stores the user's access token in the context. Upstream calls made on
// the user's behalf read it from here.
func SetToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenContextKey, token)
}
