package auth

import (
	"context"
)

// Authentication methods
const (
	AuthTypeAPIKey   = "api_key"
	AuthTypeJWT      = "jwt"
	AuthTypeDisabled = "disabled"
)

// UserContext holds the authenticated caller
type UserContext struct {
	Subject     string
	DisplayName string
	Email       string
	AuthType    string
}

type contextKey string

const userContextKey contextKey = "userContext"

// WithUserContext adds user context to the context
func WithUserContext(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// FromContext extracts user context from the context
func FromContext(ctx context.Context) (*UserContext, bool) {
	user, ok := ctx.Value(userContextKey).(*UserContext)
	return user, ok
}
