package auth

import (
	"context"

	"shopfloor/internal/session"
)

// contextKey prevents collisions with other context values.
type contextKey string

const identityKey contextKey = "shopfloor:identity"

// Identity is the authenticated operator attached to a request after the
// route guard has admitted it.
type Identity struct {
	UserID string
	Email  string
	Name   string
	Role   session.Role
}

// WithIdentity stores the identity on the request context.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	if id == nil {
		return ctx
	}
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromContext retrieves the authenticated operator, when available.
func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(identityKey).(*Identity)
	return id, ok
}
