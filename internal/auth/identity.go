package auth

import "context"

type contextKey string

const identityKey contextKey = "identity"

// Identity is the authenticated caller. It is resolved once by the
// middleware and passed explicitly into any service that scopes data
// to its owner.
type Identity struct {
	UserID string
	Staff  bool
}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromContext returns the caller identity set by Middleware.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}
