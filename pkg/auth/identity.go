package auth

import "context"

// Identity is the resolved caller attached to a request context by the
// authentication middleware.
type Identity struct {
	UserID string
	Email  string
	Admin  bool
}

type identityContextKey struct{}

// WithIdentity attaches the caller identity to a context.
func WithIdentity(ctx context.Context, ident Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, ident)
}

// IdentityFromContext returns the caller identity, if any.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	ident, ok := ctx.Value(identityContextKey{}).(Identity)
	return ident, ok
}
