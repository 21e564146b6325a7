package auth

import (
	"context"
)

// Identity is the authenticated caller of one request. It lives exactly as
// long as the request's context and is never persisted.
type Identity struct {
	ID string `json:"id"`
}

// contextKey is unexported so no other package can read or shadow the
// identity binding.
type contextKey struct{}

var identityKey contextKey

// WithIdentity returns a child context carrying id. Each request derives its
// own context, so concurrent requests never observe each other's identity.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// RunWithIdentity runs body with id bound for body's whole dynamic extent.
// The binding disappears when body returns, whether it succeeded or not,
// because nothing outside body ever holds the derived context.
func RunWithIdentity(ctx context.Context, id Identity, body func(ctx context.Context)) {
	body(WithIdentity(ctx, id))
}

// IdentityFromContext returns the bound identity, if any.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}

// CurrentIdentity returns the identity bound by the authentication stage.
//
// Calling it from code that is not running under that stage is a programming
// error and panics; there is no anonymous default.
func CurrentIdentity(ctx context.Context) Identity {
	id, ok := IdentityFromContext(ctx)
	if !ok {
		panic("auth: CurrentIdentity called outside an authenticated request scope")
	}
	return id
}
