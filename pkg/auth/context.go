package auth

import (
	"context"
	"errors"
)

// identityKey is a private type for the identity context key.
type identityKey struct{}

// ErrIdentityAlreadyBound is returned by Bind when the context already
// carries an identity. The request authenticator runs once per request,
// so a second bind indicates re-entrant misuse and is treated as an
// internal fault rather than silently overwritten.
var ErrIdentityAlreadyBound = errors.New("context already holds an identity")

// Bind stores the authenticated identity in the context. An identity is
// bound at most once per request; binding over an existing identity
// fails with ErrIdentityAlreadyBound.
func Bind(ctx context.Context, id *Identity) (context.Context, error) {
	if IdentityFromContext(ctx) != nil {
		return ctx, ErrIdentityAlreadyBound
	}
	return context.WithValue(ctx, identityKey{}, id), nil
}

// IdentityFromContext retrieves the authenticated identity.
// Returns nil if the request is unauthenticated.
func IdentityFromContext(ctx context.Context) *Identity {
	if v, ok := ctx.Value(identityKey{}).(*Identity); ok {
		return v
	}
	return nil
}
