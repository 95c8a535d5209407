package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tiendahq/tienda/pkg/auth/password"
	"github.com/tiendahq/tienda/pkg/auth/token"
	"github.com/tiendahq/tienda/pkg/observability"
)

// Credential is a stored account record as the login flow sees it.
type Credential struct {
	Subject      string
	PasswordHash string
	Roles        []string
}

// CredentialStore looks up stored credentials by username. The store is
// an external collaborator; roles are read fresh on every login, never
// cached, since they may have changed since the last one.
type CredentialStore interface {
	// Credential returns the record for the username. The second
	// return is false when no such user exists; a non-nil error means
	// the store itself failed.
	Credential(ctx context.Context, username string) (Credential, bool, error)
}

// Authenticator verifies username/password pairs against the credential
// store and mints bearer tokens for verified callers.
type Authenticator struct {
	store  CredentialStore
	hasher *password.Hasher
	codec  *token.Codec

	// now is injectable for tests.
	now func() time.Time
}

// NewAuthenticator wires the login flow from its collaborators.
func NewAuthenticator(store CredentialStore, hasher *password.Hasher, codec *token.Codec) *Authenticator {
	return &Authenticator{
		store:  store,
		hasher: hasher,
		codec:  codec,
		now:    time.Now,
	}
}

// Login verifies the credentials and returns a signed token embedding
// the subject and its current role set. Unknown usernames and wrong
// passwords both fail with ErrInvalidCredentials; the two cases are
// indistinguishable to the caller, and the unknown-user path runs a
// dummy hash comparison to keep timing close as well. No session state
// is created: the token is the complete proof of authentication for
// its lifetime.
func (a *Authenticator) Login(ctx context.Context, username, plaintext string) (string, error) {
	cred, found, err := a.store.Credential(ctx, username)
	if err != nil {
		observability.LoginAttemptsTotal.WithLabelValues("error").Inc()
		return "", fmt.Errorf("looking up credential: %w", err)
	}
	if !found {
		a.hasher.VerifyDummy(plaintext)
		observability.LoginAttemptsTotal.WithLabelValues("denied").Inc()
		return "", ErrInvalidCredentials
	}

	ok, err := a.hasher.Verify(plaintext, cred.PasswordHash)
	if err != nil {
		// Malformed stored hash is a configuration fault, not a
		// credential failure.
		observability.LoginAttemptsTotal.WithLabelValues("error").Inc()
		return "", fmt.Errorf("verifying credential for %q: %w", username, err)
	}
	if !ok {
		observability.LoginAttemptsTotal.WithLabelValues("denied").Inc()
		return "", ErrInvalidCredentials
	}

	signed, err := a.Issue(&Identity{Subject: cred.Subject, Roles: cred.Roles})
	if err != nil {
		observability.LoginAttemptsTotal.WithLabelValues("error").Inc()
		return "", err
	}

	slog.Debug("login succeeded", "subject", cred.Subject, "roles", cred.Roles)
	observability.LoginAttemptsTotal.WithLabelValues("ok").Inc()
	return signed, nil
}

// Issue mints a token for an already-verified identity. Registration
// uses this to hand the new account its first token without a second
// credential round-trip.
func (a *Authenticator) Issue(id *Identity) (string, error) {
	signed, err := a.codec.Issue(id.Subject, id.Roles, a.now())
	if err != nil {
		return "", fmt.Errorf("issuing token: %w", err)
	}
	return signed, nil
}
