package service

import (
	"context"
	"errors"
	"slices"

	"github.com/tiendahq/tienda/pkg/auth"
	"github.com/tiendahq/tienda/pkg/storage"
)

// Credentials adapts a user store to the authenticator's credential
// lookup. A missing user is reported via the found flag, never as an
// error, so the login flow can burn a dummy hash comparison instead of
// leaking which usernames exist.
type Credentials struct {
	store storage.UserStore
}

var _ auth.CredentialStore = (*Credentials)(nil)

func NewCredentials(store storage.UserStore) *Credentials {
	return &Credentials{store: store}
}

func (c *Credentials) Credential(ctx context.Context, username string) (auth.Credential, bool, error) {
	u, err := c.store.UserByUsername(ctx, username)
	if errors.Is(err, storage.ErrNotFound) {
		return auth.Credential{}, false, nil
	}
	if err != nil {
		return auth.Credential{}, false, err
	}
	return auth.Credential{
		Subject:      u.Username,
		PasswordHash: u.PasswordHash,
		Roles:        slices.Clone(u.Roles),
	}, true, nil
}
