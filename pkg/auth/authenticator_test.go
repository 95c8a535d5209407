package auth

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/tiendahq/tienda/pkg/auth/password"
	"github.com/tiendahq/tienda/pkg/auth/token"
)

// fakeStore is an in-memory CredentialStore for tests.
type fakeStore struct {
	creds map[string]Credential
	err   error
}

func (s *fakeStore) Credential(_ context.Context, username string) (Credential, bool, error) {
	if s.err != nil {
		return Credential{}, false, s.err
	}
	c, ok := s.creds[username]
	return c, ok, nil
}

func newLoginFixture(t *testing.T) (*Authenticator, *token.Codec) {
	t.Helper()
	hasher, err := password.NewHasher(password.MinCost)
	if err != nil {
		t.Fatalf("NewHasher: %v", err)
	}
	codec, err := token.NewCodec([]byte("0123456789abcdef0123456789abcdef"), time.Hour)
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}

	hash, err := hasher.Hash("secreto123")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	store := &fakeStore{creds: map[string]Credential{
		"juanperez": {Subject: "juanperez", PasswordHash: hash, Roles: []string{"USER"}},
	}}
	return NewAuthenticator(store, hasher, codec), codec
}

func TestLoginIssuesTokenWithCurrentRoles(t *testing.T) {
	authn, codec := newLoginFixture(t)

	signed, err := authn.Login(context.Background(), "juanperez", "secreto123")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	claims, err := codec.Verify(signed, time.Now())
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.Subject != "juanperez" {
		t.Errorf("subject = %q, want juanperez", claims.Subject)
	}
	if len(claims.Roles) != 1 || claims.Roles[0] != "USER" {
		t.Errorf("roles = %v, want [USER]", claims.Roles)
	}
}

func TestLoginFailuresAreUniform(t *testing.T) {
	authn, _ := newLoginFixture(t)
	ctx := context.Background()

	_, unknownErr := authn.Login(ctx, "nobody", "whatever")
	_, wrongErr := authn.Login(ctx, "juanperez", "wrong")

	if !errors.Is(unknownErr, ErrInvalidCredentials) {
		t.Errorf("unknown user error = %v, want ErrInvalidCredentials", unknownErr)
	}
	if !errors.Is(wrongErr, ErrInvalidCredentials) {
		t.Errorf("wrong password error = %v, want ErrInvalidCredentials", wrongErr)
	}
	// The two failure modes must be indistinguishable.
	if unknownErr.Error() != wrongErr.Error() {
		t.Errorf("failure messages differ: %q vs %q", unknownErr, wrongErr)
	}
}

func TestLoginStoreErrorIsNotCredentialFailure(t *testing.T) {
	authn, _ := newLoginFixture(t)
	hasher, _ := password.NewHasher(password.MinCost)
	codec, _ := token.NewCodec([]byte("0123456789abcdef0123456789abcdef"), time.Hour)
	broken := NewAuthenticator(&fakeStore{err: fmt.Errorf("connection refused")}, hasher, codec)

	_, err := broken.Login(context.Background(), "juanperez", "secreto123")
	if err == nil {
		t.Fatal("Login against broken store succeeded")
	}
	if errors.Is(err, ErrInvalidCredentials) {
		t.Error("store failure reported as invalid credentials")
	}

	// The healthy fixture still works.
	if _, err := authn.Login(context.Background(), "juanperez", "secreto123"); err != nil {
		t.Errorf("healthy Login: %v", err)
	}
}

func TestIssueForVerifiedIdentity(t *testing.T) {
	authn, codec := newLoginFixture(t)

	signed, err := authn.Issue(&Identity{Subject: "ana", Roles: []string{"USER"}})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	claims, err := codec.Verify(signed, time.Now())
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.Subject != "ana" {
		t.Errorf("subject = %q, want ana", claims.Subject)
	}
}
