package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tiendahq/tienda/pkg/api"
	"github.com/tiendahq/tienda/pkg/auth"
	"github.com/tiendahq/tienda/pkg/auth/password"
	"github.com/tiendahq/tienda/pkg/storage"
)

// MinPasswordLength is the shortest accepted plaintext password.
const MinPasswordLength = 6

// Users manages accounts. Passwords are hashed before they reach the
// store; role names are resolved against the closed vocabulary so a
// typo cannot mint an unknown role.
type Users struct {
	store  storage.UserStore
	hasher *password.Hasher
}

func NewUsers(store storage.UserStore, hasher *password.Hasher) *Users {
	return &Users{store: store, hasher: hasher}
}

// Create adds an account. Callers that omit roles get the plain USER
// role. Unknown role names are rejected up front.
func (s *Users) Create(ctx context.Context, nu *api.NewUser) (*api.User, error) {
	if err := validateNewUser(nu, true); err != nil {
		return nil, err
	}
	roles := nu.Roles
	if len(roles) == 0 {
		roles = []string{string(auth.RoleUser)}
	}
	resolved, err := auth.ParseRoles(roles)
	if err != nil {
		return nil, api.NewInvalidRequestError("roles", err.Error())
	}
	hash, err := s.hasher.Hash(nu.Password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}
	rec := &storage.UserRecord{
		DNI:          nu.DNI,
		Username:     nu.Username,
		Firstname:    nu.Firstname,
		Lastname:     nu.Lastname,
		Email:        nu.Email,
		Country:      nu.Country,
		PasswordHash: hash,
		Roles:        auth.RoleNames(resolved),
	}
	if err := s.store.CreateUser(ctx, rec); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return nil, api.NewConflictError("user already exists")
		}
		return nil, fmt.Errorf("creating user: %w", err)
	}
	return rec.User(), nil
}

// Register is the self-service signup path. It ignores any roles in the
// request and always assigns the plain USER role.
func (s *Users) Register(ctx context.Context, nu *api.NewUser) (*api.User, error) {
	signup := *nu
	signup.Roles = []string{string(auth.RoleUser)}
	return s.Create(ctx, &signup)
}

func (s *Users) Get(ctx context.Context, id int64) (*api.User, error) {
	rec, err := s.store.UserByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, api.NewNotFoundError(fmt.Sprintf("user %d not found", id))
		}
		return nil, fmt.Errorf("loading user %d: %w", id, err)
	}
	return rec.User(), nil
}

func (s *Users) ByUsername(ctx context.Context, username string) (*api.User, error) {
	rec, err := s.store.UserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, api.NewNotFoundError(fmt.Sprintf("user %q not found", username))
		}
		return nil, fmt.Errorf("loading user %q: %w", username, err)
	}
	return rec.User(), nil
}

func (s *Users) List(ctx context.Context) ([]*api.User, error) {
	recs, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	users := make([]*api.User, 0, len(recs))
	for _, rec := range recs {
		users = append(users, rec.User())
	}
	return users, nil
}

// Update replaces the profile fields of an account. Roles change only
// when the request names them; an empty password keeps the stored hash.
func (s *Users) Update(ctx context.Context, id int64, nu *api.NewUser) (*api.User, error) {
	if err := validateNewUser(nu, false); err != nil {
		return nil, err
	}
	rec, err := s.store.UserByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, api.NewNotFoundError(fmt.Sprintf("user %d not found", id))
		}
		return nil, fmt.Errorf("loading user %d: %w", id, err)
	}
	rec.DNI = nu.DNI
	rec.Username = nu.Username
	rec.Firstname = nu.Firstname
	rec.Lastname = nu.Lastname
	rec.Email = nu.Email
	rec.Country = nu.Country
	if nu.Password != "" {
		if len(nu.Password) < MinPasswordLength {
			return nil, api.NewInvalidRequestError("password", fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
		}
		hash, err := s.hasher.Hash(nu.Password)
		if err != nil {
			return nil, fmt.Errorf("hashing password: %w", err)
		}
		rec.PasswordHash = hash
	}
	if len(nu.Roles) > 0 {
		resolved, err := auth.ParseRoles(nu.Roles)
		if err != nil {
			return nil, api.NewInvalidRequestError("roles", err.Error())
		}
		rec.Roles = auth.RoleNames(resolved)
	}
	if err := s.store.UpdateUser(ctx, rec); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return nil, api.NewConflictError("user already exists")
		}
		return nil, fmt.Errorf("updating user %d: %w", id, err)
	}
	return rec.User(), nil
}

func (s *Users) Delete(ctx context.Context, id int64) error {
	if err := s.store.DeleteUser(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return api.NewNotFoundError(fmt.Sprintf("user %d not found", id))
		}
		return fmt.Errorf("deleting user %d: %w", id, err)
	}
	return nil
}

func validateNewUser(nu *api.NewUser, requirePassword bool) error {
	if strings.TrimSpace(nu.Username) == "" {
		return api.NewInvalidRequestError("username", "username is required")
	}
	if strings.TrimSpace(nu.Email) == "" {
		return api.NewInvalidRequestError("email", "email is required")
	}
	if requirePassword && len(nu.Password) < MinPasswordLength {
		return api.NewInvalidRequestError("password", fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}
	return nil
}
