package auth

import (
	"errors"
	"fmt"
	"slices"
)

// Role is one of the closed set of access roles. Tokens carry roles as
// free-form strings for forward compatibility; conversion back into the
// closed set happens through ParseRole at the boundary.
type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleUser    Role = "USER"
	RoleInvited Role = "INVITED"
)

// Roles lists every known role.
var Roles = []Role{RoleAdmin, RoleUser, RoleInvited}

// UnknownRoleError reports a role name outside the closed vocabulary.
type UnknownRoleError struct {
	Name string
}

// Error implements the error interface.
func (e *UnknownRoleError) Error() string {
	return fmt.Sprintf("unknown role %q", e.Name)
}

// ParseRole converts a role name into a Role. Comparison is
// case-sensitive and exact; anything outside the vocabulary yields an
// *UnknownRoleError rather than a panic, so callers must handle invalid
// role input where it enters the system.
func ParseRole(name string) (Role, error) {
	for _, r := range Roles {
		if string(r) == name {
			return r, nil
		}
	}
	return "", &UnknownRoleError{Name: name}
}

// ParseRoles converts a list of role names, failing on the first
// unknown name.
func ParseRoles(names []string) ([]Role, error) {
	roles := make([]Role, 0, len(names))
	for _, name := range names {
		r, err := ParseRole(name)
		if err != nil {
			return nil, err
		}
		roles = append(roles, r)
	}
	return roles, nil
}

// RoleNames converts roles back to their string names.
func RoleNames(roles []Role) []string {
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = string(r)
	}
	return names
}

// Identity represents an authenticated caller. It is immutable once
// embedded in a token: the subject is the stable user handle and the
// roles are the set held at login time.
type Identity struct {
	// Subject is the unique user handle (required, non-empty).
	Subject string

	// Roles lists the role names granted to the subject.
	Roles []string
}

// HasRole reports whether the identity holds the named role.
// Comparison is case-sensitive and exact; there is no role hierarchy.
func (id *Identity) HasRole(role string) bool {
	if id == nil {
		return false
	}
	return slices.Contains(id.Roles, role)
}

// HasAnyRole reports whether the identity holds at least one of the
// given roles.
func (id *Identity) HasAnyRole(roles []string) bool {
	for _, r := range roles {
		if id.HasRole(r) {
			return true
		}
	}
	return false
}

// HasAllRoles reports whether the identity holds every one of the given
// roles.
func (id *Identity) HasAllRoles(roles []string) bool {
	for _, r := range roles {
		if !id.HasRole(r) {
			return false
		}
	}
	return id != nil
}

// Sentinel errors.
var (
	// ErrInvalidCredentials is returned by Login for both unknown
	// usernames and wrong passwords, so responses cannot be used to
	// enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUnauthenticated marks a protected route reached without a
	// valid identity.
	ErrUnauthenticated = errors.New("authentication required")

	// ErrForbidden marks a valid identity with insufficient roles.
	ErrForbidden = errors.New("access denied")
)
