// Package password provides one-way adaptive password hashing on top
// of bcrypt. Each hash embeds its own random salt, so two hashes of the
// same input differ, and verification runs inside bcrypt's own
// comparison path rather than any hand-rolled string compare.
package password

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Cost bounds mirror bcrypt's. DefaultCost is used when none is
// configured; MinCost is useful in tests where speed matters more than
// strength.
const (
	MinCost     = bcrypt.MinCost
	DefaultCost = bcrypt.DefaultCost
	MaxCost     = bcrypt.MaxCost
)

// dummyHash is a structurally valid bcrypt hash compared against when a
// username lookup misses, so the unknown-user and wrong-password paths
// burn comparable time.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// Hasher hashes and verifies passwords. The zero cost selects
// DefaultCost. Safe for concurrent use.
type Hasher struct {
	cost int
}

// NewHasher creates a hasher with the given bcrypt cost.
func NewHasher(cost int) (*Hasher, error) {
	if cost == 0 {
		cost = DefaultCost
	}
	if cost < MinCost || cost > MaxCost {
		return nil, fmt.Errorf("bcrypt cost %d outside valid range [%d, %d]", cost, MinCost, MaxCost)
	}
	return &Hasher{cost: cost}, nil
}

// Hash returns the bcrypt hash of the plaintext with a fresh random
// salt embedded in the output.
func (h *Hasher) Hash(plaintext string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hashed), nil
}

// Verify reports whether the plaintext matches the stored hash. A
// mismatch returns (false, nil). A malformed stored hash is a
// configuration error, surfaced as a non-nil error distinct from an
// ordinary failed match.
func (h *Hasher) Verify(plaintext, hashed string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plaintext))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, fmt.Errorf("comparing stored hash: %w", err)
}

// VerifyDummy runs a comparison against a fixed well-formed hash and
// always reports a mismatch. Login calls this when the username is
// unknown to keep timing close to the wrong-password path.
func (h *Hasher) VerifyDummy(plaintext string) {
	_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(plaintext))
}
