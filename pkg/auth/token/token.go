// Package token signs and verifies the compact claim-bearing tokens
// that prove authentication, using HMAC-SHA256 via golang-jwt.
//
// The signing key is injected at construction and held only in memory
// for the process lifetime. Rotating the key requires a restart and
// invalidates every outstanding token; there is no multi-key grace
// period and no revocation besides expiry.
package token

import (
	"errors"
	"fmt"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

// DefaultTTL is the fixed token lifetime when none is configured.
const DefaultTTL = 24 * time.Hour

// MinKeySize is the minimum signing key length in bytes. HMAC-SHA256
// needs at least as much key entropy as its output size.
const MinKeySize = 32

// Verification errors, in the order the checks run. No claim is trusted
// before the signature validates.
var (
	// ErrMalformed means the token string cannot be parsed.
	ErrMalformed = errors.New("token is malformed")

	// ErrBadSignature means the signature does not match the signing
	// key. Possible tampering.
	ErrBadSignature = errors.New("token signature is invalid")

	// ErrExpired means the signature is valid but the token is past
	// its lifetime.
	ErrExpired = errors.New("token has expired")
)

// Claims is the verified content of a token.
type Claims struct {
	Subject   string
	Roles     []string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// jwtClaims is the wire shape of the claim set.
type jwtClaims struct {
	Roles []string `json:"roles"`
	jwtlib.RegisteredClaims
}

// Codec signs and verifies tokens with a process-wide symmetric key.
// It is safe for unsynchronized concurrent use: both operations are
// pure computation over read-only state.
type Codec struct {
	key []byte
	ttl time.Duration
}

// NewCodec creates a codec from a signing key and token lifetime.
// The key must be at least 32 bytes; a zero ttl selects DefaultTTL.
func NewCodec(key []byte, ttl time.Duration) (*Codec, error) {
	if len(key) < MinKeySize {
		return nil, fmt.Errorf("signing key must be at least %d bytes, got %d", MinKeySize, len(key))
	}
	if ttl < 0 {
		return nil, fmt.Errorf("token ttl must be positive, got %s", ttl)
	}
	if ttl == 0 {
		ttl = DefaultTTL
	}
	return &Codec{key: key, ttl: ttl}, nil
}

// TTL returns the fixed token lifetime.
func (c *Codec) TTL() time.Duration {
	return c.ttl
}

// Issue builds a signed token for the subject and role set, valid from
// now until now + TTL. Given identical inputs and time the output is
// deterministic; nothing stochastic enters the token.
func (c *Codec) Issue(subject string, roles []string, now time.Time) (string, error) {
	if subject == "" {
		return "", fmt.Errorf("token subject must not be empty")
	}

	claims := jwtClaims{
		Roles: roles,
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwtlib.NewNumericDate(now),
			ExpiresAt: jwtlib.NewNumericDate(now.Add(c.ttl)),
		},
	}

	tok := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	signed, err := tok.SignedString(c.key)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// Verify parses and verifies a token string against the signing key at
// the given time. The checks run in a fixed order: structural parse
// (ErrMalformed), signature over header+payload (ErrBadSignature), then
// expiry (ErrExpired). Claims are returned only when all three pass.
func (c *Codec) Verify(tokenStr string, now time.Time) (*Claims, error) {
	parser := jwtlib.NewParser(
		jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}),
		jwtlib.WithExpirationRequired(),
		jwtlib.WithTimeFunc(func() time.Time { return now }),
	)

	var claims jwtClaims
	tok, err := parser.ParseWithClaims(tokenStr, &claims, func(t *jwtlib.Token) (any, error) {
		return c.key, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwtlib.ErrTokenMalformed):
			return nil, ErrMalformed
		case errors.Is(err, jwtlib.ErrTokenSignatureInvalid):
			return nil, ErrBadSignature
		case errors.Is(err, jwtlib.ErrTokenExpired):
			return nil, ErrExpired
		default:
			return nil, fmt.Errorf("%w: %s", ErrMalformed, err)
		}
	}
	if !tok.Valid || claims.Subject == "" {
		return nil, ErrMalformed
	}

	out := &Claims{
		Subject: claims.Subject,
		Roles:   claims.Roles,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}
