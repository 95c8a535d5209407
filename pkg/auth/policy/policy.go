// Package policy decides route access. A static, ordered table maps
// request path patterns to role requirements; the first matching entry
// wins, and a catch-all entry is mandatory so no path is ever left
// unmatched. The table is built once at process start and is read-only
// afterwards, safe for unsynchronized concurrent reads.
package policy

import (
	"fmt"
	"log/slog"
	"net/http"
	"path"
	"strings"

	"github.com/tiendahq/tienda/pkg/auth"
	"github.com/tiendahq/tienda/pkg/observability"
)

// Access is the kind of requirement a rule imposes.
type Access string

const (
	// Public allows everyone, authenticated or not.
	Public Access = "public"

	// Authenticated requires a valid identity, any role.
	Authenticated Access = "authenticated"

	// AnyRole requires at least one of the rule's roles.
	AnyRole Access = "any"

	// AllRoles requires every one of the rule's roles.
	AllRoles Access = "all"
)

// Rule pairs a path pattern with a requirement. Patterns come in three
// forms: an exact path, a prefix pattern ending in "/**", and the
// catch-all "*".
type Rule struct {
	Pattern string
	Access  Access
	Roles   []string
}

// match reports whether the rule's pattern covers the path.
func (r Rule) match(path string) bool {
	if r.Pattern == "*" {
		return true
	}
	if base, ok := strings.CutSuffix(r.Pattern, "/**"); ok {
		return path == base || strings.HasPrefix(path, base+"/")
	}
	return path == r.Pattern
}

// Decision is the outcome of evaluating a request against the table.
type Decision int

const (
	// Allow hands the request to business-logic handlers.
	Allow Decision = iota

	// DenyUnauthenticated short-circuits a protected route reached
	// without a valid identity (401).
	DenyUnauthenticated

	// DenyForbidden short-circuits a valid identity with insufficient
	// roles (403).
	DenyForbidden
)

// String returns the metrics/log label for the decision.
func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case DenyUnauthenticated:
		return "unauthenticated"
	default:
		return "forbidden"
	}
}

// Table is the compiled route policy, evaluated in declared order.
type Table struct {
	rules []Rule
}

// NewTable validates and compiles a rule list. The declared order is
// preserved: most-specific-first ordering is the caller's
// responsibility, matching the configuration as written. The last rule
// must be a catch-all so every path resolves to some requirement.
func NewTable(rules []Rule) (*Table, error) {
	if len(rules) == 0 {
		return nil, fmt.Errorf("policy table must not be empty")
	}
	for i, r := range rules {
		if r.Pattern == "" {
			return nil, fmt.Errorf("policy rule %d: empty pattern", i)
		}
		switch r.Access {
		case Public, Authenticated:
			if len(r.Roles) > 0 {
				return nil, fmt.Errorf("policy rule %d (%s): %q access takes no roles", i, r.Pattern, r.Access)
			}
		case AnyRole, AllRoles:
			if len(r.Roles) == 0 {
				return nil, fmt.Errorf("policy rule %d (%s): %q access requires roles", i, r.Pattern, r.Access)
			}
			for _, name := range r.Roles {
				if _, err := auth.ParseRole(name); err != nil {
					return nil, fmt.Errorf("policy rule %d (%s): %w", i, r.Pattern, err)
				}
			}
		default:
			return nil, fmt.Errorf("policy rule %d (%s): unknown access kind %q", i, r.Pattern, r.Access)
		}
	}
	last := rules[len(rules)-1]
	if last.Pattern != "*" {
		return nil, fmt.Errorf("policy table must end with a catch-all %q rule", "*")
	}
	return &Table{rules: rules}, nil
}

// Match returns the first rule covering the path. The catch-all
// guarantees a match.
func (t *Table) Match(path string) Rule {
	for _, r := range t.rules {
		if r.match(path) {
			return r
		}
	}
	// Unreachable: NewTable enforces the catch-all.
	return t.rules[len(t.rules)-1]
}

// Evaluate decides whether the identity (nil when unauthenticated) may
// access the path. The path is cleaned first, so "//users" or
// "/x/../admin" hit the same rule as their canonical form instead of
// falling through to a less specific one. Role comparison is
// case-sensitive exact match with no hierarchy: ADMIN does not satisfy
// a USER-only rule unless listed.
func (t *Table) Evaluate(reqPath string, id *auth.Identity) Decision {
	rule := t.Match(path.Clean(reqPath))

	if rule.Access == Public {
		return Allow
	}
	if id == nil {
		return DenyUnauthenticated
	}
	switch rule.Access {
	case Authenticated:
		return Allow
	case AnyRole:
		if id.HasAnyRole(rule.Roles) {
			return Allow
		}
	case AllRoles:
		if id.HasAllRoles(rule.Roles) {
			return Allow
		}
	}
	return DenyForbidden
}

// Middleware enforces the table before route handling. Denials are
// terminal: the handler is never invoked, and the caller receives a
// 401 or 403 JSON error. Expired or invalid tokens surfaced upstream as
// "no identity" deny here as Unauthenticated, not as a distinct
// expired response.
func Middleware(table *Table) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := auth.IdentityFromContext(r.Context())
			decision := table.Evaluate(r.URL.Path, id)
			observability.PolicyDecisionsTotal.WithLabelValues(decision.String()).Inc()

			switch decision {
			case Allow:
				next.ServeHTTP(w, r)
			case DenyUnauthenticated:
				slog.Warn("request denied",
					"path", r.URL.Path,
					"reason", "unauthenticated",
					"remote_addr", r.RemoteAddr,
				)
				http.Error(w, `{"error":{"type":"unauthenticated","message":"authentication required"}}`, http.StatusUnauthorized)
			case DenyForbidden:
				slog.Warn("request denied",
					"path", r.URL.Path,
					"reason", "forbidden",
					"subject", id.Subject,
				)
				http.Error(w, `{"error":{"type":"forbidden","message":"insufficient role"}}`, http.StatusForbidden)
			}
		})
	}
}
