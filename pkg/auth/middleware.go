package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/tiendahq/tienda/pkg/auth/token"
	"github.com/tiendahq/tienda/pkg/observability"
)

const bearerPrefix = "Bearer "

// Middleware returns the request authenticator: it runs once per
// inbound request, before route handling, and binds a verified identity
// to the request context when a valid bearer token is present.
//
// It never rejects a request for token problems. An absent header, a
// malformed prefix, or any verification failure all leave the request
// unauthenticated and pass control on; deciding whether that is
// acceptable for the route belongs to the policy engine. The only hard
// failure is a context that already holds an identity, which indicates
// re-entrant misuse of the middleware.
func Middleware(codec *token.Codec) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr, ok := extractBearer(r)
			if !ok {
				observability.TokenVerificationsTotal.WithLabelValues("absent").Inc()
				next.ServeHTTP(w, r)
				return
			}

			claims, err := codec.Verify(tokenStr, time.Now())
			if err != nil {
				observability.TokenVerificationsTotal.WithLabelValues(verifyOutcome(err)).Inc()
				slog.Debug("token rejected",
					"path", r.URL.Path,
					"remote_addr", r.RemoteAddr,
					"error", err,
				)
				// Invalid and absent tokens are treated identically
				// here; the caller sees only the policy decision.
				next.ServeHTTP(w, r)
				return
			}
			observability.TokenVerificationsTotal.WithLabelValues("ok").Inc()

			id := &Identity{Subject: claims.Subject, Roles: claims.Roles}
			ctx, err := Bind(r.Context(), id)
			if err != nil {
				slog.Error("identity bind failed", "path", r.URL.Path, "error", err)
				http.Error(w, `{"error":{"type":"server_error","message":"internal authentication error"}}`, http.StatusInternalServerError)
				return
			}

			slog.Debug("request authenticated",
				"subject", id.Subject,
				"path", r.URL.Path,
			)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractBearer pulls the compact token out of the Authorization
// header. Returns false when the header is absent or does not carry the
// Bearer scheme.
func extractBearer(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" || !strings.HasPrefix(header, bearerPrefix) {
		return "", false
	}
	tokenStr := strings.TrimPrefix(header, bearerPrefix)
	if tokenStr == "" {
		return "", false
	}
	return tokenStr, true
}

// verifyOutcome maps a verification error to its metrics label.
func verifyOutcome(err error) string {
	switch {
	case errors.Is(err, token.ErrExpired):
		return "expired"
	case errors.Is(err, token.ErrBadSignature):
		return "bad_signature"
	default:
		return "malformed"
	}
}
