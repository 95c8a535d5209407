// Package transport provides the HTTP server lifecycle and the
// cross-cutting middleware applied outside the routing layer: panic
// recovery, request ID propagation, structured request logging. The
// middleware operates on plain http.Handler values so the chain
// composes with the authentication and policy middleware without
// adapters.
package transport
