// Package auth implements the stateless authentication core of the
// tienda API: verified caller identities, the closed role vocabulary,
// the login flow that exchanges credentials for a signed bearer token,
// and the per-request middleware that turns an incoming token back into
// an identity.
//
// The package holds no session state. A token minted at login is the
// complete proof of authentication until it expires; every request is
// re-verified from scratch. Enforcement of per-route access policy is
// the job of the policy subpackage, which consumes the identity this
// package binds to the request context.
package auth
