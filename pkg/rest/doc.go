// Package rest exposes the service layer over HTTP. Handlers decode
// JSON requests, call into the services, and translate api.APIError
// values to status codes and error bodies. Route access control does not
// live here; the policy middleware has already decided it by the time a
// handler runs. The one exception is order-by-user, which needs the
// record itself to compare ownership.
package rest
