package rest

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/tiendahq/tienda/pkg/api"
	"github.com/tiendahq/tienda/pkg/transport"
)

// writeJSON writes v as a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			slog.Error("encoding response", "error", err)
		}
	}
}

// writeError translates err to an HTTP error response. Known APIError
// values map to their status and serialize as-is. Anything else is an
// internal fault: the cause is logged with the request ID and the caller
// sees only a generic 500 body.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var apiErr *api.APIError
	if !errors.As(err, &apiErr) {
		slog.Error("request failed",
			"request_id", transport.RequestIDFromContext(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		apiErr = api.NewServerError("internal server error")
	}
	writeJSON(w, apiErr.HTTPStatus(), api.ErrorResponse{Error: apiErr})
}

// decodeJSON reads the request body into v.
func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return api.NewInvalidRequestError("", "invalid JSON body")
	}
	return nil
}

// pathID parses the named path segment as a numeric ID.
func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id < 1 {
		return 0, api.NewInvalidRequestError(name, "must be a positive integer")
	}
	return id, nil
}
