package rest

import (
	"errors"
	"net/http"

	"github.com/tiendahq/tienda/pkg/api"
	"github.com/tiendahq/tienda/pkg/auth"
)

// handleLogin verifies credentials and returns a bearer token. Unknown
// usernames and wrong passwords produce the same response.
func (h *Handlers) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req api.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.Username == "" || req.Password == "" {
		writeError(w, r, api.NewInvalidRequestError("", "username and password are required"))
		return
	}

	token, err := h.authenticator.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			writeError(w, r, api.NewUnauthenticatedError("invalid credentials"))
			return
		}
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, api.TokenResponse{Token: token})
}

// handleRegister creates a self-service account with the plain USER
// role and returns its first token, so signup does not need a second
// login round-trip.
func (h *Handlers) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req api.NewUser
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	user, err := h.users.Register(r.Context(), &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	token, err := h.authenticator.Issue(&auth.Identity{Subject: user.Username, Roles: user.Roles})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, api.TokenResponse{Token: token})
}
