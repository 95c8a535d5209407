package rest

import (
	"errors"
	"net/http"

	"github.com/tiendahq/tienda/pkg/api"
	"github.com/tiendahq/tienda/pkg/auth"
)

func (h *Handlers) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var req api.OrderLine
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	line, err := h.orders.Create(r.Context(), &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, line)
}

func (h *Handlers) handleListOrders(w http.ResponseWriter, r *http.Request) {
	lines, err := h.orders.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, lines)
}

func (h *Handlers) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	line, err := h.orders.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, line)
}

// handleOrdersByUser lists order lines of one user. Non-admin callers
// may only read their own. The ownership check resolves the caller,
// not the target, so a non-admin gets the same 403 whether the
// requested user ID exists or not.
func (h *Handlers) handleOrdersByUser(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	id := auth.IdentityFromContext(r.Context())
	if id == nil {
		writeError(w, r, api.NewUnauthenticatedError("authentication required"))
		return
	}
	if !id.HasRole(string(auth.RoleAdmin)) {
		caller, err := h.users.ByUsername(r.Context(), id.Subject)
		if err != nil {
			var apiErr *api.APIError
			if errors.As(err, &apiErr) && apiErr.Type == api.ErrorTypeNotFound {
				writeError(w, r, api.NewForbiddenError("cannot read another user's orders"))
				return
			}
			writeError(w, r, err)
			return
		}
		if caller.ID != userID {
			writeError(w, r, api.NewForbiddenError("cannot read another user's orders"))
			return
		}
	}
	lines, err := h.orders.ListByUser(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, lines)
}

func (h *Handlers) handleUpdateOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req api.OrderLine
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	line, err := h.orders.Update(r.Context(), id, &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, line)
}

func (h *Handlers) handleDeleteOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.orders.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
