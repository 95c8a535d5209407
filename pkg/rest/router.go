package rest

import (
	"net/http"

	"github.com/tiendahq/tienda/pkg/auth"
	"github.com/tiendahq/tienda/pkg/service"
	"github.com/tiendahq/tienda/pkg/storage"
)

// Handlers bundles the services the HTTP layer dispatches into.
type Handlers struct {
	authenticator *auth.Authenticator
	users         *service.Users
	catalog       *service.Catalog
	orders        *service.Orders
	store         storage.Store
}

// NewHandlers wires the HTTP layer from its collaborators.
func NewHandlers(authenticator *auth.Authenticator, users *service.Users, catalog *service.Catalog, orders *service.Orders, store storage.Store) *Handlers {
	return &Handlers{
		authenticator: authenticator,
		users:         users,
		catalog:       catalog,
		orders:        orders,
		store:         store,
	}
}

// Router builds the route table. Access control is not encoded here;
// the policy middleware wrapping this mux decides it from the route
// policy table.
func (h *Handlers) Router() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /auth/login", h.handleLogin)
	mux.HandleFunc("POST /auth/register", h.handleRegister)

	mux.HandleFunc("POST /users/createUser", h.handleCreateUser)
	mux.HandleFunc("GET /users/all-users", h.handleListUsers)
	mux.HandleFunc("GET /users/{id}", h.handleGetUser)
	mux.HandleFunc("PUT /users/{id}", h.handleUpdateUser)
	mux.HandleFunc("DELETE /users/{id}", h.handleDeleteUser)

	mux.HandleFunc("POST /product", h.handleCreateProduct)
	mux.HandleFunc("GET /product", h.handleListProducts)
	mux.HandleFunc("GET /product/search", h.handleSearchProducts)
	mux.HandleFunc("GET /product/category/{categoryId}", h.handleProductsByCategory)
	mux.HandleFunc("GET /product/{id}", h.handleGetProduct)
	mux.HandleFunc("PUT /product/{id}", h.handleUpdateProduct)
	mux.HandleFunc("PATCH /product/{id}/activate", h.handleActivateProduct)
	mux.HandleFunc("DELETE /product/{id}/deactivate", h.handleDeactivateProduct)

	mux.HandleFunc("POST /categories", h.handleCreateCategory)
	mux.HandleFunc("GET /categories", h.handleListCategories)
	mux.HandleFunc("GET /categories/search", h.handleSearchCategories)
	mux.HandleFunc("GET /categories/{id}", h.handleGetCategory)
	mux.HandleFunc("DELETE /categories/{id}", h.handleDeleteCategory)

	mux.HandleFunc("POST /detail-order", h.handleCreateOrder)
	mux.HandleFunc("GET /detail-order", h.handleListOrders)
	mux.HandleFunc("GET /detail-order/user/{userId}", h.handleOrdersByUser)
	mux.HandleFunc("GET /detail-order/{id}", h.handleGetOrder)
	mux.HandleFunc("PUT /detail-order/{id}", h.handleUpdateOrder)
	mux.HandleFunc("DELETE /detail-order/{id}", h.handleDeleteOrder)

	mux.HandleFunc("GET /healthz", h.handleHealthz)
	mux.HandleFunc("GET /readyz", h.handleReadyz)

	return mux
}
