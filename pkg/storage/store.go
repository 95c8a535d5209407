package storage

import (
	"context"

	"github.com/tiendahq/tienda/pkg/api"
)

// UserRecord is the stored shape of an account. Unlike api.User it
// carries the password hash; the hash never leaves the storage and
// auth layers.
type UserRecord struct {
	ID           int64
	DNI          int
	Username     string
	Firstname    string
	Lastname     string
	Email        string
	Country      string
	PasswordHash string
	Roles        []string
}

// User converts the record to its public representation.
func (r *UserRecord) User() *api.User {
	return &api.User{
		ID:        r.ID,
		DNI:       r.DNI,
		Username:  r.Username,
		Firstname: r.Firstname,
		Lastname:  r.Lastname,
		Email:     r.Email,
		Country:   r.Country,
		Roles:     r.Roles,
	}
}

// UserStore persists accounts. Username, email, and DNI are unique;
// violating any of them yields ErrConflict.
type UserStore interface {
	CreateUser(ctx context.Context, u *UserRecord) error
	UserByID(ctx context.Context, id int64) (*UserRecord, error)
	UserByUsername(ctx context.Context, username string) (*UserRecord, error)
	ListUsers(ctx context.Context) ([]*UserRecord, error)
	UpdateUser(ctx context.Context, u *UserRecord) error
	DeleteUser(ctx context.Context, id int64) error
}

// ProductStore persists catalog entries. Product names are unique.
type ProductStore interface {
	CreateProduct(ctx context.Context, p *api.Product) error
	ProductByID(ctx context.Context, id int64) (*api.Product, error)
	ListProducts(ctx context.Context) ([]*api.Product, error)
	ProductsByCategory(ctx context.Context, categoryID int64) ([]*api.Product, error)
	SearchProducts(ctx context.Context, name string) ([]*api.Product, error)
	UpdateProduct(ctx context.Context, p *api.Product) error
}

// CategoryStore persists product categories. Category names are unique.
type CategoryStore interface {
	CreateCategory(ctx context.Context, c *api.Category) error
	CategoryByID(ctx context.Context, id int64) (*api.Category, error)
	ListCategories(ctx context.Context) ([]*api.Category, error)
	SearchCategories(ctx context.Context, name string) ([]*api.Category, error)
	DeleteCategory(ctx context.Context, id int64) error
}

// OrderStore persists order lines.
type OrderStore interface {
	CreateOrderLine(ctx context.Context, o *api.OrderLine) error
	OrderLineByID(ctx context.Context, id int64) (*api.OrderLine, error)
	ListOrderLines(ctx context.Context) ([]*api.OrderLine, error)
	OrderLinesByUser(ctx context.Context, userID int64) ([]*api.OrderLine, error)
	UpdateOrderLine(ctx context.Context, o *api.OrderLine) error
	DeleteOrderLine(ctx context.Context, id int64) error
}

// Store is the full persistence surface the API wires against.
type Store interface {
	UserStore
	ProductStore
	CategoryStore
	OrderStore

	// HealthCheck verifies the backing store is reachable.
	HealthCheck(ctx context.Context) error

	// Close releases any held resources.
	Close() error
}
