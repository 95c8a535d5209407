// Package memory provides an in-memory implementation of storage.Store
// for testing and lightweight deployments. Records live in maps guarded
// by a single RWMutex and are lost when the process restarts.
package memory

import (
	"context"
	"slices"
	"sort"
	"sync"

	"github.com/tiendahq/tienda/pkg/api"
	"github.com/tiendahq/tienda/pkg/storage"
)

// Store is an in-memory storage.Store.
type Store struct {
	mu sync.RWMutex

	users      map[int64]*storage.UserRecord
	products   map[int64]*api.Product
	categories map[int64]*api.Category
	orders     map[int64]*api.OrderLine

	nextUser     int64
	nextProduct  int64
	nextCategory int64
	nextOrder    int64
}

// Ensure Store implements storage.Store at compile time.
var _ storage.Store = (*Store)(nil)

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		users:      make(map[int64]*storage.UserRecord),
		products:   make(map[int64]*api.Product),
		categories: make(map[int64]*api.Category),
		orders:     make(map[int64]*api.OrderLine),
	}
}

// CreateUser assigns an ID and stores the record. Username, email, and
// DNI collisions fail with ErrConflict.
func (s *Store) CreateUser(_ context.Context, u *storage.UserRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Username == u.Username || existing.Email == u.Email || existing.DNI == u.DNI {
			return storage.ErrConflict
		}
	}

	s.nextUser++
	u.ID = s.nextUser
	s.users[u.ID] = copyUser(u)
	return nil
}

// UserByID returns the record with the given ID.
func (s *Store) UserByID(_ context.Context, id int64) (*storage.UserRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return copyUser(u), nil
}

// UserByUsername returns the record with the given username.
func (s *Store) UserByUsername(_ context.Context, username string) (*storage.UserRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Username == username {
			return copyUser(u), nil
		}
	}
	return nil, storage.ErrNotFound
}

// ListUsers returns all records ordered by ID.
func (s *Store) ListUsers(_ context.Context) ([]*storage.UserRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*storage.UserRecord, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, copyUser(u))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// UpdateUser replaces the stored record with the same ID.
func (s *Store) UpdateUser(_ context.Context, u *storage.UserRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[u.ID]; !ok {
		return storage.ErrNotFound
	}
	for id, existing := range s.users {
		if id == u.ID {
			continue
		}
		if existing.Username == u.Username || existing.Email == u.Email || existing.DNI == u.DNI {
			return storage.ErrConflict
		}
	}
	s.users[u.ID] = copyUser(u)
	return nil
}

// DeleteUser removes the record and the user's order lines, matching
// the cascade the relational schema applies.
func (s *Store) DeleteUser(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.users, id)
	for oid, o := range s.orders {
		if o.UserID == id {
			delete(s.orders, oid)
		}
	}
	return nil
}

// CreateProduct assigns an ID and stores the product. Name collisions
// fail with ErrConflict.
func (s *Store) CreateProduct(_ context.Context, p *api.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.products {
		if existing.Name == p.Name {
			return storage.ErrConflict
		}
	}

	s.nextProduct++
	p.ID = s.nextProduct
	cp := *p
	s.products[p.ID] = &cp
	return nil
}

// ProductByID returns the product with the given ID.
func (s *Store) ProductByID(_ context.Context, id int64) (*api.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

// ListProducts returns all products ordered by ID.
func (s *Store) ListProducts(_ context.Context) ([]*api.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*api.Product, 0, len(s.products))
	for _, p := range s.products {
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ProductsByCategory returns the products in the category, ordered by ID.
func (s *Store) ProductsByCategory(_ context.Context, categoryID int64) ([]*api.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*api.Product
	for _, p := range s.products {
		if p.CategoryID == categoryID {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// SearchProducts returns products whose name matches exactly.
func (s *Store) SearchProducts(_ context.Context, name string) ([]*api.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*api.Product
	for _, p := range s.products {
		if p.Name == name {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// UpdateProduct replaces the stored product with the same ID.
func (s *Store) UpdateProduct(_ context.Context, p *api.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[p.ID]; !ok {
		return storage.ErrNotFound
	}
	for id, existing := range s.products {
		if id != p.ID && existing.Name == p.Name {
			return storage.ErrConflict
		}
	}
	cp := *p
	s.products[p.ID] = &cp
	return nil
}

// CreateCategory assigns an ID and stores the category. Name collisions
// fail with ErrConflict.
func (s *Store) CreateCategory(_ context.Context, c *api.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.categories {
		if existing.Name == c.Name {
			return storage.ErrConflict
		}
	}

	s.nextCategory++
	c.ID = s.nextCategory
	cp := *c
	s.categories[c.ID] = &cp
	return nil
}

// CategoryByID returns the category with the given ID.
func (s *Store) CategoryByID(_ context.Context, id int64) (*api.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.categories[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

// ListCategories returns all categories ordered by ID.
func (s *Store) ListCategories(_ context.Context) ([]*api.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*api.Category, 0, len(s.categories))
	for _, c := range s.categories {
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// SearchCategories returns categories whose name matches exactly.
func (s *Store) SearchCategories(_ context.Context, name string) ([]*api.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*api.Category
	for _, c := range s.categories {
		if c.Name == name {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// DeleteCategory removes the category. A category still referenced by
// products cannot be deleted, mirroring the foreign key in the SQL
// backend.
func (s *Store) DeleteCategory(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.categories[id]; !ok {
		return storage.ErrNotFound
	}
	for _, p := range s.products {
		if p.CategoryID == id {
			return storage.ErrConflict
		}
	}
	delete(s.categories, id)
	return nil
}

// CreateOrderLine assigns an ID and stores the order line.
func (s *Store) CreateOrderLine(_ context.Context, o *api.OrderLine) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextOrder++
	o.ID = s.nextOrder
	cp := *o
	s.orders[o.ID] = &cp
	return nil
}

// OrderLineByID returns the order line with the given ID.
func (s *Store) OrderLineByID(_ context.Context, id int64) (*api.OrderLine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.orders[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

// ListOrderLines returns all order lines ordered by ID.
func (s *Store) ListOrderLines(_ context.Context) ([]*api.OrderLine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*api.OrderLine, 0, len(s.orders))
	for _, o := range s.orders {
		cp := *o
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// OrderLinesByUser returns the order lines placed by the user, ordered
// by ID.
func (s *Store) OrderLinesByUser(_ context.Context, userID int64) ([]*api.OrderLine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*api.OrderLine
	for _, o := range s.orders {
		if o.UserID == userID {
			cp := *o
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// UpdateOrderLine replaces the stored order line with the same ID.
func (s *Store) UpdateOrderLine(_ context.Context, o *api.OrderLine) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.orders[o.ID]; !ok {
		return storage.ErrNotFound
	}
	cp := *o
	s.orders[o.ID] = &cp
	return nil
}

// DeleteOrderLine removes the order line.
func (s *Store) DeleteOrderLine(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.orders[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.orders, id)
	return nil
}

// HealthCheck always succeeds for the in-memory store.
func (s *Store) HealthCheck(_ context.Context) error {
	return nil
}

// Close is a no-op for the in-memory store.
func (s *Store) Close() error {
	return nil
}

// copyUser returns a deep copy so callers never alias stored state.
func copyUser(u *storage.UserRecord) *storage.UserRecord {
	cp := *u
	cp.Roles = slices.Clone(u.Roles)
	return &cp
}
