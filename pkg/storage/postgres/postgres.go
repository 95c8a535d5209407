// Package postgres provides a PostgreSQL implementation of storage.Store.
// It uses pgx/v5 for connection pooling and text[] columns for role sets.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tiendahq/tienda/pkg/api"
	"github.com/tiendahq/tienda/pkg/storage"
)

// Store is a PostgreSQL-backed storage.Store.
type Store struct {
	pool *pgxpool.Pool
}

// Ensure Store implements storage.Store at compile time.
var _ storage.Store = (*Store)(nil)

// New creates a new PostgreSQL store with the given configuration.
// If MigrateOnStart is true, schema migrations are applied automatically.
func New(ctx context.Context, cfg Config) (*Store, error) {
	cfg.defaults()

	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parsing DSN: %w", err)
	}

	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	// Verify connectivity.
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	s := &Store{pool: pool}

	if cfg.MigrateOnStart {
		if err := s.migrate(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("running migrations: %w", err)
		}
	}

	return s, nil
}

// CreateUser inserts the record and fills in the generated ID.
func (s *Store) CreateUser(ctx context.Context, u *storage.UserRecord) error {
	err := s.pool.QueryRow(ctx, `
		INSERT INTO users (dni, username, firstname, lastname, email, country, password_hash, roles)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`, u.DNI, u.Username, u.Firstname, u.Lastname, u.Email, u.Country, u.PasswordHash, u.Roles).Scan(&u.ID)
	if err != nil {
		if isDuplicateKey(err) {
			return storage.ErrConflict
		}
		return fmt.Errorf("inserting user: %w", err)
	}
	return nil
}

const userColumns = "id, dni, username, firstname, lastname, email, country, password_hash, roles"

// UserByID retrieves a user by ID.
func (s *Store) UserByID(ctx context.Context, id int64) (*storage.UserRecord, error) {
	return s.scanUser(s.pool.QueryRow(ctx,
		"SELECT "+userColumns+" FROM users WHERE id = $1", id))
}

// UserByUsername retrieves a user by username.
func (s *Store) UserByUsername(ctx context.Context, username string) (*storage.UserRecord, error) {
	return s.scanUser(s.pool.QueryRow(ctx,
		"SELECT "+userColumns+" FROM users WHERE username = $1", username))
}

func (s *Store) scanUser(row pgx.Row) (*storage.UserRecord, error) {
	var u storage.UserRecord
	err := row.Scan(&u.ID, &u.DNI, &u.Username, &u.Firstname, &u.Lastname, &u.Email, &u.Country, &u.PasswordHash, &u.Roles)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying user: %w", err)
	}
	return &u, nil
}

// ListUsers returns all users ordered by ID.
func (s *Store) ListUsers(ctx context.Context) ([]*storage.UserRecord, error) {
	rows, err := s.pool.Query(ctx, "SELECT "+userColumns+" FROM users ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("querying users: %w", err)
	}
	defer rows.Close()

	var out []*storage.UserRecord
	for rows.Next() {
		var u storage.UserRecord
		if err := rows.Scan(&u.ID, &u.DNI, &u.Username, &u.Firstname, &u.Lastname, &u.Email, &u.Country, &u.PasswordHash, &u.Roles); err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}
		out = append(out, &u)
	}
	return out, rows.Err()
}

// UpdateUser replaces the stored record with the same ID.
func (s *Store) UpdateUser(ctx context.Context, u *storage.UserRecord) error {
	result, err := s.pool.Exec(ctx, `
		UPDATE users
		SET dni = $2, username = $3, firstname = $4, lastname = $5,
		    email = $6, country = $7, password_hash = $8, roles = $9
		WHERE id = $1
	`, u.ID, u.DNI, u.Username, u.Firstname, u.Lastname, u.Email, u.Country, u.PasswordHash, u.Roles)
	if err != nil {
		if isDuplicateKey(err) {
			return storage.ErrConflict
		}
		return fmt.Errorf("updating user: %w", err)
	}
	if result.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// DeleteUser removes the user; order lines cascade in the schema.
func (s *Store) DeleteUser(ctx context.Context, id int64) error {
	result, err := s.pool.Exec(ctx, "DELETE FROM users WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}
	if result.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// CreateProduct inserts the product and fills in the generated ID.
func (s *Store) CreateProduct(ctx context.Context, p *api.Product) error {
	err := s.pool.QueryRow(ctx, `
		INSERT INTO products (name, description, price, category_id, stock, active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, p.Name, p.Description, p.Price, p.CategoryID, p.Stock, p.Active).Scan(&p.ID)
	if err != nil {
		if isDuplicateKey(err) {
			return storage.ErrConflict
		}
		return fmt.Errorf("inserting product: %w", err)
	}
	return nil
}

const productColumns = "id, name, description, price, category_id, stock, active"

// ProductByID retrieves a product by ID.
func (s *Store) ProductByID(ctx context.Context, id int64) (*api.Product, error) {
	var p api.Product
	err := s.pool.QueryRow(ctx,
		"SELECT "+productColumns+" FROM products WHERE id = $1", id,
	).Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.CategoryID, &p.Stock, &p.Active)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying product: %w", err)
	}
	return &p, nil
}

// ListProducts returns all products ordered by ID.
func (s *Store) ListProducts(ctx context.Context) ([]*api.Product, error) {
	return s.queryProducts(ctx, "SELECT "+productColumns+" FROM products ORDER BY id")
}

// ProductsByCategory returns the products in the category, ordered by ID.
func (s *Store) ProductsByCategory(ctx context.Context, categoryID int64) ([]*api.Product, error) {
	return s.queryProducts(ctx,
		"SELECT "+productColumns+" FROM products WHERE category_id = $1 ORDER BY id", categoryID)
}

// SearchProducts returns products whose name matches exactly.
func (s *Store) SearchProducts(ctx context.Context, name string) ([]*api.Product, error) {
	return s.queryProducts(ctx,
		"SELECT "+productColumns+" FROM products WHERE name = $1 ORDER BY id", name)
}

func (s *Store) queryProducts(ctx context.Context, query string, args ...any) ([]*api.Product, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying products: %w", err)
	}
	defer rows.Close()

	var out []*api.Product
	for rows.Next() {
		var p api.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.CategoryID, &p.Stock, &p.Active); err != nil {
			return nil, fmt.Errorf("scanning product: %w", err)
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}

// UpdateProduct replaces the stored product with the same ID.
func (s *Store) UpdateProduct(ctx context.Context, p *api.Product) error {
	result, err := s.pool.Exec(ctx, `
		UPDATE products
		SET name = $2, description = $3, price = $4, category_id = $5, stock = $6, active = $7
		WHERE id = $1
	`, p.ID, p.Name, p.Description, p.Price, p.CategoryID, p.Stock, p.Active)
	if err != nil {
		if isDuplicateKey(err) {
			return storage.ErrConflict
		}
		return fmt.Errorf("updating product: %w", err)
	}
	if result.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// CreateCategory inserts the category and fills in the generated ID.
func (s *Store) CreateCategory(ctx context.Context, c *api.Category) error {
	err := s.pool.QueryRow(ctx,
		"INSERT INTO categories (name) VALUES ($1) RETURNING id", c.Name,
	).Scan(&c.ID)
	if err != nil {
		if isDuplicateKey(err) {
			return storage.ErrConflict
		}
		return fmt.Errorf("inserting category: %w", err)
	}
	return nil
}

// CategoryByID retrieves a category by ID.
func (s *Store) CategoryByID(ctx context.Context, id int64) (*api.Category, error) {
	var c api.Category
	err := s.pool.QueryRow(ctx,
		"SELECT id, name FROM categories WHERE id = $1", id,
	).Scan(&c.ID, &c.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying category: %w", err)
	}
	return &c, nil
}

// ListCategories returns all categories ordered by ID.
func (s *Store) ListCategories(ctx context.Context) ([]*api.Category, error) {
	return s.queryCategories(ctx, "SELECT id, name FROM categories ORDER BY id")
}

// SearchCategories returns categories whose name matches exactly.
func (s *Store) SearchCategories(ctx context.Context, name string) ([]*api.Category, error) {
	return s.queryCategories(ctx, "SELECT id, name FROM categories WHERE name = $1 ORDER BY id", name)
}

func (s *Store) queryCategories(ctx context.Context, query string, args ...any) ([]*api.Category, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying categories: %w", err)
	}
	defer rows.Close()

	var out []*api.Category
	for rows.Next() {
		var c api.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("scanning category: %w", err)
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}

// DeleteCategory removes the category. Products referencing it hold a
// foreign key, so such a delete fails with ErrConflict.
func (s *Store) DeleteCategory(ctx context.Context, id int64) error {
	result, err := s.pool.Exec(ctx, "DELETE FROM categories WHERE id = $1", id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return storage.ErrConflict
		}
		return fmt.Errorf("deleting category: %w", err)
	}
	if result.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// CreateOrderLine inserts the order line and fills in the generated ID.
func (s *Store) CreateOrderLine(ctx context.Context, o *api.OrderLine) error {
	err := s.pool.QueryRow(ctx, `
		INSERT INTO order_lines (user_id, product_id, amount, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, o.UserID, o.ProductID, o.Amount, string(o.Status)).Scan(&o.ID)
	if err != nil {
		return fmt.Errorf("inserting order line: %w", err)
	}
	return nil
}

const orderColumns = "id, user_id, product_id, amount, status"

// OrderLineByID retrieves an order line by ID.
func (s *Store) OrderLineByID(ctx context.Context, id int64) (*api.OrderLine, error) {
	var o api.OrderLine
	var status string
	err := s.pool.QueryRow(ctx,
		"SELECT "+orderColumns+" FROM order_lines WHERE id = $1", id,
	).Scan(&o.ID, &o.UserID, &o.ProductID, &o.Amount, &status)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying order line: %w", err)
	}
	o.Status = api.OrderStatus(status)
	return &o, nil
}

// ListOrderLines returns all order lines ordered by ID.
func (s *Store) ListOrderLines(ctx context.Context) ([]*api.OrderLine, error) {
	return s.queryOrderLines(ctx, "SELECT "+orderColumns+" FROM order_lines ORDER BY id")
}

// OrderLinesByUser returns the order lines placed by the user, ordered by ID.
func (s *Store) OrderLinesByUser(ctx context.Context, userID int64) ([]*api.OrderLine, error) {
	return s.queryOrderLines(ctx,
		"SELECT "+orderColumns+" FROM order_lines WHERE user_id = $1 ORDER BY id", userID)
}

func (s *Store) queryOrderLines(ctx context.Context, query string, args ...any) ([]*api.OrderLine, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying order lines: %w", err)
	}
	defer rows.Close()

	var out []*api.OrderLine
	for rows.Next() {
		var o api.OrderLine
		var status string
		if err := rows.Scan(&o.ID, &o.UserID, &o.ProductID, &o.Amount, &status); err != nil {
			return nil, fmt.Errorf("scanning order line: %w", err)
		}
		o.Status = api.OrderStatus(status)
		out = append(out, &o)
	}
	return out, rows.Err()
}

// UpdateOrderLine replaces the stored order line with the same ID.
func (s *Store) UpdateOrderLine(ctx context.Context, o *api.OrderLine) error {
	result, err := s.pool.Exec(ctx, `
		UPDATE order_lines
		SET user_id = $2, product_id = $3, amount = $4, status = $5
		WHERE id = $1
	`, o.ID, o.UserID, o.ProductID, o.Amount, string(o.Status))
	if err != nil {
		return fmt.Errorf("updating order line: %w", err)
	}
	if result.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// DeleteOrderLine removes the order line.
func (s *Store) DeleteOrderLine(ctx context.Context, id int64) error {
	result, err := s.pool.Exec(ctx, "DELETE FROM order_lines WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("deleting order line: %w", err)
	}
	if result.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// HealthCheck verifies the database connection.
func (s *Store) HealthCheck(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases the connection pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// isDuplicateKey checks if the error is a PostgreSQL unique violation (23505).
func isDuplicateKey(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// isForeignKeyViolation checks for a PostgreSQL foreign key violation (23503).
func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}
