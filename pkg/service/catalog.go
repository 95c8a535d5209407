package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tiendahq/tienda/pkg/api"
	"github.com/tiendahq/tienda/pkg/storage"
)

// Catalog manages products and their categories. Products are never
// hard-deleted; deactivation takes them out of the orderable set while
// keeping them readable.
type Catalog struct {
	products   storage.ProductStore
	categories storage.CategoryStore
}

func NewCatalog(products storage.ProductStore, categories storage.CategoryStore) *Catalog {
	return &Catalog{products: products, categories: categories}
}

// CreateProduct adds a catalog entry. The referenced category must
// already exist. New products always start active.
func (s *Catalog) CreateProduct(ctx context.Context, p *api.Product) (*api.Product, error) {
	if err := validateProduct(p); err != nil {
		return nil, err
	}
	if _, err := s.categories.CategoryByID(ctx, p.CategoryID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, api.NewInvalidRequestError("category_id", fmt.Sprintf("category %d not found", p.CategoryID))
		}
		return nil, fmt.Errorf("loading category %d: %w", p.CategoryID, err)
	}
	created := *p
	created.ID = 0
	created.Active = true
	if err := s.products.CreateProduct(ctx, &created); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return nil, api.NewConflictError(fmt.Sprintf("product %q already exists", p.Name))
		}
		return nil, fmt.Errorf("creating product: %w", err)
	}
	return &created, nil
}

func (s *Catalog) Product(ctx context.Context, id int64) (*api.Product, error) {
	p, err := s.products.ProductByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, api.NewNotFoundError(fmt.Sprintf("product %d not found", id))
		}
		return nil, fmt.Errorf("loading product %d: %w", id, err)
	}
	return p, nil
}

func (s *Catalog) ListProducts(ctx context.Context) ([]*api.Product, error) {
	ps, err := s.products.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	return ps, nil
}

func (s *Catalog) ProductsByCategory(ctx context.Context, categoryID int64) ([]*api.Product, error) {
	if _, err := s.categories.CategoryByID(ctx, categoryID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, api.NewNotFoundError(fmt.Sprintf("category %d not found", categoryID))
		}
		return nil, fmt.Errorf("loading category %d: %w", categoryID, err)
	}
	ps, err := s.products.ProductsByCategory(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("listing products for category %d: %w", categoryID, err)
	}
	return ps, nil
}

// SearchProducts looks up products by exact name.
func (s *Catalog) SearchProducts(ctx context.Context, name string) ([]*api.Product, error) {
	if strings.TrimSpace(name) == "" {
		return nil, api.NewInvalidRequestError("name", "name is required")
	}
	ps, err := s.products.SearchProducts(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("searching products: %w", err)
	}
	return ps, nil
}

// UpdateProduct replaces the mutable fields of a product. The active
// flag is not touched here; use Activate and Deactivate for that.
func (s *Catalog) UpdateProduct(ctx context.Context, id int64, p *api.Product) (*api.Product, error) {
	if err := validateProduct(p); err != nil {
		return nil, err
	}
	existing, err := s.products.ProductByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, api.NewNotFoundError(fmt.Sprintf("product %d not found", id))
		}
		return nil, fmt.Errorf("loading product %d: %w", id, err)
	}
	if p.CategoryID != existing.CategoryID {
		if _, err := s.categories.CategoryByID(ctx, p.CategoryID); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return nil, api.NewInvalidRequestError("category_id", fmt.Sprintf("category %d not found", p.CategoryID))
			}
			return nil, fmt.Errorf("loading category %d: %w", p.CategoryID, err)
		}
	}
	existing.Name = p.Name
	existing.Description = p.Description
	existing.Price = p.Price
	existing.CategoryID = p.CategoryID
	existing.Stock = p.Stock
	if err := s.products.UpdateProduct(ctx, existing); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return nil, api.NewConflictError(fmt.Sprintf("product %q already exists", p.Name))
		}
		return nil, fmt.Errorf("updating product %d: %w", id, err)
	}
	return existing, nil
}

// Activate marks a product orderable again.
func (s *Catalog) Activate(ctx context.Context, id int64) (*api.Product, error) {
	return s.setActive(ctx, id, true)
}

// Deactivate is the logical delete for products. The entry stays
// readable but can no longer be ordered.
func (s *Catalog) Deactivate(ctx context.Context, id int64) (*api.Product, error) {
	return s.setActive(ctx, id, false)
}

func (s *Catalog) setActive(ctx context.Context, id int64, active bool) (*api.Product, error) {
	p, err := s.products.ProductByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, api.NewNotFoundError(fmt.Sprintf("product %d not found", id))
		}
		return nil, fmt.Errorf("loading product %d: %w", id, err)
	}
	if p.Active == active {
		return p, nil
	}
	p.Active = active
	if err := s.products.UpdateProduct(ctx, p); err != nil {
		return nil, fmt.Errorf("updating product %d: %w", id, err)
	}
	return p, nil
}

// CreateCategory adds a category with a unique name.
func (s *Catalog) CreateCategory(ctx context.Context, c *api.Category) (*api.Category, error) {
	if strings.TrimSpace(c.Name) == "" {
		return nil, api.NewInvalidRequestError("name", "name is required")
	}
	created := *c
	created.ID = 0
	if err := s.categories.CreateCategory(ctx, &created); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return nil, api.NewConflictError(fmt.Sprintf("category %q already exists", c.Name))
		}
		return nil, fmt.Errorf("creating category: %w", err)
	}
	return &created, nil
}

func (s *Catalog) Category(ctx context.Context, id int64) (*api.Category, error) {
	c, err := s.categories.CategoryByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, api.NewNotFoundError(fmt.Sprintf("category %d not found", id))
		}
		return nil, fmt.Errorf("loading category %d: %w", id, err)
	}
	return c, nil
}

func (s *Catalog) ListCategories(ctx context.Context) ([]*api.Category, error) {
	cs, err := s.categories.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	return cs, nil
}

// SearchCategories looks up categories by exact name.
func (s *Catalog) SearchCategories(ctx context.Context, name string) ([]*api.Category, error) {
	if strings.TrimSpace(name) == "" {
		return nil, api.NewInvalidRequestError("name", "name is required")
	}
	cs, err := s.categories.SearchCategories(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("searching categories: %w", err)
	}
	return cs, nil
}

// DeleteCategory removes a category. Products still referencing it keep
// the database from deleting it; that surfaces as a conflict.
func (s *Catalog) DeleteCategory(ctx context.Context, id int64) error {
	if err := s.categories.DeleteCategory(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return api.NewNotFoundError(fmt.Sprintf("category %d not found", id))
		}
		if errors.Is(err, storage.ErrConflict) {
			return api.NewConflictError(fmt.Sprintf("category %d still has products", id))
		}
		return fmt.Errorf("deleting category %d: %w", id, err)
	}
	return nil
}

func validateProduct(p *api.Product) error {
	if strings.TrimSpace(p.Name) == "" {
		return api.NewInvalidRequestError("name", "name is required")
	}
	if p.Price < 0 {
		return api.NewInvalidRequestError("price", "price must not be negative")
	}
	if p.Stock < 0 {
		return api.NewInvalidRequestError("stock", "stock must not be negative")
	}
	if p.CategoryID == 0 {
		return api.NewInvalidRequestError("category_id", "category_id is required")
	}
	return nil
}
