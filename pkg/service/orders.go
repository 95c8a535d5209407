package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/tiendahq/tienda/pkg/api"
	"github.com/tiendahq/tienda/pkg/storage"
)

// Orders manages order lines. Creation only checks that the product can
// cover the requested amount; stock moves when an existing line grows or
// shrinks, by exactly the difference between the new and old amount.
type Orders struct {
	orders   storage.OrderStore
	products storage.ProductStore
	users    storage.UserStore
}

func NewOrders(orders storage.OrderStore, products storage.ProductStore, users storage.UserStore) *Orders {
	return &Orders{orders: orders, products: products, users: users}
}

// Create records a new order line. The product must exist, be active,
// and have at least the requested amount in stock. Lines without an
// explicit status start as PENDING. Stock is not decremented here.
func (s *Orders) Create(ctx context.Context, o *api.OrderLine) (*api.OrderLine, error) {
	if o.Amount < 1 {
		return nil, api.NewInvalidRequestError("amount", "amount must be at least 1")
	}
	if _, err := s.users.UserByID(ctx, o.UserID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, api.NewInvalidRequestError("user_id", fmt.Sprintf("user %d not found", o.UserID))
		}
		return nil, fmt.Errorf("loading user %d: %w", o.UserID, err)
	}
	product, err := s.products.ProductByID(ctx, o.ProductID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, api.NewInvalidRequestError("product_id", fmt.Sprintf("product %d not found", o.ProductID))
		}
		return nil, fmt.Errorf("loading product %d: %w", o.ProductID, err)
	}
	if !product.Active {
		return nil, api.NewInvalidRequestError("product_id", fmt.Sprintf("product %d is not active", o.ProductID))
	}
	if product.Stock < o.Amount {
		return nil, api.NewInvalidRequestError("amount", fmt.Sprintf("insufficient stock for product %d: have %d, want %d", o.ProductID, product.Stock, o.Amount))
	}
	created := *o
	created.ID = 0
	if created.Status == "" {
		created.Status = api.OrderPending
	} else if !api.ValidStatus(created.Status) {
		return nil, api.NewInvalidRequestError("status", fmt.Sprintf("unknown order status %q", created.Status))
	}
	if err := s.orders.CreateOrderLine(ctx, &created); err != nil {
		return nil, fmt.Errorf("creating order line: %w", err)
	}
	return &created, nil
}

func (s *Orders) Get(ctx context.Context, id int64) (*api.OrderLine, error) {
	o, err := s.orders.OrderLineByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, api.NewNotFoundError(fmt.Sprintf("order line %d not found", id))
		}
		return nil, fmt.Errorf("loading order line %d: %w", id, err)
	}
	return o, nil
}

func (s *Orders) List(ctx context.Context) ([]*api.OrderLine, error) {
	os, err := s.orders.ListOrderLines(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing order lines: %w", err)
	}
	return os, nil
}

func (s *Orders) ListByUser(ctx context.Context, userID int64) ([]*api.OrderLine, error) {
	if _, err := s.users.UserByID(ctx, userID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, api.NewNotFoundError(fmt.Sprintf("user %d not found", userID))
		}
		return nil, fmt.Errorf("loading user %d: %w", userID, err)
	}
	os, err := s.orders.OrderLinesByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing order lines for user %d: %w", userID, err)
	}
	return os, nil
}

// Update changes the amount or status of an existing line. Growth
// requires the product to still be active and is checked against
// available stock; afterwards the product stock is
// adjusted by the difference between the new and previous amount, so
// shrinking a line returns stock. An adjustment that would push stock
// negative is rejected.
func (s *Orders) Update(ctx context.Context, id int64, o *api.OrderLine) (*api.OrderLine, error) {
	if o.Amount < 1 {
		return nil, api.NewInvalidRequestError("amount", "amount must be at least 1")
	}
	if o.Status != "" && !api.ValidStatus(o.Status) {
		return nil, api.NewInvalidRequestError("status", fmt.Sprintf("unknown order status %q", o.Status))
	}
	existing, err := s.orders.OrderLineByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, api.NewNotFoundError(fmt.Sprintf("order line %d not found", id))
		}
		return nil, fmt.Errorf("loading order line %d: %w", id, err)
	}
	product, err := s.products.ProductByID(ctx, existing.ProductID)
	if err != nil {
		return nil, fmt.Errorf("loading product %d: %w", existing.ProductID, err)
	}
	diff := o.Amount - existing.Amount
	if diff > 0 {
		if !product.Active {
			return nil, api.NewInvalidRequestError("product_id", fmt.Sprintf("product %d is not active", product.ID))
		}
		if product.Stock < diff {
			return nil, api.NewInvalidRequestError("amount", fmt.Sprintf("insufficient stock for product %d: have %d, want %d more", product.ID, product.Stock, diff))
		}
	}
	if product.Stock-diff < 0 {
		return nil, api.NewInvalidRequestError("amount", fmt.Sprintf("stock for product %d cannot go negative", product.ID))
	}
	existing.Amount = o.Amount
	if o.Status != "" {
		existing.Status = o.Status
	}
	if err := s.orders.UpdateOrderLine(ctx, existing); err != nil {
		return nil, fmt.Errorf("updating order line %d: %w", id, err)
	}
	if diff != 0 {
		product.Stock -= diff
		if err := s.products.UpdateProduct(ctx, product); err != nil {
			return nil, fmt.Errorf("adjusting stock for product %d: %w", product.ID, err)
		}
	}
	return existing, nil
}

func (s *Orders) Delete(ctx context.Context, id int64) error {
	if err := s.orders.DeleteOrderLine(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return api.NewNotFoundError(fmt.Sprintf("order line %d not found", id))
		}
		return fmt.Errorf("deleting order line %d: %w", id, err)
	}
	return nil
}
