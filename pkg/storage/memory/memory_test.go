package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/tiendahq/tienda/pkg/api"
	"github.com/tiendahq/tienda/pkg/storage"
)

func TestUserCRUD(t *testing.T) {
	store := New()
	ctx := context.Background()

	rec := &storage.UserRecord{
		DNI: 11111111, Username: "juanperez", Firstname: "Juan", Lastname: "Perez",
		Email: "juan@example.com", Country: "AR", PasswordHash: "hash", Roles: []string{"USER"},
	}
	if err := store.CreateUser(ctx, rec); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if rec.ID == 0 {
		t.Fatal("ID not assigned")
	}

	got, err := store.UserByID(ctx, rec.ID)
	if err != nil {
		t.Fatalf("UserByID: %v", err)
	}
	if got.Username != "juanperez" {
		t.Errorf("username = %q", got.Username)
	}

	// Reads return copies; mutating them must not leak into the store.
	got.Username = "mutated"
	got.Roles[0] = "ADMIN"
	again, _ := store.UserByID(ctx, rec.ID)
	if again.Username != "juanperez" || again.Roles[0] != "USER" {
		t.Error("store state changed through a returned copy")
	}

	byName, err := store.UserByUsername(ctx, "juanperez")
	if err != nil || byName.ID != rec.ID {
		t.Errorf("UserByUsername = %+v, %v", byName, err)
	}

	again.Country = "ES"
	again.Username = "juanperez"
	if err := store.UpdateUser(ctx, again); err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}
	updated, _ := store.UserByID(ctx, rec.ID)
	if updated.Country != "ES" {
		t.Errorf("country = %q, want ES", updated.Country)
	}

	if err := store.DeleteUser(ctx, rec.ID); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}
	if _, err := store.UserByID(ctx, rec.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("UserByID after delete = %v, want ErrNotFound", err)
	}
}

func TestUserUniqueness(t *testing.T) {
	store := New()
	ctx := context.Background()

	base := storage.UserRecord{DNI: 1, Username: "a", Email: "a@x", PasswordHash: "h"}
	if err := store.CreateUser(ctx, &base); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	dupes := []storage.UserRecord{
		{DNI: 2, Username: "a", Email: "b@x"},
		{DNI: 3, Username: "b", Email: "a@x"},
		{DNI: 1, Username: "c", Email: "c@x"},
	}
	for _, d := range dupes {
		if err := store.CreateUser(ctx, &d); !errors.Is(err, storage.ErrConflict) {
			t.Errorf("CreateUser(%+v) = %v, want ErrConflict", d, err)
		}
	}
}

func TestDeleteUserCascadesOrders(t *testing.T) {
	store := New()
	ctx := context.Background()

	u := storage.UserRecord{DNI: 1, Username: "a", Email: "a@x"}
	if err := store.CreateUser(ctx, &u); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	line := api.OrderLine{UserID: u.ID, ProductID: 1, Amount: 1, Status: api.OrderPending}
	if err := store.CreateOrderLine(ctx, &line); err != nil {
		t.Fatalf("CreateOrderLine: %v", err)
	}

	if err := store.DeleteUser(ctx, u.ID); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}
	if _, err := store.OrderLineByID(ctx, line.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("order line survived user delete: %v", err)
	}
}

func TestProductQueries(t *testing.T) {
	store := New()
	ctx := context.Background()

	cat := api.Category{Name: "books"}
	if err := store.CreateCategory(ctx, &cat); err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}
	other := api.Category{Name: "games"}
	if err := store.CreateCategory(ctx, &other); err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}

	for _, p := range []api.Product{
		{Name: "novel", Price: 10, CategoryID: cat.ID, Stock: 5, Active: true},
		{Name: "poems", Price: 8, CategoryID: cat.ID, Stock: 2, Active: true},
		{Name: "chess", Price: 20, CategoryID: other.ID, Stock: 1, Active: true},
	} {
		if err := store.CreateProduct(ctx, &p); err != nil {
			t.Fatalf("CreateProduct(%s): %v", p.Name, err)
		}
	}

	all, err := store.ListProducts(ctx)
	if err != nil || len(all) != 3 {
		t.Fatalf("ListProducts = %d items, %v", len(all), err)
	}
	// Listed in ID order.
	if all[0].ID > all[1].ID || all[1].ID > all[2].ID {
		t.Error("products not sorted by ID")
	}

	books, err := store.ProductsByCategory(ctx, cat.ID)
	if err != nil || len(books) != 2 {
		t.Fatalf("ProductsByCategory = %d items, %v", len(books), err)
	}

	found, err := store.SearchProducts(ctx, "chess")
	if err != nil || len(found) != 1 {
		t.Fatalf("SearchProducts = %d items, %v", len(found), err)
	}

	dup := api.Product{Name: "novel", Price: 1, CategoryID: cat.ID}
	if err := store.CreateProduct(ctx, &dup); !errors.Is(err, storage.ErrConflict) {
		t.Errorf("duplicate product name = %v, want ErrConflict", err)
	}
}

func TestCategoryDeleteBlockedByProducts(t *testing.T) {
	store := New()
	ctx := context.Background()

	cat := api.Category{Name: "books"}
	if err := store.CreateCategory(ctx, &cat); err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}
	p := api.Product{Name: "novel", Price: 1, CategoryID: cat.ID}
	if err := store.CreateProduct(ctx, &p); err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}

	if err := store.DeleteCategory(ctx, cat.ID); !errors.Is(err, storage.ErrConflict) {
		t.Errorf("DeleteCategory with products = %v, want ErrConflict", err)
	}
}

func TestOrderLinesByUser(t *testing.T) {
	store := New()
	ctx := context.Background()

	for _, uid := range []int64{7, 7, 9} {
		line := api.OrderLine{UserID: uid, ProductID: 1, Amount: 1, Status: api.OrderPending}
		if err := store.CreateOrderLine(ctx, &line); err != nil {
			t.Fatalf("CreateOrderLine: %v", err)
		}
	}

	lines, err := store.OrderLinesByUser(ctx, 7)
	if err != nil || len(lines) != 2 {
		t.Fatalf("OrderLinesByUser = %d items, %v", len(lines), err)
	}
	lines, err = store.OrderLinesByUser(ctx, 12)
	if err != nil || len(lines) != 0 {
		t.Fatalf("OrderLinesByUser(12) = %d items, %v", len(lines), err)
	}
}
