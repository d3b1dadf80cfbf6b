package app_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	cartsmemory "github.com/donghass/my-commerce/internal/carts/adapters/memory"
	"github.com/donghass/my-commerce/internal/carts/app"
	productsmemory "github.com/donghass/my-commerce/internal/products/adapters/memory"
	productsapp "github.com/donghass/my-commerce/internal/products/app"
	productsports "github.com/donghass/my-commerce/internal/products/ports"
)

func newTestService(t *testing.T) (*app.Service, *productsapp.Service) {
	t.Helper()

	logger := slog.New(slog.DiscardHandler)
	catalog := productsapp.NewService(
		productsmemory.NewProductRepository(),
		productsmemory.NewCategoryRepository(),
		logger,
	)
	return app.NewService(cartsmemory.NewRepository(), catalog, logger), catalog
}

func seedProduct(t *testing.T, catalog *productsapp.Service, name string, price int64) int64 {
	t.Helper()
	ctx := context.Background()

	category, err := catalog.CreateCategory(ctx, "default")
	if err != nil {
		t.Fatalf("CreateCategory failed: %v", err)
	}
	product, err := catalog.CreateProduct(ctx, productsapp.CreateProductInput{
		Name:       name,
		Price:      price,
		Stock:      100,
		CategoryID: category.ID,
		ImageURL:   "https://img.example/" + name,
	})
	if err != nil {
		t.Fatalf("CreateProduct failed: %v", err)
	}
	return product.ID
}

func TestGetCartCreatesOnFirstAccess(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()

	cart, err := service.GetCart(ctx, 7)
	if err != nil {
		t.Fatalf("GetCart failed: %v", err)
	}
	if cart.UserID != 7 {
		t.Errorf("expected cart for user 7, got user %d", cart.UserID)
	}
	if len(cart.Items) != 0 {
		t.Errorf("expected empty cart, got %d items", len(cart.Items))
	}

	again, err := service.GetCart(ctx, 7)
	if err != nil {
		t.Fatalf("GetCart failed: %v", err)
	}
	if again.ID != cart.ID {
		t.Errorf("expected same cart on second access, got %d and %d", cart.ID, again.ID)
	}
}

func TestAddItemSnapshotsProduct(t *testing.T) {
	service, catalog := newTestService(t)
	ctx := context.Background()
	productID := seedProduct(t, catalog, "paperback", 1500)

	cart, err := service.AddItem(ctx, 7, productID, 2)
	if err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}
	if len(cart.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(cart.Items))
	}

	item := cart.Items[0]
	if item.ProductName != "paperback" {
		t.Errorf("expected snapshotted name, got %q", item.ProductName)
	}
	if item.Price != 1500 {
		t.Errorf("expected snapshotted price 1500, got %d", item.Price)
	}
	if cart.TotalAmount() != 3000 {
		t.Errorf("expected total 3000, got %d", cart.TotalAmount())
	}
}

func TestAddItemUnknownProduct(t *testing.T) {
	service, _ := newTestService(t)

	if _, err := service.AddItem(context.Background(), 7, 999, 1); !errors.Is(err, productsports.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got: %v", err)
	}
}

func TestUpdateItemQuantity(t *testing.T) {
	service, catalog := newTestService(t)
	ctx := context.Background()
	productID := seedProduct(t, catalog, "paperback", 1500)

	cart, err := service.AddItem(ctx, 7, productID, 1)
	if err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}

	if err := service.UpdateItemQuantity(ctx, cart.Items[0].ID, 4); err != nil {
		t.Fatalf("UpdateItemQuantity failed: %v", err)
	}

	cart, err = service.GetCart(ctx, 7)
	if err != nil {
		t.Fatalf("GetCart failed: %v", err)
	}
	if cart.Items[0].Quantity != 4 {
		t.Errorf("expected quantity 4, got %d", cart.Items[0].Quantity)
	}

	if err := service.UpdateItemQuantity(ctx, cart.Items[0].ID, 0); err == nil {
		t.Error("expected error for zero quantity")
	}
}

func TestRemoveItemAndClear(t *testing.T) {
	service, catalog := newTestService(t)
	ctx := context.Background()
	first := seedProduct(t, catalog, "paperback", 1500)
	second := seedProduct(t, catalog, "hardcover", 2500)

	if _, err := service.AddItem(ctx, 7, first, 1); err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}
	cart, err := service.AddItem(ctx, 7, second, 1)
	if err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}
	if len(cart.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(cart.Items))
	}

	if err := service.RemoveItem(ctx, cart.Items[0].ID); err != nil {
		t.Fatalf("RemoveItem failed: %v", err)
	}
	cart, err = service.GetCart(ctx, 7)
	if err != nil {
		t.Fatalf("GetCart failed: %v", err)
	}
	if len(cart.Items) != 1 {
		t.Fatalf("expected 1 item after removal, got %d", len(cart.Items))
	}

	if err := service.ClearCart(ctx, 7); err != nil {
		t.Fatalf("ClearCart failed: %v", err)
	}
	cart, err = service.GetCart(ctx, 7)
	if err != nil {
		t.Fatalf("GetCart failed: %v", err)
	}
	if len(cart.Items) != 0 {
		t.Errorf("expected empty cart after clear, got %d items", len(cart.Items))
	}
}
