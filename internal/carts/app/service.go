package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/donghass/my-commerce/internal/carts/domain"
	"github.com/donghass/my-commerce/internal/carts/ports"
	ordersports "github.com/donghass/my-commerce/internal/orders/ports"
)

// Service bundles cart use cases. Product details are snapshotted through
// the same inventory port the order lifecycle uses.
type Service struct {
	carts     ports.CartRepository
	inventory ordersports.Inventory
	logger    *slog.Logger
}

// NewService wires required dependencies.
func NewService(carts ports.CartRepository, inventory ordersports.Inventory, logger *slog.Logger) *Service {
	return &Service{carts: carts, inventory: inventory, logger: logger}
}

// GetCart returns the user's cart, creating an empty one on first access.
func (s *Service) GetCart(ctx context.Context, userID int64) (*domain.Cart, error) {
	cart, err := s.carts.GetByUser(ctx, userID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, ports.ErrCartNotFound) {
		return nil, err
	}
	return s.carts.Create(ctx, userID)
}

// AddItem snapshots the product and appends it to the user's cart.
func (s *Service) AddItem(ctx context.Context, userID, productID, quantity int64) (*domain.Cart, error) {
	product, err := s.inventory.Product(ctx, productID)
	if err != nil {
		return nil, err
	}

	cart, err := s.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	item := domain.CartItem{
		CartID:      cart.ID,
		ProductID:   productID,
		ProductName: product.Name,
		ImageURL:    product.ImageURL,
		Quantity:    quantity,
		Price:       product.Price,
	}
	if err := item.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.carts.AddItem(ctx, cart.ID, item); err != nil {
		return nil, fmt.Errorf("persist cart item: %w", err)
	}

	s.logger.InfoContext(ctx, "cart item added",
		"user_id", userID, "product_id", productID, "quantity", quantity)
	return s.carts.GetByUser(ctx, userID)
}

// UpdateItemQuantity changes the quantity of an existing cart item.
func (s *Service) UpdateItemQuantity(ctx context.Context, itemID, quantity int64) error {
	if quantity <= 0 {
		return fmt.Errorf("quantity must be positive, got %d", quantity)
	}
	return s.carts.UpdateItemQuantity(ctx, itemID, quantity)
}

// RemoveItem deletes one item from a cart.
func (s *Service) RemoveItem(ctx context.Context, itemID int64) error {
	return s.carts.RemoveItem(ctx, itemID)
}

// ClearCart removes all items from the user's cart.
func (s *Service) ClearCart(ctx context.Context, userID int64) error {
	cart, err := s.carts.GetByUser(ctx, userID)
	if err != nil {
		return err
	}
	return s.carts.ClearItems(ctx, cart.ID)
}
