package ports

import (
	"context"
	"errors"

	"github.com/donghass/my-commerce/internal/carts/domain"
)

var (
	// ErrCartNotFound is returned when the user has no cart yet.
	ErrCartNotFound = errors.New("cart not found")
	// ErrCartItemNotFound is returned when the requested cart item does not exist.
	ErrCartItemNotFound = errors.New("cart item not found")
)

// CartRepository exposes persistence operations for carts and their items.
type CartRepository interface {
	Create(ctx context.Context, userID int64) (*domain.Cart, error)
	GetByUser(ctx context.Context, userID int64) (*domain.Cart, error)
	AddItem(ctx context.Context, cartID int64, item domain.CartItem) (int64, error)
	UpdateItemQuantity(ctx context.Context, itemID, quantity int64) error
	RemoveItem(ctx context.Context, itemID int64) error
	ClearItems(ctx context.Context, cartID int64) error
}
