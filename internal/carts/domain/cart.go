package domain

import (
	"errors"
	"time"
)

// CartItem is a product snapshot inside a cart: name, image and price are
// copied at add time so the cart keeps displaying what the user added.
type CartItem struct {
	ID          int64     `json:"id"`
	CartID      int64     `json:"cart_id"`
	ProductID   int64     `json:"product_id"`
	ProductName string    `json:"product_name"`
	ImageURL    string    `json:"image_url,omitempty"`
	Quantity    int64     `json:"quantity"`
	Price       int64     `json:"price"`
	CreatedAt   time.Time `json:"created_at"`
}

// Validate ensures the cart item adheres to business constraints.
func (i CartItem) Validate() error {
	if i.ProductID <= 0 {
		return errors.New("product_id must be positive")
	}
	if i.Quantity <= 0 {
		return errors.New("quantity must be positive")
	}
	if i.Price < 0 {
		return errors.New("price must not be negative")
	}
	return nil
}

// Cart holds a user's staged items. One cart per user.
type Cart struct {
	ID        int64      `json:"id"`
	UserID    int64      `json:"user_id"`
	CreatedAt time.Time  `json:"created_at"`
	Items     []CartItem `json:"items"`
}

// TotalAmount sums price times quantity across all items.
func (c Cart) TotalAmount() int64 {
	var total int64
	for _, item := range c.Items {
		total += item.Price * item.Quantity
	}
	return total
}
