package domain

import (
	"errors"
	"strings"
	"time"
)

// ErrInsufficientStock is returned when a stock decrease would go negative.
var ErrInsufficientStock = errors.New("insufficient stock")

// Category groups products for browsing.
type Category struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Validate ensures the category adheres to business constraints.
func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return errors.New("name is required")
	}
	return nil
}

// Product is a sellable item. Price and stock are integer units.
type Product struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Price       int64     `json:"price"`
	Stock       int64     `json:"stock"`
	CategoryID  int64     `json:"category_id"`
	ImageURL    string    `json:"image_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Validate ensures the product adheres to business constraints.
func (p Product) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return errors.New("name is required")
	}
	if p.Price < 0 {
		return errors.New("price must not be negative")
	}
	if p.Stock < 0 {
		return errors.New("stock must not be negative")
	}
	if p.CategoryID <= 0 {
		return errors.New("category_id must be positive")
	}
	return nil
}

// DecreaseStock removes quantity units, failing rather than going negative.
func (p *Product) DecreaseStock(quantity int64) error {
	if quantity > p.Stock {
		return ErrInsufficientStock
	}
	p.Stock -= quantity
	p.UpdatedAt = time.Now().UTC()
	return nil
}

// IncreaseStock adds quantity units back.
func (p *Product) IncreaseStock(quantity int64) {
	p.Stock += quantity
	p.UpdatedAt = time.Now().UTC()
}
