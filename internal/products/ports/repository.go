package ports

import (
	"context"
	"errors"

	"github.com/donghass/my-commerce/internal/products/domain"
)

var (
	// ErrProductNotFound is returned when the requested product does not exist.
	ErrProductNotFound = errors.New("product not found")
	// ErrCategoryNotFound is returned when the requested category does not exist.
	ErrCategoryNotFound = errors.New("category not found")
)

// ListFilter narrows product list queries by category and pagination.
type ListFilter struct {
	CategoryID *int64
	Page       int
	PageSize   int
}

// ProductRepository exposes persistence operations for products.
// AdjustStock applies a signed delta atomically and fails with
// domain.ErrInsufficientStock when a negative delta would push stock below
// zero.
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	List(ctx context.Context, filter ListFilter) ([]domain.Product, error)
	SearchByName(ctx context.Context, keyword string) ([]domain.Product, error)
	Update(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id int64) error
	AdjustStock(ctx context.Context, id int64, delta int64) error
}

// CategoryRepository exposes persistence operations for categories.
type CategoryRepository interface {
	Create(ctx context.Context, category *domain.Category) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.Category, error)
	List(ctx context.Context) ([]domain.Category, error)
	Delete(ctx context.Context, id int64) error
}
