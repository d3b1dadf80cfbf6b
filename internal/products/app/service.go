package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	ordersports "github.com/donghass/my-commerce/internal/orders/ports"
	"github.com/donghass/my-commerce/internal/products/domain"
	"github.com/donghass/my-commerce/internal/products/ports"
)

// Service bundles product and category use cases. It also backs the order
// lifecycle's Inventory port: price lookup and stock movement.
type Service struct {
	products   ports.ProductRepository
	categories ports.CategoryRepository
	logger     *slog.Logger
}

// NewService wires required dependencies.
func NewService(products ports.ProductRepository, categories ports.CategoryRepository, logger *slog.Logger) *Service {
	return &Service{products: products, categories: categories, logger: logger}
}

// CreateProductInput captures payload for creating or updating a product.
type CreateProductInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       int64  `json:"price"`
	Stock       int64  `json:"stock"`
	CategoryID  int64  `json:"category_id"`
	ImageURL    string `json:"image_url"`
}

// CreateProduct validates the category and persists a new product.
func (s *Service) CreateProduct(ctx context.Context, input CreateProductInput) (*domain.Product, error) {
	if _, err := s.categories.GetByID(ctx, input.CategoryID); err != nil {
		return nil, err
	}

	product := &domain.Product{
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		Stock:       input.Stock,
		CategoryID:  input.CategoryID,
		ImageURL:    input.ImageURL,
	}
	if err := product.Validate(); err != nil {
		return nil, err
	}

	id, err := s.products.Create(ctx, product)
	if err != nil {
		return nil, fmt.Errorf("persist product: %w", err)
	}
	product.ID = id

	s.logger.InfoContext(ctx, "product created", "product_id", id, "name", product.Name)
	return product, nil
}

// GetProduct retrieves a product by id.
func (s *Service) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	return s.products.GetByID(ctx, id)
}

// ListProducts returns products using a filter.
func (s *Service) ListProducts(ctx context.Context, filter ports.ListFilter) ([]domain.Product, error) {
	return s.products.List(ctx, filter)
}

// SearchProducts returns products whose name contains the keyword.
func (s *Service) SearchProducts(ctx context.Context, keyword string) ([]domain.Product, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return []domain.Product{}, nil
	}
	return s.products.SearchByName(ctx, keyword)
}

// UpdateProduct overwrites a product's attributes.
func (s *Service) UpdateProduct(ctx context.Context, id int64, input CreateProductInput) (*domain.Product, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.categories.GetByID(ctx, input.CategoryID); err != nil {
		return nil, err
	}

	product.Name = input.Name
	product.Description = input.Description
	product.Price = input.Price
	product.Stock = input.Stock
	product.CategoryID = input.CategoryID
	product.ImageURL = input.ImageURL
	if err := product.Validate(); err != nil {
		return nil, err
	}

	if err := s.products.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("persist product update: %w", err)
	}
	return product, nil
}

// DeleteProduct removes a product.
func (s *Service) DeleteProduct(ctx context.Context, id int64) error {
	return s.products.Delete(ctx, id)
}

// CreateCategory persists a new category.
func (s *Service) CreateCategory(ctx context.Context, name string) (*domain.Category, error) {
	category := &domain.Category{Name: strings.TrimSpace(name)}
	if err := category.Validate(); err != nil {
		return nil, err
	}

	id, err := s.categories.Create(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("persist category: %w", err)
	}
	category.ID = id
	return category, nil
}

// GetCategory retrieves a category by id.
func (s *Service) GetCategory(ctx context.Context, id int64) (*domain.Category, error) {
	return s.categories.GetByID(ctx, id)
}

// ListCategories returns all categories.
func (s *Service) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return s.categories.List(ctx)
}

// DeleteCategory removes a category.
func (s *Service) DeleteCategory(ctx context.Context, id int64) error {
	return s.categories.Delete(ctx, id)
}

// Product implements the order lifecycle's inventory lookup.
func (s *Service) Product(ctx context.Context, productID int64) (*ordersports.ProductSnapshot, error) {
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	return &ordersports.ProductSnapshot{
		ID:       product.ID,
		Name:     product.Name,
		Price:    product.Price,
		Stock:    product.Stock,
		ImageURL: product.ImageURL,
	}, nil
}

// DecreaseStock removes quantity units from a product's stock, failing with
// domain.ErrInsufficientStock rather than going negative.
func (s *Service) DecreaseStock(ctx context.Context, productID, quantity int64) error {
	if quantity <= 0 {
		return fmt.Errorf("quantity must be positive, got %d", quantity)
	}
	return s.products.AdjustStock(ctx, productID, -quantity)
}

// IncreaseStock returns quantity units to a product's stock.
func (s *Service) IncreaseStock(ctx context.Context, productID, quantity int64) error {
	if quantity <= 0 {
		return fmt.Errorf("quantity must be positive, got %d", quantity)
	}
	return s.products.AdjustStock(ctx, productID, quantity)
}
