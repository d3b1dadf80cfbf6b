package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/donghass/my-commerce/internal/products/domain"
	"github.com/donghass/my-commerce/internal/products/ports"
)

// ProductRepository provides an in-memory store useful for local development and tests.
type ProductRepository struct {
	mu       sync.RWMutex
	nextID   int64
	products map[int64]domain.Product
}

// NewProductRepository constructs a new in-memory product repository.
func NewProductRepository() *ProductRepository {
	return &ProductRepository{nextID: 1, products: make(map[int64]domain.Product)}
}

func (r *ProductRepository) Create(_ context.Context, product *domain.Product) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.nextID
	r.nextID++

	stored := *product
	stored.ID = id
	stored.CreatedAt = time.Now().UTC()
	stored.UpdatedAt = stored.CreatedAt
	r.products[id] = stored
	return id, nil
}

func (r *ProductRepository) GetByID(_ context.Context, id int64) (*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[id]
	if !ok {
		return nil, ports.ErrProductNotFound
	}
	clone := product
	return &clone, nil
}

func (r *ProductRepository) List(_ context.Context, filter ports.ListFilter) ([]domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []domain.Product
	for _, product := range r.products {
		if filter.CategoryID != nil && product.CategoryID != *filter.CategoryID {
			continue
		}
		result = append(result, product)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	page := filter.Page
	if page <= 0 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}
	start := (page - 1) * pageSize
	if start >= len(result) {
		return []domain.Product{}, nil
	}
	end := start + pageSize
	if end > len(result) {
		end = len(result)
	}
	page2 := make([]domain.Product, end-start)
	copy(page2, result[start:end])
	return page2, nil
}

func (r *ProductRepository) SearchByName(_ context.Context, keyword string) ([]domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	needle := strings.ToLower(keyword)
	var result []domain.Product
	for _, product := range r.products {
		if strings.Contains(strings.ToLower(product.Name), needle) {
			result = append(result, product)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result, nil
}

func (r *ProductRepository) Update(_ context.Context, product *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[product.ID]; !ok {
		return ports.ErrProductNotFound
	}
	stored := *product
	stored.UpdatedAt = time.Now().UTC()
	r.products[product.ID] = stored
	return nil
}

func (r *ProductRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[id]; !ok {
		return ports.ErrProductNotFound
	}
	delete(r.products, id)
	return nil
}

func (r *ProductRepository) AdjustStock(_ context.Context, id int64, delta int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.products[id]
	if !ok {
		return ports.ErrProductNotFound
	}
	if product.Stock+delta < 0 {
		return domain.ErrInsufficientStock
	}
	product.Stock += delta
	product.UpdatedAt = time.Now().UTC()
	r.products[id] = product
	return nil
}

// CategoryRepository provides an in-memory category store.
type CategoryRepository struct {
	mu         sync.RWMutex
	nextID     int64
	categories map[int64]domain.Category
}

// NewCategoryRepository constructs a new in-memory category repository.
func NewCategoryRepository() *CategoryRepository {
	return &CategoryRepository{nextID: 1, categories: make(map[int64]domain.Category)}
}

func (r *CategoryRepository) Create(_ context.Context, category *domain.Category) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.nextID
	r.nextID++

	stored := *category
	stored.ID = id
	stored.CreatedAt = time.Now().UTC()
	r.categories[id] = stored
	return id, nil
}

func (r *CategoryRepository) GetByID(_ context.Context, id int64) (*domain.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	category, ok := r.categories[id]
	if !ok {
		return nil, ports.ErrCategoryNotFound
	}
	clone := category
	return &clone, nil
}

func (r *CategoryRepository) List(_ context.Context) ([]domain.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Category, 0, len(r.categories))
	for _, category := range r.categories {
		result = append(result, category)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result, nil
}

func (r *CategoryRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.categories[id]; !ok {
		return ports.ErrCategoryNotFound
	}
	delete(r.categories, id)
	return nil
}
