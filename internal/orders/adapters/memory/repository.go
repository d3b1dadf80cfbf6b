package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/donghass/my-commerce/internal/orders/domain"
	"github.com/donghass/my-commerce/internal/orders/ports"
)

// Repository provides an in-memory store useful for local development and tests.
type Repository struct {
	mu     sync.RWMutex
	nextID int64
	orders map[int64]domain.Order
	claims map[int64]time.Time
}

// NewRepository constructs a new in-memory repository.
func NewRepository() *Repository {
	return &Repository{
		nextID: 1,
		orders: make(map[int64]domain.Order),
		claims: make(map[int64]time.Time),
	}
}

// Create stores the order and its items, assigning ids.
func (r *Repository) Create(_ context.Context, order *domain.Order) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.nextID
	r.nextID++

	stored := *order
	stored.ID = id
	stored.Items = make([]domain.OrderItem, len(order.Items))
	copy(stored.Items, order.Items)
	for i := range stored.Items {
		stored.Items[i].ID = int64(i + 1)
		stored.Items[i].OrderID = id
	}
	r.orders[id] = stored

	return id, nil
}

// GetByID fetches a single order by identifier.
func (r *Repository) GetByID(_ context.Context, id int64) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	clone := cloneOrder(order)
	return &clone, nil
}

// ListByUser returns a user's orders, newest first.
func (r *Repository) ListByUser(_ context.Context, userID int64) ([]domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []domain.Order
	for _, order := range r.orders {
		if order.UserID == userID {
			result = append(result, cloneOrder(order))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

// UpdateStatus sets the status and updatedAt timestamp for an order.
func (r *Repository) UpdateStatus(_ context.Context, id int64, status domain.OrderStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok {
		return ports.ErrNotFound
	}
	order.Status = status
	order.UpdatedAt = time.Now().UTC()
	r.orders[id] = order
	return nil
}

// UpdateTotal sets the total amount for an order.
func (r *Repository) UpdateTotal(_ context.Context, id int64, total int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok {
		return ports.ErrNotFound
	}
	order.TotalAmount = total
	order.UpdatedAt = time.Now().UTC()
	r.orders[id] = order
	return nil
}

// FindPendingOlderThan returns PENDING orders created before the cutoff.
func (r *Repository) FindPendingOlderThan(_ context.Context, cutoff time.Time) ([]domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []domain.Order
	for _, order := range r.orders {
		if order.Status == domain.StatusPending && order.CreatedAt.Before(cutoff) {
			result = append(result, cloneOrder(order))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

// ClaimExpiry marks a PENDING order as being expired by one sweep.
func (r *Repository) ClaimExpiry(_ context.Context, id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok || order.Status != domain.StatusPending {
		return false, nil
	}
	if _, held := r.claims[id]; held {
		return false, nil
	}
	r.claims[id] = time.Now().UTC()
	return true, nil
}

// ReleaseExpiry clears the expiry claim for an order.
func (r *Repository) ReleaseExpiry(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.claims, id)
	return nil
}

func cloneOrder(order domain.Order) domain.Order {
	clone := order
	clone.Items = make([]domain.OrderItem, len(order.Items))
	copy(clone.Items, order.Items)
	return clone
}
