package memory

import (
	"context"
	"sync"
	"time"

	"github.com/donghass/my-commerce/internal/carts/domain"
	"github.com/donghass/my-commerce/internal/carts/ports"
)

// Repository provides an in-memory cart store useful for local development and tests.
type Repository struct {
	mu         sync.RWMutex
	nextCartID int64
	nextItemID int64
	byUser     map[int64]*domain.Cart
}

// NewRepository constructs a new in-memory cart repository.
func NewRepository() *Repository {
	return &Repository{nextCartID: 1, nextItemID: 1, byUser: make(map[int64]*domain.Cart)}
}

func (r *Repository) Create(_ context.Context, userID int64) (*domain.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cart, ok := r.byUser[userID]; ok {
		clone := cloneCart(cart)
		return &clone, nil
	}

	cart := &domain.Cart{
		ID:        r.nextCartID,
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
		Items:     []domain.CartItem{},
	}
	r.nextCartID++
	r.byUser[userID] = cart

	clone := cloneCart(cart)
	return &clone, nil
}

func (r *Repository) GetByUser(_ context.Context, userID int64) (*domain.Cart, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cart, ok := r.byUser[userID]
	if !ok {
		return nil, ports.ErrCartNotFound
	}
	clone := cloneCart(cart)
	return &clone, nil
}

func (r *Repository) AddItem(_ context.Context, cartID int64, item domain.CartItem) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, cart := range r.byUser {
		if cart.ID != cartID {
			continue
		}
		item.ID = r.nextItemID
		item.CartID = cartID
		item.CreatedAt = time.Now().UTC()
		r.nextItemID++
		cart.Items = append(cart.Items, item)
		return item.ID, nil
	}
	return 0, ports.ErrCartNotFound
}

func (r *Repository) UpdateItemQuantity(_ context.Context, itemID, quantity int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, cart := range r.byUser {
		for i := range cart.Items {
			if cart.Items[i].ID == itemID {
				cart.Items[i].Quantity = quantity
				return nil
			}
		}
	}
	return ports.ErrCartItemNotFound
}

func (r *Repository) RemoveItem(_ context.Context, itemID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, cart := range r.byUser {
		for i := range cart.Items {
			if cart.Items[i].ID == itemID {
				cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)
				return nil
			}
		}
	}
	return ports.ErrCartItemNotFound
}

func (r *Repository) ClearItems(_ context.Context, cartID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, cart := range r.byUser {
		if cart.ID == cartID {
			cart.Items = []domain.CartItem{}
			return nil
		}
	}
	return ports.ErrCartNotFound
}

func cloneCart(cart *domain.Cart) domain.Cart {
	clone := *cart
	clone.Items = make([]domain.CartItem, len(cart.Items))
	copy(clone.Items, cart.Items)
	return clone
}
