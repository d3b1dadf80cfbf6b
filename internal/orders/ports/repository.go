package ports

import (
	"context"
	"errors"
	"time"

	"github.com/donghass/my-commerce/internal/orders/domain"
)

// OrderRepository exposes persistence operations required by the application layer.
// Create persists the order together with all of its items; reads return
// orders with items attached, sorted by ascending product id.
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, id int64, status domain.OrderStatus) error
	UpdateTotal(ctx context.Context, id int64, total int64) error
	FindPendingOlderThan(ctx context.Context, cutoff time.Time) ([]domain.Order, error)

	// ClaimExpiry atomically marks a PENDING order as being processed by an
	// expiry sweep. It returns false when the order is not PENDING or another
	// sweep holds the claim. ReleaseExpiry clears the marker.
	ClaimExpiry(ctx context.Context, id int64) (bool, error)
	ReleaseExpiry(ctx context.Context, id int64) error
}

var (
	// ErrNotFound is returned when the requested order does not exist.
	ErrNotFound = errors.New("order not found")
)
