package ports

import (
	"context"

	"github.com/donghass/my-commerce/internal/orders/domain"
)

// EventBus defines the contract for publishing order lifecycle events.
type EventBus interface {
	PublishOrderCreated(ctx context.Context, order *domain.Order) error
	PublishOrderCanceled(ctx context.Context, orderID int64) error
	PublishOrderExpired(ctx context.Context, orderID int64) error
}
