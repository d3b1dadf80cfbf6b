package kafka

import (
	"context"
	"log/slog"

	"github.com/donghass/my-commerce/internal/orders/domain"
)

// NoopEventBus logs events without sending them anywhere. Used when no
// Kafka brokers are configured.
type NoopEventBus struct{}

// NewNoopEventBus returns a new no-op event publisher.
func NewNoopEventBus() *NoopEventBus {
	return &NoopEventBus{}
}

func (n *NoopEventBus) PublishOrderCreated(_ context.Context, order *domain.Order) error {
	slog.Debug("event::order_created", "order_id", order.ID)
	return nil
}

func (n *NoopEventBus) PublishOrderCanceled(_ context.Context, orderID int64) error {
	slog.Debug("event::order_canceled", "order_id", orderID)
	return nil
}

func (n *NoopEventBus) PublishOrderExpired(_ context.Context, orderID int64) error {
	slog.Debug("event::order_expired", "order_id", orderID)
	return nil
}
