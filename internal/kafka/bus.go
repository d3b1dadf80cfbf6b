package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/donghass/my-commerce/internal/orders/domain"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

const (
	EventOrderCreated  = "order.created"
	EventOrderCanceled = "order.canceled"
	EventOrderExpired  = "order.expired"
)

// envelope is the wire format shared by all order events.
type envelope struct {
	EventID    string `json:"event_id"`
	EventType  string `json:"event_type"`
	OccurredAt string `json:"occurred_at"`
	Payload    any    `json:"payload"`
}

type orderCreatedPayload struct {
	OrderID     int64  `json:"order_id"`
	UserID      int64  `json:"user_id"`
	TotalAmount int64  `json:"total_amount"`
	Status      string `json:"status"`
	ItemCount   int    `json:"item_count"`
}

type orderIDPayload struct {
	OrderID int64 `json:"order_id"`
}

// Bus publishes order lifecycle events to a single Kafka topic, keyed by
// order id so one order's events stay in one partition.
type Bus struct {
	writer  *kafka.Writer
	logger  *slog.Logger
	metrics *Metrics
}

// NewBus builds a Bus writing to topic via the given brokers.
func NewBus(brokers []string, topic string, logger *slog.Logger, metrics *Metrics) *Bus {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
	}
	return &Bus{writer: writer, logger: logger, metrics: metrics}
}

// Close flushes and closes the underlying writer.
func (b *Bus) Close() error {
	return b.writer.Close()
}

func (b *Bus) PublishOrderCreated(ctx context.Context, order *domain.Order) error {
	return b.publish(ctx, order.ID, EventOrderCreated, orderCreatedPayload{
		OrderID:     order.ID,
		UserID:      order.UserID,
		TotalAmount: order.TotalAmount,
		Status:      string(order.Status),
		ItemCount:   len(order.Items),
	})
}

func (b *Bus) PublishOrderCanceled(ctx context.Context, orderID int64) error {
	return b.publish(ctx, orderID, EventOrderCanceled, orderIDPayload{OrderID: orderID})
}

func (b *Bus) PublishOrderExpired(ctx context.Context, orderID int64) error {
	return b.publish(ctx, orderID, EventOrderExpired, orderIDPayload{OrderID: orderID})
}

func (b *Bus) publish(ctx context.Context, orderID int64, eventType string, payload any) error {
	event := envelope{
		EventID:    uuid.NewString(),
		EventType:  eventType,
		OccurredAt: time.Now().UTC().Format(time.RFC3339Nano),
		Payload:    payload,
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", eventType, err)
	}

	start := time.Now()
	err = b.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatInt(orderID, 10)),
		Value: data,
		Time:  start,
	})
	if b.metrics != nil {
		b.metrics.RecordPublish(ctx, b.writer.Topic, time.Since(start).Seconds(), err == nil)
	}
	if err != nil {
		return fmt.Errorf("write %s event: %w", eventType, err)
	}

	b.logger.DebugContext(ctx, "event published",
		"event_type", eventType, "order_id", orderID, "event_id", event.EventID)
	return nil
}
