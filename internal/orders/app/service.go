package app

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/donghass/my-commerce/internal/orders/domain"
	"github.com/donghass/my-commerce/internal/orders/metrics"
	"github.com/donghass/my-commerce/internal/orders/ports"
	"github.com/donghass/my-commerce/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

// Service bundles order lifecycle use cases: placement, coupon discounts,
// guarded status transitions, reads and expiry.
type Service struct {
	repo       ports.OrderRepository
	inventory  ports.Inventory
	events     ports.EventBus
	idemStore  ports.IdempotencyStore
	logger     *slog.Logger
	metrics    *metrics.Metrics
	pendingTTL time.Duration
}

// NewService wires required dependencies. pendingTTL is the age after which
// a PENDING order becomes an expiry candidate.
func NewService(
	repo ports.OrderRepository,
	inventory ports.Inventory,
	events ports.EventBus,
	idem ports.IdempotencyStore,
	logger *slog.Logger,
	m *metrics.Metrics,
	pendingTTL time.Duration,
) *Service {
	return &Service{
		repo:       repo,
		inventory:  inventory,
		events:     events,
		idemStore:  idem,
		logger:     logger,
		metrics:    m,
		pendingTTL: pendingTTL,
	}
}

// OrderLine is one (product, quantity) pair of a placement request.
type OrderLine struct {
	ProductID int64 `json:"product_id"`
	Quantity  int64 `json:"quantity"`
}

// PlaceOrderInput captures payload for placing an order.
type PlaceOrderInput struct {
	UserID   int64       `json:"user_id"`
	CouponID *int64      `json:"coupon_id,omitempty"`
	Lines    []OrderLine `json:"items"`
}

// Validate ensures the placement request is well formed.
func (in PlaceOrderInput) Validate() error {
	if in.UserID <= 0 {
		return fmt.Errorf("%w: user_id must be positive", domain.ErrMalformedOrder)
	}
	if len(in.Lines) == 0 {
		return fmt.Errorf("%w: at least one item required", domain.ErrMalformedOrder)
	}
	seen := make(map[int64]struct{}, len(in.Lines))
	for _, line := range in.Lines {
		if line.ProductID <= 0 || line.Quantity <= 0 {
			return fmt.Errorf("%w: product_id and quantity must be positive", domain.ErrMalformedOrder)
		}
		if _, dup := seen[line.ProductID]; dup {
			return fmt.Errorf("%w: duplicate product %d", domain.ErrMalformedOrder, line.ProductID)
		}
		seen[line.ProductID] = struct{}{}
	}
	return nil
}

// PlaceOrder reserves stock for every line, snapshots amounts at current
// prices and persists the order with its items. Lines are processed in
// ascending product-id order; when a reservation fails mid-way the ones
// already taken are released in reverse before the error surfaces.
func (s *Service) PlaceOrder(ctx context.Context, input PlaceOrderInput) (*domain.Order, error) {
	ctx, span := telemetry.StartSpan(ctx, "OrderService.PlaceOrder")
	defer span.End()

	start := time.Now()
	var success bool
	defer func() {
		s.metrics.RecordOrderPlaced(ctx, success, time.Since(start).Seconds())
	}()

	if err := input.Validate(); err != nil {
		telemetry.RecordSpanError(span, err)
		return nil, err
	}

	lines := sortLines(input.Lines)

	amounts, reserved, err := s.reserveStock(ctx, lines)
	if err != nil {
		telemetry.RecordSpanError(span, err)
		return nil, err
	}

	order, err := buildOrder(input.UserID, input.CouponID, lines, amounts)
	if err != nil {
		s.releaseStock(ctx, reserved)
		telemetry.RecordSpanError(span, err)
		return nil, err
	}

	id, err := s.repo.Create(ctx, order)
	if err != nil {
		s.releaseStock(ctx, reserved)
		telemetry.RecordSpanError(span, err)
		return nil, fmt.Errorf("persist order: %w", err)
	}
	order.ID = id
	for i := range order.Items {
		order.Items[i].OrderID = id
	}

	if err := s.events.PublishOrderCreated(ctx, order); err != nil {
		s.logger.ErrorContext(ctx, "order created but event publish failed",
			"order_id", order.ID, "error", err)
	}

	telemetry.AddSpanAttributes(span,
		attribute.Int64("order.id", order.ID),
		attribute.Int64("order.user_id", order.UserID),
		attribute.Int64("order.total_amount", order.TotalAmount),
		attribute.Int("order.items", len(order.Items)),
	)
	s.logger.InfoContext(ctx, "order placed",
		"order_id", order.ID, "user_id", order.UserID, "total_amount", order.TotalAmount)

	success = true
	telemetry.SetSpanSuccess(span)
	return order, nil
}

// buildOrder assembles the domain order from sorted lines and the parallel
// per-line amounts. A length mismatch fails fast instead of indexing past
// the shorter list.
func buildOrder(userID int64, couponID *int64, lines []OrderLine, amounts []int64) (*domain.Order, error) {
	if len(amounts) != len(lines) {
		return nil, fmt.Errorf("%w: %d items but %d amounts", domain.ErrMalformedOrder, len(lines), len(amounts))
	}

	order := domain.NewOrder(userID, couponID)
	for i, line := range lines {
		if err := order.AddItem(line.ProductID, line.Quantity, amounts[i]); err != nil {
			return nil, err
		}
	}
	if err := order.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrMalformedOrder, err)
	}
	return order, nil
}

// reserveStock decrements stock line by line, returning the amount snapshot
// per line and the reservations taken so far. On failure the caller owns
// nothing: reservations already made are released here, in reverse order.
func (s *Service) reserveStock(ctx context.Context, lines []OrderLine) ([]int64, []domain.RestoredItem, error) {
	amounts := make([]int64, 0, len(lines))
	reserved := make([]domain.RestoredItem, 0, len(lines))

	for _, line := range lines {
		product, err := s.inventory.Product(ctx, line.ProductID)
		if err != nil {
			s.releaseStock(ctx, reserved)
			return nil, nil, fmt.Errorf("look up product %d: %w", line.ProductID, err)
		}
		if err := s.inventory.DecreaseStock(ctx, line.ProductID, line.Quantity); err != nil {
			s.releaseStock(ctx, reserved)
			return nil, nil, fmt.Errorf("reserve stock for product %d: %w", line.ProductID, err)
		}
		reserved = append(reserved, domain.RestoredItem{ProductID: line.ProductID, Quantity: line.Quantity})
		amounts = append(amounts, product.Price*line.Quantity)
	}

	return amounts, reserved, nil
}

func (s *Service) releaseStock(ctx context.Context, reserved []domain.RestoredItem) {
	for i := len(reserved) - 1; i >= 0; i-- {
		step := reserved[i]
		if err := s.inventory.IncreaseStock(ctx, step.ProductID, step.Quantity); err != nil {
			s.logger.ErrorContext(ctx, "failed to release reserved stock",
				"product_id", step.ProductID, "quantity", step.Quantity, "error", err)
		}
	}
}

func sortLines(lines []OrderLine) []OrderLine {
	sorted := make([]OrderLine, len(lines))
	copy(sorted, lines)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].ProductID < sorted[j].ProductID
	})
	return sorted
}

// ApplyCoupon subtracts a coupon discount from the order total.
func (s *Service) ApplyCoupon(ctx context.Context, orderID, discount int64) (*domain.Order, error) {
	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := order.ApplyDiscount(discount); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateTotal(ctx, orderID, order.TotalAmount); err != nil {
		return nil, fmt.Errorf("persist discounted total: %w", err)
	}
	s.logger.InfoContext(ctx, "coupon discount applied",
		"order_id", orderID, "discount", discount, "total_amount", order.TotalAmount)
	return order, nil
}

// UpdateStatus moves an order along the lifecycle, rejecting illegal edges.
func (s *Service) UpdateStatus(ctx context.Context, orderID int64, target domain.OrderStatus) (*domain.Order, error) {
	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := order.TransitionTo(target); err != nil {
		return nil, fmt.Errorf("%w: %s to %s", err, order.Status, target)
	}
	if err := s.repo.UpdateStatus(ctx, orderID, target); err != nil {
		return nil, err
	}

	if target == domain.StatusCancelled {
		if err := s.events.PublishOrderCanceled(ctx, orderID); err != nil {
			s.logger.ErrorContext(ctx, "order canceled but event publish failed",
				"order_id", orderID, "error", err)
		}
	}

	s.logger.InfoContext(ctx, "order status updated", "order_id", orderID, "status", target)
	return order, nil
}

// GetOrder retrieves an order with its items.
func (s *Service) GetOrder(ctx context.Context, id int64) (*domain.Order, error) {
	return s.repo.GetByID(ctx, id)
}

// ListUserOrders returns all orders owned by a user, newest first.
func (s *Service) ListUserOrders(ctx context.Context, userID int64) ([]domain.Order, error) {
	return s.repo.ListByUser(ctx, userID)
}

// SaveIdempotentResponse writes response details for a key.
func (s *Service) SaveIdempotentResponse(ctx context.Context, key string, response ports.StoredResponse) error {
	return s.idemStore.Save(ctx, key, response)
}

// GetIdempotentResponse retrieves previously stored response data.
func (s *Service) GetIdempotentResponse(ctx context.Context, key string) (*ports.StoredResponse, error) {
	return s.idemStore.Get(ctx, key)
}
