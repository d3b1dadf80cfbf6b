package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/donghass/my-commerce/internal/orders/domain"
	"github.com/donghass/my-commerce/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

// ExpireOrders cancels PENDING orders older than the configured TTL,
// restoring the stock reserved at placement. Each order is processed
// independently; a failed order does not stop the sweep. The returned error
// joins the per-order failures, each a *domain.CompensationError.
//
// The compensation ledger lives in memory only. A process crash between a
// stock restoration and the CANCELLED flip leaves the order PENDING with
// partially restored stock until the next sweep reprocesses it.
func (s *Service) ExpireOrders(ctx context.Context, now time.Time) ([]int64, error) {
	ctx, span := telemetry.StartSpan(ctx, "OrderService.ExpireOrders")
	defer span.End()

	start := time.Now()
	cutoff := now.Add(-s.pendingTTL)

	candidates, err := s.repo.FindPendingOlderThan(ctx, cutoff)
	if err != nil {
		telemetry.RecordSpanError(span, err)
		return nil, fmt.Errorf("find expired orders: %w", err)
	}

	var expired []int64
	var failures []error
	for _, order := range candidates {
		if err := s.expireOrder(ctx, &order); err != nil {
			failures = append(failures, err)
			continue
		}
		expired = append(expired, order.ID)
	}

	s.metrics.RecordExpirySweep(ctx, len(expired), len(failures), time.Since(start).Seconds())
	telemetry.AddSpanAttributes(span,
		attribute.Int("sweep.candidates", len(candidates)),
		attribute.Int("sweep.expired", len(expired)),
		attribute.Int("sweep.failures", len(failures)),
	)

	if len(failures) > 0 {
		return expired, errors.Join(failures...)
	}
	telemetry.SetSpanSuccess(span)
	return expired, nil
}

// expireOrder runs the compensating cancellation for one order:
//
//  1. claim the order so concurrent sweeps cannot double-restore
//  2. restore stock per item in ascending product-id order, recording each
//     completed restoration in a ledger
//  3. flip the order to CANCELLED only after every restoration succeeded
//  4. read the row back and confirm it still shows CANCELLED
//
// Any failure reverses the ledger back to front, reverts a completed
// CANCELLED flip to PENDING, and surfaces a retryable CompensationError.
func (s *Service) expireOrder(ctx context.Context, order *domain.Order) error {
	claimed, err := s.repo.ClaimExpiry(ctx, order.ID)
	if err != nil {
		return &domain.CompensationError{OrderID: order.ID, Err: fmt.Errorf("claim order: %w", err)}
	}
	if !claimed {
		// Another sweep holds it, or the order left PENDING since selection.
		return nil
	}
	defer func() {
		if err := s.repo.ReleaseExpiry(ctx, order.ID); err != nil {
			s.logger.ErrorContext(ctx, "failed to release expiry claim", "order_id", order.ID, "error", err)
		}
	}()

	items := make([]domain.OrderItem, len(order.Items))
	copy(items, order.Items)
	domain.SortItemsByProduct(items)

	ledger := make([]domain.RestoredItem, 0, len(items))
	cancelled := false

	failure := func() error {
		for _, item := range items {
			if err := s.inventory.IncreaseStock(ctx, item.ProductID, item.Quantity); err != nil {
				return fmt.Errorf("restore stock for product %d: %w", item.ProductID, err)
			}
			ledger = append(ledger, domain.RestoredItem{ProductID: item.ProductID, Quantity: item.Quantity})
		}

		if err := s.repo.UpdateStatus(ctx, order.ID, domain.StatusCancelled); err != nil {
			return fmt.Errorf("mark order cancelled: %w", err)
		}
		cancelled = true

		// The claim only serializes sweeps, not API writes. Read the row back
		// so a racing status write is caught before order.expired goes out.
		current, err := s.repo.GetByID(ctx, order.ID)
		if err != nil {
			return fmt.Errorf("verify cancelled order: %w", err)
		}
		if current.Status != domain.StatusCancelled {
			// A concurrent writer owns the status now; leave it alone and
			// only take the restored stock back.
			cancelled = false
			return fmt.Errorf("order %d read back as %s after cancellation", order.ID, current.Status)
		}
		return nil
	}()

	if failure == nil {
		if err := s.events.PublishOrderExpired(ctx, order.ID); err != nil {
			s.logger.ErrorContext(ctx, "order expired but event publish failed", "order_id", order.ID, "error", err)
		}
		s.logger.InfoContext(ctx, "expired pending order", "order_id", order.ID, "items", len(items))
		return nil
	}

	return s.compensate(ctx, order.ID, ledger, cancelled, failure)
}

// compensate reverses completed restorations in reverse order and reverts a
// premature CANCELLED flip. Steps that cannot be reversed are reported on
// the error rather than swallowed so callers can alert instead of silently
// continuing.
func (s *Service) compensate(ctx context.Context, orderID int64, ledger []domain.RestoredItem, cancelled bool, cause error) error {
	s.logger.ErrorContext(ctx, "order expiry failed, compensating", "order_id", orderID, "error", cause)

	var unreversed []domain.RestoredItem
	for i := len(ledger) - 1; i >= 0; i-- {
		step := ledger[i]
		if err := s.inventory.DecreaseStock(ctx, step.ProductID, step.Quantity); err != nil {
			s.logger.ErrorContext(ctx, "stock rollback failed",
				"order_id", orderID, "product_id", step.ProductID, "quantity", step.Quantity, "error", err)
			unreversed = append(unreversed, step)
		}
	}

	if cancelled {
		if err := s.repo.UpdateStatus(ctx, orderID, domain.StatusPending); err != nil {
			s.logger.ErrorContext(ctx, "status rollback failed", "order_id", orderID, "error", err)
		}
	}

	s.metrics.RecordCompensation(ctx, len(unreversed) == 0)
	return &domain.CompensationError{OrderID: orderID, Unreversed: unreversed, Err: cause}
}

// ExpiryRunner drives periodic expiry sweeps until its context is done.
type ExpiryRunner struct {
	service  *Service
	interval time.Duration
	logger   *slog.Logger
}

// NewExpiryRunner builds a runner sweeping at the given interval.
func NewExpiryRunner(service *Service, interval time.Duration, logger *slog.Logger) *ExpiryRunner {
	return &ExpiryRunner{service: service, interval: interval, logger: logger}
}

// Run blocks, sweeping once per interval, and returns when ctx is done.
// Sweep failures are logged and retried on the next tick.
func (r *ExpiryRunner) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("order expiry runner started", "interval", r.interval)
	for {
		select {
		case <-ctx.Done():
			r.logger.Info("order expiry runner stopped")
			return
		case now := <-ticker.C:
			expired, err := r.service.ExpireOrders(ctx, now.UTC())
			if err != nil {
				r.logger.Error("expiry sweep completed with failures",
					"expired", len(expired), "error", err)
				continue
			}
			if len(expired) > 0 {
				r.logger.Info("expiry sweep completed", "expired", len(expired))
			}
		}
	}
}
