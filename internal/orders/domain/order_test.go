package domain_test

import (
	"errors"
	"testing"

	"github.com/donghass/my-commerce/internal/orders/domain"
)

func TestOrderStatusCanTransitionTo(t *testing.T) {
	tests := []struct {
		name    string
		from    domain.OrderStatus
		to      domain.OrderStatus
		allowed bool
	}{
		{"pending to confirmed", domain.StatusPending, domain.StatusConfirmed, true},
		{"pending to cancelled", domain.StatusPending, domain.StatusCancelled, true},
		{"pending to shipped", domain.StatusPending, domain.StatusShipped, false},
		{"pending to delivered", domain.StatusPending, domain.StatusDelivered, false},
		{"confirmed to shipped", domain.StatusConfirmed, domain.StatusShipped, true},
		{"confirmed to cancelled", domain.StatusConfirmed, domain.StatusCancelled, true},
		{"confirmed to delivered", domain.StatusConfirmed, domain.StatusDelivered, false},
		{"confirmed to pending", domain.StatusConfirmed, domain.StatusPending, false},
		{"shipped to delivered", domain.StatusShipped, domain.StatusDelivered, true},
		{"shipped to cancelled", domain.StatusShipped, domain.StatusCancelled, false},
		{"delivered to cancelled", domain.StatusDelivered, domain.StatusCancelled, false},
		{"cancelled to pending", domain.StatusCancelled, domain.StatusPending, false},
		{"cancelled to confirmed", domain.StatusCancelled, domain.StatusConfirmed, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.from.CanTransitionTo(tt.to); got != tt.allowed {
				t.Errorf("CanTransitionTo(%s -> %s) = %v, want %v", tt.from, tt.to, got, tt.allowed)
			}
		})
	}
}

func TestOrderStatusIsTerminal(t *testing.T) {
	tests := []struct {
		status   domain.OrderStatus
		terminal bool
	}{
		{domain.StatusPending, false},
		{domain.StatusConfirmed, false},
		{domain.StatusShipped, false},
		{domain.StatusDelivered, true},
		{domain.StatusCancelled, true},
	}

	for _, tt := range tests {
		if got := tt.status.IsTerminal(); got != tt.terminal {
			t.Errorf("IsTerminal(%s) = %v, want %v", tt.status, got, tt.terminal)
		}
	}
}

func TestOrderTransitionTo(t *testing.T) {
	t.Run("allowed transition updates status", func(t *testing.T) {
		order := domain.NewOrder(1, nil)

		if err := order.TransitionTo(domain.StatusConfirmed); err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}
		if order.Status != domain.StatusConfirmed {
			t.Errorf("expected status %s, got %s", domain.StatusConfirmed, order.Status)
		}
	})

	t.Run("rejected transition leaves status untouched", func(t *testing.T) {
		order := domain.NewOrder(1, nil)

		err := order.TransitionTo(domain.StatusDelivered)
		if !errors.Is(err, domain.ErrInvalidTransition) {
			t.Fatalf("expected ErrInvalidTransition, got: %v", err)
		}
		if order.Status != domain.StatusPending {
			t.Errorf("expected status %s, got %s", domain.StatusPending, order.Status)
		}
	})

	t.Run("unknown status is rejected", func(t *testing.T) {
		order := domain.NewOrder(1, nil)

		if err := order.TransitionTo("SHOUTING"); !errors.Is(err, domain.ErrInvalidTransition) {
			t.Fatalf("expected ErrInvalidTransition, got: %v", err)
		}
	})
}

func TestOrderAddItem(t *testing.T) {
	t.Run("accumulates total in ascending product order", func(t *testing.T) {
		order := domain.NewOrder(1, nil)

		if err := order.AddItem(3, 1, 50); err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}
		if err := order.AddItem(5, 2, 200); err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}

		if order.TotalAmount != 250 {
			t.Errorf("expected total 250, got %d", order.TotalAmount)
		}
		if len(order.Items) != 2 {
			t.Fatalf("expected 2 items, got %d", len(order.Items))
		}
		if order.Items[0].ProductID != 3 || order.Items[1].ProductID != 5 {
			t.Errorf("expected items sorted by product id, got %d, %d",
				order.Items[0].ProductID, order.Items[1].ProductID)
		}
	})

	t.Run("rejects out-of-order product", func(t *testing.T) {
		order := domain.NewOrder(1, nil)

		if err := order.AddItem(5, 1, 100); err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}
		if err := order.AddItem(3, 1, 50); !errors.Is(err, domain.ErrMalformedOrder) {
			t.Fatalf("expected ErrMalformedOrder, got: %v", err)
		}
	})

	t.Run("rejects duplicate product", func(t *testing.T) {
		order := domain.NewOrder(1, nil)

		if err := order.AddItem(5, 1, 100); err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}
		if err := order.AddItem(5, 2, 200); !errors.Is(err, domain.ErrMalformedOrder) {
			t.Fatalf("expected ErrMalformedOrder, got: %v", err)
		}
	})

	t.Run("rejects non-positive quantity", func(t *testing.T) {
		order := domain.NewOrder(1, nil)

		if err := order.AddItem(5, 0, 100); !errors.Is(err, domain.ErrMalformedOrder) {
			t.Fatalf("expected ErrMalformedOrder, got: %v", err)
		}
	})
}

func TestOrderApplyDiscount(t *testing.T) {
	newOrderWithTotal := func(t *testing.T, total int64) *domain.Order {
		t.Helper()
		order := domain.NewOrder(1, nil)
		if err := order.AddItem(1, 1, total); err != nil {
			t.Fatalf("AddItem failed: %v", err)
		}
		return order
	}

	t.Run("subtracts discount from total", func(t *testing.T) {
		order := newOrderWithTotal(t, 250)

		if err := order.ApplyDiscount(100); err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}
		if order.TotalAmount != 150 {
			t.Errorf("expected total 150, got %d", order.TotalAmount)
		}
	})

	t.Run("allows discount equal to total", func(t *testing.T) {
		order := newOrderWithTotal(t, 250)

		if err := order.ApplyDiscount(250); err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}
		if order.TotalAmount != 0 {
			t.Errorf("expected total 0, got %d", order.TotalAmount)
		}
	})

	t.Run("rejects discount exceeding total", func(t *testing.T) {
		order := newOrderWithTotal(t, 250)

		if err := order.ApplyDiscount(300); !errors.Is(err, domain.ErrInvalidDiscount) {
			t.Fatalf("expected ErrInvalidDiscount, got: %v", err)
		}
		if order.TotalAmount != 250 {
			t.Errorf("expected total unchanged at 250, got %d", order.TotalAmount)
		}
	})

	t.Run("rejects non-positive discount", func(t *testing.T) {
		order := newOrderWithTotal(t, 250)

		if err := order.ApplyDiscount(0); !errors.Is(err, domain.ErrInvalidDiscount) {
			t.Fatalf("expected ErrInvalidDiscount, got: %v", err)
		}
		if err := order.ApplyDiscount(-10); !errors.Is(err, domain.ErrInvalidDiscount) {
			t.Fatalf("expected ErrInvalidDiscount, got: %v", err)
		}
	})
}

func TestSortItemsByProduct(t *testing.T) {
	items := []domain.OrderItem{
		{ProductID: 9, Quantity: 1},
		{ProductID: 2, Quantity: 3},
		{ProductID: 5, Quantity: 2},
	}

	domain.SortItemsByProduct(items)

	want := []int64{2, 5, 9}
	for i, item := range items {
		if item.ProductID != want[i] {
			t.Errorf("expected product %d at index %d, got %d", want[i], i, item.ProductID)
		}
	}
}

func TestCompensationError(t *testing.T) {
	cause := errors.New("restore stock for product 5: connection reset")
	err := &domain.CompensationError{
		OrderID:    42,
		Unreversed: []domain.RestoredItem{{ProductID: 3, Quantity: 1}},
		Err:        cause,
	}

	if !errors.Is(err, cause) {
		t.Error("expected CompensationError to unwrap to its cause")
	}
	if !err.Retryable() {
		t.Error("expected compensation failures to be retryable")
	}
	msg := err.Error()
	if msg == "" {
		t.Fatal("expected non-empty error message")
	}
}
