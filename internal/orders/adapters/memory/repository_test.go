package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/donghass/my-commerce/internal/orders/adapters/memory"
	"github.com/donghass/my-commerce/internal/orders/domain"
	"github.com/donghass/my-commerce/internal/orders/ports"
)

func newPendingOrder(t *testing.T) *domain.Order {
	t.Helper()
	order := domain.NewOrder(7, nil)
	if err := order.AddItem(3, 1, 50); err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}
	if err := order.AddItem(5, 2, 200); err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}
	return order
}

func TestRepositoryCreateAndGet(t *testing.T) {
	repo := memory.NewRepository()
	ctx := context.Background()

	id, err := repo.Create(ctx, newPendingOrder(t))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := repo.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.ID != id {
		t.Errorf("expected id %d, got %d", id, got.ID)
	}
	if len(got.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(got.Items))
	}
	for _, item := range got.Items {
		if item.OrderID != id {
			t.Errorf("expected item order id %d, got %d", id, item.OrderID)
		}
	}

	if _, err := repo.GetByID(ctx, 999); !errors.Is(err, ports.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got: %v", err)
	}
}

func TestRepositoryFindPendingOlderThan(t *testing.T) {
	repo := memory.NewRepository()
	ctx := context.Background()

	old := newPendingOrder(t)
	old.CreatedAt = time.Now().UTC().Add(-2 * time.Hour)
	oldID, err := repo.Create(ctx, old)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	fresh := newPendingOrder(t)
	if _, err := repo.Create(ctx, fresh); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	confirmed := newPendingOrder(t)
	confirmed.CreatedAt = time.Now().UTC().Add(-2 * time.Hour)
	confirmedID, err := repo.Create(ctx, confirmed)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := repo.UpdateStatus(ctx, confirmedID, domain.StatusConfirmed); err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}

	candidates, err := repo.FindPendingOlderThan(ctx, time.Now().UTC().Add(-time.Hour))
	if err != nil {
		t.Fatalf("FindPendingOlderThan failed: %v", err)
	}
	if len(candidates) != 1 || candidates[0].ID != oldID {
		t.Errorf("expected only order %d, got %v", oldID, candidates)
	}
}

func TestRepositoryClaimExpiry(t *testing.T) {
	repo := memory.NewRepository()
	ctx := context.Background()

	id, err := repo.Create(ctx, newPendingOrder(t))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	claimed, err := repo.ClaimExpiry(ctx, id)
	if err != nil {
		t.Fatalf("ClaimExpiry failed: %v", err)
	}
	if !claimed {
		t.Fatal("expected first claim to succeed")
	}

	claimed, err = repo.ClaimExpiry(ctx, id)
	if err != nil {
		t.Fatalf("ClaimExpiry failed: %v", err)
	}
	if claimed {
		t.Error("expected second claim to fail while held")
	}

	if err := repo.ReleaseExpiry(ctx, id); err != nil {
		t.Fatalf("ReleaseExpiry failed: %v", err)
	}

	claimed, err = repo.ClaimExpiry(ctx, id)
	if err != nil {
		t.Fatalf("ClaimExpiry failed: %v", err)
	}
	if !claimed {
		t.Error("expected claim to succeed after release")
	}
}

func TestRepositoryClaimExpiryRequiresPending(t *testing.T) {
	repo := memory.NewRepository()
	ctx := context.Background()

	id, err := repo.Create(ctx, newPendingOrder(t))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := repo.UpdateStatus(ctx, id, domain.StatusConfirmed); err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}

	claimed, err := repo.ClaimExpiry(ctx, id)
	if err != nil {
		t.Fatalf("ClaimExpiry failed: %v", err)
	}
	if claimed {
		t.Error("expected claim on non-PENDING order to fail")
	}
}

func TestRepositoryListByUser(t *testing.T) {
	repo := memory.NewRepository()
	ctx := context.Background()

	first := newPendingOrder(t)
	first.CreatedAt = time.Now().UTC().Add(-time.Hour)
	if _, err := repo.Create(ctx, first); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	second := newPendingOrder(t)
	secondID, err := repo.Create(ctx, second)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	other := newPendingOrder(t)
	other.UserID = 99
	if _, err := repo.Create(ctx, other); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	orders, err := repo.ListByUser(ctx, 7)
	if err != nil {
		t.Fatalf("ListByUser failed: %v", err)
	}
	if len(orders) != 2 {
		t.Fatalf("expected 2 orders, got %d", len(orders))
	}
	if orders[0].ID != secondID {
		t.Errorf("expected newest order first, got order %d", orders[0].ID)
	}
}
