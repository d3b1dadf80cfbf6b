package app_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/donghass/my-commerce/internal/orders/app"
	"github.com/donghass/my-commerce/internal/orders/domain"
	"github.com/donghass/my-commerce/internal/orders/metrics"
	"github.com/donghass/my-commerce/internal/orders/ports"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

type mockRepository struct {
	createFn               func(ctx context.Context, order *domain.Order) (int64, error)
	getByIDFn              func(ctx context.Context, id int64) (*domain.Order, error)
	listByUserFn           func(ctx context.Context, userID int64) ([]domain.Order, error)
	updateStatusFn         func(ctx context.Context, id int64, status domain.OrderStatus) error
	updateTotalFn          func(ctx context.Context, id int64, total int64) error
	findPendingOlderThanFn func(ctx context.Context, cutoff time.Time) ([]domain.Order, error)
	claimExpiryFn          func(ctx context.Context, id int64) (bool, error)
	releaseExpiryFn        func(ctx context.Context, id int64) error
}

func (m *mockRepository) Create(ctx context.Context, order *domain.Order) (int64, error) {
	if m.createFn != nil {
		return m.createFn(ctx, order)
	}
	return 1, nil
}

func (m *mockRepository) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, ports.ErrNotFound
}

func (m *mockRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Order, error) {
	if m.listByUserFn != nil {
		return m.listByUserFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockRepository) UpdateStatus(ctx context.Context, id int64, status domain.OrderStatus) error {
	if m.updateStatusFn != nil {
		return m.updateStatusFn(ctx, id, status)
	}
	return nil
}

func (m *mockRepository) UpdateTotal(ctx context.Context, id int64, total int64) error {
	if m.updateTotalFn != nil {
		return m.updateTotalFn(ctx, id, total)
	}
	return nil
}

func (m *mockRepository) FindPendingOlderThan(ctx context.Context, cutoff time.Time) ([]domain.Order, error) {
	if m.findPendingOlderThanFn != nil {
		return m.findPendingOlderThanFn(ctx, cutoff)
	}
	return nil, nil
}

func (m *mockRepository) ClaimExpiry(ctx context.Context, id int64) (bool, error) {
	if m.claimExpiryFn != nil {
		return m.claimExpiryFn(ctx, id)
	}
	return true, nil
}

func (m *mockRepository) ReleaseExpiry(ctx context.Context, id int64) error {
	if m.releaseExpiryFn != nil {
		return m.releaseExpiryFn(ctx, id)
	}
	return nil
}

type stockCall struct {
	productID int64
	quantity  int64
}

type mockInventory struct {
	productFn       func(ctx context.Context, productID int64) (*ports.ProductSnapshot, error)
	decreaseStockFn func(ctx context.Context, productID, quantity int64) error
	increaseStockFn func(ctx context.Context, productID, quantity int64) error

	decreases []stockCall
	increases []stockCall
}

func (m *mockInventory) Product(ctx context.Context, productID int64) (*ports.ProductSnapshot, error) {
	if m.productFn != nil {
		return m.productFn(ctx, productID)
	}
	return &ports.ProductSnapshot{ID: productID, Price: 100, Stock: 1000}, nil
}

func (m *mockInventory) DecreaseStock(ctx context.Context, productID, quantity int64) error {
	if m.decreaseStockFn != nil {
		if err := m.decreaseStockFn(ctx, productID, quantity); err != nil {
			return err
		}
	}
	m.decreases = append(m.decreases, stockCall{productID, quantity})
	return nil
}

func (m *mockInventory) IncreaseStock(ctx context.Context, productID, quantity int64) error {
	if m.increaseStockFn != nil {
		if err := m.increaseStockFn(ctx, productID, quantity); err != nil {
			return err
		}
	}
	m.increases = append(m.increases, stockCall{productID, quantity})
	return nil
}

type mockEventBus struct {
	createdFn  func(ctx context.Context, order *domain.Order) error
	canceledFn func(ctx context.Context, orderID int64) error
	expiredFn  func(ctx context.Context, orderID int64) error

	created  []int64
	canceled []int64
	expired  []int64
}

func (m *mockEventBus) PublishOrderCreated(ctx context.Context, order *domain.Order) error {
	if m.createdFn != nil {
		if err := m.createdFn(ctx, order); err != nil {
			return err
		}
	}
	m.created = append(m.created, order.ID)
	return nil
}

func (m *mockEventBus) PublishOrderCanceled(ctx context.Context, orderID int64) error {
	if m.canceledFn != nil {
		if err := m.canceledFn(ctx, orderID); err != nil {
			return err
		}
	}
	m.canceled = append(m.canceled, orderID)
	return nil
}

func (m *mockEventBus) PublishOrderExpired(ctx context.Context, orderID int64) error {
	if m.expiredFn != nil {
		if err := m.expiredFn(ctx, orderID); err != nil {
			return err
		}
	}
	m.expired = append(m.expired, orderID)
	return nil
}

type mockIdemStore struct {
	getFn  func(ctx context.Context, key string) (*ports.StoredResponse, error)
	saveFn func(ctx context.Context, key string, response ports.StoredResponse) error
}

func (m *mockIdemStore) Get(ctx context.Context, key string) (*ports.StoredResponse, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	return nil, nil
}

func (m *mockIdemStore) Save(ctx context.Context, key string, response ports.StoredResponse) error {
	if m.saveFn != nil {
		return m.saveFn(ctx, key, response)
	}
	return nil
}

func newTestService(t *testing.T, repo ports.OrderRepository, inventory ports.Inventory, events ports.EventBus) *app.Service {
	t.Helper()

	meter := sdkmetric.NewMeterProvider(sdkmetric.WithReader(sdkmetric.NewManualReader())).Meter("test")
	m, err := metrics.NewMetrics(meter)
	if err != nil {
		t.Fatalf("NewMetrics() failed: %v", err)
	}

	logger := slog.New(slog.DiscardHandler)
	return app.NewService(repo, inventory, events, &mockIdemStore{}, logger, m, 30*time.Minute)
}
