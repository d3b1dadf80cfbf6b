package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/donghass/my-commerce/internal/auth"
	idemmemory "github.com/donghass/my-commerce/internal/idempotency/memory"
	"github.com/donghass/my-commerce/internal/kafka"
	ordershttp "github.com/donghass/my-commerce/internal/orders/adapters/http"
	ordersmemory "github.com/donghass/my-commerce/internal/orders/adapters/memory"
	"github.com/donghass/my-commerce/internal/orders/app"
	"github.com/donghass/my-commerce/internal/orders/domain"
	"github.com/donghass/my-commerce/internal/orders/metrics"
	productsmemory "github.com/donghass/my-commerce/internal/products/adapters/memory"
	productsapp "github.com/donghass/my-commerce/internal/products/app"
	usersdomain "github.com/donghass/my-commerce/internal/users/domain"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// testServer wires the order handlers onto in-memory adapters behind the
// real auth middleware, the way cmd/api assembles them.
type testServer struct {
	handler http.Handler
	tokens  *auth.TokenProvider
	repo    *ordersmemory.Repository
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	logger := slog.New(slog.DiscardHandler)

	catalog := productsapp.NewService(
		productsmemory.NewProductRepository(),
		productsmemory.NewCategoryRepository(),
		logger,
	)
	ctx := context.Background()
	category, err := catalog.CreateCategory(ctx, "books")
	if err != nil {
		t.Fatalf("CreateCategory() failed: %v", err)
	}
	if _, err := catalog.CreateProduct(ctx, productsapp.CreateProductInput{
		Name:       "paperback",
		Price:      250,
		Stock:      10,
		CategoryID: category.ID,
	}); err != nil {
		t.Fatalf("CreateProduct() failed: %v", err)
	}

	meter := sdkmetric.NewMeterProvider(sdkmetric.WithReader(sdkmetric.NewManualReader())).Meter("test")
	m, err := metrics.NewMetrics(meter)
	if err != nil {
		t.Fatalf("NewMetrics() failed: %v", err)
	}

	repo := ordersmemory.NewRepository()
	service := app.NewService(repo, catalog, kafka.NewNoopEventBus(), idemmemory.NewStore(), logger, m, 5*time.Minute)

	mux := http.NewServeMux()
	ordershttp.NewHandler(service).Register(mux)

	tokens := auth.NewTokenProvider("test-secret", time.Hour, time.Hour)
	return &testServer{
		handler: auth.Middleware(tokens)(mux),
		tokens:  tokens,
		repo:    repo,
	}
}

func (s *testServer) bearerFor(t *testing.T, userID int64, role usersdomain.Role) string {
	t.Helper()

	token, err := s.tokens.CreateAccessToken(&usersdomain.User{
		ID:    userID,
		Email: fmt.Sprintf("user%d@example.com", userID),
		Role:  role,
	})
	if err != nil {
		t.Fatalf("CreateAccessToken() failed: %v", err)
	}
	return "Bearer " + token
}

func (s *testServer) do(t *testing.T, method, path, bearer, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Authorization", bearer)
	for key, value := range headers {
		req.Header.Set(key, value)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) placeOrder(t *testing.T, bearer, idemKey string) *httptest.ResponseRecorder {
	t.Helper()
	return s.do(t, http.MethodPost, "/v1/orders", bearer,
		`{"items":[{"product_id":1,"quantity":2}]}`,
		map[string]string{"Idempotency-Key": idemKey})
}

func orderIDFromResponse(t *testing.T, rec *httptest.ResponseRecorder) int64 {
	t.Helper()

	var payload struct {
		Order struct {
			ID int64 `json:"id"`
		} `json:"order"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decoding response failed: %v", err)
	}
	if payload.Order.ID == 0 {
		t.Fatalf("expected an order id in response, got: %s", rec.Body.String())
	}
	return payload.Order.ID
}

func TestPlaceOrderIdempotentReplay(t *testing.T) {
	srv := newTestServer(t)
	bearer := srv.bearerFor(t, 7, usersdomain.RoleUser)

	first := srv.placeOrder(t, bearer, "reorder-1")
	if first.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", first.Code, first.Body.String())
	}

	second := srv.placeOrder(t, bearer, "reorder-1")
	if second.Code != http.StatusCreated {
		t.Fatalf("expected 201 on replay, got %d: %s", second.Code, second.Body.String())
	}
	if !bytes.Equal(first.Body.Bytes(), second.Body.Bytes()) {
		t.Errorf("expected the original body on replay\nfirst:  %s\nsecond: %s",
			first.Body.String(), second.Body.String())
	}

	orders, err := srv.repo.ListByUser(context.Background(), 7)
	if err != nil {
		t.Fatalf("ListByUser() failed: %v", err)
	}
	if len(orders) != 1 {
		t.Fatalf("expected a single order after replay, got %d", len(orders))
	}

	// A fresh key goes through placement again.
	third := srv.placeOrder(t, bearer, "reorder-2")
	if third.Code != http.StatusCreated {
		t.Fatalf("expected 201 for new key, got %d: %s", third.Code, third.Body.String())
	}
	orders, err = srv.repo.ListByUser(context.Background(), 7)
	if err != nil {
		t.Fatalf("ListByUser() failed: %v", err)
	}
	if len(orders) != 2 {
		t.Errorf("expected two orders after a second key, got %d", len(orders))
	}
}

func TestOrderOwnership(t *testing.T) {
	srv := newTestServer(t)
	owner := srv.bearerFor(t, 7, usersdomain.RoleUser)
	intruder := srv.bearerFor(t, 8, usersdomain.RoleUser)
	admin := srv.bearerFor(t, 99, usersdomain.RoleAdmin)

	created := srv.placeOrder(t, owner, "owned-1")
	if created.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", created.Code, created.Body.String())
	}
	orderID := orderIDFromResponse(t, created)
	orderPath := fmt.Sprintf("/v1/orders/%d", orderID)

	t.Run("owner reads own order", func(t *testing.T) {
		rec := srv.do(t, http.MethodGet, orderPath, owner, "", nil)
		if rec.Code != http.StatusOK {
			t.Errorf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("foreign order reads as not found", func(t *testing.T) {
		rec := srv.do(t, http.MethodGet, orderPath, intruder, "", nil)
		if rec.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("foreign status update is rejected", func(t *testing.T) {
		rec := srv.do(t, http.MethodPatch, orderPath+"/status", intruder, `{"status":"CONFIRMED"}`, nil)
		if rec.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d: %s", rec.Code, rec.Body.String())
		}

		order, err := srv.repo.GetByID(context.Background(), orderID)
		if err != nil {
			t.Fatalf("GetByID() failed: %v", err)
		}
		if order.Status != domain.StatusPending {
			t.Errorf("expected order to stay PENDING, got %s", order.Status)
		}
	})

	t.Run("foreign coupon is rejected", func(t *testing.T) {
		rec := srv.do(t, http.MethodPost, orderPath+"/coupon", intruder, `{"discount":100}`, nil)
		if rec.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d: %s", rec.Code, rec.Body.String())
		}

		order, err := srv.repo.GetByID(context.Background(), orderID)
		if err != nil {
			t.Fatalf("GetByID() failed: %v", err)
		}
		if order.TotalAmount != 500 {
			t.Errorf("expected total to stay 500, got %d", order.TotalAmount)
		}
	})

	t.Run("admin reads any order", func(t *testing.T) {
		rec := srv.do(t, http.MethodGet, orderPath, admin, "", nil)
		if rec.Code != http.StatusOK {
			t.Errorf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("admin updates any order", func(t *testing.T) {
		rec := srv.do(t, http.MethodPatch, orderPath+"/status", admin, `{"status":"CONFIRMED"}`, nil)
		if rec.Code != http.StatusOK {
			t.Errorf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
	})
}
