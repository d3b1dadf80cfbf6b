package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/donghass/my-commerce/internal/auth"
	authredis "github.com/donghass/my-commerce/internal/auth/adapters/redis"
	"github.com/donghass/my-commerce/internal/cache"
	cartshttp "github.com/donghass/my-commerce/internal/carts/adapters/http"
	cartspostgres "github.com/donghass/my-commerce/internal/carts/adapters/postgres"
	cartsapp "github.com/donghass/my-commerce/internal/carts/app"
	"github.com/donghass/my-commerce/internal/config"
	"github.com/donghass/my-commerce/internal/database"
	idempostgres "github.com/donghass/my-commerce/internal/idempotency/postgres"
	"github.com/donghass/my-commerce/internal/kafka"
	ordershttp "github.com/donghass/my-commerce/internal/orders/adapters/http"
	orderspostgres "github.com/donghass/my-commerce/internal/orders/adapters/postgres"
	ordersapp "github.com/donghass/my-commerce/internal/orders/app"
	ordersmetrics "github.com/donghass/my-commerce/internal/orders/metrics"
	"github.com/donghass/my-commerce/internal/orders/ports"
	productshttp "github.com/donghass/my-commerce/internal/products/adapters/http"
	productspostgres "github.com/donghass/my-commerce/internal/products/adapters/postgres"
	productsapp "github.com/donghass/my-commerce/internal/products/app"
	"github.com/donghass/my-commerce/internal/telemetry"
	usershttp "github.com/donghass/my-commerce/internal/users/adapters/http"
	userspostgres "github.com/donghass/my-commerce/internal/users/adapters/postgres"
	usersapp "github.com/donghass/my-commerce/internal/users/app"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := telemetry.NewLogger(telemetry.ParseLevel(cfg.Telemetry.LogLevel))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tel, err := telemetry.Initialize(ctx, telemetry.Config{
		ServiceName:    cfg.Service.Name,
		ServiceVersion: cfg.Service.Version,
		Environment:    cfg.Service.Environment,
		OTLPEndpoint:   cfg.Telemetry.OTelEndpoint,
		EnableTracing:  cfg.Telemetry.EnableTracing && cfg.Telemetry.OTelEndpoint != "",
		EnableMetrics:  cfg.Telemetry.EnableMetrics && cfg.Telemetry.OTelEndpoint != "",
		SampleRate:     cfg.Telemetry.SampleRate,
	})
	if err != nil {
		logger.Error("failed to initialize telemetry", "error", err)
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tel.Shutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown failed", "error", err)
		}
	}()

	pool, err := database.NewPool(ctx, cfg.Database.URL)
	if err != nil {
		logger.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if cfg.Database.AutoMigrate {
		logger.Info("running database migrations", "path", cfg.Database.MigrationsPath)
		if err := database.RunMigrations(cfg.Database.URL, cfg.Database.MigrationsPath); err != nil {
			logger.Error("failed to run migrations", "error", err)
			os.Exit(1)
		}
	}

	redisClient, err := cache.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		logger.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	meter := otel.Meter(cfg.Service.Name)

	orderMetrics, err := ordersmetrics.NewMetrics(meter)
	if err != nil {
		logger.Error("failed to create order metrics", "error", err)
		os.Exit(1)
	}
	httpMetrics, err := ordershttp.NewMetrics(meter)
	if err != nil {
		logger.Error("failed to create http metrics", "error", err)
		os.Exit(1)
	}

	var eventBus ports.EventBus
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaMetrics, err := kafka.NewMetrics(meter)
		if err != nil {
			logger.Error("failed to create kafka metrics", "error", err)
			os.Exit(1)
		}
		bus := kafka.NewBus(cfg.Kafka.Brokers, cfg.Kafka.OrdersTopic, logger, kafkaMetrics)
		defer bus.Close()
		eventBus = bus
	} else {
		logger.Info("no kafka brokers configured, events disabled")
		eventBus = kafka.NewNoopEventBus()
	}

	productsService := productsapp.NewService(
		productspostgres.NewProductRepository(pool),
		productspostgres.NewCategoryRepository(pool),
		logger,
	)
	usersService := usersapp.NewService(userspostgres.NewRepository(pool), logger)
	cartsService := cartsapp.NewService(cartspostgres.NewRepository(pool), productsService, logger)
	ordersService := ordersapp.NewService(
		orderspostgres.NewRepository(pool),
		productsService,
		eventBus,
		idempostgres.NewStore(pool),
		logger,
		orderMetrics,
		cfg.Orders.PendingTTL,
	)

	tokens := auth.NewTokenProvider(cfg.Auth.JWTSecret, cfg.Auth.AccessTTL, cfg.Auth.RefreshTTL)
	authService := auth.NewService(usersService, tokens, authredis.NewStore(redisClient), logger)

	usersHandler := usershttp.NewHandler(usersService, authService)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if err := database.CheckHealth(r.Context(), pool); err != nil {
			respondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready", "error": err.Error()})
			return
		}
		if err := redisClient.Ping(r.Context()).Err(); err != nil {
			respondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready", "error": err.Error()})
			return
		}
		respondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	})
	mux.HandleFunc(cfg.HTTP.MetricsPath, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("# metrics are exported via OTLP\n"))
	})

	usersHandler.RegisterPublic(mux)
	productshttp.NewHandler(productsService).Register(mux)

	protected := http.NewServeMux()
	usersHandler.RegisterProtected(protected)
	cartshttp.NewHandler(cartsService).Register(protected)
	ordershttp.NewHandler(ordersService).Register(protected)

	requireAuth := auth.Middleware(tokens)(protected)
	for _, route := range []string{
		"/v1/auth/logout", "/v1/users/me", "/v1/users/me/password",
		"/v1/cart", "/v1/cart/", "/v1/orders", "/v1/orders/",
	} {
		mux.Handle(route, requireAuth)
	}

	handler := withRecovery(withLogging(
		ordershttp.WithMetrics(auth.OptionalMiddleware(tokens)(mux), httpMetrics),
	))

	expiryRunner := ordersapp.NewExpiryRunner(ordersService, cfg.Orders.ExpiryInterval, logger)
	go expiryRunner.Run(ctx)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("http server starting", "port", cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownGrace)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	} else {
		logger.Info("http server stopped")
	}
}

func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rw, r)
		slog.Info("http request", "method", r.Method, "path", r.URL.Path, "status", rw.status, "duration", time.Since(start))
	})
}

func withRecovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				slog.Error("panic recovered", "error", rec)
				respondJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
			}
		}()
		next.ServeHTTP(w, r)
	})
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (w *responseWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
