package auth_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/donghass/my-commerce/internal/auth"
	authmemory "github.com/donghass/my-commerce/internal/auth/adapters/memory"
	usersmemory "github.com/donghass/my-commerce/internal/users/adapters/memory"
	usersapp "github.com/donghass/my-commerce/internal/users/app"
	usersports "github.com/donghass/my-commerce/internal/users/ports"
)

func newTestService(t *testing.T) (*auth.Service, *authmemory.Store) {
	t.Helper()

	logger := slog.New(slog.DiscardHandler)
	users := usersapp.NewService(usersmemory.NewRepository(), logger)
	if _, err := users.Signup(context.Background(), usersapp.SignupInput{
		Email:    "shopper@example.com",
		Password: "correct horse",
		Name:     "Test User",
	}); err != nil {
		t.Fatalf("Signup failed: %v", err)
	}

	store := authmemory.NewStore()
	tokens := auth.NewTokenProvider("test-secret", time.Minute, time.Hour)
	return auth.NewService(users, tokens, store, logger), store
}

func TestLogin(t *testing.T) {
	t.Run("issues tokens and stores the refresh token", func(t *testing.T) {
		service, store := newTestService(t)
		ctx := context.Background()

		session, err := service.Login(ctx, "shopper@example.com", "correct horse")
		if err != nil {
			t.Fatalf("Login failed: %v", err)
		}
		if session.AccessToken == "" || session.RefreshToken == "" {
			t.Fatal("expected both tokens to be issued")
		}

		stored, err := store.Get(ctx, session.User.ID)
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if stored != session.RefreshToken {
			t.Error("expected refresh token to be stored server-side")
		}
	})

	t.Run("maps unknown email to invalid credentials", func(t *testing.T) {
		service, _ := newTestService(t)

		_, err := service.Login(context.Background(), "nobody@example.com", "correct horse")
		if !errors.Is(err, usersports.ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got: %v", err)
		}
	})

	t.Run("rejects wrong password", func(t *testing.T) {
		service, _ := newTestService(t)

		_, err := service.Login(context.Background(), "shopper@example.com", "wrong pass")
		if !errors.Is(err, usersports.ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got: %v", err)
		}
	})
}

func TestRefresh(t *testing.T) {
	t.Run("rotates the refresh token", func(t *testing.T) {
		service, store := newTestService(t)
		ctx := context.Background()

		session, err := service.Login(ctx, "shopper@example.com", "correct horse")
		if err != nil {
			t.Fatalf("Login failed: %v", err)
		}

		renewed, err := service.Refresh(ctx, session.RefreshToken)
		if err != nil {
			t.Fatalf("Refresh failed: %v", err)
		}
		if renewed.AccessToken == "" || renewed.RefreshToken == "" {
			t.Fatal("expected a fresh token pair")
		}

		stored, err := store.Get(ctx, session.User.ID)
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if stored != renewed.RefreshToken {
			t.Error("expected the rotated token to replace the stored one")
		}
	})

	t.Run("rejects a token that is no longer stored", func(t *testing.T) {
		service, _ := newTestService(t)
		ctx := context.Background()

		session, err := service.Login(ctx, "shopper@example.com", "correct horse")
		if err != nil {
			t.Fatalf("Login failed: %v", err)
		}
		if err := service.Logout(ctx, session.User.ID); err != nil {
			t.Fatalf("Logout failed: %v", err)
		}

		if _, err := service.Refresh(ctx, session.RefreshToken); !errors.Is(err, usersports.ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials after logout, got: %v", err)
		}
	})

	t.Run("rejects garbage input", func(t *testing.T) {
		service, _ := newTestService(t)

		if _, err := service.Refresh(context.Background(), "not-a-jwt"); !errors.Is(err, auth.ErrInvalidToken) {
			t.Fatalf("expected ErrInvalidToken, got: %v", err)
		}
	})
}
