package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	usersapp "github.com/donghass/my-commerce/internal/users/app"
	usersdomain "github.com/donghass/my-commerce/internal/users/domain"
	usersports "github.com/donghass/my-commerce/internal/users/ports"
)

// Session is the result of a successful login or refresh.
type Session struct {
	User         *usersdomain.User
	AccessToken  string
	RefreshToken string
}

// Service implements login, logout and token refresh on top of the user
// account service.
type Service struct {
	users  *usersapp.Service
	tokens *TokenProvider
	store  RefreshTokenStore
	logger *slog.Logger
}

// NewService wires required dependencies.
func NewService(users *usersapp.Service, tokens *TokenProvider, store RefreshTokenStore, logger *slog.Logger) *Service {
	return &Service{users: users, tokens: tokens, store: store, logger: logger}
}

// Login verifies credentials and issues a fresh token pair. The refresh
// token is stored server-side so it can be revoked.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.users.Authenticate(ctx, email, password)
	if err != nil {
		if errors.Is(err, usersports.ErrUserNotFound) {
			return nil, usersports.ErrInvalidCredentials
		}
		return nil, err
	}
	session, err := s.issue(ctx, user)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "user logged in", "user_id", user.ID)
	return session, nil
}

// Logout revokes the user's refresh token. Access tokens remain valid
// until they expire.
func (s *Service) Logout(ctx context.Context, userID int64) error {
	if err := s.store.Delete(ctx, userID); err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}
	s.logger.InfoContext(ctx, "user logged out", "user_id", userID)
	return nil
}

// Refresh exchanges a valid refresh token for a new token pair. The old
// refresh token is rotated out.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	claims, err := s.tokens.ParseRefreshToken(refreshToken)
	if err != nil {
		return nil, ErrInvalidToken
	}
	userID, err := claims.UserID()
	if err != nil {
		return nil, ErrInvalidToken
	}

	stored, err := s.store.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load refresh token: %w", err)
	}
	if stored == "" || stored != refreshToken {
		return nil, usersports.ErrInvalidCredentials
	}

	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.issue(ctx, user)
}

func (s *Service) issue(ctx context.Context, user *usersdomain.User) (*Session, error) {
	access, err := s.tokens.CreateAccessToken(user)
	if err != nil {
		return nil, err
	}
	refresh, err := s.tokens.CreateRefreshToken(user.ID)
	if err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, user.ID, refresh, s.tokens.RefreshTTL()); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}
	return &Session{User: user, AccessToken: access, RefreshToken: refresh}, nil
}
