package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/donghass/my-commerce/internal/users/domain"
	"github.com/donghass/my-commerce/internal/users/ports"
	"golang.org/x/crypto/bcrypt"
)

// Service bundles user account use cases: signup, credential checks,
// profile and password maintenance.
type Service struct {
	users  ports.UserRepository
	logger *slog.Logger
}

// NewService wires required dependencies.
func NewService(users ports.UserRepository, logger *slog.Logger) *Service {
	return &Service{users: users, logger: logger}
}

// SignupInput captures payload for registering a user.
type SignupInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
}

// Signup registers a new account, rejecting duplicate emails.
func (s *Service) Signup(ctx context.Context, input SignupInput) (*domain.User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))

	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if exists {
		return nil, ports.ErrDuplicateEmail
	}

	hash, err := hashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Email:        email,
		PasswordHash: hash,
		Name:         strings.TrimSpace(input.Name),
		Phone:        strings.TrimSpace(input.Phone),
		Role:         domain.RoleUser,
	}
	if err := user.Validate(); err != nil {
		return nil, err
	}

	id, err := s.users.Create(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("persist user: %w", err)
	}
	user.ID = id

	s.logger.InfoContext(ctx, "user registered", "user_id", id)
	return user, nil
}

// Authenticate returns the user when email and password match.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ports.ErrInvalidCredentials
	}
	return user, nil
}

// GetUser retrieves a user by id.
func (s *Service) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	return s.users.GetByID(ctx, id)
}

// UpdateProfile changes the user's name and phone.
func (s *Service) UpdateProfile(ctx context.Context, id int64, name, phone string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("name is required")
	}
	return s.users.UpdateProfile(ctx, id, strings.TrimSpace(name), strings.TrimSpace(phone))
}

// ChangePassword replaces the password after verifying the old one.
func (s *Service) ChangePassword(ctx context.Context, id int64, oldPassword, newPassword string) error {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(oldPassword)) != nil {
		return ports.ErrInvalidCredentials
	}

	hash, err := hashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.users.UpdatePassword(ctx, id, hash)
}

func hashPassword(password string) (string, error) {
	if len(password) < 8 {
		return "", fmt.Errorf("password must be at least 8 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}
