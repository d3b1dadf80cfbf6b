package ports

import (
	"context"
	"errors"

	"github.com/donghass/my-commerce/internal/users/domain"
)

var (
	// ErrUserNotFound is returned when the requested user does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrDuplicateEmail is returned when signup reuses an existing email.
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrInvalidCredentials is returned when a password or token check fails.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// UserRepository exposes persistence operations for user accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	UpdateProfile(ctx context.Context, id int64, name, phone string) error
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
}
