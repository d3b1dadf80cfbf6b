package memory

import (
	"context"
	"sync"
	"time"

	"github.com/donghass/my-commerce/internal/users/domain"
	"github.com/donghass/my-commerce/internal/users/ports"
)

// Repository provides an in-memory user store useful for local development and tests.
type Repository struct {
	mu      sync.RWMutex
	nextID  int64
	users   map[int64]domain.User
	byEmail map[string]int64
}

// NewRepository constructs a new in-memory user repository.
func NewRepository() *Repository {
	return &Repository{
		nextID:  1,
		users:   make(map[int64]domain.User),
		byEmail: make(map[string]int64),
	}
}

func (r *Repository) Create(_ context.Context, user *domain.User) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byEmail[user.Email]; taken {
		return 0, ports.ErrDuplicateEmail
	}

	id := r.nextID
	r.nextID++

	stored := *user
	stored.ID = id
	stored.CreatedAt = time.Now().UTC()
	stored.UpdatedAt = stored.CreatedAt
	r.users[id] = stored
	r.byEmail[stored.Email] = id
	return id, nil
}

func (r *Repository) GetByID(_ context.Context, id int64) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, ports.ErrUserNotFound
	}
	clone := user
	return &clone, nil
}

func (r *Repository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return nil, ports.ErrUserNotFound
	}
	user := r.users[id]
	return &user, nil
}

func (r *Repository) ExistsByEmail(_ context.Context, email string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byEmail[email]
	return ok, nil
}

func (r *Repository) UpdateProfile(_ context.Context, id int64, name, phone string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return ports.ErrUserNotFound
	}
	user.Name = name
	user.Phone = phone
	user.UpdatedAt = time.Now().UTC()
	r.users[id] = user
	return nil
}

func (r *Repository) UpdatePassword(_ context.Context, id int64, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return ports.ErrUserNotFound
	}
	user.PasswordHash = passwordHash
	user.UpdatedAt = time.Now().UTC()
	r.users[id] = user
	return nil
}
