package memory

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	token     string
	expiresAt time.Time
}

// Store provides an in-memory refresh token store useful for local
// development and tests.
type Store struct {
	mu      sync.RWMutex
	entries map[int64]entry
}

// NewStore constructs a new in-memory refresh token store.
func NewStore() *Store {
	return &Store{entries: make(map[int64]entry)}
}

func (s *Store) Save(_ context.Context, userID int64, token string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[userID] = entry{token: token, expiresAt: time.Now().Add(ttl)}
	return nil
}

func (s *Store) Get(_ context.Context, userID int64) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[userID]
	if !ok || time.Now().After(e.expiresAt) {
		return "", nil
	}
	return e.token, nil
}

func (s *Store) Delete(_ context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, userID)
	return nil
}
