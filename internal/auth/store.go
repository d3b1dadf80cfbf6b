package auth

import (
	"context"
	"time"
)

// RefreshTokenStore persists the active refresh token per user. A user has
// at most one valid refresh token at a time; issuing a new one replaces it.
type RefreshTokenStore interface {
	Save(ctx context.Context, userID int64, token string, ttl time.Duration) error
	Get(ctx context.Context, userID int64) (string, error)
	Delete(ctx context.Context, userID int64) error
}
