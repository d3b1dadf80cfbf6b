package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/donghass/my-commerce/internal/users/domain"
	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned when a token fails parsing or verification.
var ErrInvalidToken = errors.New("invalid token")

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

// Claims carried by both access and refresh tokens. Refresh tokens omit
// email and role.
type Claims struct {
	Email     string `json:"email,omitempty"`
	Role      string `json:"role,omitempty"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// UserID parses the subject claim.
func (c *Claims) UserID() (int64, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}
	return id, nil
}

// TokenProvider issues and verifies signed JWTs.
type TokenProvider struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewTokenProvider builds a provider signing with HMAC-SHA256.
func NewTokenProvider(secret string, accessTTL, refreshTTL time.Duration) *TokenProvider {
	return &TokenProvider{secret: []byte(secret), accessTTL: accessTTL, refreshTTL: refreshTTL}
}

// CreateAccessToken issues a short-lived token carrying identity claims.
func (p *TokenProvider) CreateAccessToken(user *domain.User) (string, error) {
	return p.sign(Claims{
		Email:     user.Email,
		Role:      string(user.Role),
		TokenType: tokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(user.ID, 10),
			IssuedAt:  jwt.NewNumericDate(time.Now().UTC()),
			ExpiresAt: jwt.NewNumericDate(time.Now().UTC().Add(p.accessTTL)),
		},
	})
}

// CreateRefreshToken issues a long-lived token carrying only the user id.
func (p *TokenProvider) CreateRefreshToken(userID int64) (string, error) {
	return p.sign(Claims{
		TokenType: tokenTypeRefresh,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(time.Now().UTC()),
			ExpiresAt: jwt.NewNumericDate(time.Now().UTC().Add(p.refreshTTL)),
		},
	})
}

func (p *TokenProvider) sign(claims Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(p.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ParseAccessToken verifies an access token and returns its claims.
func (p *TokenProvider) ParseAccessToken(raw string) (*Claims, error) {
	return p.parse(raw, tokenTypeAccess)
}

// ParseRefreshToken verifies a refresh token and returns its claims.
func (p *TokenProvider) ParseRefreshToken(raw string) (*Claims, error) {
	return p.parse(raw, tokenTypeRefresh)
}

func (p *TokenProvider) parse(raw, wantType string) (*Claims, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return p.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.TokenType != wantType {
		return nil, ErrInvalidToken
	}
	return &claims, nil
}

// RefreshTTL exposes the refresh token lifetime for cache expiry.
func (p *TokenProvider) RefreshTTL() time.Duration {
	return p.refreshTTL
}
