// Package auth issues, validates and revokes access tokens.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"socialnova/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	Issuer   = "socialnova-api"
	Audience = "socialnova-client"

	blacklistPrefix = "blacklist:"
)

// Claims are the JWT claims carried by an access token.
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// UserID parses the subject claim.
func (c *Claims) UserID() (uint, error) {
	id, err := strconv.ParseUint(c.Subject, 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid subject %q", c.Subject)
	}
	return uint(id), nil
}

// ExpiresAtTime returns the expiry or the zero time.
func (c *Claims) ExpiresAtTime() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}

// TokenManager signs HS256 tokens and tracks revoked token IDs. Revocations
// go to Redis when available so every instance sees them, and are always
// kept in process as well.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	rdb    *redis.Client
	now    func() time.Time

	mu      sync.Mutex
	revoked map[string]time.Time
}

// NewTokenManager creates a manager. rdb may be nil.
func NewTokenManager(secret string, ttl time.Duration, rdb *redis.Client) *TokenManager {
	return &TokenManager{
		secret:  []byte(secret),
		ttl:     ttl,
		rdb:     rdb,
		now:     time.Now,
		revoked: make(map[string]time.Time),
	}
}

// WithClock overrides the time source.
func (m *TokenManager) WithClock(now func() time.Time) *TokenManager {
	m.now = now
	return m
}

// TTL is the lifetime of issued tokens.
func (m *TokenManager) TTL() time.Duration {
	return m.ttl
}

// Issue signs a new token for the user.
func (m *TokenManager) Issue(userID uint, username string) (string, *Claims, error) {
	if len(m.secret) == 0 {
		return "", nil, errors.New("JWT secret not configured")
	}

	now := m.now()
	claims := &Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			Issuer:    Issuer,
			Audience:  jwt.ClaimStrings{Audience},
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ID:        generateJTI(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", nil, err
	}
	return signed, claims, nil
}

// generateJTI creates a unique JWT ID to prevent replay attacks
func generateJTI(now time.Time) string {
	return fmt.Sprintf("%d-%s", now.Unix(), uuid.New().String()[:8])
}

// Parse checks signature, method, issuer, audience and time claims.
func (m *TokenManager) Parse(raw string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithAudience(Audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !token.Valid {
		return nil, &models.AppError{Code: models.CodeUnauthorized, Message: "Invalid or expired token", Err: err}
	}
	if _, err := claims.UserID(); err != nil {
		return nil, &models.AppError{Code: models.CodeUnauthorized, Message: "Invalid token subject", Err: err}
	}
	return claims, nil
}

// Verify parses the token and rejects revoked ones.
func (m *TokenManager) Verify(ctx context.Context, raw string) (*Claims, error) {
	claims, err := m.Parse(raw)
	if err != nil {
		return nil, err
	}
	if claims.ID != "" && m.IsRevoked(ctx, claims.ID) {
		return nil, models.NewUnauthorizedError("Token has been revoked")
	}
	return claims, nil
}

// Revoke blacklists the token until it would have expired anyway.
func (m *TokenManager) Revoke(ctx context.Context, claims *Claims) error {
	if claims == nil || claims.ID == "" {
		return nil
	}
	exp := claims.ExpiresAtTime()
	remaining := exp.Sub(m.now())
	if remaining <= 0 {
		return nil
	}

	m.mu.Lock()
	m.revoked[claims.ID] = exp
	m.mu.Unlock()

	if m.rdb == nil {
		return nil
	}
	if err := m.rdb.Set(ctx, blacklistPrefix+claims.ID, "1", remaining).Err(); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// IsRevoked reports whether jti has been revoked. Redis failures count as
// not revoked; the local record still applies.
func (m *TokenManager) IsRevoked(ctx context.Context, jti string) bool {
	now := m.now()

	m.mu.Lock()
	exp, ok := m.revoked[jti]
	if ok && !now.Before(exp) {
		delete(m.revoked, jti)
		ok = false
	}
	m.mu.Unlock()
	if ok {
		return true
	}

	if m.rdb == nil {
		return false
	}
	n, err := m.rdb.Exists(ctx, blacklistPrefix+jti).Result()
	return err == nil && n > 0
}
