// Package middleware provides the HTTP middleware shared by the API and screen routes.
package middleware

import (
	"context"
	"net/url"
	"strings"

	"socialnova/internal/auth"
	"socialnova/internal/models"

	"github.com/gofiber/fiber/v2"
)

// SessionCookie carries the access token for screen routes.
const SessionCookie = "sn_session"

// Locals keys populated by the auth middleware.
const (
	LocalUserID = "userID"
	LocalClaims = "claims"
	LocalToken  = "token"
)

// TokenVerifier validates raw access tokens.
type TokenVerifier interface {
	Verify(ctx context.Context, raw string) (*auth.Claims, error)
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(c *fiber.Ctx) (string, bool) {
	header := c.Get(fiber.HeaderAuthorization)
	if header == "" {
		return "", false
	}
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func authenticate(c *fiber.Ctx, v TokenVerifier, raw string) error {
	claims, err := v.Verify(c.UserContext(), raw)
	if err != nil {
		return err
	}
	uid, err := claims.UserID()
	if err != nil {
		return models.NewUnauthorizedError("Invalid user ID in token")
	}
	c.Locals(LocalUserID, uid)
	c.Locals(LocalClaims, claims)
	c.Locals(LocalToken, raw)
	c.SetUserContext(WithUserID(c.UserContext(), uid))
	return nil
}

func unauthorized(c *fiber.Ctx, msg string) error {
	return models.RespondWithError(c, fiber.StatusUnauthorized, models.NewUnauthorizedError(msg))
}

// AuthRequired enforces a valid bearer token on API routes.
func AuthRequired(v TokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Get(fiber.HeaderAuthorization) == "" {
			return unauthorized(c, "Authorization header required")
		}
		raw, ok := BearerToken(c)
		if !ok {
			return unauthorized(c, "Invalid authorization header format")
		}
		if err := authenticate(c, v, raw); err != nil {
			return unauthorized(c, "Invalid or expired token")
		}
		return c.Next()
	}
}

// OptionalAuth attaches the caller's identity when a valid token is present
// and lets anonymous requests through otherwise.
func OptionalAuth(v TokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw, ok := BearerToken(c)
		if !ok {
			raw = c.Cookies(SessionCookie)
		}
		if raw != "" {
			_ = authenticate(c, v, raw)
		}
		return c.Next()
	}
}

// WebSocketAuthRequired validates a token passed as ?token= or bearer header.
// Browsers cannot set headers on the WebSocket handshake.
func WebSocketAuthRequired(v TokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := c.Query("token")
		if raw == "" {
			var ok bool
			if raw, ok = BearerToken(c); !ok {
				return unauthorized(c, "Token required")
			}
		}
		if err := authenticate(c, v, raw); err != nil {
			return unauthorized(c, "Invalid or expired token")
		}
		return c.Next()
	}
}

// SessionRequired guards screen routes. Visitors without a valid session are
// redirected to the sign-in screen with the original path in ?next=.
func SessionRequired(v TokenVerifier, signInPath string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := c.Cookies(SessionCookie)
		if raw == "" {
			raw, _ = BearerToken(c)
		}
		if raw == "" || authenticate(c, v, raw) != nil {
			target := signInPath + "?next=" + url.QueryEscape(c.OriginalURL())
			return c.Redirect(target, fiber.StatusFound)
		}
		return c.Next()
	}
}

// UserID returns the authenticated user set by the auth middleware.
func UserID(c *fiber.Ctx) (uint, bool) {
	uid, ok := c.Locals(LocalUserID).(uint)
	return uid, ok && uid != 0
}
