package middleware

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"

	"mangareader/pkg/errors"
)

// TokenVerifier resolves an ID token to the uid it was issued for.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (string, error)
}

type AuthMiddleware struct {
	verifier TokenVerifier
}

func NewAuthMiddleware(verifier TokenVerifier) *AuthMiddleware {
	return &AuthMiddleware{
		verifier: verifier,
	}
}

func bearerToken(c echo.Context) (string, error) {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		return "", errors.Unauthorized("Authorization header is required", nil)
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", errors.Unauthorized("Invalid authorization format", nil)
	}
	return parts[1], nil
}

// Authenticate rejects requests without a valid bearer token and stores the
// caller's uid under "uid".
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		idToken, err := bearerToken(c)
		if err != nil {
			return err
		}

		uid, err := m.verifier.VerifyToken(c.Request().Context(), idToken)
		if err != nil {
			return errors.Unauthorized("Invalid or expired token", err)
		}

		c.Set("uid", uid)
		return next(c)
	}
}

// Optional sets "uid" when a valid token is present and lets anonymous
// requests through. A bad token is treated as anonymous.
func (m *AuthMiddleware) Optional(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		idToken, err := bearerToken(c)
		if err != nil {
			return next(c)
		}

		if uid, err := m.verifier.VerifyToken(c.Request().Context(), idToken); err == nil {
			c.Set("uid", uid)
		}
		return next(c)
	}
}

func (m *AuthMiddleware) GetUIDFromToken(ctx context.Context, token string) (string, error) {
	uid, err := m.verifier.VerifyToken(ctx, token)
	if err != nil {
		return "", errors.Unauthorized("Invalid or expired token", err)
	}
	return uid, nil
}

// UID returns the authenticated caller, or "" for anonymous requests.
func UID(c echo.Context) string {
	uid, _ := c.Get("uid").(string)
	return uid
}
