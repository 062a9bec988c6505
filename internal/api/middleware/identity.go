package middleware

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/hapl/fieldsales/internal/core/domain"
)

const identityKey = "identity"

// Authenticator resolves a bearer token to the caller's identity.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*domain.Identity, error)
}

// Identity resolves the bearer token, when one is present and valid, and stores
// the caller's identity in the context. It never rejects a request.
func Identity(auth Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			scheme, token, ok := strings.Cut(authHeader, " ")
			if !ok || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(token) == "" {
				return next(c)
			}

			id, err := auth.Authenticate(c.Request().Context(), strings.TrimSpace(token))
			if err == nil {
				c.Set(identityKey, id)
			}
			return next(c)
		}
	}
}

// RequireIdentity rejects callers without an authenticated identity.
func RequireIdentity() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !IdentityFrom(c).Authenticated() {
				return domain.ErrUnauthorized
			}
			return next(c)
		}
	}
}

// IdentityFrom returns the identity stored by Identity, or nil for anonymous callers.
func IdentityFrom(c echo.Context) *domain.Identity {
	id, _ := c.Get(identityKey).(*domain.Identity)
	return id
}
