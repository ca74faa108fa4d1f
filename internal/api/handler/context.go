package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/99minutos/identity-api/internal/core/domain"
)

// currentIdentity returns the identity attached by the Auth middleware, or
// domain.ErrUnauthenticated for anonymous requests. Routes are already guarded
// by a policy; this is the fast-fail for handlers that need the subject.
func currentIdentity(c echo.Context) (*domain.Identity, error) {
	id := domain.IdentityFromContext(c.Request().Context())
	if id == nil {
		return nil, domain.ErrUnauthenticated
	}
	return id, nil
}
