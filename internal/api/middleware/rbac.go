package middleware

import (
	"errors"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/identity-api/internal/core/domain"
	"github.com/99minutos/identity-api/internal/core/policy"
	"github.com/99minutos/identity-api/internal/metrics"
)

// Authorize guards a route with p. Path parameters are offered to the policy
// so self-or-role checks can compare against them. Denials are returned as
// domain.ErrUnauthenticated or domain.ErrForbidden for the error handler.
func Authorize(p policy.Policy) echo.MiddlewareFunc {
	name := p.String()
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := domain.IdentityFromContext(c.Request().Context())
			if err := p.Evaluate(id, c); err != nil {
				decision := "forbidden"
				if errors.Is(err, domain.ErrUnauthenticated) {
					decision = "unauthenticated"
				}
				metrics.AuthzDecisionsTotal.WithLabelValues(name, decision).Inc()
				return err
			}
			metrics.AuthzDecisionsTotal.WithLabelValues(name, "allow").Inc()
			return next(c)
		}
	}
}

// RequireRole is shorthand for Authorize(policy.RequireRole(role)).
func RequireRole(role string) echo.MiddlewareFunc {
	return Authorize(policy.RequireRole(role))
}
