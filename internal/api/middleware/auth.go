package middleware

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/99minutos/identity-api/internal/core/domain"
	"github.com/99minutos/identity-api/internal/core/ports"
	"github.com/99minutos/identity-api/internal/metrics"
)

// DefaultAuthHeader carries the bearer token unless configured otherwise.
const DefaultAuthHeader = echo.HeaderAuthorization

// IdentityLoader resolves the current identity for a token subject.
type IdentityLoader interface {
	LoadIdentity(ctx context.Context, username string) (*domain.Identity, error)
}

// Auth is the authentication filter. It never rejects a request: a missing,
// invalid or expired token, or a subject that no longer exists, leaves the
// request anonymous and authorization decides later. On success the identity,
// with authorities read from the store at this moment, is attached to the
// request context and lives exactly as long as the request.
func Auth(tokens ports.TokenService, identities IdentityLoader, log zerolog.Logger, header string) echo.MiddlewareFunc {
	if header == "" {
		header = DefaultAuthHeader
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			ctx := req.Context()

			token, ok := bearerToken(req.Header.Get(header))
			if !ok {
				log.Debug().Str("path", req.URL.Path).Msg("no bearer token, continuing anonymous")
				return next(c)
			}

			subject, err := tokens.Verify(token)
			if err != nil {
				logVerifyFailure(log, req.URL.Path, err)
				return next(c)
			}

			if domain.IdentityFromContext(ctx) != nil {
				return next(c)
			}

			start := time.Now()
			id, err := identities.LoadIdentity(ctx, subject)
			metrics.IdentityResolutionDuration.Observe(time.Since(start).Seconds())
			if err != nil {
				metrics.TokenVerificationsTotal.WithLabelValues("unknown_subject").Inc()
				ev := log.Warn()
				if !errors.Is(err, domain.ErrUserNotFound) && !errors.Is(err, domain.ErrUserDisabled) {
					ev = log.Error().Err(err)
				}
				ev.Str("subject", subject).Msg("token subject could not be resolved, continuing anonymous")
				return next(c)
			}

			if !tokens.Validate(token, id.Subject()) {
				metrics.TokenVerificationsTotal.WithLabelValues("unknown_subject").Inc()
				log.Warn().Str("subject", subject).Msg("token does not match resolved identity")
				return next(c)
			}

			metrics.TokenVerificationsTotal.WithLabelValues("valid").Inc()
			log.Debug().Str("subject", id.Subject()).Msg("authenticated request")
			c.SetRequest(req.WithContext(domain.WithIdentity(ctx, id)))
			return next(c)
		}
	}
}

// bearerToken extracts the token from an "Authorization: Bearer <token>" value.
func bearerToken(value string) (string, bool) {
	if value == "" {
		return "", false
	}
	parts := strings.SplitN(value, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

// logVerifyFailure keeps the failure kinds apart in logs and metrics; the
// caller sees the same anonymous treatment for all of them.
func logVerifyFailure(log zerolog.Logger, path string, err error) {
	switch {
	case errors.Is(err, domain.ErrTokenExpired):
		metrics.TokenVerificationsTotal.WithLabelValues("expired").Inc()
		log.Info().Str("path", path).Msg("token expired, continuing anonymous")
	case errors.Is(err, domain.ErrTokenBadSignature):
		metrics.TokenVerificationsTotal.WithLabelValues("bad_signature").Inc()
		log.Warn().Str("path", path).Msg("token signature invalid, continuing anonymous")
	default:
		metrics.TokenVerificationsTotal.WithLabelValues("malformed").Inc()
		log.Warn().Str("path", path).Msg("token malformed, continuing anonymous")
	}
}
