package ports

import (
	"context"

	"github.com/99minutos/identity-api/internal/core/domain"
)

// AuthService exchanges credentials for a bearer token.
type AuthService interface {
	Login(ctx context.Context, username, password string) (string, *domain.User, error)
}

// LoginThrottle counts failed logins per username inside a time window.
type LoginThrottle interface {
	Blocked(ctx context.Context, username string) (bool, error)
	RecordFailure(ctx context.Context, username string) error
	Reset(ctx context.Context, username string) error
}
