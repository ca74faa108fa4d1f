package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/99minutos/identity-api/internal/core/domain"
	"github.com/99minutos/identity-api/internal/core/ports"
	"github.com/99minutos/identity-api/internal/metrics"
)

// dummyHash is compared against when the username is unknown so that a miss
// costs roughly the same as a wrong password.
const dummyHash = "$2a$10$7EqJtq98hPqEX7fNZaFWoOhi5BWX4Z6UPqQ5PpHNl5bPPvJ9jE5bS"

// AuthService implements login.
type AuthService struct {
	users    ports.UserRepository
	hasher   ports.PasswordHasher
	tokens   ports.TokenService
	throttle ports.LoginThrottle
	audit    ports.AuditSink
	log      zerolog.Logger
}

// NewAuthService wires the login flow. throttle and audit may be nil.
func NewAuthService(
	users ports.UserRepository,
	hasher ports.PasswordHasher,
	tokens ports.TokenService,
	throttle ports.LoginThrottle,
	audit ports.AuditSink,
	log zerolog.Logger,
) *AuthService {
	if audit == nil {
		audit = nopAuditSink{}
	}
	return &AuthService{
		users:    users,
		hasher:   hasher,
		tokens:   tokens,
		throttle: throttle,
		audit:    audit,
		log:      log,
	}
}

// Login verifies credentials and returns a signed token. Every credential
// mismatch yields domain.ErrInvalidCredentials so callers cannot tell a wrong
// username from a wrong password.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, *domain.User, error) {
	if username == "" || password == "" {
		return "", nil, domain.ErrInvalidCredentials
	}

	if s.throttle != nil {
		blocked, err := s.throttle.Blocked(ctx, username)
		if err != nil {
			s.log.Warn().Err(err).Str("username", username).Msg("login throttle check failed, continuing")
		} else if blocked {
			metrics.LoginsTotal.WithLabelValues("throttled").Inc()
			return "", nil, domain.ErrTooManyAttempts
		}
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			return "", nil, fmt.Errorf("login: %w", err)
		}
		s.hasher.Verify(password, dummyHash)
		return "", nil, s.fail(ctx, username, "unknown user")
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return "", nil, s.fail(ctx, username, "bad password")
	}
	if !user.Enabled {
		return "", nil, s.fail(ctx, username, "account disabled")
	}

	token, err := s.tokens.Issue(user.Username)
	if err != nil {
		return "", nil, fmt.Errorf("login: %w", err)
	}

	if s.throttle != nil {
		if err := s.throttle.Reset(ctx, username); err != nil {
			s.log.Warn().Err(err).Str("username", username).Msg("failed to reset login throttle")
		}
	}
	metrics.LoginsTotal.WithLabelValues("success").Inc()
	s.audit.Record(newAuditEvent(ctx, domain.AuditLoginSucceeded, user.Username, ""))
	s.log.Info().Str("username", user.Username).Msg("login succeeded")

	return token, user, nil
}

// fail records the real reason internally and returns the generic error.
func (s *AuthService) fail(ctx context.Context, username, reason string) error {
	if s.throttle != nil {
		if err := s.throttle.RecordFailure(ctx, username); err != nil {
			s.log.Warn().Err(err).Str("username", username).Msg("failed to record login failure")
		}
	}
	metrics.LoginsTotal.WithLabelValues("failure").Inc()
	s.audit.Record(newAuditEvent(ctx, domain.AuditLoginFailed, username, reason))
	s.log.Info().Str("username", username).Str("reason", reason).Msg("login failed")
	return domain.ErrInvalidCredentials
}
