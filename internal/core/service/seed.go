package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/99minutos/identity-api/internal/core/domain"
	"github.com/99minutos/identity-api/internal/core/ports"
)

// SeedOptions controls the default accounts created on an empty store.
type SeedOptions struct {
	CreateUsers   bool
	AdminPassword string
	AdminEmail    string
	UserPassword  string
	UserEmail     string
}

var defaultRoles = []struct{ name, description string }{
	{domain.RoleUser, "Standard user role"},
	{domain.RoleAdmin, "Administrator role"},
	{domain.RoleManager, "Manager role"},
}

// Seed creates the built-in roles when missing and, if the user collection is
// empty, an "admin" account holding every built-in role and a plain "user".
// It is safe to run on every start.
func Seed(ctx context.Context, svc ports.IdentityService, opts SeedOptions, log zerolog.Logger) error {
	for _, r := range defaultRoles {
		_, err := svc.CreateRole(ctx, r.name, r.description)
		switch {
		case err == nil:
			log.Info().Str("role", r.name).Msg("role created")
		case errors.Is(err, domain.ErrRoleExists):
		default:
			return fmt.Errorf("seed role %s: %w", r.name, err)
		}
	}

	if !opts.CreateUsers {
		return nil
	}
	users, err := svc.ListUsers(ctx)
	if err != nil {
		return fmt.Errorf("seed: list users: %w", err)
	}
	if len(users) > 0 {
		return nil
	}
	if opts.AdminPassword == "" || opts.UserPassword == "" {
		return fmt.Errorf("seed: default user passwords not configured: %w", domain.ErrInvalidInput)
	}

	defaults := []ports.CreateUserInput{
		{
			Username:  "admin",
			Password:  opts.AdminPassword,
			Email:     opts.AdminEmail,
			RoleNames: []string{domain.RoleUser, domain.RoleAdmin, domain.RoleManager},
		},
		{
			Username:  "user",
			Password:  opts.UserPassword,
			Email:     opts.UserEmail,
			RoleNames: []string{domain.RoleUser},
		},
	}
	for _, in := range defaults {
		if _, err := svc.CreateUser(ctx, in); err != nil {
			return fmt.Errorf("seed user %s: %w", in.Username, err)
		}
		log.Info().Str("username", in.Username).Msg("default user created")
	}
	return nil
}
