package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/99minutos/identity-api/internal/core/domain"
)

func TestSeed_CreatesDefaultsOnEmptyStore(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	opts := SeedOptions{
		CreateUsers:   true,
		AdminPassword: "admin-pass",
		AdminEmail:    "admin@example.com",
		UserPassword:  "user-pass",
		UserEmail:     "user@example.com",
	}

	if err := Seed(ctx, f.svc, opts, zerolog.Nop()); err != nil {
		t.Fatalf("Seed: %v", err)
	}

	admin, err := f.svc.GetUser(ctx, "admin")
	if err != nil {
		t.Fatalf("admin not created: %v", err)
	}
	for _, r := range []string{domain.RoleUser, domain.RoleAdmin, domain.RoleManager} {
		if !admin.HasRole(r) {
			t.Fatalf("admin missing %s: %v", r, admin.Roles)
		}
	}
	user, err := f.svc.GetUser(ctx, "user")
	if err != nil {
		t.Fatalf("user not created: %v", err)
	}
	if user.HasRole(domain.RoleAdmin) {
		t.Fatalf("default user must not be admin")
	}

	// A second run leaves existing data alone.
	if err := Seed(ctx, f.svc, opts, zerolog.Nop()); err != nil {
		t.Fatalf("second Seed: %v", err)
	}
	users, _ := f.svc.ListUsers(ctx)
	if len(users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(users))
	}
}

func TestSeed_SkipsUsersWhenStoreNotEmpty(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.createUser(t, "alice")

	err := Seed(ctx, f.svc, SeedOptions{CreateUsers: true, AdminPassword: "a", UserPassword: "u"}, zerolog.Nop())
	if err != nil {
		t.Fatalf("Seed: %v", err)
	}
	if _, err := f.svc.GetUser(ctx, "admin"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("admin must not be seeded into a populated store, got %v", err)
	}
}

func TestSeed_RequiresPasswords(t *testing.T) {
	f := newFixture(t)

	err := Seed(context.Background(), f.svc, SeedOptions{CreateUsers: true}, zerolog.Nop())
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
