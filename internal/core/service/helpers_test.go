package service

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/99minutos/identity-api/internal/core/domain"
	"github.com/99minutos/identity-api/internal/core/ports"
	"github.com/99minutos/identity-api/internal/infrastructure/db/memory"
)

// plainHasher stores passwords with a visible prefix; bcrypt is covered by the
// crypto package and only slows these tests down.
type plainHasher struct{}

func (plainHasher) Hash(raw string) (string, error) { return "plain:" + raw, nil }

func (plainHasher) Verify(raw, hash string) bool { return hash == "plain:"+raw }

type recordingSink struct {
	mu     sync.Mutex
	events []domain.AuditEvent
}

func (s *recordingSink) Record(e domain.AuditEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
}

func (s *recordingSink) types() []domain.AuditEventType {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.AuditEventType, 0, len(s.events))
	for _, e := range s.events {
		out = append(out, e.Type)
	}
	return out
}

type fixture struct {
	store *memory.Store
	sink  *recordingSink
	svc   ports.IdentityService
}

// newFixture returns an identity service over an empty in-memory store with
// the three built-in roles.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	sink := &recordingSink{}
	svc := NewIdentityService(store.Users(), store.Roles(), plainHasher{}, sink, zerolog.Nop())
	if err := Seed(context.Background(), svc, SeedOptions{}, zerolog.Nop()); err != nil {
		t.Fatalf("seed roles: %v", err)
	}
	return &fixture{store: store, sink: sink, svc: svc}
}

func (f *fixture) createUser(t *testing.T, username string, roles ...string) *domain.User {
	t.Helper()
	u, err := f.svc.CreateUser(context.Background(), ports.CreateUserInput{
		Username:  username,
		Password:  username + "-pass",
		Email:     strings.ToLower(username) + "@example.com",
		RoleNames: roles,
	})
	if err != nil {
		t.Fatalf("create %s: %v", username, err)
	}
	return u
}
