// Package memory is a thread-safe in-process credential store for tests and
// local development. Records are copied on the way in and out so callers never
// share state with the store.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/99minutos/identity-api/internal/core/domain"
	"github.com/99minutos/identity-api/internal/core/ports"
)

// Store holds users and roles behind one lock so uniqueness checks and writes
// are atomic with respect to each other.
type Store struct {
	mu    sync.RWMutex
	users map[string]*domain.User // by username
	roles map[string]*domain.Role // by role name
}

func NewStore() *Store {
	return &Store{
		users: make(map[string]*domain.User),
		roles: make(map[string]*domain.Role),
	}
}

// Users returns the store as a ports.UserRepository.
func (s *Store) Users() ports.UserRepository { return userRepo{s} }

// Roles returns the store as a ports.RoleRepository.
func (s *Store) Roles() ports.RoleRepository { return roleRepo{s} }

type userRepo struct{ s *Store }

func (r userRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[username]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return u.Clone(), nil
}

func (r userRepo) ExistsByUsername(_ context.Context, username string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	_, ok := r.s.users[username]
	return ok, nil
}

func (r userRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return r.s.emailTaken(email, ""), nil
}

func (r userRepo) List(_ context.Context) ([]*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return r.s.sortedUsers(func(*domain.User) bool { return true }), nil
}

func (r userRepo) ListByRole(_ context.Context, roleName string) ([]*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return r.s.sortedUsers(func(u *domain.User) bool { return u.HasRole(roleName) }), nil
}

func (r userRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.s.users[user.Username]; exists {
		return nil, domain.ErrDuplicateUsername
	}
	if r.s.emailTaken(user.Email, "") {
		return nil, domain.ErrDuplicateEmail
	}
	cp := user.Clone()
	if cp.ID == "" {
		cp.ID = uuid.NewString()
	}
	r.s.users[cp.Username] = cp
	return cp.Clone(), nil
}

func (r userRepo) Update(_ context.Context, user *domain.User) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	current, ok := r.s.users[user.Username]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	if r.s.emailTaken(user.Email, user.Username) {
		return nil, domain.ErrDuplicateEmail
	}
	cp := user.Clone()
	cp.ID = current.ID
	cp.CreatedAt = current.CreatedAt
	cp.Roles = current.Roles
	r.s.users[cp.Username] = cp
	return cp.Clone(), nil
}

func (r userRepo) AddRole(_ context.Context, username, roleName string) (*domain.User, bool, error) {
	return r.mutateRoles(username, func(u *domain.User) bool { return u.AddRole(roleName) })
}

func (r userRepo) RemoveRole(_ context.Context, username, roleName string) (*domain.User, bool, error) {
	return r.mutateRoles(username, func(u *domain.User) bool { return u.RemoveRole(roleName) })
}

func (r userRepo) mutateRoles(username string, apply func(*domain.User) bool) (*domain.User, bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[username]
	if !ok {
		return nil, false, domain.ErrUserNotFound
	}
	changed := apply(u)
	if changed {
		u.UpdatedAt = time.Now().UTC()
	}
	return u.Clone(), changed, nil
}

func (r userRepo) Delete(_ context.Context, username string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[username]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.s.users, username)
	return nil
}

func (r userRepo) RemoveRoleFromAll(_ context.Context, roleName string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		u.RemoveRole(roleName)
	}
	return nil
}

type roleRepo struct{ s *Store }

func (r roleRepo) FindByName(_ context.Context, name string) (*domain.Role, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	role, ok := r.s.roles[name]
	if !ok {
		return nil, domain.ErrRoleNotFound
	}
	cp := *role
	return &cp, nil
}

func (r roleRepo) FindByNames(_ context.Context, names []string) ([]*domain.Role, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	seen := make(map[string]struct{}, len(names))
	out := make([]*domain.Role, 0, len(names))
	for _, n := range names {
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		if role, ok := r.s.roles[n]; ok {
			cp := *role
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r roleRepo) ExistsByName(_ context.Context, name string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	_, ok := r.s.roles[name]
	return ok, nil
}

func (r roleRepo) List(_ context.Context) ([]*domain.Role, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*domain.Role, 0, len(r.s.roles))
	for _, role := range r.s.roles {
		cp := *role
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r roleRepo) Create(_ context.Context, role *domain.Role) (*domain.Role, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.s.roles[role.Name]; exists {
		return nil, domain.ErrRoleExists
	}
	cp := *role
	if cp.ID == "" {
		cp.ID = uuid.NewString()
	}
	r.s.roles[cp.Name] = &cp
	out := cp
	return &out, nil
}

func (r roleRepo) Update(_ context.Context, role *domain.Role) (*domain.Role, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	current, ok := r.s.roles[role.Name]
	if !ok {
		return nil, domain.ErrRoleNotFound
	}
	current.Description = role.Description
	out := *current
	return &out, nil
}

func (r roleRepo) Delete(_ context.Context, name string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.roles[name]; !ok {
		return domain.ErrRoleNotFound
	}
	delete(r.s.roles, name)
	return nil
}

// emailTaken reports whether email belongs to a user other than except.
// Callers hold the lock.
func (s *Store) emailTaken(email, except string) bool {
	if email == "" {
		return false
	}
	for _, u := range s.users {
		if u.Email == email && u.Username != except {
			return true
		}
	}
	return false
}

func (s *Store) sortedUsers(keep func(*domain.User) bool) []*domain.User {
	out := make([]*domain.User, 0, len(s.users))
	for _, u := range s.users {
		if keep(u) {
			out = append(out, u.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out
}
