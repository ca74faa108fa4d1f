package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/identity-api/internal/core/domain"
	"github.com/99minutos/identity-api/internal/core/ports"
)

type identityService struct {
	users  ports.UserRepository
	roles  ports.RoleRepository
	hasher ports.PasswordHasher
	audit  ports.AuditSink
	log    zerolog.Logger
}

// NewIdentityService returns an IdentityService implementation. audit may be nil.
func NewIdentityService(
	users ports.UserRepository,
	roles ports.RoleRepository,
	hasher ports.PasswordHasher,
	audit ports.AuditSink,
	log zerolog.Logger,
) ports.IdentityService {
	if audit == nil {
		audit = nopAuditSink{}
	}
	return &identityService{
		users:  users,
		roles:  roles,
		hasher: hasher,
		audit:  audit,
		log:    log,
	}
}

// ── Users ─────────────────────────────────────────────────────────────────────

// CreateUser checks both uniqueness constraints before hashing so a rejected
// request writes nothing. Role names missing from the store are dropped.
func (s *identityService) CreateUser(ctx context.Context, in ports.CreateUserInput) (*domain.User, error) {
	if strings.TrimSpace(in.Username) == "" || in.Password == "" || strings.TrimSpace(in.Email) == "" {
		return nil, fmt.Errorf("create user: %w", domain.ErrInvalidInput)
	}

	exists, err := s.users.ExistsByUsername(ctx, in.Username)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	if exists {
		return nil, domain.ErrDuplicateUsername
	}
	exists, err = s.users.ExistsByEmail(ctx, in.Email)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	if exists {
		return nil, domain.ErrDuplicateEmail
	}

	var roleNames []string
	if len(in.RoleNames) > 0 {
		found, err := s.roles.FindByNames(ctx, in.RoleNames)
		if err != nil {
			return nil, fmt.Errorf("create user: resolve roles: %w", err)
		}
		for _, r := range found {
			roleNames = append(roleNames, r.Name)
		}
		if len(found) < len(dedupe(in.RoleNames)) {
			s.log.Warn().
				Str("username", in.Username).
				Strs("requested", in.RoleNames).
				Strs("resolved", roleNames).
				Msg("unknown role names ignored")
		}
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("create user: hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Phone:        in.Phone,
		Enabled:      true,
		Roles:        roleNames,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if user.Roles == nil {
		user.Roles = []string{}
	}

	created, err := s.users.Create(ctx, user)
	if err != nil {
		return nil, err
	}

	s.record(ctx, domain.AuditUserCreated, created.Username, strings.Join(created.Roles, ","))
	return created, nil
}

func (s *identityService) GetUser(ctx context.Context, username string) (*domain.User, error) {
	return s.users.FindByUsername(ctx, username)
}

func (s *identityService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	return s.users.List(ctx)
}

func (s *identityService) ListUsersByRole(ctx context.Context, roleName string) ([]*domain.User, error) {
	return s.users.ListByRole(ctx, roleName)
}

func (s *identityService) UpdateUser(ctx context.Context, username string, in ports.UpdateUserInput) (*domain.User, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	if in.Email != nil && *in.Email != user.Email {
		taken, err := s.users.ExistsByEmail(ctx, *in.Email)
		if err != nil {
			return nil, fmt.Errorf("update user: %w", err)
		}
		if taken {
			return nil, domain.ErrDuplicateEmail
		}
		user.Email = *in.Email
	}
	if in.FirstName != nil {
		user.FirstName = *in.FirstName
	}
	if in.LastName != nil {
		user.LastName = *in.LastName
	}
	if in.Phone != nil {
		user.Phone = *in.Phone
	}
	user.UpdatedAt = time.Now().UTC()

	updated, err := s.users.Update(ctx, user)
	if err != nil {
		return nil, err
	}
	s.record(ctx, domain.AuditUserUpdated, username, "")
	return updated, nil
}

// DeleteUser removes the record and with it every role reference.
func (s *identityService) DeleteUser(ctx context.Context, username string) error {
	if err := s.users.Delete(ctx, username); err != nil {
		return err
	}
	s.record(ctx, domain.AuditUserDeleted, username, "")
	return nil
}

// ChangePassword replaces the hash. The caller has already been authorized,
// so the old password is not checked here.
func (s *identityService) ChangePassword(ctx context.Context, username, newPassword string) error {
	if newPassword == "" {
		return fmt.Errorf("change password: %w", domain.ErrInvalidInput)
	}
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return err
	}
	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("change password: hash: %w", err)
	}
	user.PasswordHash = hash
	user.UpdatedAt = time.Now().UTC()
	if _, err := s.users.Update(ctx, user); err != nil {
		return err
	}
	s.record(ctx, domain.AuditPasswordChanged, username, "")
	return nil
}

// ── Role assignment ──────────────────────────────────────────────────────────

func (s *identityService) AddRole(ctx context.Context, username, roleName string) (*domain.User, error) {
	role, err := s.roles.FindByName(ctx, roleName)
	if err != nil {
		return nil, err
	}
	user, changed, err := s.users.AddRole(ctx, username, role.Name)
	if err != nil {
		return nil, err
	}
	if changed {
		s.record(ctx, domain.AuditRoleGranted, username, role.Name)
	}
	return user, nil
}

func (s *identityService) RemoveRole(ctx context.Context, username, roleName string) (*domain.User, error) {
	role, err := s.roles.FindByName(ctx, roleName)
	if err != nil {
		return nil, err
	}
	user, changed, err := s.users.RemoveRole(ctx, username, role.Name)
	if err != nil {
		return nil, err
	}
	if changed {
		s.record(ctx, domain.AuditRoleRevoked, username, role.Name)
	}
	return user, nil
}

// AuthoritiesFor returns the user's role names, never nil.
func (s *identityService) AuthoritiesFor(ctx context.Context, username string) ([]string, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	auths := make([]string, 0, len(user.Roles))
	auths = append(auths, user.Roles...)
	return auths, nil
}

// LoadIdentity reads the user once and builds the request identity from its
// current roles. Disabled accounts yield domain.ErrUserDisabled.
func (s *identityService) LoadIdentity(ctx context.Context, username string) (*domain.Identity, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if !user.Enabled {
		return nil, domain.ErrUserDisabled
	}
	return domain.NewIdentity(user.Username, user.Roles), nil
}

// ── Roles ─────────────────────────────────────────────────────────────────────

func (s *identityService) CreateRole(ctx context.Context, name, description string) (*domain.Role, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("create role: %w", domain.ErrInvalidInput)
	}
	exists, err := s.roles.ExistsByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("create role: %w", err)
	}
	if exists {
		return nil, domain.ErrRoleExists
	}

	created, err := s.roles.Create(ctx, &domain.Role{
		Name:        name,
		Description: description,
		CreatedAt:   time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}
	s.record(ctx, domain.AuditRoleCreated, name, "")
	return created, nil
}

func (s *identityService) GetRole(ctx context.Context, name string) (*domain.Role, error) {
	return s.roles.FindByName(ctx, name)
}

func (s *identityService) ListRoles(ctx context.Context) ([]*domain.Role, error) {
	return s.roles.List(ctx)
}

// UpdateRole changes the description only; names are immutable.
func (s *identityService) UpdateRole(ctx context.Context, name, description string) (*domain.Role, error) {
	role, err := s.roles.FindByName(ctx, name)
	if err != nil {
		return nil, err
	}
	role.Description = description
	updated, err := s.roles.Update(ctx, role)
	if err != nil {
		return nil, err
	}
	s.record(ctx, domain.AuditRoleUpdated, name, "")
	return updated, nil
}

// DeleteRole removes the role and every user's reference to it.
func (s *identityService) DeleteRole(ctx context.Context, name string) error {
	if _, err := s.roles.FindByName(ctx, name); err != nil {
		return err
	}
	if err := s.users.RemoveRoleFromAll(ctx, name); err != nil {
		return fmt.Errorf("delete role: detach users: %w", err)
	}
	if err := s.roles.Delete(ctx, name); err != nil {
		return err
	}
	s.record(ctx, domain.AuditRoleDeleted, name, "")
	return nil
}

func (s *identityService) record(ctx context.Context, typ domain.AuditEventType, subject, detail string) {
	s.audit.Record(newAuditEvent(ctx, typ, subject, detail))
}

func dedupe(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
