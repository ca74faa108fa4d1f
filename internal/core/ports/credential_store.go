package ports

import (
	"context"

	"github.com/99minutos/identity-api/internal/core/domain"
)

// UserRepository is the user half of the credential store. Implementations
// enforce username and email uniqueness and report violations as
// domain.ErrDuplicateUsername / domain.ErrDuplicateEmail.
type UserRepository interface {
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	List(ctx context.Context) ([]*domain.User, error)
	// ListByRole returns every user assigned roleName.
	ListByRole(ctx context.Context, roleName string) ([]*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	// Update writes the profile, password and enabled fields of the record
	// matched by username. Roles are left as stored.
	Update(ctx context.Context, user *domain.User) (*domain.User, error)
	// AddRole grants roleName in place. changed is false when the user
	// already held it.
	AddRole(ctx context.Context, username, roleName string) (user *domain.User, changed bool, err error)
	// RemoveRole revokes roleName in place. changed is false when the user
	// did not hold it.
	RemoveRole(ctx context.Context, username, roleName string) (user *domain.User, changed bool, err error)
	Delete(ctx context.Context, username string) error
	// RemoveRoleFromAll strips roleName from every user that holds it.
	RemoveRoleFromAll(ctx context.Context, roleName string) error
}

// RoleRepository is the role half of the credential store.
type RoleRepository interface {
	FindByName(ctx context.Context, name string) (*domain.Role, error)
	// FindByNames returns the roles that exist among names; unknown names are
	// skipped.
	FindByNames(ctx context.Context, names []string) ([]*domain.Role, error)
	ExistsByName(ctx context.Context, name string) (bool, error)
	List(ctx context.Context) ([]*domain.Role, error)
	Create(ctx context.Context, role *domain.Role) (*domain.Role, error)
	Update(ctx context.Context, role *domain.Role) (*domain.Role, error)
	Delete(ctx context.Context, name string) error
}
