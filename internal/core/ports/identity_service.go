package ports

import (
	"context"

	"github.com/99minutos/identity-api/internal/core/domain"
)

// CreateUserInput carries everything needed to register a user.
type CreateUserInput struct {
	Username  string
	Password  string
	Email     string
	FirstName string
	LastName  string
	Phone     string
	// RoleNames that do not exist in the store are ignored.
	RoleNames []string
}

// UpdateUserInput holds optional profile changes; nil fields are left as is.
type UpdateUserInput struct {
	Email     *string
	FirstName *string
	LastName  *string
	Phone     *string
}

// IdentityService manages users and roles and resolves request identities.
type IdentityService interface {
	CreateUser(ctx context.Context, in CreateUserInput) (*domain.User, error)
	GetUser(ctx context.Context, username string) (*domain.User, error)
	ListUsers(ctx context.Context) ([]*domain.User, error)
	ListUsersByRole(ctx context.Context, roleName string) ([]*domain.User, error)
	UpdateUser(ctx context.Context, username string, in UpdateUserInput) (*domain.User, error)
	DeleteUser(ctx context.Context, username string) error
	ChangePassword(ctx context.Context, username, newPassword string) error

	AddRole(ctx context.Context, username, roleName string) (*domain.User, error)
	RemoveRole(ctx context.Context, username, roleName string) (*domain.User, error)
	AuthoritiesFor(ctx context.Context, username string) ([]string, error)
	LoadIdentity(ctx context.Context, username string) (*domain.Identity, error)

	CreateRole(ctx context.Context, name, description string) (*domain.Role, error)
	GetRole(ctx context.Context, name string) (*domain.Role, error)
	ListRoles(ctx context.Context) ([]*domain.Role, error)
	UpdateRole(ctx context.Context, name, description string) (*domain.Role, error)
	DeleteRole(ctx context.Context, name string) error
}
