package handler

import (
	"time"

	"github.com/99minutos/identity-api/internal/core/domain"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// --- Auth ---

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token     string `json:"token"`
	TokenType string `json:"token_type"`
	ExpiresIn int64  `json:"expires_in"`
	Username  string `json:"username"`
}

type meResponse struct {
	Username    string       `json:"username"`
	Authorities []string     `json:"authorities"`
	User        *domain.User `json:"user"`
}

// --- Users ---

type createUserRequest struct {
	Username  string   `json:"username"   validate:"required,min=3,max=50"`
	Password  string   `json:"password"   validate:"required,min=6"`
	Email     string   `json:"email"      validate:"required,email"`
	FirstName string   `json:"first_name"`
	LastName  string   `json:"last_name"`
	Phone     string   `json:"phone"`
	Roles     []string `json:"roles"`
}

type updateUserRequest struct {
	Email     *string `json:"email"      validate:"omitempty,email"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Phone     *string `json:"phone"`
}

type changePasswordRequest struct {
	NewPassword string `json:"new_password" validate:"required,min=6"`
}

// --- Roles ---

type createRoleRequest struct {
	Name        string `json:"role_name"   validate:"required,startswith=ROLE_"`
	Description string `json:"description"`
}

type updateRoleRequest struct {
	Description string `json:"description" validate:"required"`
}

type roleResponse struct {
	Name        string    `json:"role_name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

func toRoleResponse(r *domain.Role) roleResponse {
	return roleResponse{Name: r.Name, Description: r.Description, CreatedAt: r.CreatedAt}
}

func toRoleResponses(roles []*domain.Role) []roleResponse {
	out := make([]roleResponse, 0, len(roles))
	for _, r := range roles {
		out = append(out, toRoleResponse(r))
	}
	return out
}

// nonNilUsers keeps empty lists encoding as [] instead of null.
func nonNilUsers(users []*domain.User) []*domain.User {
	if users == nil {
		return []*domain.User{}
	}
	return users
}
