package domain

import "time"

// Built-in role names created by the seeder.
const (
	RoleUser    = "ROLE_USER"
	RoleAdmin   = "ROLE_ADMIN"
	RoleManager = "ROLE_MANAGER"
)

// Role is a named authority. Name never changes after creation.
type Role struct {
	ID          string    `json:"id"`
	Name        string    `json:"role_name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
