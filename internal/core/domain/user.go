package domain

import (
	"slices"
	"time"
)

// User models an account held in the credential store. Roles holds role names
// only; role records live in their own collection.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FirstName    string    `json:"first_name,omitempty"`
	LastName     string    `json:"last_name,omitempty"`
	Phone        string    `json:"phone,omitempty"`
	Enabled      bool      `json:"enabled"`
	Roles        []string  `json:"roles"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// HasRole reports whether the user is assigned the named role.
func (u *User) HasRole(name string) bool {
	return slices.Contains(u.Roles, name)
}

// AddRole assigns name to the user. Returns false when it was already assigned.
func (u *User) AddRole(name string) bool {
	if u.HasRole(name) {
		return false
	}
	u.Roles = append(u.Roles, name)
	return true
}

// RemoveRole unassigns name. Returns false when it was not assigned.
func (u *User) RemoveRole(name string) bool {
	i := slices.Index(u.Roles, name)
	if i < 0 {
		return false
	}
	u.Roles = slices.Delete(u.Roles, i, i+1)
	return true
}

// Clone returns a deep copy safe to hand out of a store.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	c.Roles = slices.Clone(u.Roles)
	return &c
}
