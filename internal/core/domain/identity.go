package domain

import (
	"context"
	"slices"
)

// Identity is the authenticated caller of a single request: the token subject
// plus the authorities resolved for it when the request arrived.
type Identity struct {
	subject     string
	authorities []string
}

// NewIdentity builds an Identity. The authorities slice is copied.
func NewIdentity(subject string, authorities []string) *Identity {
	auths := slices.Clone(authorities)
	if auths == nil {
		auths = []string{}
	}
	return &Identity{subject: subject, authorities: auths}
}

func (id *Identity) Subject() string { return id.subject }

// Authorities returns a copy of the granted authority names.
func (id *Identity) Authorities() []string { return slices.Clone(id.authorities) }

// HasAuthority is an exact string match; roles do not imply each other.
func (id *Identity) HasAuthority(name string) bool {
	return slices.Contains(id.authorities, name)
}

type identityKey struct{}

// WithIdentity returns a copy of ctx carrying id. A nil id marks the request
// anonymous.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFromContext returns the identity attached to ctx, or nil.
func IdentityFromContext(ctx context.Context) *Identity {
	id, _ := ctx.Value(identityKey{}).(*Identity)
	return id
}
