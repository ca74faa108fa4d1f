// Package policy decides whether the identity attached to a request may run a
// protected operation.
//
// Evaluation is synchronous and side-effect free:
//
//	no identity, policy is not AlwaysAllow  → domain.ErrUnauthenticated
//	identity present, condition unsatisfied → domain.ErrForbidden
//	otherwise                               → nil (allow)
//
// Role checks are exact string matches; no role implies another.
package policy

import "github.com/99minutos/identity-api/internal/core/domain"

// Params exposes request values a policy may compare against, typically path
// parameters.
type Params interface {
	Param(name string) string
}

// Policy is a single authorization expression.
type Policy interface {
	Evaluate(id *domain.Identity, params Params) error
	String() string
}

type alwaysAllow struct{}

// AlwaysAllow admits anonymous and authenticated callers alike.
func AlwaysAllow() Policy { return alwaysAllow{} }

func (alwaysAllow) Evaluate(*domain.Identity, Params) error { return nil }
func (alwaysAllow) String() string { return "permitAll" }

type authenticated struct{}

// Authenticated admits any caller with an identity.
func Authenticated() Policy { return authenticated{} }

func (authenticated) Evaluate(id *domain.Identity, _ Params) error {
	if id == nil {
		return domain.ErrUnauthenticated
	}
	return nil
}

func (authenticated) String() string { return "authenticated" }

type requireRole struct {
	role string
}

// RequireRole admits callers granted exactly role.
func RequireRole(role string) Policy { return requireRole{role: role} }

func (p requireRole) Evaluate(id *domain.Identity, _ Params) error {
	if id == nil {
		return domain.ErrUnauthenticated
	}
	if !id.HasAuthority(p.role) {
		return domain.ErrForbidden
	}
	return nil
}

func (p requireRole) String() string { return "hasRole(" + p.role + ")" }

type selfOrRole struct {
	param string
	role  string
}

// RequireSelfOrRole admits the caller whose subject equals the request
// parameter named param, or any caller granted role.
func RequireSelfOrRole(param, role string) Policy {
	return selfOrRole{param: param, role: role}
}

func (p selfOrRole) Evaluate(id *domain.Identity, params Params) error {
	if id == nil {
		return domain.ErrUnauthenticated
	}
	if id.HasAuthority(p.role) {
		return nil
	}
	if params != nil {
		if target := params.Param(p.param); target != "" && target == id.Subject() {
			return nil
		}
	}
	return domain.ErrForbidden
}

func (p selfOrRole) String() string { return "self(" + p.param + ")|hasRole(" + p.role + ")" }

// ParamMap is a Params backed by a map, handy outside HTTP.
type ParamMap map[string]string

func (m ParamMap) Param(name string) string { return m[name] }
