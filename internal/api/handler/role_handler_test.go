package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/99minutos/identity-api/internal/core/domain"
)

func TestRoleHandler_AddToUser(t *testing.T) {
	svc := &stubIdentityService{
		addRoleFn: func(ctx context.Context, username, roleName string) (*domain.User, error) {
			if username != "alice" || roleName != domain.RoleAdmin {
				t.Fatalf("unexpected args: %s %s", username, roleName)
			}
			return &domain.User{Username: username, Roles: []string{domain.RoleUser, domain.RoleAdmin}}, nil
		},
	}
	handler := NewRoleHandler(svc)

	c, rec := newTestContext(http.MethodPost, "/api/roles/user/alice/add-role?roleName=ROLE_ADMIN", "")
	c.SetParamNames("username")
	c.SetParamValues("alice")
	if err := handler.AddToUser(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp domain.User
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if !resp.HasRole(domain.RoleAdmin) {
		t.Fatalf("expected ROLE_ADMIN in %v", resp.Roles)
	}
}

func TestRoleHandler_AddToUser_MissingRoleName(t *testing.T) {
	handler := NewRoleHandler(&stubIdentityService{})

	c, _ := newTestContext(http.MethodPost, "/api/roles/user/alice/add-role", "")
	c.SetParamNames("username")
	c.SetParamValues("alice")
	if code := httpStatus(t, handler.AddToUser(c)); code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", code)
	}
}

func TestRoleHandler_Create_RequiresRolePrefix(t *testing.T) {
	handler := NewRoleHandler(&stubIdentityService{})

	c, _ := newTestContext(http.MethodPost, "/api/roles", `{"role_name":"MANAGER"}`)
	if code := httpStatus(t, handler.Create(c)); code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", code)
	}
}

func TestRoleHandler_Delete(t *testing.T) {
	deleted := ""
	svc := &stubIdentityService{
		deleteRoleFn: func(ctx context.Context, name string) error {
			deleted = name
			return nil
		},
	}
	handler := NewRoleHandler(svc)

	c, rec := newTestContext(http.MethodDelete, "/api/roles/ROLE_MANAGER", "")
	c.SetParamNames("roleName")
	c.SetParamValues(domain.RoleManager)
	if err := handler.Delete(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK || deleted != domain.RoleManager {
		t.Fatalf("expected role deleted, got code=%d deleted=%q", rec.Code, deleted)
	}
}

func TestRoleHandler_Profile_UsesSubject(t *testing.T) {
	handler := NewRoleHandler(&stubIdentityService{})

	c, rec := newTestContext(http.MethodGet, "/api/roles/profile", "")
	withIdentity(c, domain.NewIdentity("alice", nil))
	if err := handler.Profile(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp messageResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Message != "access granted to alice" {
		t.Fatalf("unexpected message %q", resp.Message)
	}
}
