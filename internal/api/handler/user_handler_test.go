package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/99minutos/identity-api/internal/core/domain"
	"github.com/99minutos/identity-api/internal/core/ports"
)

func TestUserHandler_Create_Success(t *testing.T) {
	svc := &stubIdentityService{
		createUserFn: func(ctx context.Context, in ports.CreateUserInput) (*domain.User, error) {
			if in.Username != "alice" || in.Email != "alice@example.com" {
				t.Fatalf("unexpected input: %+v", in)
			}
			if len(in.RoleNames) != 1 || in.RoleNames[0] != domain.RoleUser {
				t.Fatalf("unexpected roles: %v", in.RoleNames)
			}
			return &domain.User{Username: in.Username, Email: in.Email, PasswordHash: "hash", Roles: in.RoleNames}, nil
		},
	}
	handler := NewUserHandler(svc)

	c, rec := newTestContext(http.MethodPost, "/api/users",
		`{"username":"alice","password":"secret1","email":"alice@example.com","roles":["ROLE_USER"]}`)
	if err := handler.Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "hash") {
		t.Fatalf("password hash leaked: %s", rec.Body.String())
	}
}

func TestUserHandler_Create_Validation(t *testing.T) {
	svc := &stubIdentityService{
		createUserFn: func(ctx context.Context, in ports.CreateUserInput) (*domain.User, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	handler := NewUserHandler(svc)

	cases := map[string]string{
		"bad email":      `{"username":"alice","password":"secret1","email":"nope"}`,
		"short password": `{"username":"alice","password":"123","email":"alice@example.com"}`,
		"no username":    `{"password":"secret1","email":"alice@example.com"}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			c, _ := newTestContext(http.MethodPost, "/api/users", body)
			if code := httpStatus(t, handler.Create(c)); code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", code)
			}
		})
	}
}

func TestUserHandler_Create_Duplicate(t *testing.T) {
	svc := &stubIdentityService{
		createUserFn: func(ctx context.Context, in ports.CreateUserInput) (*domain.User, error) {
			return nil, domain.ErrDuplicateUsername
		},
	}
	handler := NewUserHandler(svc)

	c, _ := newTestContext(http.MethodPost, "/api/users",
		`{"username":"alice","password":"secret1","email":"alice@example.com"}`)
	if err := handler.Create(c); !errors.Is(err, domain.ErrDuplicateUsername) {
		t.Fatalf("expected ErrDuplicateUsername, got %v", err)
	}
}

func TestUserHandler_Update_PartialFields(t *testing.T) {
	svc := &stubIdentityService{
		updateUserFn: func(ctx context.Context, username string, in ports.UpdateUserInput) (*domain.User, error) {
			if username != "alice" {
				t.Fatalf("unexpected username %q", username)
			}
			if in.Phone == nil || *in.Phone != "555" {
				t.Fatalf("phone not passed through: %+v", in)
			}
			if in.Email != nil || in.FirstName != nil {
				t.Fatalf("absent fields should stay nil: %+v", in)
			}
			return &domain.User{Username: username, Phone: *in.Phone}, nil
		},
	}
	handler := NewUserHandler(svc)

	c, rec := newTestContext(http.MethodPut, "/api/users/alice", `{"phone":"555"}`)
	c.SetParamNames("username")
	c.SetParamValues("alice")
	if err := handler.Update(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestUserHandler_Get_NotFound(t *testing.T) {
	svc := &stubIdentityService{
		getUserFn: func(ctx context.Context, username string) (*domain.User, error) {
			return nil, domain.ErrUserNotFound
		},
	}
	handler := NewUserHandler(svc)

	c, _ := newTestContext(http.MethodGet, "/api/users/ghost", "")
	c.SetParamNames("username")
	c.SetParamValues("ghost")
	if err := handler.Get(c); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
