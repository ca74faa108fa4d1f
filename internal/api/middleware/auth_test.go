package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/99minutos/identity-api/internal/core/domain"
	"github.com/99minutos/identity-api/internal/core/service"
)

type stubLoader struct {
	roles map[string][]string
	calls int
}

func (s *stubLoader) LoadIdentity(_ context.Context, username string) (*domain.Identity, error) {
	s.calls++
	roles, ok := s.roles[username]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return domain.NewIdentity(username, roles), nil
}

func newTokens(t *testing.T, secret string, opts ...service.TokenOption) *service.TokenService {
	t.Helper()
	ts, err := service.NewTokenService(secret, time.Hour, opts...)
	if err != nil {
		t.Fatalf("token service: %v", err)
	}
	return ts
}

// runAuth sends a request with the given Authorization value through Auth and
// returns the identity seen by the next handler.
func runAuth(t *testing.T, tokens *service.TokenService, loader IdentityLoader, authz string) *domain.Identity {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	var seen *domain.Identity
	handler := Auth(tokens, loader, zerolog.Nop(), "")(func(c echo.Context) error {
		called = true
		seen = domain.IdentityFromContext(c.Request().Context())
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	return seen
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	tokens := newTokens(t, "secret")
	loader := &stubLoader{roles: map[string][]string{"alice": {domain.RoleAdmin}}}
	signed, err := tokens.Issue("alice")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	id := runAuth(t, tokens, loader, "Bearer "+signed)
	if id == nil {
		t.Fatalf("identity not attached")
	}
	if id.Subject() != "alice" {
		t.Fatalf("unexpected subject %q", id.Subject())
	}
	if !id.HasAuthority(domain.RoleAdmin) {
		t.Fatalf("authorities not resolved: %v", id.Authorities())
	}
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	loader := &stubLoader{}
	if id := runAuth(t, newTokens(t, "secret"), loader, ""); id != nil {
		t.Fatalf("expected anonymous request")
	}
	if loader.calls != 0 {
		t.Fatalf("store should not be consulted without a token")
	}
}

func TestAuthMiddleware_InvalidHeaderFormat(t *testing.T) {
	if id := runAuth(t, newTokens(t, "secret"), &stubLoader{}, "Token abc"); id != nil {
		t.Fatalf("expected anonymous request")
	}
	if id := runAuth(t, newTokens(t, "secret"), &stubLoader{}, "Bearer "); id != nil {
		t.Fatalf("expected anonymous request for empty bearer")
	}
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	if id := runAuth(t, newTokens(t, "secret"), &stubLoader{}, "Bearer not-a-token"); id != nil {
		t.Fatalf("expected anonymous request")
	}
}

func TestAuthMiddleware_ForeignSignature(t *testing.T) {
	other := newTokens(t, "other-secret")
	signed, _ := other.Issue("alice")
	loader := &stubLoader{roles: map[string][]string{"alice": {domain.RoleAdmin}}}

	if id := runAuth(t, newTokens(t, "secret"), loader, "Bearer "+signed); id != nil {
		t.Fatalf("token signed with another key must not authenticate")
	}
}

func TestAuthMiddleware_ExpiredToken(t *testing.T) {
	past := time.Now().Add(-2 * time.Hour)
	issuer := newTokens(t, "secret", service.WithClock(func() time.Time { return past }))
	signed, _ := issuer.Issue("alice")
	loader := &stubLoader{roles: map[string][]string{"alice": {domain.RoleUser}}}

	if id := runAuth(t, newTokens(t, "secret"), loader, "Bearer "+signed); id != nil {
		t.Fatalf("expired token must not authenticate")
	}
	if loader.calls != 0 {
		t.Fatalf("store should not be consulted for an expired token")
	}
}

func TestAuthMiddleware_UnknownSubject(t *testing.T) {
	tokens := newTokens(t, "secret")
	signed, _ := tokens.Issue("ghost")

	if id := runAuth(t, tokens, &stubLoader{roles: map[string][]string{}}, "Bearer "+signed); id != nil {
		t.Fatalf("deleted account must resolve to anonymous")
	}
}

func TestAuthMiddleware_RevocationVisibleOnNextRequest(t *testing.T) {
	tokens := newTokens(t, "secret")
	loader := &stubLoader{roles: map[string][]string{"alice": {domain.RoleUser, domain.RoleAdmin}}}
	signed, _ := tokens.Issue("alice")

	first := runAuth(t, tokens, loader, "Bearer "+signed)
	if !first.HasAuthority(domain.RoleAdmin) {
		t.Fatalf("expected admin before revocation")
	}

	loader.roles["alice"] = []string{domain.RoleUser}

	second := runAuth(t, tokens, loader, "Bearer "+signed)
	if second.HasAuthority(domain.RoleAdmin) {
		t.Fatalf("revoked role still granted with the same token")
	}
	if !second.HasAuthority(domain.RoleUser) {
		t.Fatalf("remaining role missing")
	}
}

func TestAuthMiddleware_KeepsExistingIdentity(t *testing.T) {
	tokens := newTokens(t, "secret")
	loader := &stubLoader{roles: map[string][]string{"alice": {domain.RoleUser}}}
	signed, _ := tokens.Issue("alice")

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	existing := domain.NewIdentity("bob", []string{domain.RoleAdmin})
	req = req.WithContext(domain.WithIdentity(req.Context(), existing))
	c := e.NewContext(req, httptest.NewRecorder())

	handler := Auth(tokens, loader, zerolog.Nop(), "")(func(c echo.Context) error {
		if got := domain.IdentityFromContext(c.Request().Context()); got != existing {
			t.Fatalf("existing identity replaced")
		}
		return nil
	})
	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if loader.calls != 0 {
		t.Fatalf("store should not be consulted when an identity is present")
	}
}

func TestAuthMiddleware_CustomHeader(t *testing.T) {
	tokens := newTokens(t, "secret")
	loader := &stubLoader{roles: map[string][]string{"alice": {}}}
	signed, _ := tokens.Issue("alice")

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Auth-Token", "Bearer "+signed)
	c := e.NewContext(req, httptest.NewRecorder())

	var seen *domain.Identity
	handler := Auth(tokens, loader, zerolog.Nop(), "X-Auth-Token")(func(c echo.Context) error {
		seen = domain.IdentityFromContext(c.Request().Context())
		return nil
	})
	_ = handler(c)
	if seen == nil || seen.Subject() != "alice" {
		t.Fatalf("custom header not honoured")
	}
	if len(seen.Authorities()) != 0 {
		t.Fatalf("expected no authorities, got %v", seen.Authorities())
	}
}
