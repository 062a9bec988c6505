package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/hapl/fieldsales/internal/core/domain"
)

type stubAuthenticator struct {
	identities map[string]*domain.Identity
	calls      int
}

func (s *stubAuthenticator) Authenticate(_ context.Context, token string) (*domain.Identity, error) {
	s.calls++
	id, ok := s.identities[token]
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	return id, nil
}

func newAuthenticator() *stubAuthenticator {
	return &stubAuthenticator{identities: map[string]*domain.Identity{
		"good": {ID: "u1", Email: "asha@hapl.in", CurrentRole: "Sales"},
	}}
}

func runIdentity(t *testing.T, auth Authenticator, header string) *domain.Identity {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	var got *domain.Identity
	handler := Identity(auth)(func(c echo.Context) error {
		called = true
		got = IdentityFrom(c)
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
	return got
}

func TestIdentity_ValidToken(t *testing.T) {
	id := runIdentity(t, newAuthenticator(), "Bearer good")
	if id == nil || id.Email != "asha@hapl.in" {
		t.Fatalf("identity not set: %+v", id)
	}
}

func TestIdentity_NeverRejects(t *testing.T) {
	auth := newAuthenticator()
	for _, header := range []string{"", "Token good", "Bearer", "Bearer   ", "Bearer bad"} {
		if id := runIdentity(t, auth, header); id != nil {
			t.Fatalf("%q: expected anonymous caller, got %+v", header, id)
		}
	}
	if auth.calls != 1 {
		t.Fatalf("only well-formed bearer headers should reach the authenticator, got %d calls", auth.calls)
	}
}

func TestRequireIdentity(t *testing.T) {
	e := echo.New()
	next := func(c echo.Context) error { return c.NoContent(http.StatusOK) }

	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	if err := RequireIdentity()(next)(c); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for anonymous caller, got %v", err)
	}

	c.Set(identityKey, &domain.Identity{ID: "u1", Email: "asha@hapl.in"})
	if err := RequireIdentity()(next)(c); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("identity without a role must be rejected, got %v", err)
	}

	rec := httptest.NewRecorder()
	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	c.Set(identityKey, &domain.Identity{ID: "u1", Email: "asha@hapl.in", CurrentRole: "Sales"})
	if err := RequireIdentity()(next)(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
