package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/vetri-dj/ops-api/internal/core/access"
	"github.com/vetri-dj/ops-api/internal/core/domain"
)

func runRequire(t *testing.T, endpoint access.Endpoint, p *domain.Principal) (bool, error) {
	t.Helper()
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	if p != nil {
		c.Set(PrincipalKey, p)
	}

	called := false
	handler := Require(access.DefaultPolicy(), endpoint, zerolog.Nop())(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})
	return called, handler(c)
}

func TestRequire_Allows(t *testing.T) {
	called, err := runRequire(t, access.FinanceList, &domain.Principal{ID: "a1", Role: domain.RoleAdmin})
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next handler not called")
	}
}

func TestRequire_NoSession(t *testing.T) {
	called, err := runRequire(t, access.BookingsList, nil)
	if !errors.Is(err, domain.ErrAuthenticationRequired) {
		t.Fatalf("expected ErrAuthenticationRequired, got %v", err)
	}
	if called {
		t.Fatalf("should not reach next handler")
	}
}

func TestRequire_WrongRole(t *testing.T) {
	called, err := runRequire(t, access.FinanceList, &domain.Principal{ID: "c1", Role: domain.RoleCrew})
	if !errors.Is(err, domain.ErrAuthorizationDenied) {
		t.Fatalf("expected ErrAuthorizationDenied, got %v", err)
	}
	if called {
		t.Fatalf("should not reach next handler")
	}
}

func TestRequire_UndeclaredEndpoint(t *testing.T) {
	called, err := runRequire(t, access.Endpoint("reports.export"), &domain.Principal{ID: "a1", Role: domain.RoleAdmin})
	if !errors.Is(err, domain.ErrAuthorizationDenied) {
		t.Fatalf("expected ErrAuthorizationDenied, got %v", err)
	}
	if called {
		t.Fatalf("should not reach next handler")
	}
}

func TestRequire_PublicEndpoint(t *testing.T) {
	called, err := runRequire(t, access.PackagesList, nil)
	if err != nil || !called {
		t.Fatalf("public endpoint refused: called=%v err=%v", called, err)
	}
}

func TestRequire_RotationRequired(t *testing.T) {
	p := &domain.Principal{ID: "c1", Role: domain.RoleCrew, MustRotatePassword: true}

	called, err := runRequire(t, access.InventoryList, p)
	if !errors.Is(err, domain.ErrPasswordRotationRequired) || called {
		t.Fatalf("expected rotation to be required, called=%v err=%v", called, err)
	}

	called, err = runRequire(t, access.AuthPassword, p)
	if err != nil || !called {
		t.Fatalf("password change must stay reachable, called=%v err=%v", called, err)
	}
}
