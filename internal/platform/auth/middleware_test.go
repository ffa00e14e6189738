package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

func requestWithAuth(header string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec)
}

func TestRequireUser_ValidToken(t *testing.T) {
	issuer := testIssuer()
	tok, _ := issuer.IssueAccess("joao")

	var seen string
	handler := RequireUser(issuer)(func(c echo.Context) error {
		seen = UsernameFromContext(c.Request().Context())
		return c.NoContent(http.StatusOK)
	})

	if err := handler(requestWithAuth("Bearer " + tok)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if seen != "joao" {
		t.Errorf("expected username joao on context, got %q", seen)
	}
}

func TestRequireUser_MissingHeader(t *testing.T) {
	handler := RequireUser(testIssuer())(func(c echo.Context) error { return nil })

	err := handler(requestWithAuth(""))
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %v", err)
	}
}

func TestRequireUser_BadFormat(t *testing.T) {
	handler := RequireUser(testIssuer())(func(c echo.Context) error { return nil })

	err := handler(requestWithAuth("Basic abc"))
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %v", err)
	}
}

func TestRequireUser_RejectsRefreshToken(t *testing.T) {
	issuer := testIssuer()
	tok, _ := issuer.IssueRefresh("joao")

	handler := RequireUser(issuer)(func(c echo.Context) error { return nil })

	err := handler(requestWithAuth("Bearer " + tok))
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for refresh token, got %v", err)
	}
}

func TestRequireUser_ExpiredToken(t *testing.T) {
	expired := NewTokenIssuer("0123456789abcdef0123456789abcdef", -time.Minute, time.Hour)
	tok, _ := expired.IssueAccess("joao")

	handler := RequireUser(expired)(func(c echo.Context) error { return nil })

	err := handler(requestWithAuth("Bearer " + tok))
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for expired token, got %v", err)
	}
}

func TestDevAuthMiddleware_SetsDefaultUser(t *testing.T) {
	var seen string
	handler := DevAuthMiddleware(testIssuer())(func(c echo.Context) error {
		seen = UsernameFromContext(c.Request().Context())
		return nil
	})

	if err := handler(requestWithAuth("")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if seen != DevUsername {
		t.Errorf("expected %s, got %q", DevUsername, seen)
	}
}

func TestDevAuthMiddleware_KeepsValidSubject(t *testing.T) {
	issuer := testIssuer()
	tok, _ := issuer.IssueAccess("joao")

	var seen string
	handler := DevAuthMiddleware(issuer)(func(c echo.Context) error {
		seen = UsernameFromContext(c.Request().Context())
		return nil
	})

	if err := handler(requestWithAuth("Bearer " + tok)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if seen != "joao" {
		t.Errorf("expected joao, got %q", seen)
	}
}

func TestDevAuthMiddleware_BadTokenFallsBack(t *testing.T) {
	cases := []struct {
		name   string
		header string
	}{
		{"garbage token", "Bearer not-a-jwt"},
		{"wrong scheme", "Basic abc"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var seen string
			handler := DevAuthMiddleware(testIssuer())(func(c echo.Context) error {
				seen = UsernameFromContext(c.Request().Context())
				return nil
			})

			if err := handler(requestWithAuth(tc.header)); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if seen != DevUsername {
				t.Errorf("expected fallback to %s, got %q", DevUsername, seen)
			}
		})
	}
}
