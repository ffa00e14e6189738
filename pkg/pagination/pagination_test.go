package pagination

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func ctxWithQuery(query string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/?"+query, nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec)
}

func TestFromContext_Defaults(t *testing.T) {
	p, err := FromContext(ctxWithQuery(""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Page != 1 || p.Size != DefaultSize {
		t.Errorf("expected page=1 size=%d, got page=%d size=%d", DefaultSize, p.Page, p.Size)
	}
}

func TestFromContext_Explicit(t *testing.T) {
	p, err := FromContext(ctxWithQuery("page=3&size=25"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Page != 3 || p.Size != 25 {
		t.Errorf("got page=%d size=%d", p.Page, p.Size)
	}
	if p.Offset() != 50 {
		t.Errorf("expected offset 50, got %d", p.Offset())
	}
}

func TestFromContext_Invalid(t *testing.T) {
	cases := []string{"page=0", "page=abc", "size=0", "size=101", "size=-1"}
	for _, q := range cases {
		if _, err := FromContext(ctxWithQuery(q)); err == nil {
			t.Errorf("expected error for %q", q)
		}
	}
}

func TestPages(t *testing.T) {
	p := Params{Page: 1, Size: 10}
	cases := []struct {
		total, pages int
	}{
		{0, 0}, {1, 1}, {10, 1}, {11, 2}, {25, 3},
	}
	for _, tc := range cases {
		if got := p.Pages(tc.total); got != tc.pages {
			t.Errorf("Pages(%d) = %d, want %d", tc.total, got, tc.pages)
		}
	}
}

func TestNewResponse(t *testing.T) {
	p := Params{Page: 2, Size: 10}
	resp := NewResponse([]string{"a"}, 21, p)
	if resp.Pages != 3 {
		t.Errorf("expected 3 pages, got %d", resp.Pages)
	}
	if resp.Page != 2 || resp.Size != 10 || resp.Total != 21 {
		t.Errorf("unexpected response metadata: %+v", resp)
	}
}
