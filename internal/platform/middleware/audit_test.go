package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/clinrec/clinrec/internal/platform/auth"
)

// mockRecorder collects audit entries for assertions.
type mockRecorder struct {
	mu      sync.Mutex
	entries []AuditEntry
	err     error
}

func (m *mockRecorder) RecordAccess(entry AuditEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entry)
	return m.err
}

func (m *mockRecorder) last() AuditEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.entries[len(m.entries)-1]
}

func (m *mockRecorder) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func auditRequest(t *testing.T, rec *mockRecorder, method, target, username string) AuditEntry {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, target, nil)
	if username != "" {
		req = req.WithContext(context.WithValue(req.Context(), auth.UsernameKey, username))
	}
	res := httptest.NewRecorder()
	c := e.NewContext(req, res)
	c.Set("request_id", "req-1")

	mw := Audit(zerolog.Nop(), rec)
	handler := mw(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	return rec.last()
}

func TestAuditRecordsPatientAccess(t *testing.T) {
	rec := &mockRecorder{}
	id := uuid.NewString()
	entry := auditRequest(t, rec, http.MethodGet, "/api/v1/patients/"+id, "drsilva")

	if entry.Username != "drsilva" {
		t.Errorf("username = %q, want drsilva", entry.Username)
	}
	if entry.Resource != "patients" {
		t.Errorf("resource = %q, want patients", entry.Resource)
	}
	if entry.PatientID != id {
		t.Errorf("patient_id = %q, want %q", entry.PatientID, id)
	}
	if entry.Action != "read" || entry.StatusCode != http.StatusOK {
		t.Errorf("entry = %+v", entry)
	}
	if entry.RequestID != "req-1" {
		t.Errorf("request_id = %q", entry.RequestID)
	}
}

func TestAuditActionMapping(t *testing.T) {
	rec := &mockRecorder{}
	cases := []struct {
		method string
		want   string
	}{
		{http.MethodGet, "read"},
		{http.MethodPost, "create"},
		{http.MethodPut, "update"},
		{http.MethodDelete, "delete"},
	}
	for _, tc := range cases {
		entry := auditRequest(t, rec, tc.method, "/api/v1/patients", "u")
		if entry.Action != tc.want {
			t.Errorf("%s: action = %q, want %q", tc.method, entry.Action, tc.want)
		}
	}
}

func TestAuditSearchResource(t *testing.T) {
	rec := &mockRecorder{}
	entry := auditRequest(t, rec, http.MethodGet, "/api/v1/search/patients?q=silva", "u")
	if entry.Resource != "search" {
		t.Errorf("resource = %q, want search", entry.Resource)
	}
	if entry.PatientID != "" {
		t.Errorf("patient_id = %q, want empty for search", entry.PatientID)
	}
}

func TestAuditSkipsNonAPIRoutes(t *testing.T) {
	rec := &mockRecorder{}
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	mw := Audit(zerolog.Nop(), rec)
	handler := mw(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if rec.count() != 0 {
		t.Errorf("recorded %d entries for /health, want 0", rec.count())
	}
}

func TestAuditRecorderFailureDoesNotBreakRequest(t *testing.T) {
	rec := &mockRecorder{err: errors.New("sink down")}
	entry := auditRequest(t, rec, http.MethodGet, "/api/v1/patients", "u")
	if entry.Resource != "patients" {
		t.Errorf("entry still recorded locally: %+v", entry)
	}
}
