package search

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func newSearchServer(failing ...bool) (*echo.Echo, *memRepo) {
	svc, repo := newTestService(seedRecords())
	if len(failing) > 0 && failing[0] {
		repo.failing = true
	}
	e := echo.New()
	NewHandler(svc).RegisterRoutes(e.Group(""))
	return e, repo
}

func doGet(e *echo.Echo, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestSearchEndpoint(t *testing.T) {
	e, _ := newSearchServer()
	rec := doGet(e, "/search/patients?condition=Diabetes")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Results []struct {
			Name       string  `json:"name"`
			BirthDate  string  `json:"birth_date"`
			Age        int     `json:"age"`
			MatchScore float64 `json:"match_score"`
		} `json:"results"`
		Total          int               `json:"total"`
		QueryTimeMS    float64           `json:"query_time_ms"`
		FiltersApplied map[string]string `json:"filters_applied"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Total != 2 || len(resp.Results) != 2 {
		t.Fatalf("total = %d, results = %d, want 2/2", resp.Total, len(resp.Results))
	}
	if resp.FiltersApplied["medical_condition"] != "Diabetes" {
		t.Errorf("filters_applied = %v", resp.FiltersApplied)
	}
	for _, r := range resp.Results {
		if r.MatchScore <= 0 {
			t.Errorf("%s: match_score = %v", r.Name, r.MatchScore)
		}
		if len(r.BirthDate) != 10 {
			t.Errorf("%s: birth_date = %q, want ISO date", r.Name, r.BirthDate)
		}
	}
}

func TestSearchEndpointConditionParamName(t *testing.T) {
	e, _ := newSearchServer()
	rec := doGet(e, "/search/patients?condition=Diabetes")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp struct {
		Total          int               `json:"total"`
		FiltersApplied map[string]string `json:"filters_applied"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Total != 2 {
		t.Errorf("condition=Diabetes total = %d, want 2", resp.Total)
	}
	// The query parameter is condition; only the echo key is medical_condition.
	if resp.FiltersApplied["medical_condition"] != "Diabetes" {
		t.Errorf("filters_applied = %v", resp.FiltersApplied)
	}
}

func TestSearchEndpointEmptyResultIsOK(t *testing.T) {
	e, _ := newSearchServer()
	rec := doGet(e, "/search/patients?name=Inexistente")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 for zero matches", rec.Code)
	}
	var resp struct {
		Results []json.RawMessage `json:"results"`
		Total   int               `json:"total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Total != 0 || len(resp.Results) != 0 {
		t.Errorf("total = %d, results = %d, want 0/0", resp.Total, len(resp.Results))
	}
}

func TestSearchEndpointRejectsMalformedParams(t *testing.T) {
	e, _ := newSearchServer()
	cases := []string{
		"/search/patients?age_min=abc",
		"/search/patients?age_max=-1",
		"/search/patients?age_max=200",
		"/search/patients?birth_date_from=15-06-2024",
		"/search/patients?order=upward",
		"/search/patients?page=0",
		"/search/patients?size=bogus",
	}
	for _, target := range cases {
		if rec := doGet(e, target); rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", target, rec.Code)
		}
	}
}

func TestSearchEndpointStoreDown(t *testing.T) {
	e, _ := newSearchServer(true)
	if rec := doGet(e, "/search/patients"); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
	if rec := doGet(e, "/search/suggestions?field=cities"); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("suggestions status = %d, want 503", rec.Code)
	}
}

func TestSuggestionsEndpoint(t *testing.T) {
	e, _ := newSearchServer()
	rec := doGet(e, "/search/suggestions?field=medical_conditions&prefix=Dia")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Field       string   `json:"field"`
		Suggestions []string `json:"suggestions"`
		Count       int      `json:"count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Field != "medical_conditions" || resp.Count != 2 {
		t.Errorf("envelope = %+v", resp)
	}
}

func TestSuggestionsEndpointValidation(t *testing.T) {
	e, _ := newSearchServer()
	if rec := doGet(e, "/search/suggestions"); rec.Code != http.StatusBadRequest {
		t.Errorf("missing field: status = %d, want 400", rec.Code)
	}
	if rec := doGet(e, "/search/suggestions?field=cities&limit=0"); rec.Code != http.StatusBadRequest {
		t.Errorf("limit 0: status = %d, want 400", rec.Code)
	}
	if rec := doGet(e, "/search/suggestions?field=cities&limit=51"); rec.Code != http.StatusBadRequest {
		t.Errorf("limit 51: status = %d, want 400", rec.Code)
	}
}

func TestSuggestionsEndpointUnknownField(t *testing.T) {
	e, _ := newSearchServer()
	rec := doGet(e, "/search/suggestions?field=favorite_color")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 for unknown field", rec.Code)
	}
	var resp struct {
		Suggestions []string `json:"suggestions"`
		Count       int      `json:"count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Count != 0 || len(resp.Suggestions) != 0 {
		t.Errorf("unknown field returned %+v", resp)
	}
}
