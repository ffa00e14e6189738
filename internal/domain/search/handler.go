package search

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/clinrec/clinrec/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/search/patients", h.SearchPatients)
	g.GET("/search/suggestions", h.GetSuggestions)
}

func (h *Handler) SearchPatients(c echo.Context) error {
	criteria, err := criteriaFromContext(c)
	if err != nil {
		return err
	}
	pg, err := pagination.FromContext(c)
	if err != nil {
		return err
	}
	order := c.QueryParam("order")
	if order != "" && order != "asc" && order != "desc" {
		return echo.NewHTTPError(http.StatusBadRequest, "order must be asc or desc")
	}
	srt := ParseSort(c.QueryParam("sort_by"), order)

	resp, err := h.svc.Search(c.Request().Context(), criteria, srt, pg)
	if err != nil {
		return storeError(err)
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *Handler) GetSuggestions(c echo.Context) error {
	field := c.QueryParam("field")
	if field == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "field is required")
	}

	limit := DefaultSuggestionLimit
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > MaxSuggestionLimit {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be between 1 and 50")
		}
		limit = n
	}

	resp, err := h.svc.Suggest(c.Request().Context(), field, c.QueryParam("prefix"), limit)
	if err != nil {
		return storeError(err)
	}
	return c.JSON(http.StatusOK, resp)
}

// criteriaFromContext parses and validates the search filters. Malformed
// numeric or date parameters are rejected here, before any predicate is
// compiled.
func criteriaFromContext(c echo.Context) (Criteria, error) {
	criteria := Criteria{
		Query:            c.QueryParam("q"),
		Name:             c.QueryParam("name"),
		CPF:              c.QueryParam("cpf"),
		Email:            c.QueryParam("email"),
		Phone:            c.QueryParam("phone"),
		Gender:           c.QueryParam("gender"),
		MedicalCondition: c.QueryParam("condition"),
		Medication:       c.QueryParam("medication"),
		Allergy:          c.QueryParam("allergy"),
		City:             c.QueryParam("city"),
		State:            c.QueryParam("state"),
	}

	var err error
	if criteria.AgeMin, err = intParam(c, "age_min"); err != nil {
		return Criteria{}, err
	}
	if criteria.AgeMax, err = intParam(c, "age_max"); err != nil {
		return Criteria{}, err
	}
	if criteria.BirthDateFrom, err = dateParam(c, "birth_date_from"); err != nil {
		return Criteria{}, err
	}
	if criteria.BirthDateTo, err = dateParam(c, "birth_date_to"); err != nil {
		return Criteria{}, err
	}
	return criteria, nil
}

func intParam(c echo.Context, name string) (*int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 || n > 150 {
		return nil, echo.NewHTTPError(http.StatusBadRequest, name+" must be an integer between 0 and 150")
	}
	return &n, nil
}

func dateParam(c echo.Context, name string) (*time.Time, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, name+" must be an ISO date (YYYY-MM-DD)")
	}
	return &t, nil
}

func storeError(err error) error {
	return echo.NewHTTPError(http.StatusServiceUnavailable, "record store unavailable: "+err.Error())
}
