// Package search implements the advanced patient search: filter composition
// over the record store, heuristic relevance scoring, pagination and
// autocomplete suggestions.
package search

import (
	"strconv"
	"time"
)

// Criteria is the full set of optional filters for one search request. A
// string dimension is supplied iff non-empty; numeric and date dimensions are
// supplied iff non-nil. An empty string and an absent parameter are
// equivalent everywhere, including score dimension counting.
type Criteria struct {
	Query            string
	Name             string
	CPF              string
	Email            string
	Phone            string
	Gender           string
	AgeMin           *int
	AgeMax           *int
	BirthDateFrom    *time.Time
	BirthDateTo      *time.Time
	MedicalCondition string
	Medication       string
	Allergy          string
	City             string
	State            string
}

// FiltersApplied echoes the supplied dimensions and their raw values for
// response transparency.
func (c Criteria) FiltersApplied() map[string]string {
	applied := map[string]string{}
	if c.Query != "" {
		applied["general_query"] = c.Query
	}
	if c.Name != "" {
		applied["name"] = c.Name
	}
	if c.CPF != "" {
		applied["cpf"] = c.CPF
	}
	if c.Email != "" {
		applied["email"] = c.Email
	}
	if c.Phone != "" {
		applied["phone"] = c.Phone
	}
	if c.Gender != "" {
		applied["gender"] = c.Gender
	}
	if c.AgeMin != nil {
		applied["age_min"] = strconv.Itoa(*c.AgeMin)
	}
	if c.AgeMax != nil {
		applied["age_max"] = strconv.Itoa(*c.AgeMax)
	}
	if c.BirthDateFrom != nil {
		applied["birth_date_from"] = c.BirthDateFrom.Format("2006-01-02")
	}
	if c.BirthDateTo != nil {
		applied["birth_date_to"] = c.BirthDateTo.Format("2006-01-02")
	}
	if c.MedicalCondition != "" {
		applied["medical_condition"] = c.MedicalCondition
	}
	if c.Medication != "" {
		applied["medication"] = c.Medication
	}
	if c.Allergy != "" {
		applied["allergy"] = c.Allergy
	}
	if c.City != "" {
		applied["city"] = c.City
	}
	if c.State != "" {
		applied["state"] = c.State
	}
	return applied
}

// ScoreReorder reports whether the result page should be re-ordered by
// relevance score. Only the general query and the two medical dimensions
// trigger re-ordering.
func (c Criteria) ScoreReorder() bool {
	return c.Query != "" || c.MedicalCondition != "" || c.Medication != ""
}
