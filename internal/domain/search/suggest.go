package search

import (
	"sort"
	"strings"

	"github.com/clinrec/clinrec/internal/domain/patient"
)

// Suggestion field names accepted by the suggestions endpoint.
const (
	FieldMedicalConditions = "medical_conditions"
	FieldMedications       = "medications"
	FieldAllergies         = "allergies"
	FieldCities            = "cities"
)

const (
	DefaultSuggestionLimit = 10
	MaxSuggestionLimit     = 50
)

// Suggestions is the autocomplete envelope.
type Suggestions struct {
	Field       string   `json:"field"`
	Suggestions []string `json:"suggestions"`
	Count       int      `json:"count"`
}

// Suggest collects the distinct values of one field across all records,
// keeps those whose lowercase form starts with the lowercase prefix, sorts
// ascending and truncates to limit. An unknown field yields an empty list.
func Suggest(records []*patient.Patient, field, prefix string, limit int) *Suggestions {
	values := collectValues(records, field)

	p := strings.ToLower(prefix)
	seen := make(map[string]struct{}, len(values))
	var out []string
	for _, v := range values {
		if v == "" {
			continue
		}
		if p != "" && !strings.HasPrefix(strings.ToLower(v), p) {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	if len(out) > limit {
		out = out[:limit]
	}
	if out == nil {
		out = []string{}
	}
	return &Suggestions{Field: field, Suggestions: out, Count: len(out)}
}

func collectValues(records []*patient.Patient, field string) []string {
	var values []string
	for _, p := range records {
		switch field {
		case FieldMedicalConditions:
			values = append(values, p.MedicalConditions...)
		case FieldMedications:
			values = append(values, p.Medications...)
		case FieldAllergies:
			values = append(values, p.Allergies...)
		case FieldCities:
			if city := addressCity(p); city != "" {
				values = append(values, city)
			}
		}
	}
	return values
}
