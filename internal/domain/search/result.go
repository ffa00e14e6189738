package search

import (
	"sort"
	"time"

	"github.com/clinrec/clinrec/internal/domain/patient"
)

// Sort describes the store-level ordering applied before pagination.
type Sort struct {
	Field string
	Desc  bool
}

const (
	SortByName      = "name"
	SortByBirthDate = "birth_date"
	SortByCreatedAt = "created_at"
)

// ParseSort maps the sort_by and order query parameters onto a Sort. An
// unknown sort field falls back to name ascending regardless of order.
func ParseSort(sortBy, order string) Sort {
	switch sortBy {
	case SortByBirthDate, SortByCreatedAt:
		return Sort{Field: sortBy, Desc: order == "desc"}
	case SortByName:
		return Sort{Field: SortByName, Desc: order == "desc"}
	default:
		return Sort{Field: SortByName}
	}
}

// less compares two records under this sort, ascending.
func (s Sort) less(a, b *patient.Patient) bool {
	switch s.Field {
	case SortByBirthDate:
		return a.BirthDate.Before(b.BirthDate)
	case SortByCreatedAt:
		return a.CreatedAt.Before(b.CreatedAt)
	default:
		return a.Name < b.Name
	}
}

// Apply stable-sorts records in place.
func (s Sort) Apply(records []*patient.Patient) {
	sort.SliceStable(records, func(i, j int) bool {
		if s.Desc {
			return s.less(records[j], records[i])
		}
		return s.less(records[i], records[j])
	})
}

// Result is one scored search hit.
type Result struct {
	ID                string   `json:"id"`
	Name              string   `json:"name"`
	CPF               string   `json:"cpf"`
	BirthDate         string   `json:"birth_date"`
	Age               int      `json:"age"`
	Gender            string   `json:"gender"`
	Email             *string  `json:"email"`
	Phone             *string  `json:"phone"`
	MedicalConditions []string `json:"medical_conditions"`
	Medications       []string `json:"medications"`
	Allergies         []string `json:"allergies"`
	MatchScore        float64  `json:"match_score"`
}

// Response is the search envelope returned to callers.
type Response struct {
	Results        []*Result         `json:"results"`
	Total          int               `json:"total"`
	QueryTimeMS    float64           `json:"query_time_ms"`
	FiltersApplied map[string]string `json:"filters_applied"`
}

func newResult(p *patient.Patient, c Criteria, today time.Time) *Result {
	return &Result{
		ID:                p.ID.String(),
		Name:              p.Name,
		CPF:               p.CPF,
		BirthDate:         p.BirthDate.Format("2006-01-02"),
		Age:               patient.Age(p.BirthDate, today),
		Gender:            p.Gender,
		Email:             p.Email,
		Phone:             p.Phone,
		MedicalConditions: p.MedicalConditions,
		Medications:       p.Medications,
		Allergies:         p.Allergies,
		MatchScore:        MatchScore(p, c),
	}
}

// reorderByScore stable-sorts one page of results by descending score. Ties
// keep the store-level order.
func reorderByScore(results []*Result) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].MatchScore > results[j].MatchScore
	})
}
