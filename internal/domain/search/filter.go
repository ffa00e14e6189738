package search

import (
	"strings"
	"time"

	"github.com/clinrec/clinrec/internal/domain/patient"
)

// Predicate reports whether a record satisfies every supplied filter.
type Predicate func(*patient.Patient) bool

// Compile translates criteria into a single conjunctive predicate. The
// reference day is fixed at compile time so one request evaluates every
// record against the same age window.
func Compile(c Criteria, today time.Time) Predicate {
	var preds []Predicate

	if c.Query != "" {
		q := c.Query
		preds = append(preds, func(p *patient.Patient) bool {
			if containsCI(p.Name, q) {
				return true
			}
			if strings.Contains(p.CPF, q) {
				return true
			}
			if p.Email != nil && containsCI(*p.Email, q) {
				return true
			}
			if p.Phone != nil && strings.Contains(*p.Phone, q) {
				return true
			}
			if p.Notes != nil && containsCI(*p.Notes, q) {
				return true
			}
			return false
		})
	}
	if c.Name != "" {
		name := c.Name
		preds = append(preds, func(p *patient.Patient) bool {
			return containsCI(p.Name, name)
		})
	}
	if c.CPF != "" {
		cpf := c.CPF
		preds = append(preds, func(p *patient.Patient) bool {
			return strings.Contains(p.CPF, cpf)
		})
	}
	if c.Email != "" {
		email := c.Email
		preds = append(preds, func(p *patient.Patient) bool {
			return p.Email != nil && containsCI(*p.Email, email)
		})
	}
	if c.Phone != "" {
		phone := c.Phone
		preds = append(preds, func(p *patient.Patient) bool {
			return p.Phone != nil && strings.Contains(*p.Phone, phone)
		})
	}
	if c.Gender != "" {
		gender := strings.ToUpper(c.Gender)
		preds = append(preds, func(p *patient.Patient) bool {
			return p.Gender == gender
		})
	}
	if c.AgeMax != nil {
		// Anyone older than age_max was born before this date.
		minBirth := time.Date(today.Year()-*c.AgeMax-1, today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
		preds = append(preds, func(p *patient.Patient) bool {
			return !p.BirthDate.Before(minBirth)
		})
	}
	if c.AgeMin != nil {
		maxBirth := time.Date(today.Year()-*c.AgeMin, today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
		preds = append(preds, func(p *patient.Patient) bool {
			return !p.BirthDate.After(maxBirth)
		})
	}
	if c.BirthDateFrom != nil {
		from := *c.BirthDateFrom
		preds = append(preds, func(p *patient.Patient) bool {
			return !p.BirthDate.Before(from)
		})
	}
	if c.BirthDateTo != nil {
		to := *c.BirthDateTo
		preds = append(preds, func(p *patient.Patient) bool {
			return !p.BirthDate.After(to)
		})
	}
	if c.MedicalCondition != "" {
		cond := c.MedicalCondition
		preds = append(preds, func(p *patient.Patient) bool {
			return listContains(p.MedicalConditions, cond)
		})
	}
	if c.Medication != "" {
		med := c.Medication
		preds = append(preds, func(p *patient.Patient) bool {
			return listContains(p.Medications, med)
		})
	}
	if c.Allergy != "" {
		allergy := c.Allergy
		preds = append(preds, func(p *patient.Patient) bool {
			return listContains(p.Allergies, allergy)
		})
	}
	if c.City != "" {
		city := c.City
		preds = append(preds, func(p *patient.Patient) bool {
			return containsCI(addressCity(p), city)
		})
	}
	if c.State != "" {
		state := c.State
		preds = append(preds, func(p *patient.Patient) bool {
			return containsCI(addressState(p), state)
		})
	}

	return func(p *patient.Patient) bool {
		for _, pred := range preds {
			if !pred(p) {
				return false
			}
		}
		return true
	}
}
