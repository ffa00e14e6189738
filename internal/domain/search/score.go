package search

import (
	"strings"

	"github.com/clinrec/clinrec/internal/domain/patient"
)

const maxScore = 2.0

// MatchScore computes the relevance score of one record against the supplied
// criteria. Scoring never filters anything out; it only re-orders a page of
// results the filters already selected.
//
// Five dimensions count toward the match ratio: name, cpf, medical condition,
// medication and allergy. Email and phone add flat boosts outside the ratio.
// The final score is the accumulated bonuses scaled by matches/total and
// capped at 2.0.
func MatchScore(p *patient.Patient, c Criteria) float64 {
	score := 1.0
	matches := 0
	total := 0

	if c.Name != "" {
		total++
		if containsCI(p.Name, c.Name) {
			matches++
			if strings.EqualFold(p.Name, c.Name) {
				score += 0.5
			}
		}
	}
	if c.CPF != "" {
		total++
		if strings.Contains(p.CPF, c.CPF) {
			matches++
			score += 0.3
		}
	}
	if c.MedicalCondition != "" {
		total++
		if listContains(p.MedicalConditions, c.MedicalCondition) {
			matches++
			score += 0.2
		}
	}
	if c.Medication != "" {
		total++
		if listContains(p.Medications, c.Medication) {
			matches++
			score += 0.1
		}
	}
	if c.Allergy != "" {
		total++
		if listContains(p.Allergies, c.Allergy) {
			matches++
			score += 0.1
		}
	}

	// Contact boosts sit outside the match ratio.
	if c.Email != "" && p.Email != nil && containsCI(*p.Email, c.Email) {
		score += 0.2
	}
	if c.Phone != "" && p.Phone != nil && strings.Contains(*p.Phone, c.Phone) {
		score += 0.2
	}

	if total > 0 {
		score *= float64(matches) / float64(total)
	}
	if score > maxScore {
		score = maxScore
	}
	return score
}
