package search

import (
	"strings"

	"github.com/clinrec/clinrec/internal/domain/patient"
)

// listContains reports whether any element of items contains needle,
// case-insensitively. Empty elements never match a non-empty needle.
func listContains(items []string, needle string) bool {
	n := strings.ToLower(needle)
	for _, item := range items {
		if item == "" {
			continue
		}
		if strings.Contains(strings.ToLower(item), n) {
			return true
		}
	}
	return false
}

// containsCI reports whether s contains needle, case-insensitively.
func containsCI(s, needle string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(needle))
}

func addressCity(p *patient.Patient) string {
	if p.Address == nil {
		return ""
	}
	return p.Address.City
}

func addressState(p *patient.Patient) string {
	if p.Address == nil {
		return ""
	}
	return p.Address.State
}
