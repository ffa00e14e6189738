package search

import (
	"context"

	"github.com/clinrec/clinrec/internal/domain/patient"
)

// Store is the read-only record source the search core queries. QueryPatients
// returns the page window of records satisfying pred under the given sort,
// plus the full filtered count. AllPatients feeds suggestion aggregation.
type Store interface {
	QueryPatients(ctx context.Context, pred Predicate, s Sort, offset, limit int) ([]*patient.Patient, int, error)
	AllPatients(ctx context.Context) ([]*patient.Patient, error)
}

// repoStore adapts a patient repository into a Store. Predicates are opaque
// Go functions, so filtering and sorting run in process over a single
// full-table read; the store contributes exactly one query per call.
type repoStore struct {
	repo patient.Repository
}

// NewStore wraps a patient repository as a search record store.
func NewStore(repo patient.Repository) Store {
	return &repoStore{repo: repo}
}

func (s *repoStore) QueryPatients(ctx context.Context, pred Predicate, srt Sort, offset, limit int) ([]*patient.Patient, int, error) {
	records, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, 0, err
	}

	filtered := records[:0:0]
	for _, p := range records {
		if pred(p) {
			filtered = append(filtered, p)
		}
	}
	srt.Apply(filtered)

	total := len(filtered)
	if offset >= total {
		return []*patient.Patient{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return filtered[offset:end], total, nil
}

func (s *repoStore) AllPatients(ctx context.Context) ([]*patient.Patient, error) {
	return s.repo.ListAll(ctx)
}
