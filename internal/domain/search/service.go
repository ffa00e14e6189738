package search

import (
	"context"
	"time"

	"github.com/clinrec/clinrec/pkg/pagination"
)

// Service runs the search pipeline: compile filters, query the store, score
// each hit and assemble the response envelope.
type Service struct {
	store Store
	// now is swappable so tests can pin the reference day.
	now func() time.Time
}

func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

// Search executes one search call. Filtering, sorting and pagination happen
// at the store level; score re-ordering, when triggered, reshuffles only the
// returned page.
func (s *Service) Search(ctx context.Context, c Criteria, srt Sort, page pagination.Params) (*Response, error) {
	start := s.now()
	today := start

	pred := Compile(c, today)
	records, total, err := s.store.QueryPatients(ctx, pred, srt, page.Offset(), page.Size)
	if err != nil {
		return nil, err
	}

	results := make([]*Result, 0, len(records))
	for _, p := range records {
		p.Normalize()
		results = append(results, newResult(p, c, today))
	}
	if c.ScoreReorder() {
		reorderByScore(results)
	}

	elapsed := float64(s.now().Sub(start).Microseconds()) / 1000.0
	return &Response{
		Results:        results,
		Total:          total,
		QueryTimeMS:    elapsed,
		FiltersApplied: c.FiltersApplied(),
	}, nil
}

// Suggest returns autocomplete values for one field.
func (s *Service) Suggest(ctx context.Context, field, prefix string, limit int) (*Suggestions, error) {
	records, err := s.store.AllPatients(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range records {
		p.Normalize()
	}
	return Suggest(records, field, prefix, limit), nil
}
