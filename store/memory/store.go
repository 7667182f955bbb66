package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/dbops/repart"
	"github.com/dbops/repart/store"
)

// Store is an in-memory implementation of RunStore for testing and
// single-process use. It provides thread-safe access to run reports
// using a sync.RWMutex.
type Store struct {
	mu   sync.RWMutex
	runs map[string]repart.RunReport // runID -> report
}

// New creates a new in-memory store with initialized maps.
func New() *Store {
	return &Store{
		runs: make(map[string]repart.RunReport),
	}
}

// SaveRun persists a run report, replacing any report with the same ID.
func (s *Store) SaveRun(ctx context.Context, report repart.RunReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.runs[report.ID] = report

	return nil
}

// GetRun returns a run report by ID, outcomes included.
// Returns store.ErrRunNotFound if no run with the ID exists.
func (s *Store) GetRun(ctx context.Context, id string) (repart.RunReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	report, ok := s.runs[id]
	if !ok {
		return repart.RunReport{}, store.ErrRunNotFound
	}

	return report, nil
}

// LatestRun returns the most recently started run for a schema.
// Returns store.ErrRunNotFound if the schema has no runs.
func (s *Store) LatestRun(ctx context.Context, schema string) (repart.RunReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest repart.RunReport
	found := false
	for _, report := range s.runs {
		if report.Schema != schema {
			continue
		}
		if !found || report.StartedAt.After(latest.StartedAt) {
			latest = report
			found = true
		}
	}
	if !found {
		return repart.RunReport{}, store.ErrRunNotFound
	}

	return latest, nil
}

// ListRuns returns up to limit runs for a schema, most recent first,
// without per-table outcomes.
func (s *Store) ListRuns(ctx context.Context, schema string, limit int) ([]repart.RunReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var reports []repart.RunReport
	for _, report := range s.runs {
		if report.Schema != schema {
			continue
		}
		report.Outcomes = nil
		reports = append(reports, report)
	}

	sort.Slice(reports, func(i, j int) bool {
		return reports[i].StartedAt.After(reports[j].StartedAt)
	})
	if limit > 0 && len(reports) > limit {
		reports = reports[:limit]
	}

	return reports, nil
}

// DeleteRun removes a run and its outcomes.
// Returns store.ErrRunNotFound if no run with the ID exists.
func (s *Store) DeleteRun(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.runs[id]; !ok {
		return store.ErrRunNotFound
	}
	delete(s.runs, id)

	return nil
}

// Compile-time check that Store implements RunStore.
var _ store.RunStore = (*Store)(nil)
