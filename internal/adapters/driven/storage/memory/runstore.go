package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
)

// Ensure RunStore implements the interface.
var _ driven.RunStore = (*RunStore)(nil)

// RunStore is an in-memory implementation of driven.RunStore.
type RunStore struct {
	mu       sync.RWMutex
	runs     map[string]domain.IndexRun
	outcomes map[string][]domain.DocumentOutcome
}

// NewRunStore creates a new in-memory run store.
func NewRunStore() *RunStore {
	return &RunStore{
		runs:     make(map[string]domain.IndexRun),
		outcomes: make(map[string][]domain.DocumentOutcome),
	}
}

// SaveRun stores or updates a run.
func (s *RunStore) SaveRun(_ context.Context, run domain.IndexRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[run.ID] = run
	return nil
}

// SaveOutcome appends a document outcome to a run.
func (s *RunStore) SaveOutcome(_ context.Context, runID string, outcome domain.DocumentOutcome) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outcomes[runID] = append(s.outcomes[runID], outcome)
	return nil
}

// GetRun retrieves a run by ID.
func (s *RunStore) GetRun(_ context.Context, id string) (*domain.IndexRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	run, ok := s.runs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &run, nil
}

// ListRuns returns runs newest first, optionally for one identity.
func (s *RunStore) ListRuns(_ context.Context, identity string, limit int) ([]domain.IndexRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.IndexRun, 0, len(s.runs))
	for _, run := range s.runs {
		if identity != "" && run.Identity != identity {
			continue
		}
		result = append(result, run)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].StartedAt.After(result[j].StartedAt)
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// ListOutcomes returns a run's outcomes in insertion order.
func (s *RunStore) ListOutcomes(_ context.Context, runID string) ([]domain.DocumentOutcome, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.DocumentOutcome{}, s.outcomes[runID]...), nil
}
