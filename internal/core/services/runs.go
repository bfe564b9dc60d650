package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
	"github.com/custodia-labs/folio/internal/core/ports/driving"
)

// Ensure RunService implements the interface.
var _ driving.RunService = (*RunService)(nil)

// DefaultRunLimit is used when List is called without a limit.
const DefaultRunLimit = 20

// RunService reads the indexing run ledger.
type RunService struct {
	store driven.RunStore
}

// NewRunService creates a run service.
func NewRunService(store driven.RunStore) *RunService {
	return &RunService{store: store}
}

// List returns recent runs, newest first.
func (s *RunService) List(ctx context.Context, identity string, limit int) ([]domain.IndexRun, error) {
	if limit <= 0 {
		limit = DefaultRunLimit
	}
	return s.store.ListRuns(ctx, identity, limit)
}

// Get returns a run with its document outcomes.
func (s *RunService) Get(ctx context.Context, id string) (*domain.IndexRun, []domain.DocumentOutcome, error) {
	run, err := s.store.GetRun(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	outcomes, err := s.store.ListOutcomes(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("list outcomes: %w", err)
	}
	return run, outcomes, nil
}
