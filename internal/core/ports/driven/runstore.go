package driven

import (
	"context"

	"github.com/custodia-labs/folio/internal/core/domain"
)

// RunStore records indexing runs and their per-document outcomes.
type RunStore interface {
	// SaveRun inserts or updates a run.
	SaveRun(ctx context.Context, run domain.IndexRun) error

	// SaveOutcome records the outcome of one document within a run.
	SaveOutcome(ctx context.Context, runID string, outcome domain.DocumentOutcome) error

	// GetRun returns a run by ID.
	// Returns domain.ErrNotFound if the run does not exist.
	GetRun(ctx context.Context, id string) (*domain.IndexRun, error)

	// ListRuns returns the most recent runs first.
	// An empty identity lists runs for all identities.
	ListRuns(ctx context.Context, identity string, limit int) ([]domain.IndexRun, error)

	// ListOutcomes returns the outcomes of a run in the order they were recorded.
	ListOutcomes(ctx context.Context, runID string) ([]domain.DocumentOutcome, error)
}
