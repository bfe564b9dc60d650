package driving

import (
	"context"

	"github.com/custodia-labs/folio/internal/core/domain"
)

// RunService exposes the indexing run ledger.
type RunService interface {
	// List returns recent runs, newest first.
	List(ctx context.Context, identity string, limit int) ([]domain.IndexRun, error)

	// Get returns a run and its per-document outcomes.
	Get(ctx context.Context, id string) (*domain.IndexRun, []domain.DocumentOutcome, error)
}
