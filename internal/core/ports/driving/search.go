package driving

import (
	"context"

	"github.com/custodia-labs/folio/internal/core/domain"
)

// SearchService provides retrieval capabilities to external actors.
type SearchService interface {
	// Search returns the passages most similar to query, best first.
	// An empty result is not an error.
	Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.SearchResult, error)
}
