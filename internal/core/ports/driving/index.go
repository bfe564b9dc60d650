package driving

import (
	"context"

	"github.com/custodia-labs/folio/internal/core/domain"
)

// IndexProgress receives progress notifications during an indexing call.
type IndexProgress interface {
	// Begin is called once with the number of PDFs found in the folder.
	Begin(total int)

	// Document is called after each PDF has been handled.
	Document(outcome domain.DocumentOutcome)
}

// IndexOptions configures an indexing call.
type IndexOptions struct {
	// Progress is optional.
	Progress IndexProgress
}

// IndexService builds and extends persisted indexes.
type IndexService interface {
	// Index adds every PDF in folder that is not yet in the identity's index.
	Index(ctx context.Context, folder, identity string, opts IndexOptions) (*domain.IndexReport, error)
}
