package driving

import (
	"context"

	"github.com/custodia-labs/folio/internal/core/domain"
)

// OutlineService extracts the title and heading outline of a PDF.
type OutlineService interface {
	// Outline opens the PDF at path and returns its filtered outline.
	Outline(ctx context.Context, path string) (*domain.Outline, error)
}
