package driven

import (
	"context"

	"github.com/custodia-labs/folio/internal/core/domain"
)

// HeadingDetector proposes heading candidates for a single page.
// Detectors are independent; their outputs are merged and deduplicated
// by (text, page) before segmentation.
type HeadingDetector interface {
	// Name returns the detector name for logging and configuration.
	Name() string

	// Detect returns the candidates found on the page at pageIndex.
	Detect(ctx context.Context, page PDFPage, pageIndex int) ([]domain.HeadingCandidate, error)
}
