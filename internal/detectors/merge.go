package detectors

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
	"github.com/custodia-labs/folio/internal/logger"
)

// Ensure Merger implements the interface.
var _ driven.HeadingDetector = (*Merger)(nil)

// Merger runs several detectors over a page and unions their output.
// The first candidate seen for a (text, page) pair wins, so detectors
// earlier in the list take precedence for level and source.
type Merger struct {
	detectors []driven.HeadingDetector
}

// NewMerger creates a merge stage over the given detectors.
func NewMerger(detectors ...driven.HeadingDetector) *Merger {
	return &Merger{
		detectors: detectors,
	}
}

// Name returns the merge stage name.
func (m *Merger) Name() string {
	return "merged"
}

// Detect runs every detector on the page. A failing detector is logged and
// skipped; the call fails only if every detector failed or ctx is done.
func (m *Merger) Detect(ctx context.Context, page driven.PDFPage, pageIndex int) ([]domain.HeadingCandidate, error) {
	var (
		out  []domain.HeadingCandidate
		errs []error
		seen = make(map[domain.HeadingKey]bool)
	)

	for _, d := range m.detectors {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		candidates, err := d.Detect(ctx, page, pageIndex)
		if err != nil {
			logger.Warn("detector %s failed on page %d: %v", d.Name(), pageIndex, err)
			errs = append(errs, fmt.Errorf("detector %s: %w", d.Name(), err))
			continue
		}
		for _, c := range candidates {
			if seen[c.Key()] {
				continue
			}
			seen[c.Key()] = true
			out = append(out, c)
		}
	}

	if len(errs) > 0 && len(errs) == len(m.detectors) {
		return nil, errors.Join(errs...)
	}
	return out, nil
}

// Add appends a detector to the merge stage.
func (m *Merger) Add(d driven.HeadingDetector) {
	m.detectors = append(m.detectors, d)
}

// Len returns the number of detectors.
func (m *Merger) Len() int {
	return len(m.detectors)
}
