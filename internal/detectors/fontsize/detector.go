// Package fontsize detects headings from the font size of text lines.
package fontsize

import (
	"context"
	"strings"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
)

// Ensure Detector implements the interface.
var _ driven.HeadingDetector = (*Detector)(nil)

// Default thresholds.
const (
	// DefaultMinFontSize is the size, in points, a line must exceed.
	DefaultMinFontSize = 12.0

	// DefaultMaxWords is the word count a line must stay below.
	DefaultMaxWords = 15
)

// Detector emits short, large-font lines as level-2 candidates.
type Detector struct {
	minFontSize float64
	maxWords    int
}

// Option configures the detector.
type Option func(*Detector)

// WithMinFontSize sets the font size threshold.
func WithMinFontSize(size float64) Option {
	return func(d *Detector) {
		if size > 0 {
			d.minFontSize = size
		}
	}
}

// WithMaxWords sets the word count limit.
func WithMaxWords(n int) Option {
	return func(d *Detector) {
		if n > 0 {
			d.maxWords = n
		}
	}
}

// New creates a font size detector with the given options.
func New(opts ...Option) *Detector {
	d := &Detector{
		minFontSize: DefaultMinFontSize,
		maxWords:    DefaultMaxWords,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Name returns the detector name.
func (d *Detector) Name() string {
	return string(domain.SourceFontSize)
}

// Detect returns every line with fewer than maxWords words whose largest
// span is bigger than minFontSize.
func (d *Detector) Detect(ctx context.Context, page driven.PDFPage, pageIndex int) ([]domain.HeadingCandidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var out []domain.HeadingCandidate
	for _, line := range page.Lines() {
		text := domain.CleanText(line.Text())
		if text == "" || len(strings.Fields(text)) >= d.maxWords {
			continue
		}
		if line.MaxSize() <= d.minFontSize {
			continue
		}
		out = append(out, domain.HeadingCandidate{
			Text:   text,
			Page:   pageIndex,
			Level:  2,
			Source: domain.SourceFontSize,
		})
	}
	return out, nil
}
