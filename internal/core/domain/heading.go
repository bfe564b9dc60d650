package domain

import "fmt"

// HeadingLevel is the outline depth of a heading, 1 (H1) to 6 (H6).
type HeadingLevel int

// MaxHeadingLevel is the deepest level a heading can have.
const MaxHeadingLevel HeadingLevel = 6

// String returns the level in "H2" form.
func (l HeadingLevel) String() string {
	return fmt.Sprintf("H%d", int(l))
}

// DetectionSource names the strategy that proposed a heading candidate.
type DetectionSource string

// Known detection sources.
const (
	// SourceMarkdown marks candidates read from the page's markdown rendering.
	SourceMarkdown DetectionSource = "markdown"

	// SourceFontSize marks candidates inferred from large font lines.
	SourceFontSize DetectionSource = "font_size"
)

// HeadingCandidate is a heading proposed by a detector.
// It has no position on the page until it is resolved.
type HeadingCandidate struct {
	// Text is the cleaned heading text.
	Text string `json:"text"`

	// Page is the 0-based page index.
	Page int `json:"page"`

	// Level is the outline depth.
	Level HeadingLevel `json:"level"`

	// Source is the detector that proposed it.
	Source DetectionSource `json:"source"`
}

// Key identifies a candidate for deduplication.
func (h HeadingCandidate) Key() HeadingKey {
	return HeadingKey{Text: h.Text, Page: h.Page}
}

// HeadingKey is the (text, page) pair candidates are deduplicated by.
type HeadingKey struct {
	Text string
	Page int
}

// UnresolvedOffset is the sort offset of a heading whose position is unknown.
// It places the heading at the top of its page.
const UnresolvedOffset = -1.0

// ResolvedHeading is a candidate with its vertical position determined.
type ResolvedHeading struct {
	HeadingCandidate

	// Offset is the top of the matching line, valid when Resolved is set.
	Offset float64

	// Resolved reports whether a position was found on the page.
	Resolved bool

	// FontSize is the largest font size seen on the matching line.
	FontSize float64
}

// SortOffset returns Offset, or UnresolvedOffset when the position is unknown.
func (h ResolvedHeading) SortOffset() float64 {
	if !h.Resolved {
		return UnresolvedOffset
	}
	return h.Offset
}

// Before reports whether h comes before o in reading order.
func (h ResolvedHeading) Before(o ResolvedHeading) bool {
	if h.Page != o.Page {
		return h.Page < o.Page
	}
	return h.SortOffset() < o.SortOffset()
}
