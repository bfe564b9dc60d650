package domain

import "strings"

// Rect is an axis-aligned box in page space.
// Y grows downwards from the top edge of the page.
type Rect struct {
	X0, Y0, X1, Y1 float64
}

// Span is a run of text drawn with a single font.
type Span struct {
	Text string
	Font string
	Size float64
	Bold bool
}

// Line is a row of spans sharing a baseline.
type Line struct {
	Spans []Span
	BBox  Rect
}

// Text joins the span texts and trims the result.
func (l Line) Text() string {
	var b strings.Builder
	for _, s := range l.Spans {
		b.WriteString(s.Text)
	}
	return strings.TrimSpace(b.String())
}

// MaxSize returns the largest span font size, or 0 for an empty line.
func (l Line) MaxSize() float64 {
	var size float64
	for _, s := range l.Spans {
		if s.Size > size {
			size = s.Size
		}
	}
	return size
}

// Block is a positioned paragraph of text on a page.
type Block struct {
	BBox Rect
	Text string
}
