package services

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
)

// fakeLine is a single-span line at a vertical offset.
type fakeLine struct {
	text string
	size float64
	y    float64
}

// fakePage implements driven.PDFPage over a list of lines.
// Unless blocks are set, every line is its own block.
type fakePage struct {
	lines    []fakeLine
	blocks   []domain.Block
	markdown string
}

func page(lines ...fakeLine) *fakePage {
	return &fakePage{lines: lines}
}

func (p *fakePage) withBlocks(blocks ...domain.Block) *fakePage {
	p.blocks = blocks
	return p
}

func (p *fakePage) withMarkdown(md string) *fakePage {
	p.markdown = md
	return p
}

func (p *fakePage) Lines() []domain.Line {
	out := make([]domain.Line, 0, len(p.lines))
	for _, l := range p.lines {
		out = append(out, domain.Line{
			Spans: []domain.Span{{Text: l.text, Size: l.size}},
			BBox:  domain.Rect{X0: 50, Y0: l.y, X1: 500, Y1: l.y + l.size},
		})
	}
	return out
}

func (p *fakePage) Blocks() []domain.Block {
	if p.blocks != nil {
		return p.blocks
	}
	out := make([]domain.Block, 0, len(p.lines))
	for _, l := range p.lines {
		out = append(out, domain.Block{
			BBox: domain.Rect{X0: 50, Y0: l.y, X1: 500, Y1: l.y + l.size},
			Text: l.text,
		})
	}
	return out
}

func (p *fakePage) Text() string {
	texts := make([]string, 0, len(p.lines))
	for _, l := range p.lines {
		texts = append(texts, l.text)
	}
	return strings.Join(texts, "\n")
}

func (p *fakePage) Search(needle string) []domain.Rect {
	var out []domain.Rect
	for _, b := range p.Blocks() {
		if strings.Contains(b.Text, needle) {
			out = append(out, b.BBox)
		}
	}
	return out
}

// Markdown renders 18pt+ lines as H1 and 14pt+ lines as H2 unless a
// fixed rendering was given.
func (p *fakePage) Markdown() string {
	if p.markdown != "" {
		return p.markdown
	}
	var parts []string
	for _, l := range p.lines {
		switch {
		case l.size >= 18:
			parts = append(parts, "# "+l.text)
		case l.size >= 14:
			parts = append(parts, "## "+l.text)
		default:
			parts = append(parts, l.text)
		}
	}
	return strings.Join(parts, "\n\n")
}

// fakeDoc implements driven.PDFDocument.
type fakeDoc struct {
	title   string
	pages   []*fakePage
	pageErr map[int]error
	panics  bool
	closed  bool
}

func doc(pages ...*fakePage) *fakeDoc {
	return &fakeDoc{pages: pages}
}

func (d *fakeDoc) PageCount() int        { return len(d.pages) }
func (d *fakeDoc) MetadataTitle() string { return d.title }
func (d *fakeDoc) Close() error          { d.closed = true; return nil }

func (d *fakeDoc) Page(i int) (driven.PDFPage, error) {
	if d.panics {
		panic("malformed xref table")
	}
	if err := d.pageErr[i]; err != nil {
		return nil, err
	}
	if i < 0 || i >= len(d.pages) {
		return nil, fmt.Errorf("page %d out of range", i)
	}
	return d.pages[i], nil
}

// fakeReader serves documents by file name.
type fakeReader struct {
	docs   map[string]*fakeDoc
	opened []string
}

func (r *fakeReader) Open(path string) (driven.PDFDocument, error) {
	name := filepath.Base(path)
	r.opened = append(r.opened, name)
	d, ok := r.docs[name]
	if !ok {
		return nil, &domain.DocumentReadError{Filename: name, Err: fmt.Errorf("not a PDF")}
	}
	return d, nil
}
