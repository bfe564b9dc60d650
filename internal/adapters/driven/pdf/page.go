package pdf

import (
	"math"
	"sort"
	"strings"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
)

var _ driven.PDFPage = (*Page)(nil)

// maxHeaderLevels is the number of font sizes that map to markdown headers.
const maxHeaderLevels = 6

// Page holds the grouped text of one parsed page.
type Page struct {
	lines  []domain.Line
	blocks []domain.Block
}

func newPage(glyphs []glyph) *Page {
	lines := groupLines(glyphs)
	return &Page{
		lines:  lines,
		blocks: groupBlocks(lines),
	}
}

// Lines returns the page's lines, top to bottom.
func (p *Page) Lines() []domain.Line {
	return p.lines
}

// Blocks returns the page's paragraphs.
func (p *Page) Blocks() []domain.Block {
	return p.blocks
}

// Text returns one line of text per row.
func (p *Page) Text() string {
	texts := make([]string, len(p.lines))
	for i, l := range p.lines {
		texts[i] = l.Text()
	}
	return strings.Join(texts, "\n")
}

// Search returns the box of every line containing needle. When no single
// line does, paragraphs are searched with whitespace collapsed, so a
// needle wrapped across lines is still found.
func (p *Page) Search(needle string) []domain.Rect {
	needle = domain.NormalizeSpace(needle)
	if needle == "" {
		return nil
	}

	var out []domain.Rect
	for _, l := range p.lines {
		if strings.Contains(domain.NormalizeSpace(l.Text()), needle) {
			out = append(out, l.BBox)
		}
	}
	if len(out) > 0 {
		return out
	}
	for _, b := range p.blocks {
		if strings.Contains(domain.NormalizeSpace(b.Text), needle) {
			out = append(out, b.BBox)
		}
	}
	return out
}

// Markdown renders the page with header levels assigned by font size.
// The most common size by character count is body text; each larger
// size, biggest first, gets the next header level. Bold runs are
// wrapped in **.
func (p *Page) Markdown() string {
	levels := headerLevels(p.lines)

	var paras []string
	for _, b := range p.blocks {
		var body []string
		flush := func() {
			if len(body) > 0 {
				paras = append(paras, strings.Join(body, "\n"))
				body = nil
			}
		}
		for _, l := range p.linesIn(b) {
			if lvl := levels[sizeKey(l.MaxSize())]; lvl > 0 {
				flush()
				paras = append(paras, strings.Repeat("#", lvl)+" "+l.Text())
				continue
			}
			body = append(body, renderLine(l))
		}
		flush()
	}
	return strings.Join(paras, "\n\n")
}

// linesIn returns the lines that make up a block, in order.
func (p *Page) linesIn(b domain.Block) []domain.Line {
	var out []domain.Line
	for _, l := range p.lines {
		if l.BBox.Y0 >= b.BBox.Y0 && l.BBox.Y1 <= b.BBox.Y1 &&
			l.BBox.X0 >= b.BBox.X0 && l.BBox.X1 <= b.BBox.X1 {
			out = append(out, l)
		}
	}
	return out
}

func renderLine(l domain.Line) string {
	if allBold(l) {
		return "**" + l.Text() + "**"
	}
	var b strings.Builder
	for _, s := range l.Spans {
		text := s.Text
		if s.Bold && strings.TrimSpace(text) != "" {
			lead := text[:len(text)-len(strings.TrimLeft(text, " "))]
			trail := text[len(strings.TrimRight(text, " ")):]
			text = lead + "**" + strings.TrimSpace(text) + "**" + trail
		}
		b.WriteString(text)
	}
	return strings.TrimSpace(b.String())
}

func sizeKey(size float64) int {
	return int(math.Round(size))
}

// headerLevels maps rounded font sizes above the body size to 1..6.
func headerLevels(lines []domain.Line) map[int]int {
	counts := make(map[int]int)
	for _, l := range lines {
		for _, s := range l.Spans {
			counts[sizeKey(s.Size)] += len([]rune(strings.TrimSpace(s.Text)))
		}
	}

	body, best := 0, -1
	for size, n := range counts {
		if n > best || (n == best && size < body) {
			body, best = size, n
		}
	}

	var larger []int
	for size := range counts {
		if size > body {
			larger = append(larger, size)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(larger)))

	levels := make(map[int]int, len(larger))
	for i, size := range larger {
		if i >= maxHeaderLevels {
			break
		}
		levels[size] = i + 1
	}
	return levels
}
