package pdf

import (
	"math"
	"sort"
	"strings"

	"github.com/custodia-labs/folio/internal/core/domain"
)

// Grouping thresholds, as fractions of the font size.
const (
	// rowTolerance is how far baselines may drift within one row.
	rowTolerance = 0.3

	// spaceGap is the horizontal gap that implies a word break.
	spaceGap = 0.15

	// columnGap is the horizontal gap that splits a row into two lines.
	columnGap = 3.0

	// paragraphGap is the vertical gap that ends a block.
	paragraphGap = 0.7

	// ascent approximates the glyph height above the baseline.
	ascent = 0.9
)

// glyph is one text show operation in top-down page space.
// y is the baseline.
type glyph struct {
	text string
	font string
	size float64
	x, y float64
	w    float64
}

func (g glyph) right() float64 { return g.x + g.w }

// isBoldFont reports whether a PostScript font name denotes a bold face.
// Subset prefixes such as "ABCDEF+" are ignored.
func isBoldFont(name string) bool {
	if _, after, ok := strings.Cut(name, "+"); ok {
		name = after
	}
	lower := strings.ToLower(name)
	for _, w := range []string{"bold", "black", "heavy", "semibold", "demi"} {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

// groupLines clusters glyphs into rows by baseline, orders each row left
// to right and splits rows at wide gaps. Lines come back top to bottom.
func groupLines(glyphs []glyph) []domain.Line {
	if len(glyphs) == 0 {
		return nil
	}

	sorted := append([]glyph(nil), glyphs...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].y < sorted[j].y })

	var rows [][]glyph
	var rowY float64
	for _, g := range sorted {
		n := len(rows)
		if n > 0 && math.Abs(g.y-rowY) <= math.Max(1, rowTolerance*g.size) {
			rows[n-1] = append(rows[n-1], g)
			continue
		}
		rows = append(rows, []glyph{g})
		rowY = g.y
	}

	var lines []domain.Line
	for _, row := range rows {
		sort.SliceStable(row, func(i, j int) bool { return row[i].x < row[j].x })

		start := 0
		for i := 1; i <= len(row); i++ {
			if i < len(row) && row[i].x-row[i-1].right() <= columnGap*row[i].size {
				continue
			}
			if line, ok := buildLine(row[start:i]); ok {
				lines = append(lines, line)
			}
			start = i
		}
	}
	return lines
}

// buildLine merges a left-to-right glyph run into font spans.
func buildLine(run []glyph) (domain.Line, bool) {
	var (
		spans []domain.Span
		b     strings.Builder
		cur   *glyph
		box   = domain.Rect{X0: math.Inf(1), Y0: math.Inf(1), X1: math.Inf(-1), Y1: math.Inf(-1)}
	)

	flush := func() {
		if cur != nil && b.Len() > 0 {
			spans = append(spans, domain.Span{
				Text: b.String(),
				Font: cur.font,
				Size: cur.size,
				Bold: isBoldFont(cur.font),
			})
		}
		b.Reset()
	}

	var prev *glyph
	for i := range run {
		g := &run[i]
		if cur == nil || g.font != cur.font || g.size != cur.size {
			flush()
			cur = g
		}
		if prev != nil && g.x-prev.right() > spaceGap*g.size &&
			!strings.HasSuffix(prev.text, " ") && !strings.HasPrefix(g.text, " ") {
			b.WriteByte(' ')
		}
		b.WriteString(g.text)
		prev = g

		box.X0 = math.Min(box.X0, g.x)
		box.X1 = math.Max(box.X1, g.right())
		box.Y0 = math.Min(box.Y0, g.y-ascent*g.size)
		box.Y1 = math.Max(box.Y1, g.y)
	}
	flush()

	line := domain.Line{Spans: spans, BBox: box}
	return line, line.Text() != ""
}

// allBold reports whether every non-blank span of the line is bold.
func allBold(l domain.Line) bool {
	seen := false
	for _, s := range l.Spans {
		if strings.TrimSpace(s.Text) == "" {
			continue
		}
		if !s.Bold {
			return false
		}
		seen = true
	}
	return seen
}

// sameStyle reports whether two lines belong in one paragraph by font.
func sameStyle(a, b domain.Line) bool {
	return math.Abs(a.MaxSize()-b.MaxSize()) < 0.5 && allBold(a) == allBold(b)
}

// groupBlocks merges vertically adjacent, horizontally overlapping lines
// of the same style into paragraphs.
func groupBlocks(lines []domain.Line) []domain.Block {
	type para struct {
		box   domain.Rect
		lines []domain.Line
	}

	var paras []*para
	for _, l := range lines {
		var target *para
		for i := len(paras) - 1; i >= 0; i-- {
			p := paras[i]
			last := p.lines[len(p.lines)-1]
			overlaps := l.BBox.X0 < p.box.X1 && l.BBox.X1 > p.box.X0
			gap := l.BBox.Y0 - last.BBox.Y1
			if overlaps && gap <= paragraphGap*l.MaxSize() && sameStyle(last, l) {
				target = p
			}
			if overlaps {
				break
			}
		}
		if target == nil {
			paras = append(paras, &para{box: l.BBox, lines: []domain.Line{l}})
			continue
		}
		target.lines = append(target.lines, l)
		target.box = union(target.box, l.BBox)
	}

	blocks := make([]domain.Block, 0, len(paras))
	for _, p := range paras {
		texts := make([]string, len(p.lines))
		for i, l := range p.lines {
			texts[i] = l.Text()
		}
		blocks = append(blocks, domain.Block{BBox: p.box, Text: strings.Join(texts, "\n")})
	}
	return blocks
}

func union(a, b domain.Rect) domain.Rect {
	return domain.Rect{
		X0: math.Min(a.X0, b.X0),
		Y0: math.Min(a.Y0, b.Y0),
		X1: math.Max(a.X1, b.X1),
		Y1: math.Max(a.Y1, b.Y1),
	}
}
