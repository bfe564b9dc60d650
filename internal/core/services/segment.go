package services

import (
	"context"
	"math"
	"sort"
	"strings"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
	"github.com/custodia-labs/folio/internal/logger"
)

// offsetTolerance absorbs rounding between line and block coordinates.
const offsetTolerance = 0.5

// Segmenter turns an unordered heading set into ordered sections.
type Segmenter struct {
	maxLevel domain.HeadingLevel
}

// NewSegmenter creates a segmenter keeping headings up to maxLevel.
// A maxLevel of zero or less keeps every level.
func NewSegmenter(maxLevel int) *Segmenter {
	return &Segmenter{maxLevel: domain.HeadingLevel(maxLevel)}
}

// Segment orders the headings by page position and extracts the text
// between each heading and the next. The last section runs to the end
// of the document. No valid headings means no sections.
func (s *Segmenter) Segment(ctx context.Context, doc driven.PDFDocument, headings []domain.HeadingCandidate) ([]domain.Section, error) {
	pages := newPageCache(doc)

	valid := s.validate(headings, doc.PageCount())
	resolved := make([]domain.ResolvedHeading, 0, len(valid))
	for _, h := range valid {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page, err := pages.get(h.Page)
		if err != nil {
			logger.Debug("segment: page %d unreadable, %q left unresolved: %v", h.Page+1, h.Text, err)
			resolved = append(resolved, domain.ResolvedHeading{HeadingCandidate: h})
			continue
		}
		resolved = append(resolved, ResolveHeading(page, h))
	}

	sort.SliceStable(resolved, func(i, j int) bool {
		return resolved[i].Before(resolved[j])
	})

	sections := make([]domain.Section, 0, len(resolved))
	for i, h := range resolved {
		var next *domain.ResolvedHeading
		if i+1 < len(resolved) {
			next = &resolved[i+1]
		}
		sections = append(sections, domain.Section{
			Title:   h.Text,
			Content: s.extract(pages, h, next),
			Page:    h.Page + 1,
		})
	}
	return sections, nil
}

// validate cleans candidate text, drops empty or out of range headings,
// applies the level cap and removes (text, page) duplicates.
func (s *Segmenter) validate(headings []domain.HeadingCandidate, pageCount int) []domain.HeadingCandidate {
	seen := make(map[domain.HeadingKey]bool, len(headings))
	out := make([]domain.HeadingCandidate, 0, len(headings))
	for _, h := range headings {
		h.Text = domain.CleanText(h.Text)
		if h.Text == "" || h.Page < 0 || h.Page >= pageCount {
			continue
		}
		if s.maxLevel > 0 && h.Level > s.maxLevel {
			continue
		}
		if seen[h.Key()] {
			continue
		}
		seen[h.Key()] = true
		out = append(out, h)
	}
	return out
}

// extract collects block text from h's position up to next's position.
// Interior pages are taken whole; only the boundary pages are cut.
func (s *Segmenter) extract(pages *pageCache, h domain.ResolvedHeading, next *domain.ResolvedHeading) string {
	lastPage := pages.count() - 1
	endOffset := math.Inf(1)
	if next != nil {
		lastPage = next.Page
		endOffset = next.SortOffset()
	}
	startOffset := h.SortOffset()

	var parts []string
	stripped := false
	for p := h.Page; p <= lastPage; p++ {
		page, err := pages.get(p)
		if err != nil {
			logger.Debug("segment: skipping unreadable page %d: %v", p+1, err)
			continue
		}
		for _, b := range sortedBlocks(page.Blocks()) {
			if p == h.Page && b.BBox.Y0 < startOffset-offsetTolerance {
				continue
			}
			if next != nil && p == lastPage && b.BBox.Y0 >= endOffset-offsetTolerance {
				continue
			}
			text := b.Text
			if !stripped && p == h.Page {
				stripped = true
				text = stripHeading(text, h.Text)
			}
			if strings.TrimSpace(text) != "" {
				parts = append(parts, text)
			}
		}
	}
	return strings.Join(parts, "\n")
}

// ResolveHeading finds the vertical position of h on its page.
// Line matches win over a literal search; among line matches the topmost
// is chosen, then the largest.
func ResolveHeading(page driven.PDFPage, h domain.HeadingCandidate) domain.ResolvedHeading {
	out := domain.ResolvedHeading{HeadingCandidate: h}

	matches := 0
	for _, line := range page.Lines() {
		if !lineMatches(domain.CleanText(line.Text()), h.Text) {
			continue
		}
		matches++
		size := line.MaxSize()
		if !out.Resolved || line.BBox.Y0 < out.Offset ||
			(line.BBox.Y0 == out.Offset && size > out.FontSize) {
			out.Offset = line.BBox.Y0
			out.FontSize = size
			out.Resolved = true
		}
	}
	if matches > 1 {
		logger.Debug("segment: %q matches %d lines on page %d, using offset %.1f",
			h.Text, matches, h.Page+1, out.Offset)
	}
	if out.Resolved {
		return out
	}

	if rects := page.Search(h.Text); len(rects) > 0 {
		out.Offset = rects[0].Y0
		out.Resolved = true
		return out
	}

	logger.Debug("segment: %q not found on page %d", h.Text, h.Page+1)
	return out
}

func lineMatches(line, title string) bool {
	if line == "" {
		return false
	}
	if line == title {
		return true
	}
	if strings.TrimSuffix(line, ":") == strings.TrimSuffix(title, ":") {
		return true
	}
	return strings.Contains(line, title)
}

// stripHeading removes a leading line that repeats the heading.
func stripHeading(text, title string) string {
	first, rest, _ := strings.Cut(text, "\n")
	cleaned := domain.CleanText(first)
	if cleaned == title || strings.TrimSuffix(cleaned, ":") == strings.TrimSuffix(title, ":") {
		return rest
	}
	if strings.HasPrefix(cleaned, title) {
		return strings.TrimSpace(strings.TrimPrefix(cleaned, title)) + rejoin(rest)
	}
	return text
}

func rejoin(rest string) string {
	if rest == "" {
		return ""
	}
	return "\n" + rest
}

func sortedBlocks(blocks []domain.Block) []domain.Block {
	out := append([]domain.Block(nil), blocks...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].BBox.Y0 != out[j].BBox.Y0 {
			return out[i].BBox.Y0 < out[j].BBox.Y0
		}
		return out[i].BBox.X0 < out[j].BBox.X0
	})
	return out
}

// pageCache opens each page at most once per document.
type pageCache struct {
	doc   driven.PDFDocument
	pages map[int]driven.PDFPage
	errs  map[int]error
}

func newPageCache(doc driven.PDFDocument) *pageCache {
	return &pageCache{
		doc:   doc,
		pages: make(map[int]driven.PDFPage),
		errs:  make(map[int]error),
	}
}

func (c *pageCache) count() int {
	return c.doc.PageCount()
}

func (c *pageCache) get(index int) (driven.PDFPage, error) {
	if p, ok := c.pages[index]; ok {
		return p, nil
	}
	if err, ok := c.errs[index]; ok {
		return nil, err
	}
	p, err := c.doc.Page(index)
	if err != nil {
		c.errs[index] = err
		return nil, err
	}
	c.pages[index] = p
	return p, nil
}
