package services

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
	"github.com/custodia-labs/folio/internal/logger"
)

// Title length bounds, in characters. A title must be longer than
// minTitleLength; a first-page line must also be shorter than maxTitleLength.
const (
	minTitleLength = 5
	maxTitleLength = 80
)

// ResolveTitle picks the document title, in priority order:
//  1. the metadata title, if it is long enough;
//  2. the largest-font line on the first page, topmost on ties;
//  3. the first long enough line of the first page's plain text.
//
// It returns "" when nothing qualifies.
func ResolveTitle(doc driven.PDFDocument) string {
	if meta := domain.CleanText(doc.MetadataTitle()); runeLen(meta) > minTitleLength {
		return meta
	}
	if doc.PageCount() == 0 {
		return ""
	}

	first, err := doc.Page(0)
	if err != nil {
		logger.Debug("title: first page unreadable: %v", err)
		return ""
	}

	if title := largestLine(first.Lines()); title != "" {
		return title
	}

	for _, line := range strings.Split(first.Text(), "\n") {
		if cleaned := domain.CleanText(line); runeLen(cleaned) > minTitleLength {
			return cleaned
		}
	}
	return ""
}

// fallbackTitle returns the first H1 candidate, or the first candidate.
func fallbackTitle(headings []domain.HeadingCandidate) string {
	for _, h := range headings {
		if h.Level == 1 {
			return h.Text
		}
	}
	if len(headings) > 0 {
		return headings[0].Text
	}
	return ""
}

// largestLine returns the biggest line whose length is within the title
// bounds. Lines of equal size are ranked top to bottom.
func largestLine(lines []domain.Line) string {
	type sized struct {
		text string
		size float64
		top  float64
	}

	candidates := make([]sized, 0, len(lines))
	for _, l := range lines {
		text := domain.CleanText(l.Text())
		if text == "" {
			continue
		}
		candidates = append(candidates, sized{text: text, size: l.MaxSize(), top: l.BBox.Y0})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].size != candidates[j].size {
			return candidates[i].size > candidates[j].size
		}
		return candidates[i].top < candidates[j].top
	})

	for _, c := range candidates {
		if n := runeLen(c.text); n > minTitleLength && n < maxTitleLength {
			return c.text
		}
	}
	return ""
}

// filterOutline drops headings that contain the title.
func filterOutline(headings []domain.HeadingCandidate, title string) []domain.HeadingCandidate {
	if title == "" {
		return headings
	}
	out := headings[:0:0]
	for _, h := range headings {
		if strings.Contains(h.Text, title) {
			continue
		}
		out = append(out, h)
	}
	return out
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
