// Package markdown detects headings in a page's markdown rendering.
package markdown

import (
	"bytes"
	"context"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
)

// Ensure Detector implements the interface.
var _ driven.HeadingDetector = (*Detector)(nil)

// DefaultMinLength is the shortest heading text accepted, in characters.
const DefaultMinLength = 4

// ruleArtifact marks text that came from a horizontal rule.
const ruleArtifact = "---"

var (
	boldLine   = regexp.MustCompile(`^\*\*(.+?)\*\*$`)
	deepHeader = regexp.MustCompile(`(?m)^([ \t]*)#{7,}([ \t])`)
)

// Detector turns markdown headings into candidates. Lines that are
// entirely bold are promoted to headings before parsing.
type Detector struct {
	minLength int
	md        goldmark.Markdown
}

// New creates a markdown heading detector.
func New() *Detector {
	return &Detector{
		minLength: DefaultMinLength,
		md:        goldmark.New(),
	}
}

// Name returns the detector name.
func (d *Detector) Name() string {
	return string(domain.SourceMarkdown)
}

// Detect renders the page to markdown and returns its headings.
func (d *Detector) Detect(ctx context.Context, page driven.PDFPage, pageIndex int) ([]domain.HeadingCandidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return d.Extract(RewriteBold(page.Markdown()), pageIndex), nil
}

// Extract parses markdown and returns one candidate per ATX heading.
// Levels deeper than six are clamped to six.
func (d *Detector) Extract(markdown string, pageIndex int) []domain.HeadingCandidate {
	src := []byte(deepHeader.ReplaceAllString(markdown, "${1}######${2}"))
	doc := d.md.Parser().Parse(text.NewReader(src))

	var out []domain.HeadingCandidate
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		h, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}
		if !isATX(h, src) {
			return ast.WalkSkipChildren, nil
		}

		title := domain.CleanText(string(rawText(h, src)))
		if utf8.RuneCountInString(title) < d.minLength || strings.Contains(title, ruleArtifact) {
			return ast.WalkSkipChildren, nil
		}

		level := domain.HeadingLevel(h.Level)
		if level > domain.MaxHeadingLevel {
			level = domain.MaxHeadingLevel
		}
		out = append(out, domain.HeadingCandidate{
			Text:   title,
			Page:   pageIndex,
			Level:  level,
			Source: domain.SourceMarkdown,
		})
		return ast.WalkSkipChildren, nil
	})
	return out
}

// RewriteBold turns lines that are entirely bold into headings.
// Bold text ending in a colon becomes a level-3 heading without the colon;
// any other bold line becomes a level-2 heading.
func RewriteBold(markdown string) string {
	lines := strings.Split(markdown, "\n")
	for i, line := range lines {
		m := boldLine.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}
		content := strings.TrimSpace(m[1])
		if strings.HasSuffix(content, ":") {
			lines[i] = "### " + strings.TrimSpace(strings.TrimSuffix(content, ":"))
		} else {
			lines[i] = "## " + content
		}
	}
	return strings.Join(lines, "\n")
}

// rawText returns the heading's source text, markup included.
func rawText(h *ast.Heading, src []byte) []byte {
	var buf bytes.Buffer
	lines := h.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(src))
	}
	return buf.Bytes()
}

// isATX reports whether the heading was written with leading hashes.
// Setext headings (a paragraph underlined by --- or ===) are not headings
// in a PDF rendering; the underline is a rule artifact.
func isATX(h *ast.Heading, src []byte) bool {
	lines := h.Lines()
	if lines.Len() == 0 {
		return false
	}
	start := lines.At(0).Start
	lineStart := bytes.LastIndexByte(src[:start], '\n') + 1
	return bytes.IndexByte(src[lineStart:start], '#') >= 0
}
