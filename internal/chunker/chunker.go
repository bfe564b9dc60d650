// Package chunker normalises section text into retrieval-ready chunks.
package chunker

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
)

// Ensure Builder implements the interface.
var _ driven.ChunkBuilder = (*Builder)(nil)

// DefaultMinLength is the shortest chunk kept, in characters.
const DefaultMinLength = 30

var (
	bulletPrefix = regexp.MustCompile(`(?m)^[ \t]*(?:[•\-–]+|o)[ \t]+`)
	terminal     = regexp.MustCompile(`[.?!:,]$`)
)

// Builder composes "<title> - <content>" chunks from sections.
type Builder struct {
	minLength int
}

// Option configures the builder.
type Option func(*Builder)

// WithMinLength sets the minimum chunk length in characters.
func WithMinLength(n int) Option {
	return func(b *Builder) {
		if n >= 0 {
			b.minLength = n
		}
	}
}

// New creates a chunk builder with the given options.
func New(opts ...Option) *Builder {
	b := &Builder{
		minLength: DefaultMinLength,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build returns a chunk for each section whose composed text reaches the
// minimum length. Pages are carried over as-is (1-based).
func (b *Builder) Build(document string, sections []domain.Section) []domain.Chunk {
	chunks := make([]domain.Chunk, 0, len(sections))
	for _, sec := range sections {
		content := sec.Title + " - " + CombineLines(sec.Content)
		if utf8.RuneCountInString(strings.TrimSpace(content)) < b.minLength {
			continue
		}
		chunks = append(chunks, domain.Chunk{
			Document: document,
			Title:    sec.Title,
			Content:  content,
			Page:     sec.Page,
		})
	}
	return chunks
}

// CombineLines strips bullet markers and joins wrapped lines.
// A line ending in . ? ! : or , closes the running sentence; any other
// line is a fragment and is appended with ", ".
func CombineLines(s string) string {
	s = bulletPrefix.ReplaceAllString(s, "")

	var (
		result []string
		temp   string
	)
	for _, raw := range strings.Split(s, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if terminal.MatchString(line) {
			if temp != "" {
				result = append(result, strings.TrimSpace(temp+" "+line))
				temp = ""
			} else {
				result = append(result, line)
			}
			continue
		}
		if temp != "" {
			temp += ", " + line
		} else {
			temp = line
		}
	}
	if temp != "" {
		result = append(result, strings.TrimSpace(temp))
	}
	return strings.Join(result, " ")
}
