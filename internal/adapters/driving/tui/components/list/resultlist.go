// Package list renders ranked passages as a navigable list.
package list

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/folio/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/folio/internal/core/domain"
)

// linesPerResult is the height of one collapsed entry.
const linesPerResult = 3

// ResultList displays search results with an optional expanded entry.
type ResultList struct {
	results  []domain.SearchResult
	selected int
	expanded bool
	styles   *styles.Styles
	width    int
	height   int
}

// NewResultList creates an empty list.
func NewResultList(s *styles.Styles) *ResultList {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &ResultList{styles: s, width: 80, height: 10}
}

// Update handles navigation keys.
func (r *ResultList) Update(msg tea.Msg) (*ResultList, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return r, nil
	}
	switch keyMsg.String() {
	case "up", "k":
		r.MoveUp()
	case "down", "j":
		r.MoveDown()
	case "enter", " ":
		r.ToggleExpanded()
	}
	return r, nil
}

// View renders the visible window of results.
func (r *ResultList) View() string {
	if len(r.results) == 0 {
		return r.styles.Muted.Render("No relevant passages found.")
	}

	lines := []string{
		r.styles.Subtitle.Render(fmt.Sprintf("Passages (%d)", len(r.results))),
		"",
	}

	start, end := r.window()
	for i := start; i < end; i++ {
		lines = append(lines, r.renderResult(i, &r.results[i]))
	}
	return strings.Join(lines, "\n")
}

// window returns the half-open range of entries that fit the height,
// keeping the selection visible.
func (r *ResultList) window() (int, int) {
	visible := max((r.height-4)/linesPerResult, 1)
	if r.expanded {
		visible = max(visible-2, 1)
	}
	start := 0
	if r.selected >= visible {
		start = r.selected - visible + 1
	}
	return start, min(start+visible, len(r.results))
}

func (r *ResultList) renderResult(index int, result *domain.SearchResult) string {
	selected := index == r.selected
	indicator := "  "
	if selected {
		indicator = "> "
	}

	title := result.Title
	if title == "" {
		title = "(untitled section)"
	}
	title = truncate(title, max(r.width-20, 10))
	score := fmt.Sprintf("%.3f", result.Score)

	var head string
	if selected {
		head = r.styles.Selected.Render(indicator + title + "  " + score)
	} else {
		head = r.styles.Normal.Render(indicator+title+"  ") + r.styles.Muted.Render(score)
	}

	meta := r.styles.Subtitle.Render(fmt.Sprintf("    %s p.%d", result.PDFName, result.PageNo))

	snippet := result.Snippet
	if !(selected && r.expanded) {
		snippet = truncate(strings.Join(strings.Fields(snippet), " "), max(r.width-6, 20))
	}
	body := r.styles.Muted.Render(indent(snippet, "    "))

	return head + "\n" + meta + "\n" + body
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-3]) + "..."
}

func indent(s, prefix string) string {
	return prefix + strings.ReplaceAll(s, "\n", "\n"+prefix)
}

// SetResults replaces the results and resets the selection.
func (r *ResultList) SetResults(results []domain.SearchResult) {
	r.results = results
	r.selected = 0
	r.expanded = false
}

// Results returns the current results.
func (r *ResultList) Results() []domain.SearchResult { return r.results }

// Selected returns the selected index.
func (r *ResultList) Selected() int { return r.selected }

// SetSelected moves the selection when index is in range.
func (r *ResultList) SetSelected(index int) {
	if index >= 0 && index < len(r.results) {
		r.selected = index
	}
}

// SelectedResult returns the selected result, or nil when empty.
func (r *ResultList) SelectedResult() *domain.SearchResult {
	if r.selected < 0 || r.selected >= len(r.results) {
		return nil
	}
	return &r.results[r.selected]
}

// Expanded reports whether the selected entry shows its full snippet.
func (r *ResultList) Expanded() bool { return r.expanded }

// ToggleExpanded flips the expanded state of the selected entry.
func (r *ResultList) ToggleExpanded() {
	if len(r.results) > 0 {
		r.expanded = !r.expanded
	}
}

// MoveUp moves the selection up and collapses it.
func (r *ResultList) MoveUp() {
	if r.selected > 0 {
		r.selected--
		r.expanded = false
	}
}

// MoveDown moves the selection down and collapses it.
func (r *ResultList) MoveDown() {
	if r.selected < len(r.results)-1 {
		r.selected++
		r.expanded = false
	}
}

// SetDimensions sets the render area.
func (r *ResultList) SetDimensions(width, height int) {
	r.width = width
	r.height = height
}

// Count returns the number of results.
func (r *ResultList) Count() int { return len(r.results) }

// IsEmpty reports whether there are no results.
func (r *ResultList) IsEmpty() bool { return len(r.results) == 0 }
