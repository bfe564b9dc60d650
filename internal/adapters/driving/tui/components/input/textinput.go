// Package input provides the query box.
package input

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/folio/internal/adapters/driving/tui/styles"
)

const (
	queryCharLimit = 512
	labelWidth     = 10
	minInputWidth  = 20
)

// QueryInput wraps a bubbles text input for search queries.
type QueryInput struct {
	model  textinput.Model
	styles *styles.Styles
	width  int
}

// NewQueryInput creates a focused, empty query box.
func NewQueryInput(s *styles.Styles) *QueryInput {
	if s == nil {
		s = styles.DefaultStyles()
	}

	ti := textinput.New()
	ti.Placeholder = "Ask something about your PDFs..."
	ti.CharLimit = queryCharLimit
	ti.Width = 50
	ti.Focus()

	return &QueryInput{model: ti, styles: s, width: 50}
}

// Init starts the cursor blinking.
func (q *QueryInput) Init() tea.Cmd {
	return textinput.Blink
}

// Update forwards msg to the text input.
func (q *QueryInput) Update(msg tea.Msg) (*QueryInput, tea.Cmd) {
	var cmd tea.Cmd
	q.model, cmd = q.model.Update(msg)
	return q, cmd
}

// View renders the label and box on one line.
func (q *QueryInput) View() string {
	label := q.styles.Title.Render("Query: ")
	box := q.styles.InputField.Render(q.model.View())
	return lipgloss.JoinHorizontal(lipgloss.Center, label, box)
}

// Value returns the raw text.
func (q *QueryInput) Value() string { return q.model.Value() }

// Query returns the text with surrounding whitespace removed.
func (q *QueryInput) Query() string { return strings.TrimSpace(q.model.Value()) }

// SetValue replaces the text.
func (q *QueryInput) SetValue(value string) { q.model.SetValue(value) }

// Focus gives the box keyboard focus.
func (q *QueryInput) Focus() tea.Cmd { return q.model.Focus() }

// Blur removes keyboard focus.
func (q *QueryInput) Blur() { q.model.Blur() }

// Focused reports whether the box has focus.
func (q *QueryInput) Focused() bool { return q.model.Focused() }

// SetWidth sizes the box to fit width including the label.
func (q *QueryInput) SetWidth(width int) {
	q.width = width
	q.model.Width = max(width-labelWidth, minInputWidth)
}

// Width returns the width last set.
func (q *QueryInput) Width() int { return q.width }

// Reset clears the text.
func (q *QueryInput) Reset() { q.model.Reset() }
