// Package status provides the status bar shown under each view.
package status

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/folio/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/folio/internal/adapters/driving/tui/styles"
)

// State is what the bar reports on its left side.
type State string

const (
	StateReady     State = "ready"
	StateSearching State = "searching"
	StateLoading   State = "loading"
	StateError     State = "error"
	StateResults   State = "results"
)

// Hints selects the keybinding hints on the right side.
type Hints int

const (
	HintsShort Hints = iota
	HintsResults
	HintsRuns
)

// Bar displays a state line and keybinding hints.
type Bar struct {
	styles   *styles.Styles
	keymap   *keymap.KeyMap
	state    State
	hints    Hints
	message  string
	count    int
	identity string
	width    int
}

// NewBar creates a status bar. Nil arguments fall back to defaults.
func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	return &Bar{styles: s, keymap: km, state: StateReady, width: 80}
}

// View renders the bar padded to its width.
func (b *Bar) View() string {
	left := b.renderLeft()
	right := b.renderRight()

	padding := b.width - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 1 {
		padding = 1
	}
	return b.styles.StatusBar.Width(b.width).Render(left + strings.Repeat(" ", padding) + right)
}

func (b *Bar) renderLeft() string {
	var left string
	switch b.state {
	case StateSearching:
		left = b.styles.Muted.Render("Searching...")
	case StateLoading:
		left = b.styles.Muted.Render("Loading...")
	case StateError:
		if b.message != "" {
			left = b.styles.Error.Render("Error: " + b.message)
		} else {
			left = b.styles.Error.Render("Error")
		}
	case StateReady, StateResults:
		switch {
		case b.count == 1:
			left = b.styles.Normal.Render("1 passage")
		case b.count > 1:
			left = b.styles.Normal.Render(fmt.Sprintf("%d passages", b.count))
		default:
			left = b.styles.Muted.Render("Ready")
		}
	}
	if b.identity != "" {
		left += b.styles.Muted.Render("  [" + b.identity + "]")
	}
	return left
}

func (b *Bar) renderRight() string {
	var bindings []key.Binding
	switch b.hints {
	case HintsResults:
		bindings = b.keymap.ResultsHelp()
	case HintsRuns:
		bindings = b.keymap.RunsHelp()
	default:
		bindings = b.keymap.ShortHelp()
	}

	parts := make([]string, 0, len(bindings))
	for _, binding := range bindings {
		h := binding.Help()
		parts = append(parts, h.Key+": "+h.Desc)
	}
	return b.styles.Muted.Render(strings.Join(parts, " | "))
}

// SetState sets the reported state.
func (b *Bar) SetState(state State) { b.state = state }

// State returns the reported state.
func (b *Bar) State() State { return b.state }

// SetHints selects which hints to show.
func (b *Bar) SetHints(h Hints) { b.hints = h }

// SetMessage sets the error message.
func (b *Bar) SetMessage(message string) { b.message = message }

// Message returns the error message.
func (b *Bar) Message() string { return b.message }

// SetResultCount sets the number of passages shown.
func (b *Bar) SetResultCount(count int) { b.count = count }

// ResultCount returns the number of passages shown.
func (b *Bar) ResultCount() int { return b.count }

// SetIdentity sets the index identity shown next to the state.
func (b *Bar) SetIdentity(identity string) { b.identity = identity }

// SetWidth sets the bar width.
func (b *Bar) SetWidth(width int) { b.width = width }

// Width returns the bar width.
func (b *Bar) Width() int { return b.width }

// Clear resets state, message and count.
func (b *Bar) Clear() {
	b.state = StateReady
	b.hints = HintsShort
	b.message = ""
	b.count = 0
}
