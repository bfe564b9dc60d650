// Package search provides the query and results view.
package search

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/folio/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/folio/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/folio/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/folio/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/folio/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/folio/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driving"
)

// ErrNoSearchService is reported when a query is submitted without a service.
var ErrNoSearchService = errors.New("search service is required")

// View is the search screen: a query box over a result list.
// It starts in input mode and switches to results mode after a query.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.QueryInput
	list      *list.ResultList
	statusbar *status.Bar

	searchService driving.SearchService
	identity      string
	ctx           context.Context

	width      int
	height     int
	ready      bool
	err        error
	focusInput bool
	lastQuery  string
}

// NewView creates a search view bound to identity. An empty identity
// searches the configured default index.
func NewView(s *styles.Styles, km *keymap.KeyMap, searchService driving.SearchService, identity string) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	bar := status.NewBar(s, km)
	bar.SetIdentity(identity)

	return &View{
		styles:        s,
		keymap:        km,
		input:         input.NewQueryInput(s),
		list:          list.NewResultList(s),
		statusbar:     bar,
		searchService: searchService,
		identity:      identity,
		ctx:           context.Background(),
		width:         80,
		height:        24,
		focusInput:    true,
	}
}

// WithContext sets the context used for searches.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init starts the input cursor.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles messages for the view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKey(msg)

	case messages.SearchCompleted:
		v.handleSearchCompleted(msg)
		return v, nil

	case messages.ErrorOccurred:
		v.setError(msg.Err)
		return v, nil
	}

	var cmd tea.Cmd
	if v.focusInput {
		v.input, cmd = v.input.Update(msg)
	}
	return v, cmd
}

func (v *View) handleKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	if msg.Type == tea.KeyEsc {
		if !v.focusInput && v.list.Expanded() {
			v.list.ToggleExpanded()
			return v, nil
		}
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	}

	if v.focusInput {
		if msg.Type == tea.KeyEnter {
			query := v.input.Query()
			if query == "" {
				return v, nil
			}
			v.lastQuery = query
			v.err = nil
			v.statusbar.SetState(status.StateSearching)
			return v, v.performSearch(query)
		}
		var cmd tea.Cmd
		v.input, cmd = v.input.Update(msg)
		return v, cmd
	}

	if keymap.Matches(msg.String(), v.keymap.NewSearch) {
		v.focusInput = true
		v.input.SetValue("")
		v.statusbar.SetHints(status.HintsShort)
		return v, v.input.Focus()
	}

	v.list, _ = v.list.Update(msg)
	return v, nil
}

func (v *View) performSearch(query string) tea.Cmd {
	svc := v.searchService
	ctx := v.ctx
	opts := domain.SearchOptions{Identity: v.identity}
	return func() tea.Msg {
		if svc == nil {
			return messages.ErrorOccurred{Err: ErrNoSearchService}
		}
		results, err := svc.Search(ctx, query, opts)
		return messages.SearchCompleted{Query: query, Results: results, Err: err}
	}
}

func (v *View) handleSearchCompleted(msg messages.SearchCompleted) {
	// Ignore replies to queries that have since been replaced.
	if msg.Query != "" && msg.Query != v.lastQuery {
		return
	}
	if msg.Err != nil {
		v.setError(msg.Err)
		return
	}

	v.err = nil
	v.list.SetResults(msg.Results)
	v.statusbar.SetState(status.StateResults)
	v.statusbar.SetResultCount(len(msg.Results))
	v.statusbar.SetMessage("")

	if len(msg.Results) > 0 {
		v.focusInput = false
		v.input.Blur()
		v.statusbar.SetHints(status.HintsResults)
	}
}

func (v *View) setError(err error) {
	v.err = err
	v.statusbar.SetState(status.StateError)
	v.statusbar.SetMessage(err.Error())
}

// View renders the screen.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := []string{
		v.styles.Title.Render("folio"),
		"",
		v.input.View(),
		"",
	}
	if v.err != nil {
		sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()), "")
	}
	sections = append(sections, v.list.View(), "", v.statusbar.View())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetDimensions sizes the view and its components.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.input.SetWidth(width)
	v.list.SetDimensions(width, height-10)
	v.statusbar.SetWidth(width)
}

// Ready reports whether the view has dimensions.
func (v *View) Ready() bool { return v.ready }

// Query returns the text in the query box.
func (v *View) Query() string { return v.input.Value() }

// SetQuery replaces the text in the query box.
func (v *View) SetQuery(query string) { v.input.SetValue(query) }

// Results returns the displayed results.
func (v *View) Results() []domain.SearchResult { return v.list.Results() }

// SelectedIndex returns the selected result index.
func (v *View) SelectedIndex() int { return v.list.Selected() }

// SelectedResult returns the selected result, or nil.
func (v *View) SelectedResult() *domain.SearchResult { return v.list.SelectedResult() }

// Expanded reports whether the selected result shows its full snippet.
func (v *View) Expanded() bool { return v.list.Expanded() }

// Err returns the last error.
func (v *View) Err() error { return v.err }

// InputFocused reports whether keys go to the query box.
func (v *View) InputFocused() bool { return v.focusInput }

// Reset returns the view to an empty query in input mode.
func (v *View) Reset() {
	v.focusInput = true
	v.input.Focus()
	v.input.SetValue("")
	v.list.SetResults(nil)
	v.err = nil
	v.lastQuery = ""
	v.statusbar.Clear()
}
