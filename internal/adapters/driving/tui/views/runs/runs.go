// Package runs shows the indexing run history and per-document outcomes.
package runs

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/folio/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/folio/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/folio/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/folio/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driving"
)

// listLimit caps how many runs are loaded.
const listLimit = 50

const timeLayout = "2006-01-02 15:04"

// View lists runs. Enter loads the outcomes of the selected run below it.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	statusbar *status.Bar

	runService driving.RunService
	identity   string
	ctx        context.Context

	runs     []domain.IndexRun
	selected int
	detailID string
	outcomes []domain.DocumentOutcome
	loading  bool
	err      error

	width  int
	height int
	ready  bool
}

// NewView creates a runs view. An empty identity lists runs for every index.
// A nil service renders a notice instead of the list.
func NewView(s *styles.Styles, km *keymap.KeyMap, runService driving.RunService, identity string) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	bar := status.NewBar(s, km)
	bar.SetHints(status.HintsRuns)
	bar.SetIdentity(identity)

	return &View{
		styles:     s,
		keymap:     km,
		statusbar:  bar,
		runService: runService,
		identity:   identity,
		ctx:        context.Background(),
		width:      80,
		height:     24,
	}
}

// WithContext sets the context used for loading.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init loads the run list.
func (v *View) Init() tea.Cmd {
	if v.runService == nil {
		return nil
	}
	v.loading = true
	v.statusbar.SetState(status.StateLoading)

	svc, ctx, identity := v.runService, v.ctx, v.identity
	return func() tea.Msg {
		runs, err := svc.List(ctx, identity, listLimit)
		return messages.RunsLoaded{Runs: runs, Err: err}
	}
}

func (v *View) loadDetail(id string) tea.Cmd {
	svc, ctx := v.runService, v.ctx
	return func() tea.Msg {
		_, outcomes, err := svc.Get(ctx, id)
		return messages.RunDetailLoaded{RunID: id, Outcomes: outcomes, Err: err}
	}
}

// Update handles messages for the view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)

	case messages.RunsLoaded:
		v.loading = false
		if msg.Err != nil {
			v.setError(msg.Err)
			return v, nil
		}
		v.err = nil
		v.runs = msg.Runs
		v.selected = 0
		v.detailID = ""
		v.outcomes = nil
		v.statusbar.SetState(status.StateReady)

	case messages.RunDetailLoaded:
		if msg.Err != nil {
			v.setError(msg.Err)
			return v, nil
		}
		v.detailID = msg.RunID
		v.outcomes = msg.Outcomes

	case tea.KeyMsg:
		return v.handleKey(msg)
	}
	return v, nil
}

func (v *View) handleKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	key := msg.String()
	switch {
	case msg.Type == tea.KeyEsc:
		if v.detailID != "" {
			v.detailID = ""
			v.outcomes = nil
			return v, nil
		}
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	case keymap.Matches(key, v.keymap.Up):
		if v.selected > 0 {
			v.selected--
		}
	case keymap.Matches(key, v.keymap.Down):
		if v.selected < len(v.runs)-1 {
			v.selected++
		}
	case keymap.Matches(key, v.keymap.Refresh):
		return v, v.Init()
	case keymap.Matches(key, v.keymap.Expand):
		if run := v.SelectedRun(); run != nil && v.runService != nil {
			if v.detailID == run.ID {
				v.detailID = ""
				v.outcomes = nil
				return v, nil
			}
			return v, v.loadDetail(run.ID)
		}
	}
	return v, nil
}

func (v *View) setError(err error) {
	v.err = err
	v.statusbar.SetState(status.StateError)
	v.statusbar.SetMessage(err.Error())
}

// View renders the run list and, when loaded, the selected run's outcomes.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := []string{v.styles.Title.Render("Indexing runs"), ""}

	switch {
	case v.runService == nil:
		sections = append(sections, v.styles.Muted.Render("Run history is not available."))
	case v.err != nil:
		sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()))
	case v.loading:
		sections = append(sections, v.styles.Muted.Render("Loading..."))
	case len(v.runs) == 0:
		sections = append(sections, v.styles.Muted.Render("No runs recorded."))
	default:
		sections = append(sections, v.renderRuns())
		if v.detailID != "" {
			sections = append(sections, "", v.renderOutcomes())
		}
	}

	sections = append(sections, "", v.statusbar.View())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (v *View) renderRuns() string {
	lines := make([]string, 0, len(v.runs))
	for i := range v.runs {
		run := &v.runs[i]
		line := fmt.Sprintf("%-10s %-16s %-10s %4d chunks  %s",
			shortID(run.ID), run.StartedAt.Local().Format(timeLayout),
			run.Status, run.Added, run.Identity)
		if i == v.selected {
			lines = append(lines, "> "+v.styles.Selected.Render(line))
			continue
		}
		style := v.styles.Normal
		if run.Status == domain.RunFailed {
			style = v.styles.Error
		}
		lines = append(lines, "  "+style.Render(line))
	}
	return strings.Join(lines, "\n")
}

func (v *View) renderOutcomes() string {
	run := v.runByID(v.detailID)
	var b strings.Builder
	if run != nil {
		b.WriteString(v.styles.Subtitle.Render(run.Folder))
		b.WriteString("\n")
		if run.FinishedAt != nil {
			b.WriteString(v.styles.Muted.Render("took " + run.FinishedAt.Sub(run.StartedAt).Round(time.Millisecond).String()))
			b.WriteString("\n")
		}
		if run.Error != "" {
			b.WriteString(v.styles.Error.Render(run.Error))
			b.WriteString("\n")
		}
	}
	if len(v.outcomes) == 0 {
		b.WriteString(v.styles.Muted.Render("No documents."))
		return b.String()
	}
	for _, o := range v.outcomes {
		line := fmt.Sprintf("%-12s %s", o.Status, o.Filename)
		if o.Chunks > 0 {
			line += fmt.Sprintf(" (%d chunks)", o.Chunks)
		}
		if o.Error != "" {
			line += ": " + o.Error
		}
		style := v.styles.Normal
		switch o.Status {
		case domain.DocumentFailed:
			style = v.styles.Error
		case domain.DocumentIndexed:
			style = v.styles.Success
		}
		b.WriteString("  " + style.Render(line) + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (v *View) runByID(id string) *domain.IndexRun {
	for i := range v.runs {
		if v.runs[i].ID == id {
			return &v.runs[i]
		}
	}
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// SetDimensions sets the view size.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
	v.statusbar.SetWidth(width)
}

// Runs returns the loaded runs.
func (v *View) Runs() []domain.IndexRun { return v.runs }

// SelectedRun returns the selected run, or nil when none are loaded.
func (v *View) SelectedRun() *domain.IndexRun {
	if v.selected < 0 || v.selected >= len(v.runs) {
		return nil
	}
	return &v.runs[v.selected]
}

// DetailID returns the id of the run whose outcomes are shown.
func (v *View) DetailID() string { return v.detailID }

// Err returns the last error.
func (v *View) Err() error { return v.err }
