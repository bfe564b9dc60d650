// Package messages defines the Bubbletea messages passed between views.
package messages

import (
	"github.com/custodia-labs/folio/internal/core/domain"
)

// ViewType identifies which view is active.
type ViewType int

const (
	// ViewMenu is the start menu.
	ViewMenu ViewType = iota
	// ViewSearch is the query box and ranked passages.
	ViewSearch
	// ViewRuns is the indexing run history.
	ViewRuns
	// ViewHelp lists keybindings.
	ViewHelp
)

// String returns the view name.
func (v ViewType) String() string {
	switch v {
	case ViewMenu:
		return "menu"
	case ViewSearch:
		return "search"
	case ViewRuns:
		return "runs"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ViewChanged asks the app to switch views.
type ViewChanged struct {
	View ViewType
}

// SearchCompleted carries search results back to the search view.
type SearchCompleted struct {
	Query   string
	Results []domain.SearchResult
	Err     error
}

// RunsLoaded carries the run history.
type RunsLoaded struct {
	Runs []domain.IndexRun
	Err  error
}

// RunDetailLoaded carries the outcomes of one run.
type RunDetailLoaded struct {
	RunID    string
	Outcomes []domain.DocumentOutcome
	Err      error
}

// ErrorOccurred reports an error to the active view.
type ErrorOccurred struct {
	Err error
}

// Quit asks the app to exit.
type Quit struct{}
