// Package tui provides the interactive terminal interface for folio.
package tui

import (
	"errors"

	"github.com/custodia-labs/folio/internal/core/ports/driving"
)

// ErrMissingSearchService is returned by Validate when Search is nil.
var ErrMissingSearchService = errors.New("tui: search service is required")

// Ports aggregates the driving ports the TUI uses.
type Ports struct {
	// Search answers queries. Required.
	Search driving.SearchService

	// Runs lists indexing runs. Optional; the runs view shows a notice without it.
	Runs driving.RunService

	// Identity selects the index to search. Empty means the configured default.
	Identity string
}

// Validate ensures the required ports are set.
func (p *Ports) Validate() error {
	if p.Search == nil {
		return ErrMissingSearchService
	}
	return nil
}
