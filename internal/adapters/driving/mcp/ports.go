package mcp

import (
	"github.com/custodia-labs/folio/internal/core/ports/driving"
)

// Ports aggregates the driving ports the MCP server calls into.
type Ports struct {
	// Search answers queries. Required.
	Search driving.SearchService

	// Index builds indexes. The index tool is omitted when nil.
	Index driving.IndexService

	// Outline extracts PDF outlines. The outline tool is omitted when nil.
	Outline driving.OutlineService

	// Runs reads the run ledger. Run resources are empty when nil.
	Runs driving.RunService

	// DefaultIdentity is used when a tool call names no identity.
	DefaultIdentity string
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Search == nil {
		return ErrMissingSearchService
	}
	return nil
}
