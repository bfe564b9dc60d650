package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/folio/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for folio resources.
	uriScheme = "folio://"

	runsURI = uriScheme + "runs"
)

// runDetail is the body of a single run resource.
type runDetail struct {
	*domain.IndexRun
	Documents []domain.DocumentOutcome `json:"documents"`
}

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         runsURI,
		Name:        "runs",
		Description: "Recent indexing runs, newest first",
		MIMEType:    "application/json",
	}, s.handleRunsResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: runsURI + "/{runId}",
		Name:        "run",
		Description: "One indexing run with its per-document outcomes",
		MIMEType:    "application/json",
	}, s.handleRunResource)
}

// handleRunsResource lists recent runs.
func (s *Server) handleRunsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Runs == nil {
		return jsonResult(req.Params.URI, []domain.IndexRun{})
	}

	runs, err := s.ports.Runs.List(ctx, "", 0)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	if runs == nil {
		runs = []domain.IndexRun{}
	}
	return jsonResult(req.Params.URI, runs)
}

// handleRunResource returns one run and its outcomes.
func (s *Server) handleRunResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Runs == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	runID := extractRunID(req.Params.URI)
	if runID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	run, outcomes, err := s.ports.Runs.Get(ctx, runID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("getting run: %w", err)
	}
	if outcomes == nil {
		outcomes = []domain.DocumentOutcome{}
	}
	return jsonResult(req.Params.URI, runDetail{IndexRun: run, Documents: outcomes})
}

func jsonResult(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling %s: %w", uri, err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractRunID extracts the run ID from a URI like folio://runs/{runId}.
func extractRunID(uri string) string {
	const prefix = runsURI + "/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	id := strings.TrimPrefix(uri, prefix)
	if strings.Contains(id, "/") {
		return ""
	}
	return id
}
