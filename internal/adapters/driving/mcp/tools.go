package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driving"
)

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Query    string `json:"query" jsonschema:"the question or topic to find passages for"`
	TopK     int    `json:"top_k,omitempty" jsonschema:"maximum number of passages to return (default from settings)"`
	Identity string `json:"identity,omitempty" jsonschema:"name of the index to search (default from settings)"`
}

// SearchOutput is the output schema for the search tool.
type SearchOutput struct {
	Results []domain.SearchResult `json:"results"`
	Count   int                   `json:"count"`
}

// IndexInput is the input schema for the index tool.
type IndexInput struct {
	Folder   string `json:"folder" jsonschema:"absolute path of a folder containing PDF files"`
	Identity string `json:"identity,omitempty" jsonschema:"name of the index to add to (default from settings)"`
}

// IndexOutput is the output schema for the index tool.
type IndexOutput struct {
	RunID     string                   `json:"run_id"`
	Identity  string                   `json:"identity"`
	Added     int                      `json:"added"`
	Documents []domain.DocumentOutcome `json:"documents"`
}

// OutlineInput is the input schema for the outline tool.
type OutlineInput struct {
	Path string `json:"path" jsonschema:"absolute path of a PDF file"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search",
		Description: "Find the PDF sections most relevant to a query. Returns document, page, section title and a snippet.",
	}, s.handleSearch)

	if s.ports.Index != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "index",
			Description: "Index the PDFs in a folder. Files already in the index are skipped.",
		}, s.handleIndex)
	}

	if s.ports.Outline != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "outline",
			Description: "Extract the title and heading outline of a PDF.",
		}, s.handleOutline)
	}
}

// handleSearch handles the search tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	opts := domain.SearchOptions{
		Identity: s.identity(input.Identity),
		TopK:     input.TopK,
	}
	results, err := s.ports.Search.Search(ctx, input.Query, opts)
	if err != nil {
		return nil, SearchOutput{}, err
	}
	if results == nil {
		results = []domain.SearchResult{}
	}

	return nil, SearchOutput{Results: results, Count: len(results)}, nil
}

// handleIndex handles the index tool invocation.
func (s *Server) handleIndex(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input IndexInput,
) (*mcp.CallToolResult, IndexOutput, error) {
	if input.Folder == "" {
		return nil, IndexOutput{}, fmt.Errorf("%w: folder is required", domain.ErrInvalidInput)
	}

	report, err := s.ports.Index.Index(ctx, input.Folder, s.identity(input.Identity), driving.IndexOptions{})
	if err != nil {
		return nil, IndexOutput{}, err
	}

	return nil, IndexOutput{
		RunID:     report.RunID,
		Identity:  report.Identity,
		Added:     report.Added,
		Documents: report.Documents,
	}, nil
}

// handleOutline handles the outline tool invocation.
func (s *Server) handleOutline(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input OutlineInput,
) (*mcp.CallToolResult, domain.Outline, error) {
	if input.Path == "" {
		return nil, domain.Outline{}, fmt.Errorf("%w: path is required", domain.ErrInvalidInput)
	}

	outline, err := s.ports.Outline.Outline(ctx, input.Path)
	if err != nil {
		return nil, domain.Outline{}, err
	}
	if outline.Headings == nil {
		outline.Headings = []domain.HeadingCandidate{}
	}
	return nil, *outline, nil
}

func (s *Server) identity(requested string) string {
	if requested != "" {
		return requested
	}
	return s.ports.DefaultIdentity
}
