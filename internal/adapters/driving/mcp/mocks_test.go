package mcp

import (
	"context"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driving"
)

// mockSearchService implements driving.SearchService for testing.
type mockSearchService struct {
	results  []domain.SearchResult
	err      error
	lastOpts domain.SearchOptions
}

func (m *mockSearchService) Search(
	_ context.Context,
	_ string,
	opts domain.SearchOptions,
) ([]domain.SearchResult, error) {
	m.lastOpts = opts
	return m.results, m.err
}

// mockIndexService implements driving.IndexService for testing.
type mockIndexService struct {
	report       *domain.IndexReport
	err          error
	lastFolder   string
	lastIdentity string
}

func (m *mockIndexService) Index(
	_ context.Context, folder, identity string, _ driving.IndexOptions,
) (*domain.IndexReport, error) {
	m.lastFolder = folder
	m.lastIdentity = identity
	return m.report, m.err
}

// mockOutlineService implements driving.OutlineService for testing.
type mockOutlineService struct {
	outline *domain.Outline
	err     error
}

func (m *mockOutlineService) Outline(_ context.Context, _ string) (*domain.Outline, error) {
	return m.outline, m.err
}

// mockRunService implements driving.RunService for testing.
type mockRunService struct {
	runs     []domain.IndexRun
	outcomes map[string][]domain.DocumentOutcome
	err      error
}

func (m *mockRunService) List(_ context.Context, _ string, _ int) ([]domain.IndexRun, error) {
	return m.runs, m.err
}

func (m *mockRunService) Get(_ context.Context, id string) (*domain.IndexRun, []domain.DocumentOutcome, error) {
	if m.err != nil {
		return nil, nil, m.err
	}
	for i := range m.runs {
		if m.runs[i].ID == id {
			return &m.runs[i], m.outcomes[id], nil
		}
	}
	return nil, nil, domain.ErrNotFound
}
