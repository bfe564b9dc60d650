package cli

import (
	"bytes"
	"context"
	"strings"
	"time"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driving"
)

type mockIndexService struct {
	report       *domain.IndexReport
	err          error
	calls        int
	lastFolder   string
	lastIdentity string
}

func (m *mockIndexService) Index(
	_ context.Context, folder, identity string, opts driving.IndexOptions,
) (*domain.IndexReport, error) {
	m.calls++
	m.lastFolder = folder
	m.lastIdentity = identity
	if m.err != nil {
		return nil, m.err
	}
	report := *m.report
	report.Folder = folder
	report.Identity = identity
	if opts.Progress != nil {
		opts.Progress.Begin(len(report.Documents))
		for _, d := range report.Documents {
			opts.Progress.Document(d)
		}
	}
	return &report, nil
}

type mockSearchService struct {
	results  []domain.SearchResult
	err      error
	lastOpts domain.SearchOptions
	lastText string
}

func (m *mockSearchService) Search(
	_ context.Context, query string, opts domain.SearchOptions,
) ([]domain.SearchResult, error) {
	m.lastText = query
	m.lastOpts = opts
	return m.results, m.err
}

type mockOutlineService struct {
	outline *domain.Outline
	err     error
}

func (m *mockOutlineService) Outline(context.Context, string) (*domain.Outline, error) {
	return m.outline, m.err
}

type mockRunService struct {
	runs         []domain.IndexRun
	outcomes     []domain.DocumentOutcome
	lastIdentity string
	lastLimit    int
}

func (m *mockRunService) List(_ context.Context, identity string, limit int) ([]domain.IndexRun, error) {
	m.lastIdentity = identity
	m.lastLimit = limit
	return m.runs, nil
}

func (m *mockRunService) Get(_ context.Context, id string) (*domain.IndexRun, []domain.DocumentOutcome, error) {
	for i := range m.runs {
		if m.runs[i].ID == id {
			return &m.runs[i], m.outcomes, nil
		}
	}
	return nil, nil, domain.ErrNotFound
}

type mockSettingsService struct {
	settings    domain.AppSettings
	validateErr error
	setErr      error
	set         map[string]string
}

func newMockSettingsService() *mockSettingsService {
	return &mockSettingsService{settings: domain.DefaultAppSettings(), set: map[string]string{}}
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Save(s *domain.AppSettings) error {
	m.settings = *s
	return nil
}

func (m *mockSettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	m.settings.Embedding.Provider = provider
	m.settings.Embedding.Model = model
	m.settings.Embedding.APIKey = apiKey
	return nil
}

func (m *mockSettingsService) Set(key, value string) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.set[key] = value
	return nil
}

func (m *mockSettingsService) Validate() error { return m.validateErr }

func (m *mockSettingsService) GetDefaults() domain.AppSettings { return domain.DefaultAppSettings() }

func (m *mockSettingsService) ConfigPath() string { return "/home/test/.folio/config.toml" }

type mockValidator struct {
	err    error
	called bool
}

func (m *mockValidator) ValidateEmbedding(*domain.EmbeddingSettings) error {
	m.called = true
	return m.err
}

type testServices struct {
	index    *mockIndexService
	search   *mockSearchService
	outline  *mockOutlineService
	runs     *mockRunService
	settings *mockSettingsService
}

func sampleReport() *domain.IndexReport {
	return &domain.IndexReport{
		RunID: "run-1",
		Added: 12,
		Documents: []domain.DocumentOutcome{
			{Filename: "amp.pdf", Status: domain.DocumentIndexed, Title: "Amplifiers", Chunks: 12},
			{Filename: "old.pdf", Status: domain.DocumentSkipped},
			{Filename: "scan.pdf", Status: domain.DocumentNoHeadings},
			{Filename: "bad.pdf", Status: domain.DocumentFailed, Error: "malformed PDF"},
		},
	}
}

// setupTestServices installs mocks for every service and returns them with
// a cleanup that restores the previous state and resets flag values.
func setupTestServices() (*testServices, func()) {
	started := time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)
	finished := started.Add(2 * time.Second)

	ts := &testServices{
		index: &mockIndexService{report: sampleReport()},
		search: &mockSearchService{results: []domain.SearchResult{
			{PDFName: "amp.pdf", PageNo: 4, Title: "Loop Gain", Snippet: "The loop gain is...", Score: 0.87},
		}},
		outline: &mockOutlineService{outline: &domain.Outline{
			Filename:  "amp.pdf",
			Title:     "Amplifiers",
			PageCount: 12,
			Headings: []domain.HeadingCandidate{
				{Text: "Loop Gain", Page: 3, Level: 2, Source: domain.SourceFontSize},
				{Text: "Bandwidth", Page: 5, Level: 3, Source: domain.SourceFontSize},
			},
		}},
		runs: &mockRunService{
			runs: []domain.IndexRun{{
				ID: "run-1", Identity: "default", Folder: "/data", Status: domain.RunCompleted,
				Added: 12, StartedAt: started, FinishedAt: &finished,
			}},
			outcomes: sampleReport().Documents,
		},
		settings: newMockSettingsService(),
	}

	SetServices(Services{
		Index:    ts.index,
		Search:   ts.search,
		Outline:  ts.outline,
		Runs:     ts.runs,
		Settings: ts.settings,
	})

	return ts, func() {
		SetServices(Services{})
		resetFlags()
	}
}

func resetFlags() {
	verbose = false
	indexIdentity, indexWatch, indexQuiet = "", false, false
	searchTopK, searchIdentity, searchJSON = 0, "", false
	outlineJSON = false
	runsIdentity, runsLimit = "", 0
	tuiIdentity = ""
	serveAddr, serveWithMCP = "", false
	_ = mcpServeCmd.Flags().Set("port", "0")
}

// execute runs the root command with args and returns its combined output.
func execute(args []string, stdin string) (string, error) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	}()

	err := rootCmd.Execute()
	return buf.String(), err
}
