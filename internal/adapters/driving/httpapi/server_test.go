package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driving"
)

const sessionID = "0b6c7c1e-4a59-4a3e-9a49-3f1c0b3c9d11"

type mockSessions struct {
	dir       string
	sessions  map[string]*domain.Session
	destroyed []string
}

func newMockSessions(t *testing.T) *mockSessions {
	dir := t.TempDir()
	folder := filepath.Join(dir, sessionID)
	require.NoError(t, os.MkdirAll(folder, 0o700))
	return &mockSessions{
		dir: dir,
		sessions: map[string]*domain.Session{
			sessionID: {ID: sessionID, Identity: sessionID, Folder: folder, CreatedAt: time.Now()},
		},
	}
}

func (m *mockSessions) Create(_ context.Context) (*domain.Session, error) {
	s := &domain.Session{ID: "new", Identity: "new", Folder: filepath.Join(m.dir, "new")}
	m.sessions[s.ID] = s
	return s, nil
}

func (m *mockSessions) Get(_ context.Context, id string) (*domain.Session, error) {
	s, ok := m.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return s, nil
}

func (m *mockSessions) Destroy(_ context.Context, id string) error {
	if _, ok := m.sessions[id]; !ok {
		return domain.ErrSessionNotFound
	}
	delete(m.sessions, id)
	m.destroyed = append(m.destroyed, id)
	return nil
}

func (m *mockSessions) List(_ context.Context) ([]domain.Session, error) {
	var out []domain.Session
	for _, s := range m.sessions {
		out = append(out, *s)
	}
	return out, nil
}

type mockIndex struct {
	calls    int
	folder   string
	identity string
	err      error
}

func (m *mockIndex) Index(_ context.Context, folder, identity string, _ driving.IndexOptions) (*domain.IndexReport, error) {
	m.calls++
	m.folder = folder
	m.identity = identity
	if m.err != nil {
		return nil, m.err
	}
	return &domain.IndexReport{RunID: "run-1", Identity: identity, Folder: folder, Added: 2}, nil
}

type mockSearch struct {
	results []domain.SearchResult
	err     error
	query   string
	opts    domain.SearchOptions
}

func (m *mockSearch) Search(_ context.Context, query string, opts domain.SearchOptions) ([]domain.SearchResult, error) {
	m.query = query
	m.opts = opts
	return m.results, m.err
}

type mockRuns struct {
	identity string
	limit    int
}

func (m *mockRuns) List(_ context.Context, identity string, limit int) ([]domain.IndexRun, error) {
	m.identity = identity
	m.limit = limit
	return []domain.IndexRun{{ID: "run-1", Identity: sessionID, Status: domain.RunCompleted}}, nil
}

func (m *mockRuns) Get(_ context.Context, id string) (*domain.IndexRun, []domain.DocumentOutcome, error) {
	if id != "run-1" {
		return nil, nil, domain.ErrNotFound
	}
	return &domain.IndexRun{ID: "run-1"}, []domain.DocumentOutcome{{Filename: "a.pdf", Status: domain.DocumentIndexed}}, nil
}

type testEnv struct {
	server   *Server
	sessions *mockSessions
	index    *mockIndex
	search   *mockSearch
	runs     *mockRuns
}

func newTestEnv(t *testing.T, cfg Config) *testEnv {
	env := &testEnv{
		sessions: newMockSessions(t),
		index:    &mockIndex{},
		search:   &mockSearch{},
		runs:     &mockRuns{},
	}
	server, err := NewServer(Ports{
		Sessions: env.sessions,
		Index:    env.index,
		Search:   env.search,
		Runs:     env.runs,
	}, cfg, nil)
	require.NoError(t, err)
	env.server = server
	return env
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.server.ServeHTTP(rec, req)
	return rec
}

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body["error"]
}

func uploadRequest(t *testing.T, files map[string]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for name, content := range files {
		part, err := mw.CreateFormFile(uploadField, name)
		require.NoError(t, err)
		_, err = io.WriteString(part, content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/v1/sessions/"+sessionID+"/documents", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestNewServer_RequiresServices(t *testing.T) {
	_, err := NewServer(Ports{}, Config{}, nil)
	assert.ErrorIs(t, err, ErrMissingService)
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, Config{})
	rec := env.do(httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestSessions(t *testing.T) {
	t.Run("create", func(t *testing.T) {
		env := newTestEnv(t, Config{})
		rec := env.do(httptest.NewRequest(http.MethodPost, "/v1/sessions", nil))

		assert.Equal(t, http.StatusCreated, rec.Code)
		var s domain.Session
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &s))
		assert.Equal(t, "new", s.ID)
	})

	t.Run("get", func(t *testing.T) {
		env := newTestEnv(t, Config{})
		rec := env.do(httptest.NewRequest(http.MethodGet, "/v1/sessions/"+sessionID, nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), sessionID)
	})

	t.Run("get unknown is 404", func(t *testing.T) {
		env := newTestEnv(t, Config{})
		rec := env.do(httptest.NewRequest(http.MethodGet, "/v1/sessions/nope", nil))

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, errorBody(t, rec), "session not found")
	})

	t.Run("list", func(t *testing.T) {
		env := newTestEnv(t, Config{})
		rec := env.do(httptest.NewRequest(http.MethodGet, "/v1/sessions", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		var list []domain.Session
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
		assert.Len(t, list, 1)
	})

	t.Run("delete", func(t *testing.T) {
		env := newTestEnv(t, Config{})
		rec := env.do(httptest.NewRequest(http.MethodDelete, "/v1/sessions/"+sessionID, nil))

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, []string{sessionID}, env.sessions.destroyed)

		rec = env.do(httptest.NewRequest(http.MethodDelete, "/v1/sessions/"+sessionID, nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestUpload(t *testing.T) {
	t.Run("saves and indexes", func(t *testing.T) {
		env := newTestEnv(t, Config{})
		rec := env.do(uploadRequest(t, map[string]string{"a.pdf": "%PDF-a", "b.PDF": "%PDF-b"}))

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var resp UploadResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.ElementsMatch(t, []string{"a.pdf", "b.PDF"}, resp.Saved)
		assert.Empty(t, resp.Skipped)
		assert.Equal(t, 2, resp.Report.Added)

		folder := env.sessions.sessions[sessionID].Folder
		data, err := os.ReadFile(filepath.Join(folder, "a.pdf"))
		require.NoError(t, err)
		assert.Equal(t, "%PDF-a", string(data))
		assert.Equal(t, 1, env.index.calls)
		assert.Equal(t, folder, env.index.folder)
		assert.Equal(t, sessionID, env.index.identity)
	})

	t.Run("existing filenames are skipped", func(t *testing.T) {
		env := newTestEnv(t, Config{})
		folder := env.sessions.sessions[sessionID].Folder
		require.NoError(t, os.WriteFile(filepath.Join(folder, "a.pdf"), []byte("original"), 0o600))

		rec := env.do(uploadRequest(t, map[string]string{"a.pdf": "replacement"}))

		require.Equal(t, http.StatusOK, rec.Code)
		var resp UploadResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, []string{"a.pdf"}, resp.Skipped)
		assert.Empty(t, resp.Saved)

		data, err := os.ReadFile(filepath.Join(folder, "a.pdf"))
		require.NoError(t, err)
		assert.Equal(t, "original", string(data))
	})

	t.Run("path components are stripped", func(t *testing.T) {
		env := newTestEnv(t, Config{})
		rec := env.do(uploadRequest(t, map[string]string{"../../escape.pdf": "x"}))

		require.Equal(t, http.StatusOK, rec.Code)
		folder := env.sessions.sessions[sessionID].Folder
		assert.FileExists(t, filepath.Join(folder, "escape.pdf"))
	})

	t.Run("non-pdf is rejected", func(t *testing.T) {
		env := newTestEnv(t, Config{})
		rec := env.do(uploadRequest(t, map[string]string{"notes.txt": "x"}))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, 0, env.index.calls)
	})

	t.Run("one bad part rejects the whole upload", func(t *testing.T) {
		env := newTestEnv(t, Config{})
		rec := env.do(uploadRequest(t, map[string]string{
			"a.pdf":     "%PDF-a",
			"b.pdf":     "%PDF-b",
			"notes.txt": "x",
		}))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, errorBody(t, rec), "notes.txt")
		assert.Equal(t, 0, env.index.calls)

		folder := env.sessions.sessions[sessionID].Folder
		assert.NoFileExists(t, filepath.Join(folder, "a.pdf"))
		assert.NoFileExists(t, filepath.Join(folder, "b.pdf"))
	})

	t.Run("missing field is rejected", func(t *testing.T) {
		env := newTestEnv(t, Config{})
		rec := env.do(uploadRequest(t, map[string]string{}))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, errorBody(t, rec), uploadField)
	})

	t.Run("unknown session is 404", func(t *testing.T) {
		env := newTestEnv(t, Config{})
		req := uploadRequest(t, map[string]string{"a.pdf": "x"})
		req.URL.Path = "/v1/sessions/nope/documents"

		rec := env.do(req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("oversized body is rejected", func(t *testing.T) {
		env := newTestEnv(t, Config{MaxUploadBytes: 64})
		rec := env.do(uploadRequest(t, map[string]string{"a.pdf": string(bytes.Repeat([]byte("x"), 4096))}))

		assert.Contains(t, []int{http.StatusBadRequest, http.StatusRequestEntityTooLarge}, rec.Code)
		assert.Equal(t, 0, env.index.calls)
	})

	t.Run("concurrent indexing is a conflict", func(t *testing.T) {
		env := newTestEnv(t, Config{})
		env.index.err = domain.ErrIndexingInProgress

		rec := env.do(uploadRequest(t, map[string]string{"a.pdf": "x"}))
		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}

func TestSearch(t *testing.T) {
	t.Run("returns results for the session identity", func(t *testing.T) {
		env := newTestEnv(t, Config{})
		env.search.results = []domain.SearchResult{{PDFName: "a.pdf", PageNo: 2, Title: "Methods", Snippet: "We...", Score: 0.8}}

		rec := env.do(httptest.NewRequest(http.MethodGet, "/v1/sessions/"+sessionID+"/search?q=method&top_k=2", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		var resp SearchResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "method", resp.Query)
		require.Len(t, resp.Results, 1)
		assert.Equal(t, "Methods", resp.Results[0].Title)
		assert.Equal(t, sessionID, env.search.opts.Identity)
		assert.Equal(t, 2, env.search.opts.TopK)
	})

	t.Run("empty result is an empty list", func(t *testing.T) {
		env := newTestEnv(t, Config{})
		rec := env.do(httptest.NewRequest(http.MethodGet, "/v1/sessions/"+sessionID+"/search?q=x", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"results":[]`)
		assert.Equal(t, 0, env.search.opts.TopK)
	})

	t.Run("missing query", func(t *testing.T) {
		env := newTestEnv(t, Config{})
		rec := env.do(httptest.NewRequest(http.MethodGet, "/v1/sessions/"+sessionID+"/search?q=%20", nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("bad top_k", func(t *testing.T) {
		env := newTestEnv(t, Config{})
		for _, v := range []string{"0", "-1", "abc"} {
			rec := env.do(httptest.NewRequest(http.MethodGet, "/v1/sessions/"+sessionID+"/search?q=x&top_k="+v, nil))
			assert.Equal(t, http.StatusBadRequest, rec.Code, v)
		}
	})

	t.Run("index not built is 404", func(t *testing.T) {
		env := newTestEnv(t, Config{})
		env.search.err = domain.ErrIndexNotFound

		rec := env.do(httptest.NewRequest(http.MethodGet, "/v1/sessions/"+sessionID+"/search?q=x", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, errorBody(t, rec), "index not found")
	})

	t.Run("embedding unavailable is 503", func(t *testing.T) {
		env := newTestEnv(t, Config{})
		env.search.err = domain.ErrEmbeddingUnavailable

		rec := env.do(httptest.NewRequest(http.MethodGet, "/v1/sessions/"+sessionID+"/search?q=x", nil))
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("corrupt index is 500", func(t *testing.T) {
		env := newTestEnv(t, Config{})
		env.search.err = domain.ErrIndexCorrupt

		rec := env.do(httptest.NewRequest(http.MethodGet, "/v1/sessions/"+sessionID+"/search?q=x", nil))
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestRuns(t *testing.T) {
	t.Run("list with filters", func(t *testing.T) {
		env := newTestEnv(t, Config{})
		rec := env.do(httptest.NewRequest(http.MethodGet, "/v1/runs?identity=papers&limit=5", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "papers", env.runs.identity)
		assert.Equal(t, 5, env.runs.limit)
		assert.Contains(t, rec.Body.String(), "run-1")
	})

	t.Run("bad limit", func(t *testing.T) {
		env := newTestEnv(t, Config{})
		rec := env.do(httptest.NewRequest(http.MethodGet, "/v1/runs?limit=x", nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("get", func(t *testing.T) {
		env := newTestEnv(t, Config{})
		rec := env.do(httptest.NewRequest(http.MethodGet, "/v1/runs/run-1", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"documents":[{"filename":"a.pdf"`)
	})

	t.Run("get unknown", func(t *testing.T) {
		env := newTestEnv(t, Config{})
		rec := env.do(httptest.NewRequest(http.MethodGet, "/v1/runs/nope", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("no ledger", func(t *testing.T) {
		server, err := NewServer(Ports{
			Sessions: newMockSessions(t),
			Index:    &mockIndex{},
			Search:   &mockSearch{},
		}, Config{}, nil)
		require.NoError(t, err)

		rec := httptest.NewRecorder()
		server.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/runs", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `[]`, rec.Body.String())
	})
}

func TestMCPMount(t *testing.T) {
	called := false
	mcp := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		called = true
		w.WriteHeader(http.StatusAccepted)
	})
	env := newTestEnv(t, Config{MCP: mcp})

	rec := env.do(httptest.NewRequest(http.MethodPost, "/mcp", nil))
	assert.True(t, called)
	assert.Equal(t, http.StatusAccepted, rec.Code)
}

func TestSanitizeFilename(t *testing.T) {
	tests := map[string]string{
		"report.pdf":             "report.pdf",
		"dir/report.pdf":         "report.pdf",
		`C:\Users\me\report.pdf`: "report.pdf",
		"../../etc/passwd.pdf":   "passwd.pdf",
		".hidden.pdf":            "hidden.pdf",
		"a..b.pdf":               "a_b.pdf",
		"":                       "unnamed",
	}
	for in, want := range tests {
		assert.Equal(t, want, sanitizeFilename(in), in)
	}
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, statusFor(domain.ErrSessionNotFound))
	assert.Equal(t, http.StatusBadRequest, statusFor(domain.ErrInvalidInput))
	assert.Equal(t, http.StatusServiceUnavailable, statusFor(domain.ErrRateLimited))
	assert.Equal(t, http.StatusInternalServerError, statusFor(domain.ErrDimensionMismatch))
	assert.Equal(t, http.StatusInternalServerError, statusFor(io.ErrUnexpectedEOF))
}
