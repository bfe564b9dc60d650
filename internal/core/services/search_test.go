package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
)

// stubIndex returns fixed hits regardless of the query.
type stubIndex struct {
	dim    int
	hits   []driven.VectorHit
	askedK int
}

func (i *stubIndex) Dimensions() int { return i.dim }
func (i *stubIndex) Len() int        { return len(i.hits) }
func (i *stubIndex) Add([][]float32) ([]domain.ChunkID, error) {
	return nil, errors.New("read only")
}

func (i *stubIndex) Search(_ []float32, k int) ([]driven.VectorHit, error) {
	i.askedK = k
	if k < len(i.hits) {
		return i.hits[:k], nil
	}
	return i.hits, nil
}

// stubStore serves one identity.
type stubStore struct {
	identity string
	index    *stubIndex
	records  []domain.Record
	loadErr  error
	loaded   []string
}

func (s *stubStore) New(dim int) driven.VectorIndex { return &stubIndex{dim: dim} }
func (s *stubStore) Exists(id string) (bool, error) { return id == s.identity, nil }
func (s *stubStore) Delete(string) error            { return nil }
func (s *stubStore) Save(string, driven.VectorIndex, []domain.Record) error {
	return errors.New("read only")
}

func (s *stubStore) Load(identity string) (driven.VectorIndex, []domain.Record, error) {
	s.loaded = append(s.loaded, identity)
	if s.loadErr != nil {
		return nil, nil, s.loadErr
	}
	if identity != s.identity {
		return nil, nil, fmt.Errorf("%w: %s", domain.ErrIndexNotFound, identity)
	}
	return s.index, s.records, nil
}

// stubEmbedder returns a constant vector and counts calls.
type stubEmbedder struct {
	dim   int
	calls int
	err   error
}

func (e *stubEmbedder) Embed(context.Context, string) ([]float32, error) {
	e.calls++
	if e.err != nil {
		return nil, e.err
	}
	return make([]float32, e.dim), nil
}

func (e *stubEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := e.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (e *stubEmbedder) Dimensions() int            { return e.dim }
func (e *stubEmbedder) ModelName() string          { return "stub" }
func (e *stubEmbedder) Ping(context.Context) error { return nil }
func (e *stubEmbedder) Close() error               { return nil }

func record(id int, doc, title, content string, page int) domain.Record {
	return domain.Record{
		ID:    domain.ChunkID(id),
		Chunk: domain.Chunk{Document: doc, Title: title, Content: content, Page: page},
	}
}

func newStubSearch(records []domain.Record, hits []driven.VectorHit) (*SearchService, *stubStore, *stubEmbedder) {
	store := &stubStore{
		identity: "docs",
		index:    &stubIndex{dim: 4, hits: hits},
		records:  records,
	}
	emb := &stubEmbedder{dim: 4}
	return NewSearchService(emb, store, domain.DefaultAppSettings().Search, "docs"), store, emb
}

func TestSearchService_MapsHitsToResults(t *testing.T) {
	records := []domain.Record{
		record(0, "a.pdf", "Scope", "Scope - the audit covers three offices.", 1),
		record(1, "b.pdf", "Findings", "Findings - controls were effective.", 4),
	}
	svc, store, _ := newStubSearch(records, []driven.VectorHit{{ID: 1, Score: 0.9}, {ID: 0, Score: 0.4}})

	results, err := svc.Search(context.Background(), "findings", domain.SearchOptions{})
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, domain.SearchResult{
		PDFName: "b.pdf",
		PageNo:  4,
		Title:   "Findings",
		Snippet: "Findings - controls were effective....",
		Score:   0.9,
	}, results[0])
	assert.Equal(t, "a.pdf", results[1].PDFName)
	assert.Equal(t, []string{"docs"}, store.loaded, "empty identity uses the default")
}

func TestSearchService_TopKBoundAndOverFetch(t *testing.T) {
	var records []domain.Record
	var hits []driven.VectorHit
	for i := 0; i < 20; i++ {
		records = append(records, record(i, "a.pdf", "T", fmt.Sprintf("T - passage number %d", i), 1))
		hits = append(hits, driven.VectorHit{ID: domain.ChunkID(i), Score: 1 - float64(i)/100})
	}
	svc, store, _ := newStubSearch(records, hits)

	results, err := svc.Search(context.Background(), "q", domain.SearchOptions{TopK: 5})
	require.NoError(t, err)
	assert.Len(t, results, 5)
	assert.Equal(t, 15, store.index.askedK)

	results, err = svc.Search(context.Background(), "q", domain.SearchOptions{})
	require.NoError(t, err)
	assert.Len(t, results, 3, "default top_k")
}

func TestSearchService_DropsDuplicatesAndQueryEcho(t *testing.T) {
	records := []domain.Record{
		record(0, "a.pdf", "Intro", "what is the retention period", 1),
		record(1, "a.pdf", "Retention", "Retention - records are kept for seven years.", 2),
		record(2, "b.pdf", "Retention", "Retention -  records are kept for seven years.", 3),
		record(3, "c.pdf", "Other", "Other - a distinct passage about backups.", 1),
	}
	hits := []driven.VectorHit{
		{ID: 0, Score: 0.99},
		{ID: 1, Score: 0.8},
		{ID: 2, Score: 0.8},
		{ID: 3, Score: 0.5},
	}
	svc, _, _ := newStubSearch(records, hits)

	results, err := svc.Search(context.Background(), "  what is the   retention period ", domain.SearchOptions{})
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, "a.pdf", results[0].PDFName)
	assert.Equal(t, 2, results[0].PageNo)
	assert.Equal(t, "c.pdf", results[1].PDFName)
}

func TestSearchService_DuplicateSnippetsCollapse(t *testing.T) {
	prefix := strings.Repeat("x", 250)
	records := []domain.Record{
		record(0, "a.pdf", "A", prefix+" first tail", 1),
		record(1, "b.pdf", "B", prefix+" second tail", 1),
	}
	svc, _, _ := newStubSearch(records, []driven.VectorHit{{ID: 0, Score: 0.7}, {ID: 1, Score: 0.6}})

	results, err := svc.Search(context.Background(), "q", domain.SearchOptions{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "a.pdf", results[0].PDFName)
}

func TestSearchService_WhitespaceOnlySnippetDifferencesCollapse(t *testing.T) {
	body := strings.Repeat("word ", 60)
	records := []domain.Record{
		record(0, "a.pdf", "Intro", "Intro - alpha\tbeta "+body+"tail one", 1),
		record(1, "b.pdf", "Intro", "Intro - alpha beta "+body+"tail two", 2),
	}
	svc, _, _ := newStubSearch(records, []driven.VectorHit{{ID: 0, Score: 0.8}, {ID: 1, Score: 0.7}})

	results, err := svc.Search(context.Background(), "q", domain.SearchOptions{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "a.pdf", results[0].PDFName)
}

func TestSearchService_SkipsHitsWithoutRecords(t *testing.T) {
	records := []domain.Record{record(0, "a.pdf", "A", "A - the only record we have", 1)}
	svc, _, _ := newStubSearch(records, []driven.VectorHit{{ID: 7, Score: 0.9}, {ID: 0, Score: 0.1}})

	results, err := svc.Search(context.Background(), "q", domain.SearchOptions{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "a.pdf", results[0].PDFName)
}

func TestSearchService_Errors(t *testing.T) {
	t.Run("empty query", func(t *testing.T) {
		svc, store, emb := newStubSearch(nil, nil)
		_, err := svc.Search(context.Background(), "   ", domain.SearchOptions{})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
		assert.Empty(t, store.loaded)
		assert.Zero(t, emb.calls)
	})

	t.Run("bad identity", func(t *testing.T) {
		svc, _, _ := newStubSearch(nil, nil)
		_, err := svc.Search(context.Background(), "q", domain.SearchOptions{Identity: "../x"})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("unknown identity", func(t *testing.T) {
		svc, _, emb := newStubSearch(nil, nil)
		_, err := svc.Search(context.Background(), "q", domain.SearchOptions{Identity: "missing"})
		assert.ErrorIs(t, err, domain.ErrIndexNotFound)
		assert.Zero(t, emb.calls, "no embedding before the index is known")
	})

	t.Run("corrupt index", func(t *testing.T) {
		svc, store, _ := newStubSearch(nil, nil)
		store.loadErr = domain.ErrIndexCorrupt
		_, err := svc.Search(context.Background(), "q", domain.SearchOptions{})
		assert.ErrorIs(t, err, domain.ErrIndexCorrupt)
	})

	t.Run("width mismatch", func(t *testing.T) {
		svc, store, emb := newStubSearch(nil, nil)
		store.index.dim = 8
		_, err := svc.Search(context.Background(), "q", domain.SearchOptions{})
		assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
		assert.Zero(t, emb.calls)
	})

	t.Run("embedding unavailable", func(t *testing.T) {
		svc, _, emb := newStubSearch(nil, nil)
		emb.err = domain.ErrEmbeddingUnavailable
		_, err := svc.Search(context.Background(), "q", domain.SearchOptions{})
		assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
	})
}

func TestSnippet(t *testing.T) {
	assert.Equal(t, "short...", Snippet("short", 200))
	assert.Equal(t, "abc...", Snippet("abcdef", 3))
	assert.Equal(t, "héé...", Snippet("hééllo", 3), "cuts on characters, not bytes")
}
