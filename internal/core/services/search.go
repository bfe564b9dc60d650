package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
	"github.com/custodia-labs/folio/internal/core/ports/driving"
	"github.com/custodia-labs/folio/internal/logger"
)

// Ensure SearchService implements the interface.
var _ driving.SearchService = (*SearchService)(nil)

// overFetch is how many candidates are pulled per requested result, to
// leave room for duplicates.
const overFetch = 3

// SearchService answers queries against a persisted index.
// It takes no locks: the store replaces files atomically, so a search
// sees either the old pair or the new one.
type SearchService struct {
	embedder driven.EmbeddingService
	store    driven.IndexStore
	defaults domain.SearchSettings
	identity string
}

// NewSearchService creates a search service.
// The embedder must be the one the index was built with.
func NewSearchService(
	embedder driven.EmbeddingService,
	store driven.IndexStore,
	defaults domain.SearchSettings,
	defaultIdentity string,
) *SearchService {
	if defaults.TopK <= 0 {
		defaults.TopK = domain.DefaultAppSettings().Search.TopK
	}
	if defaults.SnippetLength <= 0 {
		defaults.SnippetLength = domain.DefaultAppSettings().Search.SnippetLength
	}
	return &SearchService{
		embedder: embedder,
		store:    store,
		defaults: defaults,
		identity: defaultIdentity,
	}
}

// Search returns up to TopK distinct passages, best first.
func (s *SearchService) Search(
	ctx context.Context, query string, opts domain.SearchOptions,
) ([]domain.SearchResult, error) {
	logger.Section("Search")

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: empty query", domain.ErrInvalidInput)
	}

	identity := opts.Identity
	if identity == "" {
		identity = s.identity
	}
	if err := ValidateIdentity(identity); err != nil {
		return nil, err
	}
	topK := opts.TopK
	if topK <= 0 {
		topK = s.defaults.TopK
	}
	logger.Debug("Query: %q, identity: %s, top_k: %d", query, identity, topK)

	idx, records, err := s.store.Load(identity)
	if err != nil {
		if errors.Is(err, domain.ErrIndexNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load index %s: %w", identity, err)
	}
	if idx.Dimensions() != s.embedder.Dimensions() {
		return nil, fmt.Errorf("%w: index %s has width %d, %s produces %d",
			domain.ErrDimensionMismatch, identity, idx.Dimensions(),
			s.embedder.ModelName(), s.embedder.Dimensions())
	}

	vec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	hits, err := idx.Search(vec, topK*overFetch)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}
	logger.Debug("Vector search returned %d candidates", len(hits))

	results := s.collect(query, hits, records, topK)
	logger.Debug("Accepted %d results", len(results))
	return results, nil
}

// collect walks hits best first, dropping echoes of the query and
// duplicate passages, until topK are accepted.
func (s *SearchService) collect(
	query string, hits []driven.VectorHit, records []domain.Record, topK int,
) []domain.SearchResult {
	normQuery := domain.NormalizeSpace(query)
	seenContent := make(map[string]bool)
	seenSnippet := make(map[string]bool)

	results := make([]domain.SearchResult, 0, topK)
	for _, h := range hits {
		if len(results) >= topK {
			break
		}
		if int(h.ID) < 0 || int(h.ID) >= len(records) {
			logger.Warn("search: hit %d has no metadata record", h.ID)
			continue
		}
		rec := records[h.ID]

		content := domain.NormalizeSpace(rec.Content)
		if content == normQuery {
			continue
		}
		snippet := Snippet(rec.Content, s.defaults.SnippetLength)
		snippetKey := domain.NormalizeSpace(snippet)
		if seenContent[content] || seenSnippet[snippetKey] {
			continue
		}
		seenContent[content] = true
		seenSnippet[snippetKey] = true

		results = append(results, domain.SearchResult{
			PDFName: rec.Document,
			PageNo:  rec.Page,
			Title:   rec.Title,
			Snippet: snippet,
			Score:   h.Score,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	return results
}

// Snippet returns the first n characters of content followed by "...".
func Snippet(content string, n int) string {
	r := []rune(content)
	if len(r) > n {
		r = r[:n]
	}
	return string(r) + "..."
}
