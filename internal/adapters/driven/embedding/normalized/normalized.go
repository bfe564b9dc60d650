// Package normalized wraps an embedding service so every vector it returns
// has unit length, which turns inner-product search into cosine search.
package normalized

import (
	"context"
	"fmt"

	"github.com/viant/vec/search"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// EmbeddingService normalizes the output of another embedding service.
// It adds no state of its own, so it is as concurrency safe as the
// service it wraps.
type EmbeddingService struct {
	driven.EmbeddingService
}

// Wrap returns svc with unit-length output. Wrapping twice is a no-op.
func Wrap(svc driven.EmbeddingService) *EmbeddingService {
	if n, ok := svc.(*EmbeddingService); ok {
		return n
	}
	return &EmbeddingService{EmbeddingService: svc}
}

// Embed returns the normalized embedding of text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	vec, err := s.EmbeddingService.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	if err := s.checkWidth(vec); err != nil {
		return nil, err
	}
	return Normalize(vec), nil
}

// EmbedBatch returns normalized embeddings, one per text.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vecs, err := s.EmbeddingService.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, err
	}
	if len(vecs) != len(texts) {
		return nil, fmt.Errorf("embedding: got %d vectors for %d texts", len(vecs), len(texts))
	}
	for i, v := range vecs {
		if err := s.checkWidth(v); err != nil {
			return nil, err
		}
		vecs[i] = Normalize(v)
	}
	return vecs, nil
}

func (s *EmbeddingService) checkWidth(vec []float32) error {
	if want := s.Dimensions(); len(vec) != want {
		return fmt.Errorf("%w: %s returned %d values, expected %d",
			domain.ErrDimensionMismatch, s.ModelName(), len(vec), want)
	}
	return nil
}

// Normalize scales vec to unit length in place and returns it.
// A zero vector is returned unchanged.
func Normalize(vec []float32) []float32 {
	mag := search.Float32s(vec).Magnitude()
	if mag == 0 {
		return vec
	}
	for i := range vec {
		vec[i] /= mag
	}
	return vec
}
