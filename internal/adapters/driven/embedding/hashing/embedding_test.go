package hashing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dot(a, b []float32) float32 {
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

func TestNewEmbeddingService_DefaultWidth(t *testing.T) {
	svc := NewEmbeddingService(0)
	assert.Equal(t, DefaultDimensions, svc.Dimensions())
	assert.Equal(t, "hashing-512", svc.ModelName())
}

func TestEmbed_Deterministic(t *testing.T) {
	svc := NewEmbeddingService(64)

	a, err := svc.Embed(context.Background(), "Revenue grew in Q3")
	require.NoError(t, err)
	b, err := svc.Embed(context.Background(), "revenue GREW in q3!")
	require.NoError(t, err)

	assert.Len(t, a, 64)
	assert.Equal(t, a, b)
}

func TestEmbed_SharedWordsScoreHigher(t *testing.T) {
	svc := NewEmbeddingService(256)
	ctx := context.Background()

	q, _ := svc.Embed(ctx, "quarterly revenue")
	near, _ := svc.Embed(ctx, "the quarterly revenue report")
	far, _ := svc.Embed(ctx, "installation of garden furniture")

	assert.Greater(t, dot(q, near), dot(q, far))
}

func TestEmbed_EmptyText(t *testing.T) {
	vec, err := NewEmbeddingService(8).Embed(context.Background(), "  ...  ")
	require.NoError(t, err)
	assert.Equal(t, make([]float32, 8), vec)
}

func TestEmbedBatch(t *testing.T) {
	svc := NewEmbeddingService(16)

	vecs, err := svc.EmbedBatch(context.Background(), []string{"one", "two", "one"})
	require.NoError(t, err)
	require.Len(t, vecs, 3)
	assert.Equal(t, vecs[0], vecs[2])
}

func TestEmbed_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewEmbeddingService(8).Embed(ctx, "x")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"q3", "revenue", "über"}, tokenize("Q3-revenue, Über."))
}
