package driven

import "context"

// EmbeddingService turns chunk text and queries into vectors. Indexing and
// retrieval share one handle per process, so implementations are safe for
// concurrent use. Vectors from one service are always Dimensions() long;
// an index built with one model cannot be searched with another.
type EmbeddingService interface {
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch returns one vector per text, in order. Providers without a
	// batch endpoint may loop over Embed.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	Dimensions() int

	// ModelName is recorded in the index metadata and the run ledger.
	ModelName() string

	// Ping makes the cheapest request the provider allows.
	Ping(ctx context.Context) error

	Close() error
}
