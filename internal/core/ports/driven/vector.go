package driven

import "github.com/custodia-labs/folio/internal/core/domain"

// VectorIndex is an append-only, exhaustive inner-product index.
// Vectors are expected to be unit length, so scores are cosine similarities.
type VectorIndex interface {
	// Dimensions returns the vector width the index was created with.
	Dimensions() int

	// Len returns the number of stored vectors.
	Len() int

	// Add appends vectors and returns the ChunkID assigned to each,
	// which is always its position in the index.
	Add(vectors [][]float32) ([]domain.ChunkID, error)

	// Search returns up to k hits ordered by descending score.
	Search(query []float32, k int) ([]VectorHit, error)
}

// VectorHit represents a similarity search result.
type VectorHit struct {
	// ID is the matched chunk.
	ID domain.ChunkID

	// Score is the inner product with the query.
	Score float64
}

// IndexStore persists vector index and metadata pairs, one pair per identity.
// The two halves are always read and written together.
type IndexStore interface {
	// New creates an empty in-memory index of the given width.
	New(dim int) VectorIndex

	// Exists reports whether a persisted pair exists for the identity.
	Exists(identity string) (bool, error)

	// Load reads the pair for the identity.
	// Returns domain.ErrIndexNotFound when either file is missing.
	Load(identity string) (VectorIndex, []domain.Record, error)

	// Save writes the index, then the metadata, each atomically.
	Save(identity string, index VectorIndex, records []domain.Record) error

	// Delete removes both files for the identity. Missing files are not an error.
	Delete(identity string) error
}
