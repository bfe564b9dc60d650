package driven

import "github.com/custodia-labs/folio/internal/core/domain"

// ChunkBuilder normalises sections into chunks ready for embedding.
type ChunkBuilder interface {
	// Build returns one chunk per retrieval-worthy section, in section order.
	Build(document string, sections []domain.Section) []domain.Chunk
}
