// Package domain defines the core business entities for Folio.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Outline: headings and title extracted from one PDF
//   - Section: text bounded by two consecutive resolved headings
//   - Chunk: a normalised, retrieval-ready unit of a section
//   - Record: a chunk paired with its position in the vector index
//   - SearchResult: a ranked passage returned for a query
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
