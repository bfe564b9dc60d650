package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown detector or provider name.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrRateLimited indicates the embedding API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")

	// Index Errors.

	// ErrIndexNotFound indicates no persisted index exists for the identity.
	ErrIndexNotFound = errors.New("index not found")

	// ErrDimensionMismatch indicates a vector width differs from the index width.
	// Mixing embedding models invalidates every score, so this is never tolerated.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrIndexCorrupt indicates the vector file and metadata file disagree
	// in a way that cannot be repaired on load.
	ErrIndexCorrupt = errors.New("index corrupt")

	// ErrIndexingInProgress indicates an indexing run already holds the identity.
	ErrIndexingInProgress = errors.New("indexing in progress")

	// ErrDocumentRead indicates a PDF could not be opened or parsed.
	ErrDocumentRead = errors.New("document unreadable")

	// Session Errors.

	// ErrSessionNotFound indicates the session id is unknown.
	ErrSessionNotFound = errors.New("session not found")
)

// DocumentReadError records which PDF failed and why.
// It matches ErrDocumentRead with errors.Is.
type DocumentReadError struct {
	Filename string
	Err      error
}

// Error implements error.
func (e *DocumentReadError) Error() string {
	return fmt.Sprintf("read %s: %v", e.Filename, e.Err)
}

// Unwrap returns the underlying cause.
func (e *DocumentReadError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrDocumentRead.
func (e *DocumentReadError) Is(target error) bool {
	return target == ErrDocumentRead
}
