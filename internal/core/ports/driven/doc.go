// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - PDFReader: Opens PDFs and exposes positioned text per page
//   - HeadingDetector: Proposes heading candidates for one page
//   - EmbeddingService: Generates vector embeddings
//   - IndexStore: Loads and persists vector index + metadata pairs
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - RunStore: Indexing run ledger. Without it, run history is not kept.
//   - SessionStore: Upload sessions. Only needed by the HTTP API.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or detector package
package driven
