// Package services holds folio's core: the indexing pipeline (segmentation,
// title resolution, chunking, embedding), retrieval, outline extraction,
// upload sessions and settings. Everything here talks to the outside world
// through the driven ports, so the same code runs behind the CLI, the TUI,
// the HTTP API and the MCP server.
package services
