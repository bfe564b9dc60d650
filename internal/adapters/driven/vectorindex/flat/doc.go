// Package flat provides an exhaustive in-memory vector index and a file
// store that persists it next to its chunk metadata.
//
// Each identity owns two sibling files in the store directory:
//
//	<identity>_index.flat      vectors, little-endian binary
//	<identity>_metadata.json   chunk records, a JSON array
//
// Entry i of both files carries ChunkID i.
package flat
