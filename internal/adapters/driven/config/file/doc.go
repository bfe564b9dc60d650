// Package file provides the TOML configuration store kept in the folio
// home directory, normally ~/.folio/config.toml.
//
// Keys use dot notation ("embedding.provider"). On disk each prefix
// becomes a TOML table, so the file stays readable and hand-editable:
//
//	[embedding]
//	provider = "ollama"
//	model = "nomic-embed-text"
package file
