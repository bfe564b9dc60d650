package driven

import "github.com/custodia-labs/folio/internal/core/domain"

// PDFReader opens PDF files.
type PDFReader interface {
	// Open parses the file at path.
	Open(path string) (PDFDocument, error)
}

// PDFDocument is an opened PDF.
type PDFDocument interface {
	// PageCount returns the number of pages.
	PageCount() int

	// MetadataTitle returns the title from the document info dictionary, if any.
	MetadataTitle() string

	// Page returns the page at the 0-based index.
	Page(index int) (PDFPage, error)

	// Close releases the underlying file.
	Close() error
}

// PDFPage exposes the positioned text of one page.
// All coordinates are top-down.
type PDFPage interface {
	// Lines returns text lines with their spans, in content order.
	Lines() []domain.Line

	// Blocks returns positioned text blocks.
	Blocks() []domain.Block

	// Text returns the page's plain text, one line per row.
	Text() string

	// Search returns the boxes of every literal occurrence of needle.
	Search(needle string) []domain.Rect

	// Markdown renders the page as markdown.
	Markdown() string
}
