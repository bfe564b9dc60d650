package domain

// Document is a PDF seen during one indexing run.
// It is recomputed on every run and never persisted on its own.
type Document struct {
	// Filename is the base name of the PDF.
	Filename string

	// Title is the resolved document title.
	Title string

	// PageCount is the number of pages.
	PageCount int
}

// Outline is the heading structure extracted from one PDF.
type Outline struct {
	Filename  string             `json:"filename"`
	Title     string             `json:"title"`
	PageCount int                `json:"page_count"`
	Headings  []HeadingCandidate `json:"outline"`
}

// Document returns the transient document described by the outline.
func (o *Outline) Document() Document {
	return Document{
		Filename:  o.Filename,
		Title:     o.Title,
		PageCount: o.PageCount,
	}
}

// Section is the raw text between two consecutive resolved headings.
type Section struct {
	// Title is the heading text that opens the section.
	Title string

	// Content is the raw text span, one block per line.
	Content string

	// Page is the 1-based page the section starts on.
	Page int
}

// Chunk is a normalised section ready for embedding.
type Chunk struct {
	Document string `json:"document"`
	Title    string `json:"title"`
	Content  string `json:"content"`
	Page     int    `json:"page"`
}
