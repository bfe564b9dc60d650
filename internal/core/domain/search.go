package domain

// SearchOptions configures a retrieval call.
type SearchOptions struct {
	// Identity selects the index. Empty means the configured default.
	Identity string

	// TopK is the maximum number of results. Zero means the configured default.
	TopK int
}

// SearchResult is a single ranked passage.
type SearchResult struct {
	PDFName string  `json:"pdfName"`
	PageNo  int     `json:"pageNo"`
	Title   string  `json:"title"`
	Snippet string  `json:"snippet"`
	Score   float64 `json:"score"`
}
