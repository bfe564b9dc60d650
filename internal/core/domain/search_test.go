package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchResult_WireNames(t *testing.T) {
	data, err := json.Marshal(SearchResult{
		PDFName: "amp.pdf",
		PageNo:  3,
		Title:   "Loop Gain",
		Snippet: "The loop gain...",
		Score:   0.5,
	})
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))

	assert.Len(t, got, 5)
	assert.Equal(t, "amp.pdf", got["pdfName"])
	assert.EqualValues(t, 3, got["pageNo"])
	assert.Equal(t, "Loop Gain", got["title"])
	assert.Equal(t, "The loop gain...", got["snippet"])
	assert.EqualValues(t, 0.5, got["score"])
}

func TestSearchOptions_ZeroMeansDefaults(t *testing.T) {
	var opts SearchOptions

	assert.Empty(t, opts.Identity)
	assert.Zero(t, opts.TopK)
}
