package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/folio/internal/core/domain"
)

func TestResolveTitle_MetadataWins(t *testing.T) {
	d := doc(page(fakeLine{"Big First Page Line", 30, 10}))
	d.title = "Quarterly *Results*"

	assert.Equal(t, "Quarterly Results", ResolveTitle(d))
}

func TestResolveTitle_ShortMetadataIgnored(t *testing.T) {
	d := doc(page(fakeLine{"Big First Page Line", 30, 10}))
	d.title = "Doc1"

	assert.Equal(t, "Big First Page Line", ResolveTitle(d))
}

func TestResolveTitle_LargestFontLine(t *testing.T) {
	d := doc(page(
		fakeLine{"small print at the top", 9, 5},
		fakeLine{"Annual Report", 24, 40},
		fakeLine{"Subtitle here", 16, 80},
	))

	assert.Equal(t, "Annual Report", ResolveTitle(d))
}

func TestResolveTitle_TieTakesTopmost(t *testing.T) {
	d := doc(page(
		fakeLine{"Lower Heading", 20, 300},
		fakeLine{"Upper Heading", 20, 100},
	))

	assert.Equal(t, "Upper Heading", ResolveTitle(d))
}

func TestResolveTitle_LengthBounds(t *testing.T) {
	long := "This line is far too long to be a title because it runs past eighty characters total"
	d := doc(page(
		fakeLine{"Tiny", 40, 10},
		fakeLine{long, 30, 20},
		fakeLine{"Exactly fine", 12, 30},
	))

	assert.Equal(t, "Exactly fine", ResolveTitle(d))
}

func TestResolveTitle_PlainTextFallback(t *testing.T) {
	// Every line is too short or too long for the font rule, but the
	// plain text rule only has a lower bound.
	long := "A very long opening line that is well beyond the eighty character limit of step two"
	d := doc(page(
		fakeLine{"abc", 20, 10},
		fakeLine{long, 10, 30},
	))

	assert.Equal(t, long, ResolveTitle(d))
}

func TestResolveTitle_Empty(t *testing.T) {
	assert.Equal(t, "", ResolveTitle(doc()))
	assert.Equal(t, "", ResolveTitle(doc(page(fakeLine{"tiny", 20, 10}))))

	d := doc(page(fakeLine{"Readable Title", 20, 10}))
	d.pageErr = map[int]error{0: errors.New("broken")}
	assert.Equal(t, "", ResolveTitle(d))
}

func TestFallbackTitle(t *testing.T) {
	headings := []domain.HeadingCandidate{
		{Text: "Scope", Level: 2},
		{Text: "Main Title", Level: 1},
	}
	assert.Equal(t, "Main Title", fallbackTitle(headings))
	assert.Equal(t, "Scope", fallbackTitle(headings[:1]))
	assert.Equal(t, "", fallbackTitle(nil))
}

func TestFilterOutline(t *testing.T) {
	headings := []domain.HeadingCandidate{
		{Text: "Annual Report 2024", Page: 0},
		{Text: "Introduction", Page: 0},
		{Text: "Annual Report 2024 Appendix", Page: 3},
	}

	got := filterOutline(headings, "Annual Report 2024")
	assert.Equal(t, []domain.HeadingCandidate{{Text: "Introduction", Page: 0}}, got)

	assert.Equal(t, headings, filterOutline(headings, ""), "empty title filters nothing")
}
