package domain

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHeadingLevel_String(t *testing.T) {
	assert.Equal(t, "H1", HeadingLevel(1).String())
	assert.Equal(t, "H6", MaxHeadingLevel.String())
}

func TestHeadingCandidate_Key(t *testing.T) {
	a := HeadingCandidate{Text: "Scope", Page: 1, Source: SourceMarkdown, Level: 2}
	b := HeadingCandidate{Text: "Scope", Page: 1, Source: SourceFontSize, Level: 2}
	c := HeadingCandidate{Text: "Scope", Page: 2}

	assert.Equal(t, a.Key(), b.Key())
	assert.NotEqual(t, a.Key(), c.Key())
}

func TestResolvedHeading_SortOffset(t *testing.T) {
	resolved := ResolvedHeading{Offset: 72, Resolved: true}
	unresolved := ResolvedHeading{Offset: 72}

	assert.Equal(t, 72.0, resolved.SortOffset())
	assert.Equal(t, UnresolvedOffset, unresolved.SortOffset())
}

func TestResolvedHeading_Before(t *testing.T) {
	headings := []ResolvedHeading{
		{HeadingCandidate: HeadingCandidate{Text: "c", Page: 5}, Offset: 10, Resolved: true},
		{HeadingCandidate: HeadingCandidate{Text: "b", Page: 2}, Offset: 140, Resolved: true},
		{HeadingCandidate: HeadingCandidate{Text: "a", Page: 2}, Offset: 40, Resolved: true},
		{HeadingCandidate: HeadingCandidate{Text: "top", Page: 2}},
	}

	sort.SliceStable(headings, func(i, j int) bool {
		return headings[i].Before(headings[j])
	})

	var order []string
	for _, h := range headings {
		order = append(order, h.Text)
	}
	assert.Equal(t, []string{"top", "a", "b", "c"}, order)
}
