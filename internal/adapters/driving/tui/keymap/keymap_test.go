package keymap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultKeyMap(t *testing.T) {
	km := DefaultKeyMap()
	require.NotNil(t, km)

	assert.ElementsMatch(t, []string{"q", "ctrl+c"}, km.Quit.Keys())
	assert.Equal(t, []string{"esc"}, km.Back.Keys())
	assert.Equal(t, []string{"enter"}, km.Submit.Keys())
	assert.ElementsMatch(t, []string{"up", "k"}, km.Up.Keys())
	assert.ElementsMatch(t, []string{"down", "j"}, km.Down.Keys())
	assert.Contains(t, km.Expand.Keys(), "enter")
	assert.Contains(t, km.NewSearch.Keys(), "/")
	assert.Equal(t, []string{"r"}, km.Refresh.Keys())
}

func TestHelpSets(t *testing.T) {
	km := DefaultKeyMap()

	assert.Len(t, km.ShortHelp(), 2)
	assert.Equal(t, "expand", km.ResultsHelp()[2].Help().Desc)
	assert.Equal(t, "refresh", km.RunsHelp()[3].Help().Desc)
}

func TestMatches(t *testing.T) {
	km := DefaultKeyMap()

	tests := []struct {
		key      string
		expected bool
	}{
		{"k", true},
		{"up", true},
		{"j", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.expected, Matches(tt.key, km.Up))
		})
	}
}
