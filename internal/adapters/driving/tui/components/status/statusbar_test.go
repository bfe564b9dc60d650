package status

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBar_Defaults(t *testing.T) {
	bar := NewBar(nil, nil)
	require.NotNil(t, bar)

	assert.Equal(t, StateReady, bar.State())
	assert.Equal(t, 80, bar.Width())
	assert.Zero(t, bar.ResultCount())
	assert.Empty(t, bar.Message())
}

func TestBar_ViewStates(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(*Bar)
		contains string
	}{
		{"ready", func(*Bar) {}, "Ready"},
		{"searching", func(b *Bar) { b.SetState(StateSearching) }, "Searching..."},
		{"loading", func(b *Bar) { b.SetState(StateLoading) }, "Loading..."},
		{"error with message", func(b *Bar) {
			b.SetState(StateError)
			b.SetMessage("index not found")
		}, "Error: index not found"},
		{"one passage", func(b *Bar) {
			b.SetState(StateResults)
			b.SetResultCount(1)
		}, "1 passage"},
		{"many passages", func(b *Bar) {
			b.SetState(StateResults)
			b.SetResultCount(7)
		}, "7 passages"},
		{"identity", func(b *Bar) { b.SetIdentity("papers") }, "[papers]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bar := NewBar(nil, nil)
			bar.SetWidth(200)
			tt.setup(bar)
			assert.Contains(t, bar.View(), tt.contains)
		})
	}
}

func TestBar_Hints(t *testing.T) {
	bar := NewBar(nil, nil)
	bar.SetWidth(200)

	assert.Contains(t, bar.View(), "enter: search")

	bar.SetHints(HintsResults)
	assert.Contains(t, bar.View(), "enter: expand")

	bar.SetHints(HintsRuns)
	assert.Contains(t, bar.View(), "r: refresh")
}

func TestBar_Clear(t *testing.T) {
	bar := NewBar(nil, nil)
	bar.SetState(StateError)
	bar.SetMessage("boom")
	bar.SetResultCount(3)
	bar.SetHints(HintsRuns)

	bar.Clear()

	assert.Equal(t, StateReady, bar.State())
	assert.Empty(t, bar.Message())
	assert.Zero(t, bar.ResultCount())
	assert.Equal(t, HintsShort, bar.hints)
}
