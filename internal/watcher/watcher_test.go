package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsHidden(t *testing.T) {
	tests := []struct {
		path     string
		expected bool
	}{
		{".hidden.pdf", true},
		{"path/to/.hidden.pdf", true},
		{"/path/.cache/report.pdf", true},
		{"/a/.b/.c/file.pdf", true},

		{"report.pdf", false},
		{"/root/papers/report.pdf", false},
		{"archive.v2/report.pdf", false},

		{".", false},
		{"..", false},
		{"path/./report.pdf", false},
		{"path/../report.pdf", false},
		{"", false},
		{"/", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.expected, isHidden(tt.path))
		})
	}
}

func TestRelevant(t *testing.T) {
	dir := t.TempDir()
	pdf := filepath.Join(dir, "report.pdf")
	upper := filepath.Join(dir, "SCAN.PDF")
	text := filepath.Join(dir, "notes.txt")
	hidden := filepath.Join(dir, ".draft.pdf")
	subdir := filepath.Join(dir, "nested.pdf")
	for _, p := range []string{pdf, upper, text, hidden} {
		require.NoError(t, os.WriteFile(p, []byte("%PDF-1.4"), 0o644))
	}
	require.NoError(t, os.Mkdir(subdir, 0o755))

	tests := []struct {
		name     string
		path     string
		op       fsnotify.Op
		expected bool
	}{
		{"create pdf", pdf, fsnotify.Create, true},
		{"write pdf", pdf, fsnotify.Write, true},
		{"write with chmod", pdf, fsnotify.Write | fsnotify.Chmod, true},
		{"upper-case extension", upper, fsnotify.Create, true},
		{"chmod only", pdf, fsnotify.Chmod, false},
		{"remove", filepath.Join(dir, "gone.pdf"), fsnotify.Remove, false},
		{"rename", pdf, fsnotify.Rename, false},
		{"not a pdf", text, fsnotify.Create, false},
		{"hidden pdf", hidden, fsnotify.Write, false},
		{"directory named like a pdf", subdir, fsnotify.Create, false},
		{"vanished before stat", filepath.Join(dir, "tmp.pdf"), fsnotify.Create, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event := fsnotify.Event{Name: tt.path, Op: tt.op}
			assert.Equal(t, tt.expected, relevant(event))
		})
	}
}

func TestNew(t *testing.T) {
	dir := t.TempDir()

	w, err := New(dir, 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultDebounce, w.debounce)

	_, err = New(filepath.Join(dir, "missing"), time.Second)
	assert.Error(t, err)

	file := filepath.Join(dir, "a.pdf")
	require.NoError(t, os.WriteFile(file, nil, 0o644))
	_, err = New(file, time.Second)
	assert.Error(t, err)
}

func TestDrain(t *testing.T) {
	pending := map[string]struct{}{"b.pdf": {}, "a.pdf": {}}
	assert.Equal(t, []string{"a.pdf", "b.pdf"}, drain(pending))
	assert.Empty(t, pending)
}

func TestRun_CoalescesBurst(t *testing.T) {
	dir := t.TempDir()
	w, err := New(dir, 150*time.Millisecond)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	batches := make(chan []string, 4)
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(names []string) { batches <- names })
	}()

	// Give the watcher time to register the folder.
	time.Sleep(100 * time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.pdf"), []byte("one"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.pdf"), []byte("two"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ignored.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".hidden.pdf"), []byte("x"), 0o644))

	select {
	case names := <-batches:
		assert.Equal(t, []string{"a.pdf", "b.pdf"}, names)
	case <-time.After(5 * time.Second):
		t.Fatal("no notification")
	}

	select {
	case names := <-batches:
		t.Fatalf("unexpected second notification: %v", names)
	case <-time.After(400 * time.Millisecond):
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
}
