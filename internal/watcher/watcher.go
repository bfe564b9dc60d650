// Package watcher reports changes to the PDFs in a folder.
//
// Events are coalesced: a burst of writes (a copy in progress, a batch
// of files dropped in at once) produces a single notification once the
// folder has been quiet for the debounce interval.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/folio/internal/logger"
)

// DefaultDebounce is the quiet period used when none is given.
const DefaultDebounce = 2 * time.Second

// Watcher watches a single folder, non-recursively.
type Watcher struct {
	folder   string
	debounce time.Duration
}

// New creates a watcher for folder.
func New(folder string, debounce time.Duration) (*Watcher, error) {
	info, err := os.Stat(folder)
	if err != nil {
		return nil, fmt.Errorf("watch %s: %w", folder, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("watch %s: not a directory", folder)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{folder: folder, debounce: debounce}, nil
}

// Run watches the folder until ctx is done and calls onChange once per
// settled burst with the sorted, de-duplicated names that changed.
// onChange runs on the watcher goroutine; events arriving meanwhile are
// buffered by fsnotify and folded into the next burst.
func (w *Watcher) Run(ctx context.Context, onChange func(names []string)) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fsw.Close()

	if err := fsw.Add(w.folder); err != nil {
		return fmt.Errorf("watch %s: %w", w.folder, err)
	}
	logger.Debug("watching %s (debounce %s)", w.folder, w.debounce)

	pending := make(map[string]struct{})
	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !relevant(event) {
				continue
			}
			logger.Debug("watcher: %s %s", event.Op, event.Name)
			pending[filepath.Base(event.Name)] = struct{}{}
			timer.Reset(w.debounce)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			if errors.Is(err, fsnotify.ErrEventOverflow) {
				// Lost events; force a rescan.
				pending["*"] = struct{}{}
				timer.Reset(w.debounce)
				continue
			}
			logger.Warn("watcher: %v", err)

		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			names := drain(pending)
			onChange(names)
		}
	}
}

// relevant reports whether event signals new or modified PDF content.
func relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return false
	}
	if isHidden(event.Name) {
		return false
	}
	if !strings.EqualFold(filepath.Ext(event.Name), ".pdf") {
		return false
	}
	info, err := os.Stat(event.Name)
	if err != nil || info.IsDir() {
		return false
	}
	return true
}

// isHidden reports whether any component of path starts with a dot.
// "." and ".." are not hidden.
func isHidden(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part == "" || part == "." || part == ".." {
			continue
		}
		if strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}

func drain(pending map[string]struct{}) []string {
	names := make([]string, 0, len(pending))
	for name := range pending {
		names = append(names, name)
		delete(pending, name)
	}
	slices.Sort(names)
	return names
}
