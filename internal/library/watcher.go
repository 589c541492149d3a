package library

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"localtube/internal/logging"
	"localtube/internal/metrics"

	"github.com/fsnotify/fsnotify"
)

// watchDebounce is how long the watcher waits after the last filesystem
// event before triggering a refresh. Downloads arrive as bursts of
// create/write events; one rescan at the end covers all of them.
const watchDebounce = 2 * time.Second

// Watcher triggers catalog refreshes when files appear in or disappear
// from the scan roots.
type Watcher struct {
	catalog *Catalog
}

// NewWatcher creates a watcher over catalog's scan roots.
func NewWatcher(catalog *Catalog) *Watcher {
	return &Watcher{catalog: catalog}
}

// Run watches the current root set until ctx is canceled. Roots that
// cannot be watched (missing default directories) are skipped the same
// way the scanner skips them.
func (w *Watcher) Run(ctx context.Context) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		logging.Error("Failed to create file watcher: %v", err)
		metrics.WatcherErrors.Inc()
		return
	}
	defer func() {
		if err := watcher.Close(); err != nil {
			logging.Error("failed to close file watcher: %v", err)
		}
	}()

	watched := 0
	for _, root := range w.catalog.scanner.Roots() {
		if err := watcher.Add(root); err != nil {
			logging.Debug("Not watching %s: %v", root, err)
			continue
		}
		watched++
	}
	if watched == 0 {
		logging.Warn("Watcher started with no watchable roots")
	}
	logging.Debug("Watcher started, watching %d roots", watched)
	metrics.WatchedRoots.Set(float64(watched))

	var pending <-chan time.Time

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !relevantEvent(event) {
				continue
			}
			metrics.WatcherEventsTotal.WithLabelValues(eventType(event.Op)).Inc()
			pending = time.After(watchDebounce)

		case <-pending:
			pending = nil
			logging.Info("Filesystem change detected, refreshing catalog")
			if _, err := w.catalog.Refresh(ctx); err != nil {
				logging.Error("Watcher-triggered refresh failed: %v", err)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logging.Error("Watcher error: %v", err)
			metrics.WatcherErrors.Inc()

		case <-ctx.Done():
			return
		}
	}
}

// relevantEvent reports whether an event could change the catalog:
// a supported video file created, removed, or renamed in a root.
func relevantEvent(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	if strings.Contains(event.Name, "/.") {
		return false
	}
	ext := strings.ToLower(filepath.Ext(event.Name))
	return VideoExtensions[ext]
}

func eventType(op fsnotify.Op) string {
	switch {
	case op&fsnotify.Create != 0:
		return "create"
	case op&fsnotify.Remove != 0:
		return "remove"
	case op&fsnotify.Rename != 0:
		return "rename"
	case op&fsnotify.Write != 0:
		return "write"
	default:
		return "other"
	}
}
