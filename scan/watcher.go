package scan

import (
	"context"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"pathsift/ignore"
)

const debounceInterval = 300 * time.Millisecond

// Watcher monitors the scan root for filesystem changes and feeds relative
// paths into the re-evaluation queue. Ignored directories are never watched
// and events for ignored paths are dropped at the source.
type Watcher struct {
	root    string
	matcher *ignore.Matcher
	queue   *Queue
	watcher *fsnotify.Watcher
}

// NewWatcher creates a filesystem watcher for the scan root.
// matcher may be nil, in which case nothing is filtered.
func NewWatcher(root string, matcher *ignore.Matcher, queue *Queue) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		root:    root,
		matcher: matcher,
		queue:   queue,
		watcher: w,
	}, nil
}

// Start begins watching and debouncing events. Blocks until ctx is cancelled.
func (w *Watcher) Start(ctx context.Context) error {
	l := sub("watcher")

	if err := w.addRecursive(w.root); err != nil {
		return err
	}
	l.Info("watching", "root", w.root)

	// Debounce timer and pending paths
	pending := make(map[string]struct{})
	timer := time.NewTimer(debounceInterval)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			w.watcher.Close()
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}

			relPath := w.toRelPath(event.Name)
			if relPath == "" || relPath == "." {
				continue
			}

			// The ignore file and our own artifacts stay out of the queue.
			base := filepath.Base(event.Name)
			if base == ignore.IgnoreFile || base == IndexDirName || strings.Contains(event.Name, string(filepath.Separator)+IndexDirName+string(filepath.Separator)) {
				continue
			}
			// Deleted paths can no longer be stat'ed, so an event path is
			// dropped only when it is ignored under both interpretations.
			if w.matcher != nil &&
				w.matcher.IsFileIgnored(event.Name) && w.matcher.IsDirIgnored(event.Name) {
				continue
			}

			pending[relPath] = struct{}{}

			// Reset debounce timer
			timer.Reset(debounceInterval)

			// If a new directory was created, add it to watch
			if event.Has(fsnotify.Create) {
				if w.matcher == nil || !w.matcher.IsDirIgnored(event.Name) {
					// Try adding as directory (no-op if it's a file)
					w.watcher.Add(event.Name) //nolint:errcheck
				}
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			l.Warn("watch error", "err", err)

		case <-timer.C:
			// Debounce timer fired — flush pending paths to queue
			if len(pending) > 0 {
				paths := make([]string, 0, len(pending))
				for p := range pending {
					paths = append(paths, p)
				}
				w.queue.PushMany(paths)
				l.Debug("flushed paths to queue", "count", len(paths))
				pending = make(map[string]struct{})
			}
		}
	}
}

// toRelPath converts an absolute event path to the root-relative slash form
// used by the queue and the index. Returns "" for paths outside the root.
func (w *Watcher) toRelPath(absPath string) string {
	rel, err := filepath.Rel(w.root, absPath)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return ""
	}
	return filepath.ToSlash(rel)
}

// addRecursive adds a directory and all non-ignored subdirectories to the
// watcher.
func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // skip inaccessible dirs
		}
		if !d.IsDir() {
			return nil
		}
		if d.Name() == IndexDirName {
			return filepath.SkipDir
		}
		if path != root && w.matcher != nil && w.matcher.IsDirIgnored(path) {
			return filepath.SkipDir
		}
		return w.watcher.Add(path)
	})
}

// Close closes the underlying fsnotify watcher.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
