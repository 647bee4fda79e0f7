package scan

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"pathsift/ignore"
)

// Daemon orchestrates the scan process: initial seed, watcher, and the
// re-evaluation queue worker. The ignore matcher is compiled once before
// the daemon starts and shared read-only by every component.
type Daemon struct {
	store   *Store
	root    string
	matcher *ignore.Matcher
	queue   *Queue
	bus     *EventBus
}

// NewDaemon creates a new scan daemon. matcher may be nil (nothing ignored).
func NewDaemon(store *Store, root string, matcher *ignore.Matcher) *Daemon {
	return &Daemon{
		store:   store,
		root:    root,
		matcher: matcher,
		queue:   NewQueue(),
		bus:     NewEventBus(),
	}
}

// Queue returns the re-evaluation queue, used to push paths for manual
// re-indexing.
func (d *Daemon) Queue() *Queue {
	return d.queue
}

// Events returns the bus broadcasting index changes.
func (d *Daemon) Events() *EventBus {
	return d.bus
}

// Seed performs the initial index population: one full ignore-filtered
// walk, then removal of indexed paths the walk no longer saw.
func (d *Daemon) Seed() error {
	l := sub("daemon")
	l.Info("seed starting", "root", d.root)

	start := nowFunc().UnixNano()
	entries, err := ScanTree(d.root, d.matcher)
	if err != nil {
		return fmt.Errorf("seed scan: %w", err)
	}

	for _, e := range entries {
		if err := d.store.UpsertEntry(e); err != nil {
			return fmt.Errorf("seed upsert: %w", err)
		}
	}

	// Anything in the index the walk did not touch vanished, or is now
	// excluded by the ignore file, while the daemon was down.
	if _, err := d.store.DeleteNotSeenSince(start); err != nil {
		return fmt.Errorf("seed prune: %w", err)
	}

	l.Info("seed complete", "entries", len(entries))
	return nil
}

// Run starts the daemon. It performs the initial seed, starts the watcher,
// then processes the re-evaluation queue. Blocks until ctx is cancelled.
func (d *Daemon) Run(ctx context.Context) {
	l := sub("daemon")
	l.Info("scan daemon starting", "root", d.root)

	if err := d.Seed(); err != nil {
		l.Error("seed failed, daemon aborting", "err", err)
		return
	}

	watcher, err := NewWatcher(d.root, d.matcher, d.queue)
	if err != nil {
		l.Error("watcher creation failed, daemon aborting", "err", err)
		return
	}

	go func() {
		if err := watcher.Start(ctx); err != nil && ctx.Err() == nil {
			l.Warn("watcher stopped unexpectedly", "err", err)
		}
	}()

	l.Info("worker loop started")
	done := ctx.Done()
	for {
		relPath, ok := d.queue.Pop(done)
		if !ok {
			l.Info("worker stopping, context cancelled")
			break
		}

		if err := d.reevaluate(relPath); err != nil {
			if ctx.Err() != nil {
				l.Info("worker stopping, context cancelled")
				break
			}
			l.Error("reevaluate failed", "path", relPath, "err", err)
		}
	}

	watcher.Close()
	l.Info("scan daemon stopped")
}

// reevaluate converges the index for one relative path: stat the path,
// apply the ignore verdict, and upsert or remove accordingly.
func (d *Daemon) reevaluate(relPath string) error {
	l := sub("daemon")
	abs := filepath.Join(d.root, filepath.FromSlash(relPath))

	info, err := os.Stat(abs)
	if err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("stat %s: %w", relPath, err)
		}
		// Gone from disk: drop the path and anything beneath it.
		prev, err := d.store.GetEntry(relPath)
		if err != nil {
			return err
		}
		if prev == nil {
			return nil
		}
		if err := d.store.DeleteTree(relPath); err != nil {
			return err
		}
		d.bus.Publish(Event{Type: "remove", Path: relPath, IsDir: prev.IsDir})
		l.Debug("entry removed", "path", relPath)
		return nil
	}

	ignored := false
	if d.matcher != nil {
		if info.IsDir() {
			ignored = d.matcher.IsDirIgnored(abs)
		} else {
			ignored = d.matcher.IsFileIgnored(abs)
		}
	}
	if ignored {
		prev, err := d.store.GetEntry(relPath)
		if err != nil {
			return err
		}
		if prev == nil {
			return nil
		}
		if err := d.store.DeleteTree(relPath); err != nil {
			return err
		}
		d.bus.Publish(Event{Type: "remove", Path: relPath, IsDir: prev.IsDir})
		l.Debug("ignored entry removed", "path", relPath)
		return nil
	}

	prev, err := d.store.GetEntry(relPath)
	if err != nil {
		return err
	}

	e := Entry{
		Path:  relPath,
		Name:  filepath.Base(abs),
		Type:  ClassifyType(filepath.Base(abs), info.IsDir()),
		Mtime: info.ModTime().UnixNano(),
		IsDir: info.IsDir(),
		Seen:  nowFunc().UnixNano(),
	}
	if !info.IsDir() {
		size := info.Size()
		e.Size = &size
	}
	if err := d.store.UpsertEntry(e); err != nil {
		return err
	}

	eventType := "update"
	if prev == nil {
		eventType = "add"
	}
	d.bus.Publish(Event{Type: eventType, Path: relPath, IsDir: e.IsDir, Size: e.Size})

	// A directory that moved in wholesale never produced events for its
	// contents, so index its subtree explicitly.
	if info.IsDir() && prev == nil {
		if err := d.indexSubtree(relPath, abs); err != nil {
			return err
		}
	}

	return nil
}

// indexSubtree walks a newly appeared directory and indexes everything the
// matcher keeps beneath it.
func (d *Daemon) indexSubtree(relPath, abs string) error {
	entries, err := ScanTree(abs, d.matcher)
	if err != nil {
		return fmt.Errorf("index subtree %s: %w", relPath, err)
	}
	for _, e := range entries {
		e.Path = path.Join(relPath, e.Path)
		if err := d.store.UpsertEntry(e); err != nil {
			return err
		}
		d.bus.Publish(Event{Type: "add", Path: e.Path, IsDir: e.IsDir, Size: e.Size})
	}
	return nil
}
