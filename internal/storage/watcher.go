package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"aoedash/internal/logging"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads snapshots from a DirSource when their files change on
// disk. A changed file invalidates its memoized dataset and its path is
// published on Changes once the writes have settled.
type Watcher struct {
	mu          sync.Mutex
	watcher     *fsnotify.Watcher
	source      *DirSource
	fetcher     *Fetcher
	tracked     map[string]bool
	debounceMap map[string]time.Time
	debounceDur time.Duration
	changes     chan string
	stopCh      chan struct{}
	doneCh      chan struct{}
	running     bool
}

// NewWatcher creates a watcher for the given snapshot paths.
func NewWatcher(source *DirSource, fetcher *Fetcher, paths []string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	tracked := make(map[string]bool, len(paths))
	for _, p := range paths {
		tracked[filepath.ToSlash(filepath.Clean(filepath.FromSlash(p)))] = true
	}

	return &Watcher{
		watcher:     fw,
		source:      source,
		fetcher:     fetcher,
		tracked:     tracked,
		debounceMap: make(map[string]time.Time),
		debounceDur: 300 * time.Millisecond,
		changes:     make(chan string, 16),
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}, nil
}

// Changes delivers snapshot paths whose datasets were invalidated.
// Deliveries are dropped when nobody is reading.
func (w *Watcher) Changes() <-chan string {
	return w.changes
}

// Start begins watching the directories of every tracked path. It does not
// block.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	dirs := make(map[string]bool)
	for p := range w.tracked {
		full, err := w.source.resolve(p)
		if err != nil {
			return err
		}
		dirs[filepath.Dir(full)] = true
	}
	for dir := range dirs {
		if err := w.watcher.Add(dir); err != nil {
			logging.CacheWarn("watcher: cannot watch %s: %v", dir, err)
			continue
		}
		logging.Cache("watcher: watching %s", dir)
	}

	go w.run(ctx)
	return nil
}

// Stop stops the watcher and waits for its goroutine to exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		_ = w.watcher.Close()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh

	if err := w.watcher.Close(); err != nil {
		logging.CacheWarn("watcher: error closing: %v", err)
	}
	logging.Cache("watcher: stopped")
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.debounceDur / 3)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logging.CacheWarn("watcher error: %v", err)
		case <-ticker.C:
			w.processDebounced()
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}
	rel, ok := w.source.rel(event.Name)
	if !ok || !w.tracked[rel] {
		return
	}

	w.mu.Lock()
	w.debounceMap[rel] = time.Now()
	w.mu.Unlock()
}

func (w *Watcher) processDebounced() {
	w.mu.Lock()
	now := time.Now()
	var settled []string
	for p, at := range w.debounceMap {
		if now.Sub(at) >= w.debounceDur {
			settled = append(settled, p)
			delete(w.debounceMap, p)
		}
	}
	w.mu.Unlock()

	for _, p := range settled {
		w.fetcher.Invalidate(p)
		logging.Cache("watcher: %s changed on disk", p)
		select {
		case w.changes <- p:
		default:
		}
	}
}
