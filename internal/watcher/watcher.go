// Package watcher ingests files dropped into a watched directory tree.
// Each security level has its own subdirectory; a file dropped under
// confidential/ is ingested at CONFIDENTIAL.
package watcher

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/intellecta/intellecta/internal/models"
)

const defaultDebounce = 400 * time.Millisecond

// levelDirs maps drop subdirectory names to ingestion levels.
var levelDirs = map[string]models.SecurityLevel{
	"public":       models.LevelPublic,
	"internal":     models.LevelInternal,
	"confidential": models.LevelConfidential,
	"restricted":   models.LevelRestricted,
	"top_secret":   models.LevelTopSecret,
}

// DropHandler receives a dropped file path and the level implied by its
// subdirectory.
type DropHandler func(path string, level models.SecurityLevel)

// Watcher watches a drop directory and invokes the handler for new or
// rewritten files, debounced per path.
type Watcher struct {
	root        string
	extensions  []string
	onDrop      DropHandler
	debounce    time.Duration
	watcher     *fsnotify.Watcher
	mu          sync.Mutex
	debounceMap map[string]*time.Timer
	done        chan struct{}
	started     bool
	stopOnce    sync.Once
	logger      *zap.Logger
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithLogger sets a logger for debug output.
func WithLogger(l *zap.Logger) Option {
	return func(w *Watcher) { w.logger = l }
}

// WithDebounce overrides the per-file debounce interval.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

// New creates a drop-directory watcher rooted at root. extensions filter
// which files are handled (empty = all).
func New(root string, extensions []string, onDrop DropHandler, opts ...Option) *Watcher {
	w := &Watcher{
		root:        filepath.Clean(root),
		extensions:  extensions,
		onDrop:      onDrop,
		debounce:    defaultDebounce,
		debounceMap: make(map[string]*time.Timer),
		done:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start creates the per-level subdirectories, begins watching them, and
// runs until ctx is cancelled or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.started {
		w.mu.Unlock()
		return nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		w.mu.Unlock()
		return err
	}
	for dir := range levelDirs {
		path := filepath.Join(w.root, dir)
		if err := os.MkdirAll(path, 0755); err != nil {
			_ = watcher.Close()
			w.mu.Unlock()
			return err
		}
		if err := watcher.Add(path); err != nil {
			_ = watcher.Close()
			w.mu.Unlock()
			return err
		}
	}
	w.watcher = watcher
	w.started = true
	w.mu.Unlock()

	if w.logger != nil {
		w.logger.Info("drop watcher started", zap.String("root", w.root))
	}
	go w.run(ctx, watcher)
	return nil
}

func (w *Watcher) run(ctx context.Context, fsw *fsnotify.Watcher) {
	for {
		select {
		case <-ctx.Done():
			w.Stop()
			return
		case <-w.done:
			return
		case ev, ok := <-fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(ev)
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			if err != nil && w.logger != nil {
				w.logger.Debug("watcher error", zap.Error(err))
			}
		}
	}
}

func (w *Watcher) handleEvent(ev fsnotify.Event) {
	if !ev.Op.Has(fsnotify.Create) && !ev.Op.Has(fsnotify.Write) {
		return
	}
	path := ev.Name
	level, ok := w.levelFor(path)
	if !ok || !w.matchExtension(path) {
		return
	}
	if info, err := os.Stat(path); err != nil || info.IsDir() {
		return
	}
	w.debounceDrop(path, level)
}

// levelFor resolves the clearance subdirectory a path was dropped into.
func (w *Watcher) levelFor(path string) (models.SecurityLevel, bool) {
	rel, err := filepath.Rel(w.root, filepath.Clean(path))
	if err != nil || strings.HasPrefix(rel, "..") {
		return models.LevelPublic, false
	}
	parts := strings.Split(rel, string(filepath.Separator))
	if len(parts) < 2 {
		return models.LevelPublic, false
	}
	level, ok := levelDirs[parts[0]]
	return level, ok
}

func (w *Watcher) matchExtension(path string) bool {
	if len(w.extensions) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range w.extensions {
		if strings.ToLower(e) == ext {
			return true
		}
	}
	return false
}

func (w *Watcher) debounceDrop(path string, level models.SecurityLevel) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.debounceMap[path]; ok {
		t.Stop()
	}
	t := time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.debounceMap, path)
		logger := w.logger
		w.mu.Unlock()
		if logger != nil {
			logger.Debug("ingesting dropped file",
				zap.String("path", path), zap.String("level", string(level)))
		}
		if w.onDrop != nil {
			w.onDrop(path, level)
		}
	})
	w.debounceMap[path] = t
}

// SyncExisting invokes the handler for files already present in the drop
// tree, for files dropped while the service was down.
func (w *Watcher) SyncExisting() {
	for dir, level := range levelDirs {
		entries, err := os.ReadDir(filepath.Join(w.root, dir))
		if err != nil {
			continue
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			path := filepath.Join(w.root, dir, e.Name())
			if w.matchExtension(path) && w.onDrop != nil {
				w.onDrop(path, level)
			}
		}
	}
}

// Stop stops the watcher and releases resources.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.started || w.watcher == nil {
		w.mu.Unlock()
		return
	}
	for path, t := range w.debounceMap {
		t.Stop()
		delete(w.debounceMap, path)
	}
	_ = w.watcher.Close()
	w.watcher = nil
	w.started = false
	w.mu.Unlock()
	w.stopOnce.Do(func() { close(w.done) })
}
