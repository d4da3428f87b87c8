package loader

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
)

// WatcherConfig configures the ontology document watcher
type WatcherConfig struct {
	// Patterns are the ontology path globs to watch
	Patterns []string

	// DebounceDelay is how long to wait for more changes before reloading
	DebounceDelay time.Duration

	// Logger for logging events
	Logger *slog.Logger
}

// ReloadFunc reloads the graph after the listed documents changed.
type ReloadFunc func(ctx context.Context, changed []string) error

// Watcher watches ontology documents and triggers debounced reloads
type Watcher struct {
	config   WatcherConfig
	patterns []string
	watcher  *fsnotify.Watcher
	logger   *slog.Logger

	// Debouncing: collect changes before reloading
	pendingMu sync.Mutex
	pending   map[string]fsnotify.Op

	// path → content hash, to skip writes that leave a document unchanged
	hashMu sync.RWMutex
	hashes map[string]string
}

// NewWatcher creates a new document watcher
func NewWatcher(config WatcherConfig) (*Watcher, error) {
	patterns := make([]string, 0, len(config.Patterns))
	for _, p := range config.Patterns {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, err
		}
		patterns = append(patterns, filepath.ToSlash(abs))
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if config.DebounceDelay == 0 {
		config.DebounceDelay = 500 * time.Millisecond
	}

	return &Watcher{
		config:   config,
		patterns: patterns,
		watcher:  fsw,
		logger:   logger,
		pending:  make(map[string]fsnotify.Op),
		hashes:   make(map[string]string),
	}, nil
}

// Run watches until ctx is done, calling reload once per debounced batch of
// document changes. A failed reload is logged and watching continues.
func (w *Watcher) Run(ctx context.Context, reload ReloadFunc) error {
	defer w.watcher.Close()

	for _, dir := range w.roots() {
		if err := w.addWatchesRecursive(dir); err != nil {
			return err
		}
	}
	w.seedHashes()

	w.logger.Info("Ontology watcher started",
		"patterns", w.config.Patterns,
		"debounce", w.config.DebounceDelay)

	ticker := time.NewTicker(w.config.DebounceDelay)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handleFSEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("Watcher error", "error", err)

		case <-ticker.C:
			changed := w.flushPending()
			if len(changed) == 0 {
				continue
			}
			w.logger.Info("Ontology documents changed, reloading", "documents", changed)
			if err := reload(ctx, changed); err != nil {
				w.logger.Error("Reload failed", "error", err)
			}
		}
	}
}

// roots returns the static directory prefix of every pattern.
func (w *Watcher) roots() []string {
	seen := make(map[string]bool)
	var out []string
	for _, p := range w.patterns {
		base, _ := doublestar.SplitPattern(p)
		dir := filepath.FromSlash(base)
		if !seen[dir] {
			seen[dir] = true
			out = append(out, dir)
		}
	}
	return out
}

func (w *Watcher) matches(path string) bool {
	slash := filepath.ToSlash(path)
	for _, p := range w.patterns {
		if ok, _ := doublestar.Match(p, slash); ok {
			return true
		}
	}
	return false
}

// addWatchesRecursive adds watches to all directories
func (w *Watcher) addWatchesRecursive(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(filepath.Base(path), ".") {
			return filepath.SkipDir
		}

		if err := w.watcher.Add(path); err != nil {
			w.logger.Warn("Failed to watch directory",
				"path", path,
				"error", err)
		} else {
			w.logger.Debug("Watching directory", "path", path)
		}
		return nil
	})
}

func (w *Watcher) seedHashes() {
	for _, dir := range w.roots() {
		filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
			if err != nil || info.IsDir() || !w.matches(path) {
				return nil
			}
			if hash, err := hashFile(path); err == nil {
				w.setHash(path, hash)
			}
			return nil
		})
	}
}

// handleFSEvent processes a single fsnotify event
func (w *Watcher) handleFSEvent(event fsnotify.Event) {
	path := event.Name

	if !w.matches(path) {
		if event.Has(fsnotify.Create) {
			if info, err := os.Stat(path); err == nil && info.IsDir() {
				w.handleNewDirectory(path)
			}
		}
		return
	}

	w.pendingMu.Lock()
	w.pending[path] = event.Op
	w.pendingMu.Unlock()

	w.logger.Debug("Document change detected",
		"path", path,
		"op", event.Op.String())
}

func (w *Watcher) handleNewDirectory(path string) {
	if strings.HasPrefix(filepath.Base(path), ".") {
		return
	}
	if err := w.addWatchesRecursive(path); err != nil {
		w.logger.Warn("Failed to watch new directory",
			"path", path,
			"error", err)
	}
}

// flushPending returns the pending documents whose content changed.
func (w *Watcher) flushPending() []string {
	w.pendingMu.Lock()
	if len(w.pending) == 0 {
		w.pendingMu.Unlock()
		return nil
	}
	toProcess := w.pending
	w.pending = make(map[string]fsnotify.Op)
	w.pendingMu.Unlock()

	var changed []string
	for path, op := range toProcess {
		if op.Has(fsnotify.Remove) || op.Has(fsnotify.Rename) {
			w.hashMu.Lock()
			delete(w.hashes, path)
			w.hashMu.Unlock()
			changed = append(changed, path)
			continue
		}

		hash, err := hashFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				changed = append(changed, path)
			} else {
				w.logger.Warn("Failed to read changed document", "path", path, "error", err)
			}
			continue
		}

		if old, ok := w.hash(path); ok && old == hash {
			continue
		}
		w.setHash(path, hash)
		changed = append(changed, path)
	}
	sort.Strings(changed)
	return changed
}

func (w *Watcher) setHash(path, hash string) {
	w.hashMu.Lock()
	defer w.hashMu.Unlock()
	w.hashes[path] = hash
}

func (w *Watcher) hash(path string) (string, bool) {
	w.hashMu.RLock()
	defer w.hashMu.RUnlock()
	hash, ok := w.hashes[path]
	return hash, ok
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
