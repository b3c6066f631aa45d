// Package watcher re-ingests documents when files on disk change.
// It powers the --watch flag of the ingest command: after the initial
// ingestion the watcher keeps the collection in sync with the watched
// directory until the context is cancelled.
package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dochaven/docq-cli/internal/core/domain"
	"github.com/dochaven/docq-cli/internal/core/ports/driving"
	"github.com/dochaven/docq-cli/internal/extractors"
	"github.com/dochaven/docq-cli/internal/logger"
)

// DefaultDebounce is the quiet period after the last write before a
// changed file is re-ingested. Editors often produce several events
// for one save.
const DefaultDebounce = 500 * time.Millisecond

// Config configures a Watcher.
type Config struct {
	// Collection receives the re-ingested documents.
	Collection string

	// Ingest options applied to every re-ingestion.
	Options driving.IngestOptions

	// Debounce is the quiet period per file. Zero selects
	// DefaultDebounce.
	Debounce time.Duration
}

// Watcher watches a directory tree and re-ingests files as they are
// created or modified.
type Watcher struct {
	ingester driving.IngestService
	cfg      Config

	mu     sync.Mutex
	timers map[string]*time.Timer
	closed bool
}

// New creates a watcher that feeds changed files to ingester.
func New(ingester driving.IngestService, cfg Config) (*Watcher, error) {
	if ingester == nil {
		return nil, fmt.Errorf("%w: ingest service is nil", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(cfg.Collection) == "" {
		return nil, fmt.Errorf("%w: collection name is empty", domain.ErrInvalidInput)
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}

	return &Watcher{
		ingester: ingester,
		cfg:      cfg,
		timers:   make(map[string]*time.Timer),
	}, nil
}

// Watch blocks watching root and its subdirectories, re-ingesting
// created and modified files until ctx is cancelled. Hidden files and
// directories are skipped.
func (w *Watcher) Watch(ctx context.Context, root string) error {
	info, err := os.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("watch path %q does not exist", root)
		}
		return fmt.Errorf("watch path error: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("watch path %q is not a directory", root)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fsw.Close()

	// Watch the whole tree. fsnotify does not recurse by itself.
	err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && isHidden(relPath(root, path)) {
			return filepath.SkipDir
		}
		return fsw.Add(path)
	})
	if err != nil {
		return fmt.Errorf("watch %q: %w", root, err)
	}

	logger.Info("Watching %s for changes", root)

	for {
		select {
		case <-ctx.Done():
			w.stopTimers()
			return ctx.Err()

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(ctx, fsw, root, event)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watcher error: %v", err)
		}
	}
}

func (w *Watcher) handleEvent(ctx context.Context, fsw *fsnotify.Watcher, root string, event fsnotify.Event) {
	if isHidden(relPath(root, event.Name)) {
		return
	}

	switch {
	case event.Op.Has(fsnotify.Create):
		info, err := os.Stat(event.Name)
		if err != nil {
			return
		}
		if info.IsDir() {
			// New subdirectory: extend the watch.
			if err := fsw.Add(event.Name); err != nil {
				logger.Warn("Cannot watch %s: %v", event.Name, err)
			}
			return
		}
		w.scheduleIngest(ctx, event.Name)

	case event.Op.Has(fsnotify.Write):
		w.scheduleIngest(ctx, event.Name)
	}
}

// scheduleIngest (re)arms the debounce timer for path. The ingestion
// runs only after the file has been quiet for the debounce period.
func (w *Watcher) scheduleIngest(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}
	if timer, ok := w.timers[path]; ok {
		timer.Stop()
	}
	w.timers[path] = time.AfterFunc(w.cfg.Debounce, func() {
		w.mu.Lock()
		delete(w.timers, path)
		w.mu.Unlock()

		if ctx.Err() != nil {
			return
		}
		w.ingestFile(ctx, path)
	})
}

func (w *Watcher) ingestFile(ctx context.Context, path string) {
	content, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("Cannot read %s: %v", path, err)
		return
	}

	raw := &domain.RawFile{
		Name:     filepath.Base(path),
		MIMEType: extractors.DetectMIMEType(path),
		Content:  content,
	}

	receipt, err := w.ingester.IngestFile(ctx, w.cfg.Collection, raw, w.cfg.Options)
	if err != nil {
		logger.Warn("Re-ingest %s failed: %v", path, err)
		return
	}
	logger.Info("Re-ingested %s: %d chunks", receipt.Filename, receipt.TotalChunks)
}

func (w *Watcher) stopTimers() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.closed = true
	for path, timer := range w.timers {
		timer.Stop()
		delete(w.timers, path)
	}
}

// relPath returns path relative to root, or path unchanged when it
// does not sit under root.
func relPath(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return path
	}
	return rel
}

// isHidden reports whether any element of path starts with a dot.
// "." and ".." are not considered hidden.
func isHidden(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part == "." || part == ".." {
			continue
		}
		if strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}
