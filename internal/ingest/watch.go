package ingest

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// defaultDebounce coalesces editor write bursts into one re-ingest.
const defaultDebounce = 500 * time.Millisecond

// watchSkipDirs are never watched.
var watchSkipDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	".next":        true,
	"dist":         true,
	"build":        true,
	".cache":       true,
}

// Watcher re-ingests files as they change. Records are appended, never
// replaced; re-running a full ingest into a fresh collection is the way
// to deduplicate.
type Watcher struct {
	pipeline *Pipeline
	logger   *zap.Logger
	debounce time.Duration

	mu     sync.Mutex
	timers map[string]*time.Timer
}

// NewWatcher creates a watcher for the pipeline's source root.
func NewWatcher(pipeline *Pipeline) *Watcher {
	return &Watcher{
		pipeline: pipeline,
		logger:   pipeline.logger,
		debounce: defaultDebounce,
		timers:   make(map[string]*time.Timer),
	}
}

// Watch blocks, re-ingesting changed files until ctx is done.
func (w *Watcher) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	root := w.pipeline.opts.Load.Root
	if err := addRecursive(watcher, root); err != nil {
		return err
	}

	w.logger.Info("watching for changes", zap.String("root", root))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}

			info, err := os.Stat(event.Name)
			if err != nil {
				continue
			}
			if info.IsDir() {
				if event.Op&fsnotify.Create != 0 && !watchSkipDirs[filepath.Base(event.Name)] {
					if err := addRecursive(watcher, event.Name); err != nil {
						w.logger.Warn("watching new directory", zap.Error(err))
					}
				}
				continue
			}

			w.schedule(ctx, event.Name)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", zap.Error(err))
		}
	}
}

// schedule debounces a change and re-ingests the file once it settles.
func (w *Watcher) schedule(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if timer, ok := w.timers[path]; ok {
		timer.Stop()
	}
	w.timers[path] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.timers, path)
		w.mu.Unlock()

		stored, err := w.pipeline.ReIngestFile(ctx, path)
		switch {
		case err != nil:
			w.logger.Error("re-ingesting file",
				zap.String("path", path),
				zap.Error(err))
		case stored > 0:
			w.logger.Info("re-ingested file",
				zap.String("path", path),
				zap.Int("records", stored))
		}
	})
}

// addRecursive watches dir and every subdirectory beneath it.
func addRecursive(watcher *fsnotify.Watcher, dir string) error {
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return nil
		}
		if watchSkipDirs[filepath.Base(path)] && path != dir {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
}
