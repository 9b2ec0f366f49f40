package flagdef

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/listenupapp/listenup-flags/internal/service"
)

// DefaultDebounce is how long the file must stay quiet before it is re-read.
// Editors often write a file in several steps.
const DefaultDebounce = 250 * time.Millisecond

// Syncer applies a set of definitions.
type Syncer interface {
	SyncDefinitions(ctx context.Context, defs []service.CreateFlagRequest, prune bool) (*service.SyncResult, error)
}

// Options configures a Watcher.
type Options struct {
	// Prune removes flags missing from the file.
	Prune    bool
	Debounce time.Duration
}

// Watcher re-syncs flag definitions whenever the definitions file changes.
type Watcher struct {
	path     string
	syncer   Syncer
	prune    bool
	debounce time.Duration
	logger   *slog.Logger
	ready    chan struct{}
}

// NewWatcher creates a watcher for the definitions file at path.
func NewWatcher(path string, syncer Syncer, opts Options, logger *slog.Logger) *Watcher {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	return &Watcher{
		path:     filepath.Clean(path),
		syncer:   syncer,
		prune:    opts.Prune,
		debounce: opts.Debounce,
		logger:   logger,
		ready:    make(chan struct{}),
	}
}

// Sync loads the file and applies it once.
func (w *Watcher) Sync(ctx context.Context) (*service.SyncResult, error) {
	defs, err := Load(w.path)
	if err != nil {
		return nil, err
	}

	res, err := w.syncer.SyncDefinitions(ctx, defs, w.prune)
	if err != nil {
		return nil, fmt.Errorf("sync definitions: %w", err)
	}

	w.logger.Debug("flag definitions file applied", "path", w.path, "definitions", len(defs))
	return res, nil
}

// Ready is closed once Run watches the file.
func (w *Watcher) Ready() <-chan struct{} {
	return w.ready
}

// Run watches the file until ctx is done. A change triggers a Sync after the
// debounce interval. Sync failures are logged and the previous definitions
// stay in effect.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	defer fsw.Close()

	// Watch the directory: editors replace files by rename, which drops a
	// watch placed on the file itself.
	if err := fsw.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(w.path), err)
	}
	close(w.ready)

	w.logger.Info("watching flag definitions", "path", w.path)

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&fsnotify.Remove != 0 {
				w.logger.Warn("flag definitions file removed, keeping current flags", "path", w.path)
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				timer.Reset(w.debounce)
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("flag definitions watcher error", "error", err)

		case <-timer.C:
			if _, err := w.Sync(ctx); err != nil {
				w.logger.Error("failed to sync flag definitions", "path", w.path, "error", err)
			}
		}
	}
}
