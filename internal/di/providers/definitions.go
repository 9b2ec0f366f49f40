package providers

import (
	"context"
	"errors"

	"github.com/samber/do/v2"

	"github.com/listenupapp/listenup-flags/internal/config"
	"github.com/listenupapp/listenup-flags/internal/flagdef"
	"github.com/listenupapp/listenup-flags/internal/logger"
	"github.com/listenupapp/listenup-flags/internal/service"
)

// DefinitionsWatcherHandle keeps the flag definitions file in sync with the store.
type DefinitionsWatcherHandle struct {
	*flagdef.Watcher
	cancel context.CancelFunc
	done   chan struct{}
}

// Shutdown implements do.Shutdownable.
func (h *DefinitionsWatcherHandle) Shutdown() error {
	if h.cancel == nil {
		return nil
	}
	h.cancel()
	<-h.done
	return nil
}

// ProvideDefinitionsWatcher applies the configured definitions file and,
// when watching is enabled, re-applies it on change.
// Without a definitions file the handle is inert.
func ProvideDefinitionsWatcher(i do.Injector) (*DefinitionsWatcherHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	flags := do.MustInvoke[*service.FlagService](i)

	if cfg.Flags.DefinitionsFile == "" {
		log.Info("No flag definitions file configured")
		return &DefinitionsWatcherHandle{}, nil
	}

	w := flagdef.NewWatcher(cfg.Flags.DefinitionsFile, flags, flagdef.Options{
		Prune: cfg.Flags.Prune,
	}, log.Component("flagdef"))

	if _, err := w.Sync(context.Background()); err != nil {
		return nil, err
	}

	if !cfg.Flags.Watch {
		return &DefinitionsWatcherHandle{Watcher: w}, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.WithError(err).Error("Flag definitions watcher stopped")
		}
	}()

	log.Info("Watching flag definitions", "path", cfg.Flags.DefinitionsFile)

	return &DefinitionsWatcherHandle{Watcher: w, cancel: cancel, done: done}, nil
}
