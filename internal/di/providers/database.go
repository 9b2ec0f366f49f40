package providers

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/samber/do/v2"

	"github.com/listenupapp/listenup-flags/internal/config"
	"github.com/listenupapp/listenup-flags/internal/logger"
	"github.com/listenupapp/listenup-flags/internal/sse"
	"github.com/listenupapp/listenup-flags/internal/store"
	"github.com/listenupapp/listenup-flags/internal/store/kv"
	"github.com/listenupapp/listenup-flags/internal/store/sqlite"
)

// SSEManagerHandle wraps the SSE manager with its context for lifecycle management.
type SSEManagerHandle struct {
	*sse.Manager
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *SSEManagerHandle) Shutdown() error {
	h.cancel()
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Manager.Shutdown(ctx)
}

// ProvideSSEManager provides the server-sent events manager.
func ProvideSSEManager(i do.Injector) (*SSEManagerHandle, error) {
	log := do.MustInvoke[*logger.Logger](i)

	manager := sse.NewManager(log.Component("sse"))

	// Start in background
	ctx, cancel := context.WithCancel(context.Background())
	go manager.Start(ctx)

	log.Info("SSE manager started")

	return &SSEManagerHandle{
		Manager: manager,
		cancel:  cancel,
	}, nil
}

// StoreHandle wraps the store with shutdown capability.
type StoreHandle struct {
	store.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore opens the store selected by the configured driver.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if err := os.MkdirAll(cfg.Data.Path, 0o700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	var (
		s    store.Store
		path string
		err  error
	)
	switch cfg.Store.Driver {
	case config.DriverSQLite:
		path = filepath.Join(cfg.Data.Path, "flags.db")
		s, err = sqlite.Open(path, log.Component("store"))
	case config.DriverBadger:
		path = filepath.Join(cfg.Data.Path, "flags.badger")
		s, err = kv.Open(path, log.Component("store"))
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
	if err != nil {
		return nil, err
	}

	log.Info("Database initialized", "driver", cfg.Store.Driver, "path", path)

	return &StoreHandle{Store: s}, nil
}
