package providers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/samber/do/v2"

	"github.com/listenupapp/listenup-flags/internal/api"
	"github.com/listenupapp/listenup-flags/internal/auth"
	"github.com/listenupapp/listenup-flags/internal/config"
	"github.com/listenupapp/listenup-flags/internal/logger"
	"github.com/listenupapp/listenup-flags/internal/routing"
	"github.com/listenupapp/listenup-flags/internal/rules"
	"github.com/listenupapp/listenup-flags/internal/service"
)

// shutdownTimeout is the maximum time to wait for graceful shutdown of services.
const shutdownTimeout = 30 * time.Second

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
	handler *api.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	defer h.handler.Close()
	return h.Server.Shutdown(ctx)
}

// ProvideHTTPServer provides the HTTP server.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)

	services := &api.Services{
		Store:   storeHandle.Store,
		Flags:   do.MustInvoke[*service.FlagService](i),
		Tokens:  do.MustInvoke[*auth.TokenService](i),
		Routes:  do.MustInvoke[*routing.Generator](i),
		Actions: do.MustInvoke[*rules.Manager](i),
		Events:  sseHandle.Manager,
	}

	handler := api.NewServer(services, api.Options{
		CORSOrigins:   cfg.Server.CORSOrigins,
		SecureCookies: cfg.App.IsProduction(),
		LinkRateLimit: cfg.RateLimit.LinkPerMinute,
	}, log.Component("http"))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start in background
	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", "error", err)
		}
	}()

	return &HTTPServerHandle{Server: srv, handler: handler}, nil
}
