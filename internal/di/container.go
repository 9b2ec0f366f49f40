// Package di provides dependency injection configuration for the flags server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/listenupapp/listenup-flags/internal/auth"
	"github.com/listenupapp/listenup-flags/internal/config"
	"github.com/listenupapp/listenup-flags/internal/di/providers"
	"github.com/listenupapp/listenup-flags/internal/logger"
	"github.com/listenupapp/listenup-flags/internal/routing"
	"github.com/listenupapp/listenup-flags/internal/rules"
	"github.com/listenupapp/listenup-flags/internal/service"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideAuthKey)

	// Database layer
	do.Provide(injector, providers.ProvideSSEManager)
	do.Provide(injector, providers.ProvideStore)

	// Auth layer
	do.Provide(injector, providers.ProvideTokenService)

	// Business services
	do.Provide(injector, providers.ProvideFlagService)
	do.Provide(injector, providers.ProvideRouteGenerator)
	do.Provide(injector, providers.ProvideActionManager)
	do.Provide(injector, providers.ProvideDefinitionsWatcher)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services.
// Flag definitions are applied before the HTTP server starts accepting requests.
func Bootstrap(injector *do.RootScope) error {
	for _, invoke := range []func(do.Injector) error{
		invokeAs[*config.Config],
		invokeAs[*logger.Logger],
		invokeAs[providers.AuthKey],
		invokeAs[*providers.SSEManagerHandle],
		invokeAs[*providers.StoreHandle],
		invokeAs[*auth.TokenService],
		invokeAs[*service.FlagService],
		invokeAs[*routing.Generator],
		invokeAs[*rules.Manager],
		invokeAs[*providers.DefinitionsWatcherHandle],
		invokeAs[*providers.HTTPServerHandle],
	} {
		if err := invoke(injector); err != nil {
			return err
		}
	}
	return nil
}

func invokeAs[T any](i do.Injector) error {
	_, err := do.Invoke[T](i)
	return err
}
