package providers

import (
	"github.com/samber/do/v2"

	"github.com/listenupapp/listenup-flags/internal/config"
	"github.com/listenupapp/listenup-flags/internal/logger"
	"github.com/listenupapp/listenup-flags/internal/routing"
	"github.com/listenupapp/listenup-flags/internal/rules"
	"github.com/listenupapp/listenup-flags/internal/service"
)

// ProvideFlagService provides the flag service.
func ProvideFlagService(i do.Injector) (*service.FlagService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewFlagService(storeHandle.Store, sseHandle.Manager, log.Component("flags")), nil
}

// ProvideRouteGenerator provides the canonical URL generator.
func ProvideRouteGenerator(i do.Injector) (*routing.Generator, error) {
	cfg := do.MustInvoke[*config.Config](i)
	return routing.NewGenerator(cfg.Routing.CanonicalRoutes)
}

// ProvideActionManager provides the workflow action manager.
func ProvideActionManager(i do.Injector) (*rules.Manager, error) {
	flags := do.MustInvoke[*service.FlagService](i)
	return rules.NewManager(rules.NewDefaultRegistry(flags)), nil
}
