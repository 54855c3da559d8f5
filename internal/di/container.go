// Package di provides dependency injection configuration for the genrewiki server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/genrewiki/genrewiki-server/internal/config"
	"github.com/genrewiki/genrewiki-server/internal/di/providers"
	"github.com/genrewiki/genrewiki-server/internal/logger"
	"github.com/genrewiki/genrewiki-server/internal/seed"
	"github.com/genrewiki/genrewiki-server/internal/service"
)

// NewContainer creates and configures the DI container with all providers.
// Configuration is loaded from flags, environment and .env.
func NewContainer() *do.RootScope {
	injector := do.New()
	do.Provide(injector, providers.ProvideConfig)
	register(injector)
	return injector
}

// NewContainerWithConfig is NewContainer with an already loaded configuration.
func NewContainerWithConfig(cfg *config.Config) *do.RootScope {
	injector := do.New()
	do.ProvideValue(injector, cfg)
	register(injector)
	return injector
}

func register(injector do.Injector) {
	// Core infrastructure
	do.Provide(injector, providers.ProvideLogger)

	// Database layer
	do.Provide(injector, providers.ProvideStore)

	// Search layer
	do.Provide(injector, providers.ProvideSearchIndex)

	// Business services
	do.Provide(injector, providers.ProvideGenreService)
	do.Provide(injector, providers.ProvideCorrectionService)
	do.Provide(injector, providers.ProvideSeeder)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)
}

// Bootstrap initializes all services, seeds an empty store and starts the
// HTTP server.
func Bootstrap(injector *do.RootScope) error {
	// Invoke core services to trigger initialization
	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	if _, err := do.Invoke[*providers.StoreHandle](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*providers.SearchIndexHandle](injector)

	// Business services
	_ = do.MustInvoke[*providers.GenreServiceHandle](injector)
	_ = do.MustInvoke[*service.CorrectionService](injector)
	_ = do.MustInvoke[*seed.Seeder](injector)

	if err := providers.SeedDefaultsIfEnabled(injector); err != nil {
		return err
	}
	providers.WarmSearchIndex(injector)

	// Server
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	return nil
}
