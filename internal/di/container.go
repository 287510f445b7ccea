// Package di provides dependency injection configuration for autosort.
package di

import (
	"log/slog"

	"github.com/samber/do/v2"

	"github.com/listenupapp/autosort/internal/category"
	"github.com/listenupapp/autosort/internal/config"
	"github.com/listenupapp/autosort/internal/di/providers"
	"github.com/listenupapp/autosort/internal/ignore"
	"github.com/listenupapp/autosort/internal/journal"
	"github.com/listenupapp/autosort/internal/organizer"
	"github.com/listenupapp/autosort/internal/rules"
)

// NewContainer creates and configures the DI container with all providers.
// Configuration is loaded from flags, environment, and .env.
func NewContainer() *do.RootScope {
	injector := do.New()
	do.Provide(injector, providers.ProvideConfig)
	register(injector)
	return injector
}

// NewContainerWithConfig is NewContainer with an already loaded config,
// for callers that parse their own flags.
func NewContainerWithConfig(cfg *config.Config, log *slog.Logger) *do.RootScope {
	injector := do.New()
	do.ProvideValue(injector, cfg)
	do.ProvideValue(injector, log)
	registerServices(injector)
	return injector
}

func register(injector do.Injector) {
	// Core infrastructure
	do.Provide(injector, providers.ProvideLogger)
	registerServices(injector)
}

func registerServices(injector do.Injector) {
	// Database layer
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideSSEManager)

	// Organizer layer
	do.Provide(injector, providers.ProvideCategories)
	do.Provide(injector, providers.ProvideRules)
	do.Provide(injector, providers.ProvideSink)
	do.Provide(injector, providers.ProvideIgnore)
	do.Provide(injector, providers.ProvideEngine)

	// Business services
	do.Provide(injector, providers.ProvideLimiter)
	do.Provide(injector, providers.ProvideOrganizerService)

	// Workers
	do.Provide(injector, providers.ProvideWatchFolder)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)
}

// Bootstrap initializes the daemon: every core service, the startup watch,
// and the HTTP API.
func Bootstrap(injector *do.RootScope) error {
	if err := BootstrapCore(injector); err != nil {
		return err
	}

	// Workers
	if _, err := do.Invoke[*providers.WatchFolderHandle](injector); err != nil {
		return err
	}

	// Server
	if _, err := do.Invoke[*providers.HTTPServerHandle](injector); err != nil {
		return err
	}

	return nil
}

// BootstrapCore initializes everything organize runs need, without
// starting any watch or server.
func BootstrapCore(injector *do.RootScope) error {
	if _, err := do.Invoke[*config.Config](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*slog.Logger](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.StoreHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.SSEManagerHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*category.Table](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*rules.Set](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[journal.Sink](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[ignore.Matcher](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*organizer.Engine](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.OrganizerServiceHandle](injector); err != nil {
		return err
	}
	return nil
}
