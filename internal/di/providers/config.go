// Package providers contains dependency injection providers for autosort.
package providers

import (
	"log/slog"

	"github.com/samber/do/v2"

	"github.com/listenupapp/autosort/internal/config"
	"github.com/listenupapp/autosort/internal/logger"
)

// ProvideConfig provides the application configuration.
func ProvideConfig(_ do.Injector) (*config.Config, error) {
	return config.LoadConfig()
}

// ProvideLogger provides the structured logger.
func ProvideLogger(i do.Injector) (*slog.Logger, error) {
	cfg := do.MustInvoke[*config.Config](i)

	log := logger.New(logger.Config{
		Level:       logger.ParseLevel(cfg.Logger.Level),
		AddSource:   cfg.App.Environment == "development",
		Environment: cfg.App.Environment,
	})

	log.Debug("configuration loaded",
		"environment", cfg.App.Environment,
		"log_level", cfg.Logger.Level,
		"state_path", cfg.Paths.State,
		"collision_policy", cfg.Organizer.CollisionPolicy,
	)

	return log, nil
}
