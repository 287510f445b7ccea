package main

import (
	"os"
	"sync"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/listenupapp/autosort/internal/config"
	"github.com/listenupapp/autosort/internal/di"
	"github.com/listenupapp/autosort/internal/di/providers"
	"github.com/listenupapp/autosort/internal/logger"
	"github.com/listenupapp/autosort/internal/service"
)

// configFlags are the root flags forwarded to config.Load when set.
var configFlags = []string{
	"env-file",
	"state-path",
	"rules-path",
	"categories-path",
	"log-file",
	"history-db",
	"collision-policy",
	"log-level",
	"watcher",
	"debounce",
	"include-hidden",
}

type commandContext struct {
	root *cobra.Command
	json bool

	once     sync.Once
	injector *do.RootScope
	svc      *service.OrganizerService
	cfg      *config.Config
	err      error
}

// ensureService loads configuration and builds the organizer on first use.
func (c *commandContext) ensureService() (*service.OrganizerService, error) {
	c.once.Do(func() {
		var args []string
		flags := c.root.PersistentFlags()
		for _, name := range configFlags {
			if f := flags.Lookup(name); f != nil && f.Changed {
				args = append(args, "-"+name+"="+f.Value.String())
			}
		}
		// Per-move logs are noise on a terminal; results are printed instead.
		if !flags.Changed("log-level") && os.Getenv("LOG_LEVEL") == "" {
			args = append(args, "-log-level=warn")
		}

		cfg, err := config.Load(args)
		if err != nil {
			c.err = err
			return
		}
		if err := os.MkdirAll(cfg.Paths.State, 0o755); err != nil {
			c.err = err
			return
		}

		log := logger.New(logger.Config{
			Writer:      c.root.ErrOrStderr(),
			Level:       logger.ParseLevel(cfg.Logger.Level),
			Environment: cfg.App.Environment,
		})

		injector := di.NewContainerWithConfig(cfg, log)
		if err := di.BootstrapCore(injector); err != nil {
			_ = injector.Shutdown()
			c.err = err
			return
		}

		c.cfg = cfg
		c.injector = injector
		c.svc = do.MustInvoke[*providers.OrganizerServiceHandle](injector).OrganizerService
	})
	return c.svc, c.err
}

func (c *commandContext) configValue() *config.Config {
	return c.cfg
}

// close stops watch sessions and closes the history database.
func (c *commandContext) close() {
	if c.injector != nil {
		_ = c.injector.Shutdown()
	}
}
