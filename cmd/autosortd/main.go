// Package main provides the entry point for the autosort daemon: it watches
// the configured folder and serves the local control API.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/samber/do/v2"

	"github.com/listenupapp/autosort/internal/di"
	"github.com/listenupapp/autosort/internal/di/providers"
)

func main() {
	injector := di.NewContainer()

	if err := di.Bootstrap(injector); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start autosortd: %v\n", err)
		_ = injector.Shutdown()
		os.Exit(1)
	}

	log := do.MustInvoke[*slog.Logger](injector)
	watch := do.MustInvoke[*providers.WatchFolderHandle](injector)
	log.Info("autosortd running", "version", providers.Version, "watch_folder", watch.Folder)

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down...")

	// Stops the HTTP server first, then watch sessions, then the database.
	if err := injector.Shutdown(); err != nil {
		log.Error("shutdown error", "error", err)
	}

	log.Info("stopped")
}
