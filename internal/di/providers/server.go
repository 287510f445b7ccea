package providers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/listenupapp/autosort/internal/api"
	"github.com/listenupapp/autosort/internal/config"
	"github.com/listenupapp/autosort/internal/sse"
)

// Version is reported by the API; set at build time.
var Version = "dev"

// HTTPServerHandle wraps http.Server with Shutdownable. Server is nil when
// the API is disabled.
type HTTPServerHandle struct {
	*http.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	if h.Server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// ProvideHTTPServer provides the HTTP control API.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*slog.Logger](i)

	if !cfg.Server.Enabled {
		log.Info("HTTP API disabled by configuration")
		return &HTTPServerHandle{}, nil
	}

	svc := do.MustInvoke[*OrganizerServiceHandle](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	events := do.MustInvoke[*SSEManagerHandle](i)

	handler := api.NewServer(svc.OrganizerService, api.Options{
		Version:        Version,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		History:        storeHandle.Store,
		Events:         sse.NewHandler(events.Manager, log),
	}, log)

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
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

	return &HTTPServerHandle{Server: srv}, nil
}
