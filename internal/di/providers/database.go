package providers

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/samber/do/v2"

	"github.com/listenupapp/autosort/internal/config"
	"github.com/listenupapp/autosort/internal/store/sqlite"
)

// StoreHandle wraps the history store with shutdown capability.
type StoreHandle struct {
	*sqlite.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore provides the history database.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*slog.Logger](i)

	if err := os.MkdirAll(filepath.Dir(cfg.Paths.HistoryDB), 0o755); err != nil {
		return nil, err
	}

	st, err := sqlite.Open(cfg.Paths.HistoryDB, log)
	if err != nil {
		return nil, err
	}

	log.Debug("history database opened", "path", cfg.Paths.HistoryDB)

	return &StoreHandle{Store: st}, nil
}
