package providers

import (
	"context"
	"log/slog"

	"github.com/samber/do/v2"

	"github.com/listenupapp/autosort/internal/config"
)

// WatchFolderHandle tracks the folder watched on startup.
type WatchFolderHandle struct {
	Folder string
}

// ProvideWatchFolder starts watching WATCH_FOLDER, if configured. The
// session is stopped by the organizer service's shutdown.
func ProvideWatchFolder(i do.Injector) (*WatchFolderHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*slog.Logger](i)
	svc := do.MustInvoke[*OrganizerServiceHandle](i)

	if cfg.Organizer.WatchFolder == "" {
		log.Info("no watch folder configured")
		return &WatchFolderHandle{}, nil
	}

	status, err := svc.StartWatch(context.Background(), cfg.Organizer.WatchFolder)
	if err != nil {
		return nil, err
	}

	log.Info("watching folder", "folder", status.Folder, "debounce", cfg.Organizer.Debounce)

	return &WatchFolderHandle{Folder: status.Folder}, nil
}
