package di

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/samber/do/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/autosort/internal/config"
	"github.com/listenupapp/autosort/internal/di/providers"
	"github.com/listenupapp/autosort/internal/domain"
	"github.com/listenupapp/autosort/internal/watcher"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	state := t.TempDir()
	return &config.Config{
		App:    config.AppConfig{Environment: "development"},
		Logger: config.LoggerConfig{Level: "error"},
		Paths: config.PathsConfig{
			State:     state,
			Rules:     filepath.Join(state, "rules.json"),
			LogFile:   filepath.Join(state, "organizer_log.txt"),
			HistoryDB: filepath.Join(state, "history.db"),
		},
		Organizer: config.OrganizerConfig{
			CollisionPolicy: domain.CollisionSkip,
			Debounce:        50 * time.Millisecond,
			MaxWait:         time.Second,
			WatcherBackend:  watcher.KindAuto,
			RatePerMinute:   30,
		},
	}
}

func TestBootstrapCore_OrganizesAndRecords(t *testing.T) {
	cfg := testConfig(t)
	injector := NewContainerWithConfig(cfg, slog.New(slog.DiscardHandler))
	require.NoError(t, BootstrapCore(injector))

	folder := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(folder, "photo.png"), []byte("png"), 0o644))

	svc := do.MustInvoke[*providers.OrganizerServiceHandle](injector)
	res, err := svc.Organize(context.Background(), folder, domain.TriggerManual)
	require.NoError(t, err)
	require.Len(t, res.Entries, 1)

	log, err := os.ReadFile(cfg.Paths.LogFile)
	require.NoError(t, err)
	assert.Contains(t, string(log), "Moved: photo.png --> Images/")

	moves, err := svc.History(context.Background(), folder, 10)
	require.NoError(t, err)
	assert.Len(t, moves, 1)

	_ = injector.Shutdown()
}

func TestBootstrap_StartsWatchFolder(t *testing.T) {
	cfg := testConfig(t)
	cfg.Organizer.WatchFolder = t.TempDir()
	cfg.Server.Enabled = false

	injector := NewContainerWithConfig(cfg, slog.New(slog.DiscardHandler))
	require.NoError(t, Bootstrap(injector))

	watch := do.MustInvoke[*providers.WatchFolderHandle](injector)
	assert.Equal(t, cfg.Organizer.WatchFolder, watch.Folder)

	server := do.MustInvoke[*providers.HTTPServerHandle](injector)
	assert.Nil(t, server.Server)

	svc := do.MustInvoke[*providers.OrganizerServiceHandle](injector)
	require.Len(t, svc.Watches(), 1)

	require.NoError(t, os.WriteFile(filepath.Join(cfg.Organizer.WatchFolder, "track.wav"), []byte("wav"), 0o644))
	assert.Eventually(t, func() bool {
		_, err := os.Stat(filepath.Join(cfg.Organizer.WatchFolder, "Music", "track.wav"))
		return err == nil
	}, 3*time.Second, 20*time.Millisecond)

	_ = injector.Shutdown()
	assert.Empty(t, svc.Watches())
}

func TestBootstrap_MissingWatchFolderFails(t *testing.T) {
	cfg := testConfig(t)
	cfg.Organizer.WatchFolder = filepath.Join(t.TempDir(), "missing")
	cfg.Server.Enabled = false

	injector := NewContainerWithConfig(cfg, slog.New(slog.DiscardHandler))
	defer func() { _ = injector.Shutdown() }()

	assert.Error(t, Bootstrap(injector))
}
