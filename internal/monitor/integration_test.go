package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/autosort/internal/domain"
	"github.com/listenupapp/autosort/internal/ignore"
	"github.com/listenupapp/autosort/internal/journal"
	"github.com/listenupapp/autosort/internal/organizer"
	"github.com/listenupapp/autosort/internal/watcher"
)

func newIntegrationSession(t *testing.T, dir string, engine *organizer.Engine, rules []domain.Rule) *Session {
	t.Helper()
	logger := slog.New(slog.DiscardHandler)
	s := NewSession(Options{
		Folder: dir,
		Runner: RunnerFunc(func(ctx context.Context, folder string) (*organizer.Result, error) {
			return engine.Organize(ctx, folder, rules)
		}),
		Backends: watcher.NewFactory(logger, watcher.Options{}),
		Ignore:   ignore.Default(),
		Debounce: 50 * time.Millisecond,
		MaxWait:  500 * time.Millisecond,
		Logger:   logger,
	})
	t.Cleanup(s.Stop)
	require.NoError(t, s.Start(context.Background()))
	return s
}

func TestIntegration_NewFileIsSorted(t *testing.T) {
	dir := t.TempDir()
	engine := organizer.NewEngine(organizer.Options{
		Ignore: ignore.Default(),
		Logger: slog.New(slog.DiscardHandler),
	})
	s := newIntegrationSession(t, dir, engine, []domain.Rule{{Keyword: "draft", Destination: "WIP"}})

	require.NoError(t, os.WriteFile(filepath.Join(dir, "photo.png"), []byte("png"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "essay_draft.docx"), []byte("doc"), 0o644))

	assert.Eventually(t, func() bool {
		_, e1 := os.Stat(filepath.Join(dir, "Images", "photo.png"))
		_, e2 := os.Stat(filepath.Join(dir, "WIP", "essay_draft.docx"))
		return e1 == nil && e2 == nil
	}, 3*time.Second, 20*time.Millisecond)

	assert.Eventually(t, func() bool { return s.Status().Moved == 2 }, time.Second, 10*time.Millisecond)
}

func TestIntegration_ManualAndSessionDoNotDoubleMove(t *testing.T) {
	dir := t.TempDir()
	sink := &journal.Memory{}
	engine := organizer.NewEngine(organizer.Options{
		Sink:   sink,
		Locks:  organizer.NewFolderLocks(t.TempDir()),
		Ignore: ignore.Default(),
		Logger: slog.New(slog.DiscardHandler),
	})
	newIntegrationSession(t, dir, engine, nil)

	const files = 40
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < files; i++ {
			name := filepath.Join(dir, fmt.Sprintf("track%02d.mp3", i))
			if !assert.NoError(t, os.WriteFile(name, []byte("x"), 0o644)) {
				return
			}
			if i%10 == 0 {
				_, err := engine.Organize(context.Background(), dir, nil)
				assert.NoError(t, err)
			}
		}
	}()
	wg.Wait()

	assert.Eventually(t, func() bool {
		moved, err := os.ReadDir(filepath.Join(dir, "Music"))
		return err == nil && len(moved) == files
	}, 5*time.Second, 20*time.Millisecond)

	// Let trailing sweeps settle, then every file must be logged exactly once.
	time.Sleep(200 * time.Millisecond)
	seen := map[string]int{}
	for _, e := range sink.Entries() {
		seen[e.Filename]++
	}
	assert.Len(t, seen, files)
	for name, n := range seen {
		assert.Equal(t, 1, n, name)
	}
}

func TestIntegration_DeletedFolderStopsSession(t *testing.T) {
	parent := t.TempDir()
	dir := filepath.Join(parent, "inbox")
	require.NoError(t, os.Mkdir(dir, 0o755))

	engine := organizer.NewEngine(organizer.Options{Logger: slog.New(slog.DiscardHandler)})
	s := newIntegrationSession(t, dir, engine, nil)

	require.NoError(t, os.RemoveAll(dir))

	select {
	case <-s.Done():
	case <-time.After(3 * time.Second):
		t.Fatal("session kept running after its folder was deleted")
	}
	assert.Equal(t, domain.SessionStopped, s.State())
	assert.Error(t, s.Status().LastError)
}
