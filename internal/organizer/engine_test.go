package organizer

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/autosort/internal/domain"
	"github.com/listenupapp/autosort/internal/errors"
	"github.com/listenupapp/autosort/internal/ignore"
	"github.com/listenupapp/autosort/internal/journal"
)

func newTestEngine(t *testing.T, sink journal.Sink, opts ...func(*Options)) *Engine {
	t.Helper()
	o := Options{
		Sink:   sink,
		Locks:  NewFolderLocks(t.TempDir()),
		Ignore: ignore.Default(),
		Logger: slog.New(slog.DiscardHandler),
	}
	for _, fn := range opts {
		fn(&o)
	}
	return NewEngine(o)
}

func TestOrganize_ExampleFolder(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "invoice.pdf"), "a")
	writeFile(t, filepath.Join(dir, "photo.JPG"), "b")
	writeFile(t, filepath.Join(dir, "report_draft.txt"), "c")

	sink := &journal.Memory{}
	engine := newTestEngine(t, sink)
	rules := []domain.Rule{{Keyword: "draft", Destination: "WIP"}}

	res, err := engine.Organize(context.Background(), dir, rules)
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(dir, "Documents", "invoice.pdf"))
	assert.FileExists(t, filepath.Join(dir, "Images", "photo.JPG"))
	assert.FileExists(t, filepath.Join(dir, "WIP", "report_draft.txt"))

	require.Len(t, res.Entries, 3)
	got := map[string]string{}
	for _, e := range res.Entries {
		got[e.Filename] = e.Destination
		assert.Equal(t, res.RunID, e.RunID)
		assert.Equal(t, dir, e.Folder)
	}
	assert.Equal(t, map[string]string{
		"invoice.pdf":      "Documents",
		"photo.JPG":        "Images",
		"report_draft.txt": "WIP",
	}, got)

	assert.Equal(t, 1, sink.Batches())
	assert.Len(t, sink.Entries(), 3)
	assert.False(t, res.FinishedAt.Before(res.StartedAt))
}

func TestOrganize_SecondRunIsEmpty(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "song.mp3"), "x")

	sink := &journal.Memory{}
	engine := newTestEngine(t, sink)

	first, err := engine.Organize(context.Background(), dir, nil)
	require.NoError(t, err)
	require.Len(t, first.Entries, 1)

	second, err := engine.Organize(context.Background(), dir, nil)
	require.NoError(t, err)
	assert.Empty(t, second.Entries)
	assert.NotEqual(t, first.RunID, second.RunID)
	assert.Equal(t, 1, sink.Batches(), "an empty run must not touch the sink")
}

func TestOrganize_OthersIsARealFolder(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "Makefile"), "all:")
	writeFile(t, filepath.Join(dir, "notes.xyz"), "?")

	engine := newTestEngine(t, nil)
	res, err := engine.Organize(context.Background(), dir, nil)
	require.NoError(t, err)

	assert.Len(t, res.Entries, 2)
	assert.FileExists(t, filepath.Join(dir, "Others", "Makefile"))
	assert.FileExists(t, filepath.Join(dir, "Others", "notes.xyz"))
}

func TestOrganize_LeavesDirectoriesAndSymlinks(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "photos.jpg"), 0o755))
	writeFile(t, filepath.Join(dir, "nested", "deep.pdf"), "d")
	writeFile(t, filepath.Join(dir, "target.txt"), "t")
	if err := os.Symlink(filepath.Join(dir, "target.txt"), filepath.Join(dir, "link.txt")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	engine := newTestEngine(t, nil)
	res, err := engine.Organize(context.Background(), dir, nil)
	require.NoError(t, err)

	require.Len(t, res.Entries, 1)
	assert.Equal(t, "target.txt", res.Entries[0].Filename)
	assert.DirExists(t, filepath.Join(dir, "photos.jpg"))
	assert.FileExists(t, filepath.Join(dir, "nested", "deep.pdf"))

	info, err := os.Lstat(filepath.Join(dir, "link.txt"))
	require.NoError(t, err)
	assert.NotZero(t, info.Mode()&os.ModeSymlink)
}

func TestOrganize_SkipsIgnoredAndOwnFiles(t *testing.T) {
	dir := t.TempDir()
	logFile := filepath.Join(dir, "organizer_log.txt")
	writeFile(t, logFile, "")
	writeFile(t, filepath.Join(dir, "movie.mkv.part"), "partial")
	writeFile(t, filepath.Join(dir, ".hidden.pdf"), "h")
	writeFile(t, filepath.Join(dir, "clip.mp4"), "v")

	engine := newTestEngine(t, journal.NewFileSink(logFile), func(o *Options) {
		o.Exclude = []string{logFile}
	})

	res, err := engine.Organize(context.Background(), dir, nil)
	require.NoError(t, err)

	require.Len(t, res.Entries, 1)
	assert.Equal(t, "Videos", res.Entries[0].Destination)
	assert.Equal(t, 2, res.Skipped)
	assert.FileExists(t, logFile)
	assert.FileExists(t, filepath.Join(dir, "movie.mkv.part"))

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Moved: clip.mp4 --> Videos/")
}

func TestOrganize_ConflictCountedAndContinues(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "Images", "photo.png"), "old")
	writeFile(t, filepath.Join(dir, "photo.png"), "new")
	writeFile(t, filepath.Join(dir, "song.wav"), "w")

	engine := newTestEngine(t, nil)
	res, err := engine.Organize(context.Background(), dir, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Conflicts)
	require.Len(t, res.Entries, 1)
	assert.Equal(t, "song.wav", res.Entries[0].Filename)
	assert.FileExists(t, filepath.Join(dir, "photo.png"))

	summary := res.Summary(domain.TriggerManual)
	assert.Equal(t, 1, summary.Moved)
	assert.Equal(t, 1, summary.Conflicts)
	assert.Equal(t, domain.TriggerManual, summary.Trigger)
}

func TestOrganize_RenamePolicyRecordsFinalPath(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "Images", "photo.png"), "old")
	writeFile(t, filepath.Join(dir, "photo.png"), "new")

	engine := newTestEngine(t, nil, func(o *Options) {
		o.Mover = NewMover(domain.CollisionRename, o.Logger)
	})
	res, err := engine.Organize(context.Background(), dir, nil)
	require.NoError(t, err)

	require.Len(t, res.Entries, 1)
	assert.Equal(t, filepath.Join(dir, "Images", "photo (1).png"), res.Entries[0].FinalPath)
	assert.Zero(t, res.Conflicts)
}

func TestOrganize_NestedRuleDestination(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "tax_2024.pdf"), "t")

	engine := newTestEngine(t, nil)
	res, err := engine.Organize(context.Background(), dir, []domain.Rule{
		{Keyword: "tax", Destination: "Finance/Tax"},
	})
	require.NoError(t, err)

	require.Len(t, res.Entries, 1)
	assert.Equal(t, "Finance/Tax", res.Entries[0].Destination)
	assert.FileExists(t, filepath.Join(dir, "Finance", "Tax", "tax_2024.pdf"))
}

func TestOrganize_InvalidFolder(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "file.txt")
	writeFile(t, file, "x")

	engine := newTestEngine(t, nil)

	for name, folder := range map[string]string{
		"missing": filepath.Join(dir, "nope"),
		"file":    file,
		"empty":   "",
	} {
		t.Run(name, func(t *testing.T) {
			res, err := engine.Organize(context.Background(), folder, nil)
			require.Error(t, err)
			assert.Nil(t, res)
			assert.True(t, errors.Is(err, errors.ErrConfig))
		})
	}
}

type failingSink struct{}

func (failingSink) Append(context.Context, []domain.LogEntry) error {
	return fmt.Errorf("disk full")
}

func TestOrganize_SinkFailureReturnsResult(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.zip"), "z")

	engine := newTestEngine(t, failingSink{})
	res, err := engine.Organize(context.Background(), dir, nil)

	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrIO))
	require.NotNil(t, res)
	assert.Len(t, res.Entries, 1)
	assert.FileExists(t, filepath.Join(dir, "Archives", "a.zip"))
}

func TestOrganize_CancelledContext(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.py"), "print()")

	engine := newTestEngine(t, nil, func(o *Options) { o.Locks = NewFolderLocks("") })
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := engine.Organize(ctx, dir, nil)
	require.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, res)
	assert.Empty(t, res.Entries)
	assert.FileExists(t, filepath.Join(dir, "a.py"))
}

func TestOrganize_ConcurrentRunsNoDoubleMove(t *testing.T) {
	dir := t.TempDir()
	const files = 60
	for i := 0; i < files; i++ {
		writeFile(t, filepath.Join(dir, fmt.Sprintf("file%02d.txt", i)), "x")
	}

	sink := &journal.Memory{}
	engine := newTestEngine(t, sink)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		results []*Result
	)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := engine.Organize(context.Background(), dir, nil)
			if assert.NoError(t, err) {
				mu.Lock()
				results = append(results, res)
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	require.Len(t, results, 2)
	assert.Equal(t, files, len(results[0].Entries)+len(results[1].Entries))
	assert.Zero(t, results[0].Conflicts+results[1].Conflicts)
	assert.Len(t, sink.Entries(), files)

	moved, err := os.ReadDir(filepath.Join(dir, "Documents"))
	require.NoError(t, err)
	assert.Len(t, moved, files)

	left, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, left, 1, "only the Documents folder should remain")
}
