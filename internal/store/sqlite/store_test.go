package sqlite

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/autosort/internal/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "history.db")
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	s, err := Open(dbPath, logger)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpen(t *testing.T) {
	s := newTestStore(t)

	var journalMode string
	require.NoError(t, s.db.QueryRow("PRAGMA journal_mode").Scan(&journalMode))
	assert.Equal(t, "wal", journalMode)

	for _, table := range []string{"runs", "moves"} {
		var name string
		err := s.db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		assert.NoError(t, err, "table %s", table)
	}
}

func TestOpen_Reopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "history.db")
	logger := slog.New(slog.DiscardHandler)

	s, err := Open(dbPath, logger)
	require.NoError(t, err)
	require.NoError(t, s.Append(context.Background(), []domain.LogEntry{
		{Timestamp: time.Now(), Filename: "a.pdf", Destination: "Documents", RunID: "run-1", Folder: "/in", FinalPath: "/in/Documents/a.pdf"},
	}))
	require.NoError(t, s.Close())

	s, err = Open(dbPath, logger)
	require.NoError(t, err)
	defer s.Close()

	moves, err := s.ListMoves(context.Background(), MoveFilter{})
	require.NoError(t, err)
	assert.Len(t, moves, 1)
}

func TestAppend_ListMoves(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2025, 3, 14, 9, 26, 53, 589793000, time.UTC)

	require.NoError(t, s.Append(ctx, []domain.LogEntry{
		{Timestamp: base, Filename: "invoice.pdf", Destination: "Documents", RunID: "run-1", Folder: "/in", FinalPath: "/in/Documents/invoice.pdf"},
		{Timestamp: base.Add(time.Millisecond), Filename: "photo.JPG", Destination: "Images", RunID: "run-1", Folder: "/in", FinalPath: "/in/Images/photo.JPG"},
	}))
	require.NoError(t, s.Append(ctx, []domain.LogEntry{
		{Timestamp: base.Add(time.Second), Filename: "song.mp3", Destination: "Music", RunID: "run-2", Folder: "/other", FinalPath: "/other/Music/song.mp3"},
	}))

	all, err := s.ListMoves(ctx, MoveFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "song.mp3", all[0].Filename)
	assert.Equal(t, "invoice.pdf", all[2].Filename)
	assert.True(t, base.Equal(all[2].Timestamp))

	inFolder, err := s.ListMoves(ctx, MoveFilter{Folder: "/in"})
	require.NoError(t, err)
	require.Len(t, inFolder, 2)
	assert.Equal(t, "Images", inFolder[0].Destination)
	assert.Equal(t, "/in/Images/photo.JPG", inFolder[0].FinalPath)

	byRun, err := s.ListMoves(ctx, MoveFilter{RunID: "run-2"})
	require.NoError(t, err)
	require.Len(t, byRun, 1)
	assert.Equal(t, "/other", byRun[0].Folder)

	limited, err := s.ListMoves(ctx, MoveFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestAppend_Empty(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Append(context.Background(), nil))

	moves, err := s.ListMoves(context.Background(), MoveFilter{})
	require.NoError(t, err)
	assert.Empty(t, moves)
}

func TestRecordRun_ListRuns(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	start := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	require.NoError(t, s.RecordRun(ctx, domain.RunSummary{
		ID: "run-1", Folder: "/in", Trigger: domain.TriggerManual,
		StartedAt: start, FinishedAt: start.Add(20 * time.Millisecond),
		Moved: 3, Conflicts: 1,
	}))
	require.NoError(t, s.RecordRun(ctx, domain.RunSummary{
		ID: "run-2", Folder: "/other", Trigger: domain.TriggerWatch,
		StartedAt: start.Add(time.Minute), FinishedAt: start.Add(time.Minute),
	}))

	runs, err := s.ListRuns(ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-2", runs[0].ID)
	assert.Equal(t, domain.TriggerWatch, runs[0].Trigger)

	runs, err = s.ListRuns(ctx, "/in", 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, 3, runs[0].Moved)
	assert.Equal(t, 1, runs[0].Conflicts)
	assert.Equal(t, 20*time.Millisecond, runs[0].Duration())
}

func TestRecordRun_ReplacesCounts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	run := domain.RunSummary{ID: "run-1", Folder: "/in", Trigger: domain.TriggerAPI, StartedAt: now, FinishedAt: now}
	require.NoError(t, s.RecordRun(ctx, run))
	run.Moved = 7
	require.NoError(t, s.RecordRun(ctx, run))

	runs, err := s.ListRuns(ctx, "/in", 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, 7, runs[0].Moved)
}

func TestListMoves_SubSecondOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 3, 9, 12, 0, 0, 0, time.UTC)

	// Inserted out of order; widths of the fractional part differ.
	require.NoError(t, s.Append(ctx, []domain.LogEntry{
		{Timestamp: base.Add(120 * time.Millisecond), Filename: "newer.pdf", Destination: "Documents", RunID: "run-1", Folder: "/in"},
		{Timestamp: base.Add(100 * time.Millisecond), Filename: "older.pdf", Destination: "Documents", RunID: "run-1", Folder: "/in"},
		{Timestamp: base, Filename: "oldest.pdf", Destination: "Documents", RunID: "run-1", Folder: "/in"},
		{Timestamp: base.Add(500 * time.Millisecond), Filename: "newest.pdf", Destination: "Documents", RunID: "run-1", Folder: "/in"},
	}))

	moves, err := s.ListMoves(ctx, MoveFilter{Folder: "/in"})
	require.NoError(t, err)
	require.Len(t, moves, 4)

	names := make([]string, 0, len(moves))
	for _, m := range moves {
		names = append(names, m.Filename)
	}
	assert.Equal(t, []string{"newest.pdf", "newer.pdf", "older.pdf", "oldest.pdf"}, names)
	assert.True(t, moves[1].Timestamp.Equal(base.Add(120*time.Millisecond)))
}

func TestListRuns_SubSecondOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 3, 9, 12, 0, 0, 0, time.UTC)

	for _, r := range []struct {
		id     string
		offset time.Duration
	}{
		{"run-b", 120 * time.Millisecond},
		{"run-a", 0},
		{"run-c", 500 * time.Millisecond},
	} {
		require.NoError(t, s.RecordRun(ctx, domain.RunSummary{
			ID:         r.id,
			Folder:     "/in",
			Trigger:    domain.TriggerWatch,
			StartedAt:  base.Add(r.offset),
			FinishedAt: base.Add(r.offset + time.Millisecond),
		}))
	}

	runs, err := s.ListRuns(ctx, "/in", 10)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, "run-c", runs[0].ID)
	assert.Equal(t, "run-b", runs[1].ID)
	assert.Equal(t, "run-a", runs[2].ID)
}
