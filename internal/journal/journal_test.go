package journal

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/autosort/internal/domain"
)

type failingSink struct{ err error }

func (f failingSink) Append(context.Context, []domain.LogEntry) error { return f.err }

func entriesAt(ts time.Time) []domain.LogEntry {
	return []domain.LogEntry{
		{Timestamp: ts, Filename: "invoice.pdf", Destination: "Documents"},
		{Timestamp: ts, Filename: "photo.JPG", Destination: "Images"},
	}
}

func TestFileSink_AppendsLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "organizer_log.txt")
	sink := NewFileSink(path)
	ts := time.Date(2024, 1, 2, 3, 4, 5, 600000000, time.Local)

	require.NoError(t, sink.Append(context.Background(), entriesAt(ts)))
	require.NoError(t, sink.Append(context.Background(), entriesAt(ts)[:1]))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "2024-01-02 03:04:05.600000 - Moved: invoice.pdf --> Documents/", lines[0])
	assert.Equal(t, "2024-01-02 03:04:05.600000 - Moved: photo.JPG --> Images/", lines[1])
	assert.Equal(t, lines[0], lines[2])
}

func TestFileSink_EmptyBatchCreatesNothing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "organizer_log.txt")

	require.NoError(t, NewFileSink(path).Append(context.Background(), nil))

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestMulti_AttemptsAllSinks(t *testing.T) {
	mem := &Memory{}
	boom := errors.New("disk full")
	m := Multi{failingSink{err: boom}, nil, mem}

	err := m.Append(context.Background(), entriesAt(time.Now()))

	assert.ErrorIs(t, err, boom)
	assert.Len(t, mem.Entries(), 2)
	assert.Equal(t, 1, mem.Batches())
}

func TestDiscard(t *testing.T) {
	assert.NoError(t, Discard{}.Append(context.Background(), entriesAt(time.Now())))
}
