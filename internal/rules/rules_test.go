package rules

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/autosort/internal/domain"
	"github.com/listenupapp/autosort/internal/errors"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type failingPersister struct{}

func (failingPersister) Load() ([]domain.Rule, error) { return nil, nil }
func (failingPersister) Save([]domain.Rule) error    { return os.ErrPermission }

func TestSet_AddAndSnapshot(t *testing.T) {
	s, err := NewSet(nil, nil, testLogger())
	require.NoError(t, err)

	_, err = s.Add(domain.Rule{Keyword: " draft ", Destination: "WIP"})
	require.NoError(t, err)
	_, err = s.Add(domain.Rule{Keyword: "invoice", Destination: `Finance\2024`})
	require.NoError(t, err)

	snap := s.Snapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, "draft", snap[0].Keyword)
	assert.Equal(t, filepath.Join("Finance", "2024"), snap[1].Destination)

	// Snapshots are isolated from later edits.
	_, err = s.Add(domain.Rule{Keyword: "scan", Destination: "Scans"})
	require.NoError(t, err)
	assert.Len(t, snap, 2)
	assert.Equal(t, 3, s.Len())
}

func TestSet_AddRejectsInvalid(t *testing.T) {
	s, err := NewSet(nil, nil, testLogger())
	require.NoError(t, err)

	_, err = s.Add(domain.Rule{Keyword: "x", Destination: "../escape"})
	assert.True(t, errors.Is(err, errors.ErrValidation))
	assert.Equal(t, 0, s.Len())
}

func TestSet_Remove(t *testing.T) {
	s, err := NewSet([]domain.Rule{
		{Keyword: "a", Destination: "A"},
		{Keyword: "b", Destination: "B"},
	}, nil, testLogger())
	require.NoError(t, err)

	removed, err := s.Remove(0)
	require.NoError(t, err)
	assert.Equal(t, "a", removed.Keyword)
	assert.Equal(t, []domain.Rule{{Keyword: "b", Destination: "B"}}, s.Snapshot())

	_, err = s.Remove(5)
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestSet_SaveFailureLeavesRulesUnchanged(t *testing.T) {
	s, err := NewSet([]domain.Rule{{Keyword: "a", Destination: "A"}}, failingPersister{}, testLogger())
	require.NoError(t, err)

	_, err = s.Add(domain.Rule{Keyword: "b", Destination: "B"})
	assert.True(t, errors.Is(err, errors.ErrIO))
	assert.Equal(t, 1, s.Len())

	_, err = s.Remove(0)
	assert.True(t, errors.Is(err, errors.ErrIO))
	assert.Equal(t, 1, s.Len())
}

func TestNewSet_InvalidInitialRule(t *testing.T) {
	_, err := NewSet([]domain.Rule{{Keyword: "", Destination: "A"}}, nil, testLogger())
	assert.True(t, errors.Is(err, errors.ErrConfig))
}

func TestSet_Replace(t *testing.T) {
	s, err := NewSet([]domain.Rule{{Keyword: "a", Destination: "A"}}, nil, testLogger())
	require.NoError(t, err)

	require.NoError(t, s.Replace([]domain.Rule{{Keyword: "z", Destination: "Z"}}))
	assert.Equal(t, []domain.Rule{{Keyword: "z", Destination: "Z"}}, s.Snapshot())

	err = s.Replace([]domain.Rule{{Keyword: "ok", Destination: "OK"}, {Keyword: "bad", Destination: "/abs"}})
	assert.Error(t, err)
	assert.Equal(t, []domain.Rule{{Keyword: "z", Destination: "Z"}}, s.Snapshot())
}

func TestSet_ConcurrentAccess(t *testing.T) {
	s, err := NewSet(nil, nil, testLogger())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = s.Add(domain.Rule{Keyword: "k", Destination: "D"})
		}()
		go func() {
			defer wg.Done()
			_ = s.Snapshot()
		}()
	}
	wg.Wait()

	assert.Equal(t, 20, s.Len())
}

func TestOpen_PersistsMutations(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.json")

	s, err := Open(NewFile(path), testLogger())
	require.NoError(t, err)
	assert.Equal(t, 0, s.Len())

	_, err = s.Add(domain.Rule{Keyword: "draft", Destination: "WIP"})
	require.NoError(t, err)

	reopened, err := Open(NewFile(path), testLogger())
	require.NoError(t, err)
	assert.Equal(t, []domain.Rule{{Keyword: "draft", Destination: "WIP"}}, reopened.Snapshot())
}
