package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/autosort/internal/domain"
)

type cliTestEnv struct {
	state  string
	folder string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()
	for _, key := range []string{"STATE_PATH", "RULES_PATH", "LOG_FILE", "HISTORY_DB", "CATEGORIES_PATH", "COLLISION_POLICY", "LOG_LEVEL", "DEBOUNCE", "DEBOUNCE_MAX_WAIT"} {
		t.Setenv(key, "")
	}
	return &cliTestEnv{state: t.TempDir(), folder: t.TempDir()}
}

func (e *cliTestEnv) write(t *testing.T, name string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(e.folder, name), []byte(name), 0o644))
}

// run executes the CLI with ctx and returns stdout.
func (e *cliTestEnv) run(ctx context.Context, t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd, cli := newRootCommand()
	defer cli.close()

	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append(args,
		"--state-path", e.state,
		"--env-file", filepath.Join(e.state, "missing.env"),
		"--debounce", "50ms",
	))

	err := cmd.ExecuteContext(ctx)
	return stdout.String(), err
}

func TestOrganizeCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	env.write(t, "invoice.pdf")
	env.write(t, "photo.JPG")
	env.write(t, "README")

	out, err := env.run(context.Background(), t, "organize", env.folder)
	require.NoError(t, err)

	assert.Contains(t, out, "3 moved, 0 conflicts, 0 failed, 0 skipped")
	assert.Contains(t, out, "photo.JPG")
	assert.FileExists(t, filepath.Join(env.folder, "Documents", "invoice.pdf"))
	assert.FileExists(t, filepath.Join(env.folder, "Images", "photo.JPG"))
	assert.FileExists(t, filepath.Join(env.folder, "Others", "README"))
	assert.FileExists(t, filepath.Join(env.state, "organizer_log.txt"))

	out, err = env.run(context.Background(), t, "organize", env.folder)
	require.NoError(t, err)
	assert.Contains(t, out, "Nothing to organize")
}

func TestOrganizeCommand_CollisionPolicyFlag(t *testing.T) {
	env := setupCLITestEnv(t)
	require.NoError(t, os.MkdirAll(filepath.Join(env.folder, "Documents"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(env.folder, "Documents", "notes.txt"), []byte("old"), 0o644))
	env.write(t, "notes.txt")

	out, err := env.run(context.Background(), t, "organize", env.folder, "--collision-policy", "rename")
	require.NoError(t, err)

	assert.Contains(t, out, "1 moved")
	assert.FileExists(t, filepath.Join(env.folder, "Documents", "notes (1).txt"))
}

func TestOrganizeCommand_InvalidFolder(t *testing.T) {
	env := setupCLITestEnv(t)

	_, err := env.run(context.Background(), t, "organize", filepath.Join(env.folder, "missing"))
	assert.Error(t, err)
}

func TestRulesCommands(t *testing.T) {
	env := setupCLITestEnv(t)
	ctx := context.Background()

	out, err := env.run(ctx, t, "rules", "add", "draft", "WIP")
	require.NoError(t, err)
	assert.Contains(t, out, "'draft' --> WIP")

	out, err = env.run(ctx, t, "rules", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "draft")

	out, err = env.run(ctx, t, "rules", "list", "--json")
	require.NoError(t, err)
	var rules []domain.Rule
	require.NoError(t, json.Unmarshal([]byte(out), &rules))
	assert.Equal(t, []domain.Rule{{Keyword: "draft", Destination: "WIP"}}, rules)

	env.write(t, "report_draft.txt")
	_, err = env.run(ctx, t, "organize", env.folder)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(env.folder, "WIP", "report_draft.txt"))

	_, err = env.run(ctx, t, "rules", "remove", "0")
	require.NoError(t, err)
	out, err = env.run(ctx, t, "rules", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No rules")

	_, err = env.run(ctx, t, "rules", "remove", "0")
	assert.Error(t, err)
	_, err = env.run(ctx, t, "rules", "remove", "first")
	assert.Error(t, err)
	_, err = env.run(ctx, t, "rules", "add", "tax", "/etc")
	assert.Error(t, err)
}

func TestHistoryAndRunsCommands(t *testing.T) {
	env := setupCLITestEnv(t)
	ctx := context.Background()
	env.write(t, "song.mp3")

	_, err := env.run(ctx, t, "organize", env.folder)
	require.NoError(t, err)

	out, err := env.run(ctx, t, "history", "--json")
	require.NoError(t, err)
	var entries []domain.LogEntry
	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "song.mp3", entries[0].Filename)
	assert.Equal(t, "Music", entries[0].Destination)

	out, err = env.run(ctx, t, "runs", "--folder", env.folder)
	require.NoError(t, err)
	assert.Contains(t, out, "manual")
}

func TestOrganizeAndWatchHelp_DescribeSkippedFiles(t *testing.T) {
	env := setupCLITestEnv(t)

	for _, name := range []string{"organize", "watch"} {
		t.Run(name, func(t *testing.T) {
			out, err := env.run(context.Background(), t, name, "--help")
			require.NoError(t, err)
			assert.Contains(t, out, "INCLUDE_HIDDEN")
			assert.Contains(t, out, "--include-hidden")
			assert.Contains(t, out, "*.part")
		})
	}
}

func TestCategoriesCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	out, err := env.run(context.Background(), t, "categories")
	require.NoError(t, err)
	assert.Contains(t, out, "Images")
	assert.Contains(t, out, ".jpg")
	assert.Contains(t, out, "(anything else)")
	assert.Contains(t, out, "Name collisions: skip")

	out, err = env.run(context.Background(), t, "categories", "--collision-policy", "rename")
	require.NoError(t, err)
	assert.Contains(t, out, "Name collisions: rename")
}

func TestWatchCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	env.write(t, "before.txt")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	type result struct {
		out string
		err error
	}
	done := make(chan result, 1)
	go func() {
		out, err := env.run(ctx, t, "watch", env.folder, "--sweep-first")
		done <- result{out, err}
	}()

	assert.Eventually(t, func() bool {
		_, err := os.Stat(filepath.Join(env.folder, "Documents", "before.txt"))
		return err == nil
	}, 3*time.Second, 20*time.Millisecond)

	// Give the subscription a moment after the initial sweep.
	time.Sleep(200 * time.Millisecond)
	env.write(t, "clip.mp4")
	assert.Eventually(t, func() bool {
		_, err := os.Stat(filepath.Join(env.folder, "Videos", "clip.mp4"))
		return err == nil
	}, 3*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case res := <-done:
		require.NoError(t, res.err)
		assert.Contains(t, res.out, "Watching "+env.folder)
		assert.True(t, strings.Contains(res.out, "Stopped watching"))
	case <-time.After(5 * time.Second):
		t.Fatal("watch command did not return after cancel")
	}
}
