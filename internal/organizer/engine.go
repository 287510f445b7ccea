// Package organizer sorts the immediate files of a folder into category
// subfolders.
package organizer

import (
	"context"
	stderrors "errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/listenupapp/autosort/internal/category"
	"github.com/listenupapp/autosort/internal/domain"
	"github.com/listenupapp/autosort/internal/errors"
	"github.com/listenupapp/autosort/internal/id"
	"github.com/listenupapp/autosort/internal/ignore"
	"github.com/listenupapp/autosort/internal/journal"
)

// Options configures an Engine. Zero values get defaults in NewEngine.
type Options struct {
	Table  *category.Table
	Mover  *Mover
	Sink   journal.Sink
	Locks  *FolderLocks
	Ignore ignore.Matcher
	// Exclude lists absolute paths that are never moved, such as the log
	// file or history database when they live inside an organized folder.
	Exclude []string
	Logger  *slog.Logger
	Now     func() time.Time
}

// Engine runs organize passes. It is safe for concurrent use; passes over the
// same folder serialize on the folder lock.
type Engine struct {
	table   *category.Table
	mover   *Mover
	sink    journal.Sink
	locks   *FolderLocks
	ignore  ignore.Matcher
	exclude map[string]struct{}
	logger  *slog.Logger
	now     func() time.Time
}

// NewEngine creates an Engine.
func NewEngine(opts Options) *Engine {
	if opts.Table == nil {
		opts.Table = category.Default()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Mover == nil {
		opts.Mover = NewMover(domain.CollisionSkip, opts.Logger)
	}
	if opts.Sink == nil {
		opts.Sink = journal.Discard{}
	}
	if opts.Locks == nil {
		opts.Locks = NewFolderLocks("")
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	exclude := make(map[string]struct{}, len(opts.Exclude))
	for _, p := range opts.Exclude {
		if abs, err := filepath.Abs(p); err == nil {
			exclude[abs] = struct{}{}
		}
	}

	return &Engine{
		table:   opts.Table,
		mover:   opts.Mover,
		sink:    opts.Sink,
		locks:   opts.Locks,
		ignore:  opts.Ignore,
		exclude: exclude,
		logger:  opts.Logger,
		now:     opts.Now,
	}
}

// Table returns the category table the engine classifies with.
func (e *Engine) Table() *category.Table {
	return e.table
}

// Policy returns the collision policy of the engine's mover.
func (e *Engine) Policy() domain.CollisionPolicy {
	return e.mover.Policy()
}

// Result describes one organize pass.
type Result struct {
	RunID      string            `json:"run_id"`
	Folder     string            `json:"folder"`
	StartedAt  time.Time         `json:"started_at"`
	FinishedAt time.Time         `json:"finished_at"`
	Entries    []domain.LogEntry `json:"entries"`
	// Conflicts counts files left in place because the destination held a
	// file of the same name.
	Conflicts int `json:"conflicts"`
	// Failures counts files whose move failed with an IO error.
	Failures int `json:"failures"`
	// Skipped counts ignored files and files that vanished before the move.
	Skipped int `json:"skipped"`
}

// Summary converts the result into a persisted run record.
func (r *Result) Summary(trigger domain.Trigger) domain.RunSummary {
	return domain.RunSummary{
		ID:         r.RunID,
		Folder:     r.Folder,
		Trigger:    trigger,
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
		Moved:      len(r.Entries),
		Conflicts:  r.Conflicts,
		Failures:   r.Failures,
	}
}

// Organize moves every regular, non-ignored file directly inside folder into
// folder/<category>, where the category comes from rules first and the
// extension table second. Subfolders are not entered.
//
// Per-file conflicts and failures are counted and logged; the pass continues.
// The moved entries are appended to the sink as one batch after the loop. A
// sink failure, or ctx cancellation between files, is returned together with
// the populated result.
func (e *Engine) Organize(ctx context.Context, folder string, rules []domain.Rule) (*Result, error) {
	abs, err := CleanFolder(folder)
	if err != nil {
		return nil, err
	}

	unlock, err := e.locks.Lock(ctx, abs)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, errors.Wrapf(err, errors.CodeIO, "lock %s", abs)
	}
	defer unlock()

	res := &Result{
		RunID:     id.NewRunID(),
		Folder:    abs,
		StartedAt: e.now(),
	}
	log := e.logger.With("folder", abs, "run_id", res.RunID)

	dirEntries, err := os.ReadDir(abs)
	if err != nil {
		return nil, errors.Wrapf(err, errors.CodeIO, "list %s", abs)
	}

	var cancelErr error
	for _, entry := range dirEntries {
		if err := ctx.Err(); err != nil {
			cancelErr = err
			break
		}

		if !entry.Type().IsRegular() {
			continue
		}

		name := entry.Name()
		src := filepath.Join(abs, name)

		if _, own := e.exclude[src]; own {
			continue
		}
		if e.ignore.Match(name) {
			res.Skipped++
			continue
		}

		dest := e.table.Classify(name, rules)
		final, err := e.mover.Move(src, filepath.Join(abs, filepath.FromSlash(dest)))
		switch {
		case err == nil:
			res.Entries = append(res.Entries, domain.LogEntry{
				Timestamp:   e.now(),
				Filename:    name,
				Destination: dest,
				RunID:       res.RunID,
				Folder:      abs,
				FinalPath:   final,
			})
			log.Info("moved", "file", name, "category", dest)
		case errors.Is(err, errors.ErrConflict):
			res.Conflicts++
			log.Warn("destination taken, file left in place", "file", name, "category", dest)
		case stderrors.Is(err, fs.ErrNotExist):
			res.Skipped++
			log.Debug("file vanished before move", "file", name)
		default:
			res.Failures++
			log.Error("move failed", "file", name, "category", dest, "error", err)
		}
	}

	res.FinishedAt = e.now()

	if len(res.Entries) > 0 {
		if err := e.sink.Append(ctx, res.Entries); err != nil {
			log.Error("failed to record moves", "count", len(res.Entries), "error", err)
			return res, errors.Join(errors.Wrap(err, errors.CodeIO, "append log entries"), cancelErr)
		}
	}

	if cancelErr != nil {
		return res, cancelErr
	}

	log.Debug("organize finished",
		"moved", len(res.Entries),
		"conflicts", res.Conflicts,
		"failures", res.Failures,
		"skipped", res.Skipped,
		"duration", res.FinishedAt.Sub(res.StartedAt),
	)
	return res, nil
}

// CleanFolder returns the absolute, cleaned form of folder after checking it
// is an existing directory. Any problem is a CONFIG error.
func CleanFolder(folder string) (string, error) {
	if folder == "" {
		return "", errors.Configf("folder is required")
	}
	abs, err := filepath.Abs(folder)
	if err != nil {
		return "", errors.Wrapf(err, errors.CodeConfig, "resolve %s", folder)
	}

	info, err := os.Stat(abs)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return "", errors.Configf("folder %s does not exist", abs)
		}
		return "", errors.Wrapf(err, errors.CodeConfig, "stat %s", abs)
	}
	if !info.IsDir() {
		return "", errors.Configf("%s is not a directory", abs)
	}
	return abs, nil
}
