package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/listenupapp/autosort/internal/domain"
)

// DefaultListLimit caps history queries that do not set a limit.
const DefaultListLimit = 100

// Append records a batch of moves in one transaction. It makes the store
// usable as a journal sink.
func (s *Store) Append(ctx context.Context, entries []domain.LogEntry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO moves (run_id, folder, filename, destination, final_path, moved_at)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert move: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		if _, err := stmt.ExecContext(ctx,
			e.RunID, e.Folder, e.Filename, e.Destination, e.FinalPath, formatTime(e.Timestamp),
		); err != nil {
			return fmt.Errorf("insert move %s: %w", e.Filename, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit moves: %w", err)
	}
	return nil
}

// RecordRun stores a run summary. Recording the same run ID twice replaces it.
func (s *Store) RecordRun(ctx context.Context, run domain.RunSummary) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, folder, trigger, started_at, finished_at, moved, conflicts, failures)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			finished_at = excluded.finished_at,
			moved = excluded.moved,
			conflicts = excluded.conflicts,
			failures = excluded.failures`,
		run.ID, run.Folder, string(run.Trigger), formatTime(run.StartedAt), formatTime(run.FinishedAt),
		run.Moved, run.Conflicts, run.Failures,
	)
	if err != nil {
		return fmt.Errorf("record run %s: %w", run.ID, err)
	}
	return nil
}

// MoveFilter narrows ListMoves.
type MoveFilter struct {
	Folder string
	RunID  string
	Limit  int
}

// ListMoves returns moves newest first.
func (s *Store) ListMoves(ctx context.Context, f MoveFilter) ([]domain.LogEntry, error) {
	var (
		where []string
		args  []any
	)
	if f.Folder != "" {
		where = append(where, "folder = ?")
		args = append(args, f.Folder)
	}
	if f.RunID != "" {
		where = append(where, "run_id = ?")
		args = append(args, f.RunID)
	}

	query := `SELECT run_id, folder, filename, destination, final_path, moved_at FROM moves`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY moved_at DESC, id DESC LIMIT ?"
	args = append(args, limitOrDefault(f.Limit))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list moves: %w", err)
	}
	defer rows.Close()

	var entries []domain.LogEntry
	for rows.Next() {
		var (
			e       domain.LogEntry
			movedAt string
		)
		if err := rows.Scan(&e.RunID, &e.Folder, &e.Filename, &e.Destination, &e.FinalPath, &movedAt); err != nil {
			return nil, fmt.Errorf("scan move: %w", err)
		}
		if e.Timestamp, err = parseTime(movedAt); err != nil {
			return nil, fmt.Errorf("parse moved_at: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ListRuns returns run summaries newest first, optionally for one folder.
func (s *Store) ListRuns(ctx context.Context, folder string, limit int) ([]domain.RunSummary, error) {
	query := `SELECT id, folder, trigger, started_at, finished_at, moved, conflicts, failures FROM runs`
	var args []any
	if folder != "" {
		query += " WHERE folder = ?"
		args = append(args, folder)
	}
	query += " ORDER BY started_at DESC LIMIT ?"
	args = append(args, limitOrDefault(limit))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []domain.RunSummary
	for rows.Next() {
		var (
			r                 domain.RunSummary
			trigger           string
			started, finished string
		)
		if err := rows.Scan(&r.ID, &r.Folder, &trigger, &started, &finished, &r.Moved, &r.Conflicts, &r.Failures); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.Trigger = domain.Trigger(trigger)
		if r.StartedAt, err = parseTime(started); err != nil {
			return nil, fmt.Errorf("parse started_at: %w", err)
		}
		if r.FinishedAt, err = parseTime(finished); err != nil {
			return nil, fmt.Errorf("parse finished_at: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

func limitOrDefault(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	return limit
}
