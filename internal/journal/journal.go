// Package journal appends completed moves to log sinks.
package journal

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/listenupapp/autosort/internal/domain"
)

// Sink receives the entries of one organize run as a single batch.
type Sink interface {
	Append(ctx context.Context, entries []domain.LogEntry) error
}

// FileSink appends one line per entry to a text file. It only ever appends;
// reading and rotation are left to the operator.
type FileSink struct {
	path string
	mu   sync.Mutex
}

// NewFileSink returns a sink writing to path. The file and its directory are
// created on first append.
func NewFileSink(path string) *FileSink {
	return &FileSink{path: path}
}

// Path returns the log file path.
func (s *FileSink) Path() string {
	return s.path
}

// Append writes all entries with a single write call.
func (s *FileSink) Append(_ context.Context, entries []domain.LogEntry) error {
	if len(entries) == 0 {
		return nil
	}

	var b strings.Builder
	for _, e := range entries {
		b.WriteString(e.Line())
		b.WriteByte('\n')
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create log directory: %w", err)
	}

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644) //#nosec G304 -- operator-configured path
	if err != nil {
		return fmt.Errorf("open log %s: %w", s.path, err)
	}

	if _, err := f.WriteString(b.String()); err != nil {
		f.Close()
		return fmt.Errorf("append log %s: %w", s.path, err)
	}
	return f.Close()
}

// Multi fans a batch out to every sink. All sinks are attempted; failures are
// joined.
type Multi []Sink

// Append implements Sink.
func (m Multi) Append(ctx context.Context, entries []domain.LogEntry) error {
	var errs []error
	for _, s := range m {
		if s == nil {
			continue
		}
		if err := s.Append(ctx, entries); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Discard drops every batch.
type Discard struct{}

// Append implements Sink.
func (Discard) Append(context.Context, []domain.LogEntry) error { return nil }

// Memory keeps batches in memory. Useful for callers that want the entries of
// the last runs without touching disk.
type Memory struct {
	mu      sync.Mutex
	entries []domain.LogEntry
	batches int
}

// Append implements Sink.
func (m *Memory) Append(_ context.Context, entries []domain.LogEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entries...)
	m.batches++
	return nil
}

// Entries returns a copy of everything appended so far.
func (m *Memory) Entries() []domain.LogEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.LogEntry(nil), m.entries...)
}

// Batches returns how many Append calls were made.
func (m *Memory) Batches() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.batches
}
