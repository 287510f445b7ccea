package watcher

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// fsnotifyBackend implements Backend with fsnotify. It works on every
// platform fsnotify supports; writes are reported per write, not per close.
type fsnotifyBackend struct {
	logger  *slog.Logger
	watcher *fsnotify.Watcher
	folder  string

	events chan Event
	errors chan error
	done   chan struct{}
	wg     sync.WaitGroup

	mu       sync.Mutex
	watching bool
	stopOnce sync.Once
	stopErr  error
}

func newFsnotifyBackend(logger *slog.Logger, opts Options) (Backend, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}

	return &fsnotifyBackend{
		logger:  logger,
		watcher: w,
		events:  make(chan Event, opts.BufferSize),
		errors:  make(chan error, 8),
		done:    make(chan struct{}),
	}, nil
}

// Watch adds folder (non-recursively) and starts the event loop.
func (b *fsnotifyBackend) Watch(folder string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.watching {
		return fmt.Errorf("already watching %s", b.folder)
	}

	folder = filepath.Clean(folder)
	info, err := os.Stat(folder)
	if err != nil {
		return fmt.Errorf("stat %s: %w", folder, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", folder)
	}

	if err := b.watcher.Add(folder); err != nil {
		return fmt.Errorf("watch %s: %w", folder, err)
	}

	b.folder = folder
	b.watching = true
	b.logger.Debug("added watch", "folder", folder)

	b.wg.Add(1)
	go b.processEvents()
	return nil
}

func (b *fsnotifyBackend) processEvents() {
	defer b.wg.Done()

	for {
		select {
		case <-b.done:
			return
		case event, ok := <-b.watcher.Events:
			if !ok {
				return
			}
			if gone := b.handle(event); gone {
				return
			}
		case err, ok := <-b.watcher.Errors:
			if !ok {
				return
			}
			if errors.Is(err, fsnotify.ErrEventOverflow) {
				b.emit(Event{Type: EventOverflow, Path: b.folder})
				continue
			}
			select {
			case b.errors <- err:
			case <-b.done:
				return
			}
		}
	}
}

// handle translates one fsnotify event. It reports whether the folder is gone.
func (b *fsnotifyBackend) handle(event fsnotify.Event) bool {
	path := filepath.Clean(event.Name)

	if path == b.folder {
		if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
			b.emit(Event{Type: EventFolderGone, Path: b.folder})
			return true
		}
		return false
	}

	switch {
	case event.Has(fsnotify.Create):
		info, err := os.Lstat(path)
		b.emit(Event{Type: EventCreated, Path: path, IsDir: err == nil && info.IsDir()})
	case event.Has(fsnotify.Write):
		b.emit(Event{Type: EventWritten, Path: path})
	case event.Has(fsnotify.Remove):
		b.emit(Event{Type: EventRemoved, Path: path})
	case event.Has(fsnotify.Rename):
		b.emit(Event{Type: EventMovedOut, Path: path})
	}
	return false
}

func (b *fsnotifyBackend) emit(event Event) {
	select {
	case b.events <- event:
	case <-b.done:
	}
}

// Events returns the events channel.
func (b *fsnotifyBackend) Events() <-chan Event {
	return b.events
}

// Errors returns the errors channel.
func (b *fsnotifyBackend) Errors() <-chan error {
	return b.errors
}

// Stop closes the fsnotify watcher.
func (b *fsnotifyBackend) Stop() error {
	b.stopOnce.Do(func() {
		close(b.done)
		b.stopErr = b.watcher.Close()
		b.wg.Wait()
		close(b.events)
		close(b.errors)
	})
	return b.stopErr
}
