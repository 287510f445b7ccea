//go:build linux

package watcher

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"unsafe"

	"golang.org/x/sys/unix"
)

// pollTimeoutMs bounds how long the read loop waits before checking for Stop.
const pollTimeoutMs = 100

// watchMask covers the immediate entries of the folder and the folder itself.
// IN_CLOSE_WRITE reports a file once its writer is done with it.
const watchMask = unix.IN_CREATE | unix.IN_CLOSE_WRITE | unix.IN_MOVED_TO |
	unix.IN_DELETE | unix.IN_MOVED_FROM |
	unix.IN_DELETE_SELF | unix.IN_MOVE_SELF |
	unix.IN_ONLYDIR | unix.IN_EXCL_UNLINK

// inotifyBackend implements Backend with a single inotify watch.
type inotifyBackend struct {
	logger *slog.Logger
	fd     int
	wd     int
	folder string

	events chan Event
	errors chan error
	done   chan struct{}
	wg     sync.WaitGroup

	mu       sync.Mutex
	watching bool
	stopOnce sync.Once
	stopErr  error
}

func newInotifyBackend(logger *slog.Logger, opts Options) (Backend, error) {
	fd, err := unix.InotifyInit1(unix.IN_CLOEXEC | unix.IN_NONBLOCK)
	if err != nil {
		return nil, fmt.Errorf("inotify_init1: %w", err)
	}

	return &inotifyBackend{
		logger: logger,
		fd:     fd,
		wd:     -1,
		events: make(chan Event, opts.BufferSize),
		errors: make(chan error, 8),
		done:   make(chan struct{}),
	}, nil
}

// Watch adds the folder watch and starts the read loop.
func (b *inotifyBackend) Watch(folder string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.watching {
		return fmt.Errorf("already watching %s", b.folder)
	}

	folder = filepath.Clean(folder)
	wd, err := unix.InotifyAddWatch(b.fd, folder, watchMask)
	if err != nil {
		return fmt.Errorf("inotify_add_watch %s: %w", folder, err)
	}

	b.wd = wd
	b.folder = folder
	b.watching = true
	b.logger.Debug("added watch", "folder", folder, "wd", wd)

	b.wg.Add(1)
	go b.readEvents()
	return nil
}

func (b *inotifyBackend) readEvents() {
	defer b.wg.Done()

	buf := make([]byte, 64*(unix.SizeofInotifyEvent+unix.NAME_MAX+1))
	fds := []unix.PollFd{{Fd: int32(b.fd), Events: unix.POLLIN}} //nolint:gosec // fd fits in int32

	for {
		select {
		case <-b.done:
			return
		default:
		}

		n, err := unix.Poll(fds, pollTimeoutMs)
		if err != nil {
			if errors.Is(err, unix.EINTR) {
				continue
			}
			b.sendError(fmt.Errorf("poll inotify: %w", err))
			return
		}
		if n == 0 {
			continue
		}

		n, err = unix.Read(b.fd, buf)
		if err != nil {
			if errors.Is(err, unix.EINTR) || errors.Is(err, unix.EAGAIN) {
				continue
			}
			b.sendError(fmt.Errorf("read inotify events: %w", err))
			return
		}
		if n < unix.SizeofInotifyEvent {
			continue
		}

		if gone := b.parseEvents(buf[:n]); gone {
			return
		}
	}
}

// parseEvents emits events from a read buffer. It reports whether the folder
// is gone, after which no further events can arrive.
func (b *inotifyBackend) parseEvents(buf []byte) bool {
	offset := 0
	for offset+unix.SizeofInotifyEvent <= len(buf) {
		//nolint:gosec // G103: inotify records are read in place
		raw := (*unix.InotifyEvent)(unsafe.Pointer(&buf[offset]))
		nameStart := offset + unix.SizeofInotifyEvent
		offset = nameStart + int(raw.Len)

		name := ""
		if raw.Len > 0 && offset <= len(buf) {
			nameBytes := buf[nameStart:offset]
			name = string(nameBytes[:clen(nameBytes)])
		}

		mask := raw.Mask
		if mask&unix.IN_Q_OVERFLOW != 0 {
			b.emit(Event{Type: EventOverflow, Path: b.folder})
			continue
		}
		if mask&(unix.IN_DELETE_SELF|unix.IN_MOVE_SELF|unix.IN_UNMOUNT|unix.IN_IGNORED) != 0 {
			b.emit(Event{Type: EventFolderGone, Path: b.folder})
			return true
		}

		event := Event{
			Path:  filepath.Join(b.folder, name),
			IsDir: mask&unix.IN_ISDIR != 0,
		}
		switch {
		case mask&unix.IN_CREATE != 0:
			event.Type = EventCreated
		case mask&unix.IN_CLOSE_WRITE != 0:
			event.Type = EventWritten
		case mask&unix.IN_MOVED_TO != 0:
			event.Type = EventMovedIn
		case mask&unix.IN_DELETE != 0:
			event.Type = EventRemoved
		case mask&unix.IN_MOVED_FROM != 0:
			event.Type = EventMovedOut
		default:
			continue
		}
		b.emit(event)
	}
	return false
}

func (b *inotifyBackend) emit(event Event) {
	select {
	case b.events <- event:
	case <-b.done:
	}
}

func (b *inotifyBackend) sendError(err error) {
	select {
	case b.errors <- err:
	case <-b.done:
	}
}

// Events returns the events channel.
func (b *inotifyBackend) Events() <-chan Event {
	return b.events
}

// Errors returns the errors channel.
func (b *inotifyBackend) Errors() <-chan error {
	return b.errors
}

// Stop removes the watch and closes the inotify descriptor.
func (b *inotifyBackend) Stop() error {
	b.stopOnce.Do(func() {
		close(b.done)
		b.wg.Wait()

		b.mu.Lock()
		if b.wd >= 0 {
			// The watch is already gone when the folder was deleted.
			_, _ = unix.InotifyRmWatch(b.fd, uint32(b.wd)) //nolint:gosec // wd is a small non-negative int
		}
		b.mu.Unlock()

		b.stopErr = unix.Close(b.fd)
		close(b.events)
		close(b.errors)
	})
	return b.stopErr
}

// clen returns the length of a NUL-terminated byte slice.
func clen(n []byte) int {
	for i := 0; i < len(n); i++ {
		if n[i] == 0 {
			return i
		}
	}
	return len(n)
}
