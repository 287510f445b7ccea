// Package watcher delivers raw, non-recursive change events for a single folder.
package watcher

import (
	"fmt"
	"log/slog"
	"runtime"
)

// New creates a backend for the current platform:
//   - Linux: inotify directly, reporting close-after-write and queue overflow
//   - Others: fsnotify
func New(logger *slog.Logger, opts Options) (Backend, error) {
	opts.setDefaults()

	kind := opts.Kind
	if kind == KindAuto {
		kind = KindFsnotify
		if runtime.GOOS == "linux" {
			kind = KindInotify
		}
	}

	switch kind {
	case KindInotify:
		backend, err := newInotifyBackend(logger, opts)
		if err != nil {
			return nil, fmt.Errorf("create inotify backend: %w", err)
		}
		return backend, nil
	case KindFsnotify:
		backend, err := newFsnotifyBackend(logger, opts)
		if err != nil {
			return nil, fmt.Errorf("create fsnotify backend: %w", err)
		}
		return backend, nil
	default:
		return nil, fmt.Errorf("unknown watcher backend %q", opts.Kind)
	}
}

// Factory creates backends. Sessions take one so tests can inject fakes.
type Factory func() (Backend, error)

// NewFactory returns a Factory calling New with the given options.
func NewFactory(logger *slog.Logger, opts Options) Factory {
	return func() (Backend, error) {
		return New(logger, opts)
	}
}
