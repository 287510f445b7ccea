package organizer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
)

// lockRetryDelay is how often a blocked flock attempt is retried.
const lockRetryDelay = 50 * time.Millisecond

// FolderLocks serializes sweeps of the same folder. Within a process a mutex
// per folder is used. When dir is set, a flock file per folder under dir
// also serializes against other processes (the CLI running next to the daemon).
type FolderLocks struct {
	dir   string
	locks *syncMap[string, *sync.Mutex]
}

// NewFolderLocks creates a lock set. An empty dir disables cross-process locking.
func NewFolderLocks(dir string) *FolderLocks {
	return &FolderLocks{
		dir:   dir,
		locks: newSyncMap[string, *sync.Mutex](),
	}
}

// Path returns the lock file used for folder.
func (l *FolderLocks) Path(folder string) string {
	sum := sha256.Sum256([]byte(folder))
	return filepath.Join(l.dir, hex.EncodeToString(sum[:8])+".lock")
}

// Lock blocks until folder is held by the caller and returns the release func.
// The in-process wait is not cancellable; the cross-process wait honors ctx.
func (l *FolderLocks) Lock(ctx context.Context, folder string) (func(), error) {
	mu, _ := l.locks.LoadOrStore(folder, &sync.Mutex{})
	mu.Lock()

	if l.dir == "" {
		return mu.Unlock, nil
	}

	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		mu.Unlock()
		return nil, fmt.Errorf("create lock dir: %w", err)
	}

	fl := flock.New(l.Path(folder))
	locked, err := fl.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		mu.Unlock()
		return nil, fmt.Errorf("lock %s: %w", folder, err)
	}
	if !locked {
		mu.Unlock()
		return nil, fmt.Errorf("lock %s: not acquired", folder)
	}

	return func() {
		_ = fl.Unlock()
		mu.Unlock()
	}, nil
}
