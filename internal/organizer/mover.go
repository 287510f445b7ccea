package organizer

import (
	stderrors "errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/listenupapp/autosort/internal/domain"
	"github.com/listenupapp/autosort/internal/errors"
)

// maxRenameAttempts bounds the "name (n).ext" search of the rename policy.
const maxRenameAttempts = 1000

var errNoReplaceUnsupported = stderrors.New("rename without replace not supported")

// Mover relocates a single file into a destination directory.
type Mover struct {
	policy domain.CollisionPolicy
	logger *slog.Logger
}

// NewMover creates a Mover with the given collision policy.
func NewMover(policy domain.CollisionPolicy, logger *slog.Logger) *Mover {
	if policy == "" {
		policy = domain.CollisionSkip
	}
	return &Mover{policy: policy, logger: logger}
}

// Policy returns the collision policy in effect.
func (m *Mover) Policy() domain.CollisionPolicy {
	return m.policy
}

// Move creates destDir if needed and moves src into it, keeping the base name.
// It returns the final path. With the skip policy an existing file of the same
// name produces a CONFLICT error and src is left untouched; other failures are
// IO errors.
func (m *Mover) Move(src, destDir string) (string, error) {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", errors.Wrapf(err, errors.CodeIO, "create %s", destDir)
	}

	name := filepath.Base(src)

	switch m.policy {
	case domain.CollisionOverwrite:
		dst := filepath.Join(destDir, name)
		if err := move(src, dst); err != nil {
			return "", errors.Wrapf(err, errors.CodeIO, "move %s", name)
		}
		return dst, nil

	case domain.CollisionRename:
		for n := 0; n < maxRenameAttempts; n++ {
			dst := filepath.Join(destDir, numbered(name, n))
			err := moveNoReplace(src, dst)
			if err == nil {
				if n > 0 {
					m.logger.Debug("renamed on collision", "file", name, "final", filepath.Base(dst))
				}
				return dst, nil
			}
			if !stderrors.Is(err, fs.ErrExist) {
				return "", errors.Wrapf(err, errors.CodeIO, "move %s", name)
			}
		}
		return "", errors.Conflictf("no free name for %s in %s", name, destDir)

	default:
		dst := filepath.Join(destDir, name)
		err := moveNoReplace(src, dst)
		switch {
		case err == nil:
			return dst, nil
		case stderrors.Is(err, fs.ErrExist):
			return "", errors.Conflictf("%s already exists in %s", name, destDir)
		default:
			return "", errors.Wrapf(err, errors.CodeIO, "move %s", name)
		}
	}
}

// numbered returns name for n == 0, else "stem (n).ext".
func numbered(name string, n int) string {
	if n == 0 {
		return name
	}
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	if strings.Trim(stem, ".") == "" {
		stem, ext = name, ""
	}
	return fmt.Sprintf("%s (%d)%s", stem, n, ext)
}

// moveNoReplace moves src to dst unless dst exists, in which case the
// returned error matches fs.ErrExist.
func moveNoReplace(src, dst string) error {
	err := renameNoReplace(src, dst)
	switch {
	case err == nil:
		return nil
	case stderrors.Is(err, errNoReplaceUnsupported):
		if err := checkFree(dst); err != nil {
			return err
		}
		return move(src, dst)
	case isCrossDevice(err):
		return copyAcross(src, dst, true)
	default:
		return &os.LinkError{Op: "rename", Old: src, New: dst, Err: err}
	}
}

// move renames src over dst, copying when they are on different devices.
func move(src, dst string) error {
	err := os.Rename(src, dst)
	if err != nil && isCrossDevice(err) {
		return copyAcross(src, dst, false)
	}
	return err
}

func checkFree(dst string) error {
	_, err := os.Lstat(dst)
	if err == nil {
		return &fs.PathError{Op: "move", Path: dst, Err: fs.ErrExist}
	}
	if !stderrors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func isCrossDevice(err error) bool {
	return stderrors.Is(err, syscall.EXDEV)
}

// copyAcross copies src to dst, syncs it, and removes src. With exclusive set
// an existing dst fails with fs.ErrExist. Not atomic: a crash can leave both.
func copyAcross(src, dst string, exclusive bool) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if exclusive {
		flags = os.O_WRONLY | os.O_CREATE | os.O_EXCL
	}
	out, err := os.OpenFile(dst, flags, info.Mode().Perm())
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			out.Close()
			os.Remove(dst)
		}
	}()

	if _, err = io.Copy(out, in); err != nil {
		return err
	}
	if err = out.Sync(); err != nil {
		return err
	}
	if err = out.Close(); err != nil {
		return err
	}
	_ = os.Chtimes(dst, info.ModTime(), info.ModTime())

	return os.Remove(src)
}
