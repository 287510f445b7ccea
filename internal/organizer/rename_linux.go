//go:build linux

package organizer

import (
	"errors"

	"golang.org/x/sys/unix"
)

// renameNoReplace moves src to dst atomically, failing with EEXIST when dst
// exists. Filesystems without RENAME_NOREPLACE support yield errNoReplaceUnsupported.
func renameNoReplace(src, dst string) error {
	err := unix.Renameat2(unix.AT_FDCWD, src, unix.AT_FDCWD, dst, unix.RENAME_NOREPLACE)
	if errors.Is(err, unix.EINVAL) || errors.Is(err, unix.ENOSYS) || errors.Is(err, unix.ENOTSUP) {
		return errNoReplaceUnsupported
	}
	return err
}
