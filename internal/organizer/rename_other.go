//go:build !linux

package organizer

func renameNoReplace(_, _ string) error {
	return errNoReplaceUnsupported
}
