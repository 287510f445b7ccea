// Package ignore decides which directory entries autosort leaves alone.
package ignore

import (
	"path/filepath"
	"strings"
)

// DefaultPatterns are in-progress download and OS metadata files. Moving a
// half-written download out from under the browser breaks it.
var DefaultPatterns = []string{
	".DS_Store",
	"Thumbs.db",
	"desktop.ini",
	"*.tmp",
	"*.temp",
	"*.part",
	"*.partial",
	"*.crdownload",
	"*.download",
	"~$*",
}

// Matcher matches base names against glob patterns and, optionally, hidden names.
type Matcher struct {
	Patterns []string
	Hidden   bool
}

// Default returns a matcher with DefaultPatterns that also skips hidden files.
func Default() Matcher {
	return Matcher{Patterns: DefaultPatterns, Hidden: true}
}

// Match reports whether the entry at path should be ignored. Only the base
// name is inspected; the watched folder itself may live under a dot directory.
func (m Matcher) Match(path string) bool {
	base := filepath.Base(path)

	if m.Hidden && strings.HasPrefix(base, ".") && base != "." && base != ".." {
		return true
	}

	for _, pattern := range m.Patterns {
		matched, err := filepath.Match(pattern, base)
		if err == nil && matched {
			return true
		}
	}

	return false
}
