package ignore

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatcher_Match(t *testing.T) {
	m := Default()

	tests := []struct {
		name string
		path string
		want bool
	}{
		{"regular file", "/in/photo.jpg", false},
		{"hidden file", "/in/.bashrc", true},
		{"finder metadata", "/in/.DS_Store", true},
		{"chrome partial download", "/in/movie.mp4.crdownload", true},
		{"firefox partial download", "/in/movie.mp4.part", true},
		{"office lock file", "/in/~$report.docx", true},
		{"watched folder under dot dir", "/home/me/.inbox/photo.jpg", false},
		{"temp file", "/in/upload.TMP", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, m.Match(tt.path))
		})
	}
}

func TestMatcher_HiddenDisabled(t *testing.T) {
	m := Matcher{Patterns: []string{}, Hidden: false}

	assert.False(t, m.Match("/in/.bashrc"))
	assert.False(t, m.Match("/in/file.part"))
}

func TestMatcher_ZeroValueIgnoresNothing(t *testing.T) {
	var m Matcher
	assert.False(t, m.Match("/in/.DS_Store"))
}
