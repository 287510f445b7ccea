package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogEntry_Line(t *testing.T) {
	entry := LogEntry{
		Timestamp:   time.Date(2024, 3, 9, 14, 5, 7, 123456000, time.UTC),
		Filename:    "report_draft.txt",
		Destination: "WIP",
	}

	assert.Equal(t, "2024-03-09 14:05:07.123456 - Moved: report_draft.txt --> WIP/", entry.Line())
}

func TestParseCollisionPolicy(t *testing.T) {
	tests := []struct {
		in   string
		want CollisionPolicy
	}{
		{"", CollisionSkip},
		{"skip", CollisionSkip},
		{"rename", CollisionRename},
		{"overwrite", CollisionOverwrite},
	}
	for _, tt := range tests {
		got, err := ParseCollisionPolicy(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	_, err := ParseCollisionPolicy("merge")
	assert.Error(t, err)
}

func TestSessionState(t *testing.T) {
	assert.Equal(t, "running", SessionRunning.String())
	assert.Equal(t, "error", SessionError.String())
	assert.True(t, SessionRunning.Active())
	assert.True(t, SessionStopping.Active())
	assert.False(t, SessionStopped.Active())
	assert.False(t, SessionError.Active())
	assert.False(t, SessionIdle.Active())
}

func TestRule_String(t *testing.T) {
	assert.Equal(t, "'draft' --> WIP", Rule{Keyword: "draft", Destination: "WIP"}.String())
}
