package domain

import (
	"fmt"
	"time"
)

// LogTimeLayout is the timestamp layout used in log sink lines.
const LogTimeLayout = "2006-01-02 15:04:05.000000"

// LogEntry records one completed move.
type LogEntry struct {
	Timestamp   time.Time `json:"timestamp"`
	Filename    string    `json:"filename"`
	Destination string    `json:"destination"`

	// RunID identifies the organize run that produced the entry.
	RunID string `json:"run_id,omitempty"`
	// Folder is the organized folder the file was moved out of.
	Folder string `json:"folder,omitempty"`
	// FinalPath is where the file ended up; it differs from
	// Folder/Destination/Filename when the rename collision policy applied.
	FinalPath string `json:"final_path,omitempty"`
}

// Line formats the entry as a single log sink line, without the newline.
func (e LogEntry) Line() string {
	return fmt.Sprintf("%s - Moved: %s --> %s/", e.Timestamp.Format(LogTimeLayout), e.Filename, e.Destination)
}
