// Package sse streams organizer activity to HTTP clients as Server-Sent Events.
package sse

import (
	"time"

	"github.com/listenupapp/autosort/internal/domain"
)

// EventType represents the type of SSE Event.
type EventType string

const (
	// EventFileMoved is sent for every file an organize run moves.
	EventFileMoved EventType = "file.moved"
	// EventRunCompleted is sent when an organize run finishes.
	EventRunCompleted EventType = "run.completed"
	// EventWatchState is sent on every watch session state transition.
	EventWatchState EventType = "watch.state"

	// EventHeartbeat represents a connection keepalive event.
	EventHeartbeat EventType = "heartbeat"
)

// Event is one message on the stream. Folder scopes it for filtered clients.
type Event struct {
	Type      EventType `json:"type"`
	Folder    string    `json:"folder,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data,omitempty"`
}

// WatchStateData is the payload of EventWatchState.
type WatchStateData struct {
	State string `json:"state"`
}

// NewFileMovedEvent creates a file.moved event.
func NewFileMovedEvent(entry domain.LogEntry) Event {
	return Event{
		Type:      EventFileMoved,
		Folder:    entry.Folder,
		Timestamp: entry.Timestamp,
		Data:      entry,
	}
}

// NewRunCompletedEvent creates a run.completed event.
func NewRunCompletedEvent(run domain.RunSummary) Event {
	return Event{
		Type:      EventRunCompleted,
		Folder:    run.Folder,
		Timestamp: run.FinishedAt,
		Data:      run,
	}
}

// NewWatchStateEvent creates a watch.state event.
func NewWatchStateEvent(folder string, state domain.SessionState) Event {
	return Event{
		Type:      EventWatchState,
		Folder:    folder,
		Timestamp: time.Now(),
		Data:      WatchStateData{State: state.String()},
	}
}

// NewHeartbeatEvent creates a heartbeat event.
func NewHeartbeatEvent() Event {
	return Event{
		Type:      EventHeartbeat,
		Timestamp: time.Now(),
	}
}
