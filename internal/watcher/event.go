package watcher

// EventType is the kind of raw change reported for an entry of the watched folder.
type EventType int

const (
	// EventCreated: a new entry appeared.
	EventCreated EventType = iota
	// EventWritten: a file was written (inotify: closed after writing).
	EventWritten
	// EventMovedIn: an entry was renamed into the folder.
	EventMovedIn
	// EventRemoved: an entry was deleted.
	EventRemoved
	// EventMovedOut: an entry was renamed away from the folder.
	EventMovedOut
	// EventOverflow: the kernel queue overflowed and events were lost.
	EventOverflow
	// EventFolderGone: the watched folder was deleted, moved, or unmounted.
	EventFolderGone
)

// String returns the string representation of the event type.
func (t EventType) String() string {
	switch t {
	case EventCreated:
		return "created"
	case EventWritten:
		return "written"
	case EventMovedIn:
		return "moved-in"
	case EventRemoved:
		return "removed"
	case EventMovedOut:
		return "moved-out"
	case EventOverflow:
		return "overflow"
	case EventFolderGone:
		return "folder-gone"
	default:
		return "unknown"
	}
}

// Triggers reports whether the event can mean a new file is waiting to be
// sorted. Removals never do: organizing itself produces them.
func (t EventType) Triggers() bool {
	switch t {
	case EventCreated, EventWritten, EventMovedIn, EventOverflow:
		return true
	default:
		return false
	}
}

// Event is a raw change inside the watched folder.
type Event struct {
	Type EventType
	// Path of the entry. For EventFolderGone and EventOverflow it is the folder.
	Path string
	// IsDir is set when the backend knows the entry is a directory.
	IsDir bool
}
