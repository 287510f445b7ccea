package domain

// SessionState is the lifecycle state of a watch session.
//
//	idle -> starting -> running -> stopping -> stopped
//	                       \-> error -> stopped
type SessionState int

const (
	SessionIdle SessionState = iota
	SessionStarting
	SessionRunning
	SessionStopping
	SessionStopped
	SessionError
)

// String returns the string representation of the state.
func (s SessionState) String() string {
	switch s {
	case SessionIdle:
		return "idle"
	case SessionStarting:
		return "starting"
	case SessionRunning:
		return "running"
	case SessionStopping:
		return "stopping"
	case SessionStopped:
		return "stopped"
	case SessionError:
		return "error"
	default:
		return "unknown"
	}
}

// Active reports whether a session in this state holds, or is acquiring, a
// subscription.
func (s SessionState) Active() bool {
	return s == SessionStarting || s == SessionRunning || s == SessionStopping
}
