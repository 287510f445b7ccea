package watcher

// Backend is a non-recursive subscription to one folder.
type Backend interface {
	// Watch subscribes to changes of the immediate entries of folder and
	// starts delivering events. It may be called once.
	Watch(folder string) error

	// Events returns the channel of raw events. It is closed by Stop.
	Events() <-chan Event

	// Errors returns the channel of backend errors. It is closed by Stop.
	Errors() <-chan error

	// Stop releases the subscription. It is safe to call more than once.
	Stop() error
}
