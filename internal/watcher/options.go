package watcher

// Backend kinds accepted by Options.Kind.
const (
	KindAuto     = "auto"
	KindInotify  = "inotify"
	KindFsnotify = "fsnotify"
)

// Options configures New.
type Options struct {
	// Kind selects the backend. Auto picks inotify on Linux and fsnotify elsewhere.
	Kind string
	// BufferSize is the capacity of the events channel.
	BufferSize int
}

func (o *Options) setDefaults() {
	if o.Kind == "" {
		o.Kind = KindAuto
	}
	if o.BufferSize <= 0 {
		o.BufferSize = 256
	}
}
