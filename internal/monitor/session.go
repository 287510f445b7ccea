// Package monitor keeps folders organized continuously: a Session turns raw
// watcher events into debounced organize sweeps.
package monitor

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/listenupapp/autosort/internal/domain"
	"github.com/listenupapp/autosort/internal/errors"
	"github.com/listenupapp/autosort/internal/ignore"
	"github.com/listenupapp/autosort/internal/organizer"
	"github.com/listenupapp/autosort/internal/watcher"
)

// Defaults for Options.
const (
	DefaultDebounce = 500 * time.Millisecond
	DefaultMaxWait  = 5 * time.Second
)

// Runner performs one organize sweep of folder.
type Runner interface {
	Run(ctx context.Context, folder string) (*organizer.Result, error)
}

// RunnerFunc adapts a function to Runner.
type RunnerFunc func(ctx context.Context, folder string) (*organizer.Result, error)

// Run calls f.
func (f RunnerFunc) Run(ctx context.Context, folder string) (*organizer.Result, error) {
	return f(ctx, folder)
}

// Options configures a Session.
type Options struct {
	Folder   string
	Runner   Runner
	Backends watcher.Factory
	Ignore   ignore.Matcher
	// Exclude lists paths whose changes never trigger a sweep, such as a log
	// file kept inside the watched folder.
	Exclude []string
	// Debounce is the quiet period after the last event before a sweep.
	Debounce time.Duration
	// MaxWait bounds how long a steady stream of events can delay a sweep.
	MaxWait time.Duration
	Logger  *slog.Logger
	// OnStateChange, if set, is called after every state transition.
	OnStateChange func(folder string, state domain.SessionState)
}

// Status is a point-in-time view of a session.
type Status struct {
	Folder       string
	State        domain.SessionState
	StartedAt    time.Time
	Sweeps       int
	FailedSweeps int
	Moved        int
	LastRunID    string
	LastRunAt    time.Time
	LastError    error
}

// Session watches one folder and sweeps it after changes settle. A session
// is single use: once stopped it cannot be started again.
//
//	idle -> starting -> running -> stopping -> stopped
//	                       \-> error -> stopped
type Session struct {
	opts    Options
	folder  string
	exclude map[string]struct{}
	logger  *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
	finish sync.Once

	mu     sync.Mutex
	status Status
}

// NewSession creates an idle session for opts.Folder.
func NewSession(opts Options) *Session {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.MaxWait <= 0 {
		opts.MaxWait = DefaultMaxWait
	}
	if opts.MaxWait < opts.Debounce {
		opts.MaxWait = opts.Debounce
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	folder := filepath.Clean(opts.Folder)
	exclude := make(map[string]struct{}, len(opts.Exclude))
	for _, p := range opts.Exclude {
		exclude[filepath.Clean(p)] = struct{}{}
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Session{
		opts:    opts,
		folder:  folder,
		exclude: exclude,
		logger:  opts.Logger.With("folder", folder),
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
		status:  Status{Folder: folder, State: domain.SessionIdle},
	}
}

// Folder returns the watched folder.
func (s *Session) Folder() string {
	return s.folder
}

// State returns the current lifecycle state.
func (s *Session) State() domain.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status.State
}

// Status returns a snapshot of the session's counters and state.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Done is closed once the session reaches stopped.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Start subscribes to the folder and begins the event loop. ctx bounds only
// the subscription setup; the session runs until Stop or a fatal error.
// A failed subscription leaves the session stopped and returns a
// SUBSCRIPTION error; a Stop during setup returns a CONFLICT error.
func (s *Session) Start(ctx context.Context) error {
	if !s.transition(domain.SessionIdle, domain.SessionStarting) {
		return errors.Conflictf("session for %s is %s", s.folder, s.State())
	}

	backend, err := s.subscribe(ctx)
	if err != nil {
		subErr := errors.Wrapf(err, errors.CodeSubscription, "watch %s", s.folder)
		s.logger.Error("failed to start watching", "error", err)
		s.setState(domain.SessionError, subErr)
		s.stopped()
		return subErr
	}

	// Stop may have been called while subscribing.
	if s.ctx.Err() != nil {
		if err := backend.Stop(); err != nil {
			s.logger.Warn("failed to release subscription", "error", err)
		}
		s.stopped()
		return errors.Conflictf("session for %s was stopped while starting", s.folder)
	}

	s.mu.Lock()
	s.status.StartedAt = time.Now()
	s.mu.Unlock()
	s.setState(domain.SessionRunning, nil)
	s.logger.Info("watching folder", "debounce", s.opts.Debounce, "max_wait", s.opts.MaxWait)

	go s.run(backend)
	return nil
}

func (s *Session) subscribe(ctx context.Context) (watcher.Backend, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.opts.Backends == nil || s.opts.Runner == nil {
		return nil, errors.Internalf("session needs a backend factory and a runner")
	}

	backend, err := s.opts.Backends()
	if err != nil {
		return nil, err
	}
	if err := backend.Watch(s.folder); err != nil {
		_ = backend.Stop()
		return nil, err
	}
	return backend, nil
}

// Stop cancels pending timers, waits for an in-flight sweep, and releases
// the subscription. It is idempotent and safe to call in any state.
func (s *Session) Stop() {
	s.cancel()

	if s.transition(domain.SessionIdle, domain.SessionStopping) {
		s.stopped()
		return
	}
	s.transition(domain.SessionRunning, domain.SessionStopping)

	<-s.done
}

func (s *Session) run(backend watcher.Backend) {
	fatal := s.loop(backend)
	if fatal != nil {
		s.logger.Error("watch session failed", "error", fatal)
		s.setState(domain.SessionError, fatal)
	}

	if err := backend.Stop(); err != nil {
		s.logger.Warn("failed to release subscription", "error", err)
	}
	s.stopped()
}

// stopped moves to the final state and releases Stop callers.
func (s *Session) stopped() {
	s.finish.Do(func() {
		s.setState(domain.SessionStopped, nil)
		s.logger.Info("stopped watching folder")
		close(s.done)
	})
}

type sweepOutcome struct {
	res *organizer.Result
	err error
}

// loop owns the debounce timers and the sweep worker. It returns a
// SUBSCRIPTION error when the watch is lost, or nil on Stop.
func (s *Session) loop(backend watcher.Backend) error {
	var (
		trailing *time.Timer
		deadline *time.Timer
		running  bool
		pending  bool
		outcomes = make(chan sweepOutcome, 1)
	)

	disarm := func() {
		if trailing != nil {
			trailing.Stop()
			deadline.Stop()
			trailing, deadline = nil, nil
		}
	}

	// Sweeps must finish even when Stop is requested mid-sweep.
	sweepCtx := context.WithoutCancel(s.ctx)

	fire := func() {
		disarm()
		if running {
			pending = true
			return
		}
		running = true
		go func() {
			res, err := s.opts.Runner.Run(sweepCtx, s.folder)
			outcomes <- sweepOutcome{res: res, err: err}
		}()
	}

	drain := func() {
		disarm()
		if running {
			s.record(<-outcomes)
		}
	}

	for {
		var trailingC, deadlineC <-chan time.Time
		if trailing != nil {
			trailingC, deadlineC = trailing.C, deadline.C
		}

		select {
		case <-s.ctx.Done():
			drain()
			return nil

		case ev, ok := <-backend.Events():
			if !ok {
				drain()
				return errors.Subscriptionf("watch on %s closed unexpectedly", s.folder)
			}
			if ev.Type == watcher.EventFolderGone {
				drain()
				return errors.Subscriptionf("watched folder %s is gone", s.folder)
			}
			if !s.triggers(ev) {
				continue
			}
			s.logger.Debug("change detected", "event", ev.Type.String(), "file", filepath.Base(ev.Path))
			if trailing == nil {
				trailing = time.NewTimer(s.opts.Debounce)
				deadline = time.NewTimer(s.opts.MaxWait)
			} else {
				trailing.Reset(s.opts.Debounce)
			}

		case err, ok := <-backend.Errors():
			drain()
			if !ok {
				return errors.Subscriptionf("watch on %s closed unexpectedly", s.folder)
			}
			return errors.Wrapf(err, errors.CodeSubscription, "watch %s", s.folder)

		case <-trailingC:
			fire()

		case <-deadlineC:
			fire()

		case out := <-outcomes:
			running = false
			s.record(out)
			if pending {
				pending = false
				fire()
			}
		}
	}
}

// triggers reports whether ev may mean a file is waiting to be sorted.
func (s *Session) triggers(ev watcher.Event) bool {
	if ev.Type == watcher.EventOverflow {
		return true
	}
	if !ev.Type.Triggers() || ev.IsDir {
		return false
	}
	if filepath.Dir(ev.Path) != s.folder {
		return false
	}
	if _, own := s.exclude[filepath.Clean(ev.Path)]; own {
		return false
	}
	return !s.opts.Ignore.Match(ev.Path)
}

func (s *Session) record(out sweepOutcome) {
	s.mu.Lock()
	s.status.Sweeps++
	if out.res != nil {
		s.status.Moved += len(out.res.Entries)
		s.status.LastRunID = out.res.RunID
		s.status.LastRunAt = out.res.FinishedAt
	}
	if out.err != nil {
		s.status.FailedSweeps++
		s.status.LastError = out.err
	}
	s.mu.Unlock()

	if out.err != nil {
		s.logger.Error("sweep failed", "error", out.err)
		return
	}
	if out.res != nil && len(out.res.Entries) > 0 {
		s.logger.Info("sweep finished", "run_id", out.res.RunID, "moved", len(out.res.Entries))
	}
}

func (s *Session) setState(state domain.SessionState, err error) {
	s.mu.Lock()
	s.status.State = state
	if err != nil {
		s.status.LastError = err
	}
	s.mu.Unlock()

	s.notify(state)
}

// transition moves from one state to another only if the session is in from.
func (s *Session) transition(from, to domain.SessionState) bool {
	s.mu.Lock()
	if s.status.State != from {
		s.mu.Unlock()
		return false
	}
	s.status.State = to
	s.mu.Unlock()

	s.notify(to)
	return true
}

func (s *Session) notify(state domain.SessionState) {
	if s.opts.OnStateChange != nil {
		s.opts.OnStateChange(s.folder, state)
	}
}
