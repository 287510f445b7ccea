package service

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/listenupapp/autosort/internal/category"
	"github.com/listenupapp/autosort/internal/domain"
	domainerrors "github.com/listenupapp/autosort/internal/errors"
	"github.com/listenupapp/autosort/internal/monitor"
	"github.com/listenupapp/autosort/internal/organizer"
	"github.com/listenupapp/autosort/internal/ratelimit"
	"github.com/listenupapp/autosort/internal/rules"
	"github.com/listenupapp/autosort/internal/store/sqlite"
)

// History stores run summaries and moved files.
type History interface {
	RecordRun(ctx context.Context, run domain.RunSummary) error
	ListMoves(ctx context.Context, f sqlite.MoveFilter) ([]domain.LogEntry, error)
	ListRuns(ctx context.Context, folder string, limit int) ([]domain.RunSummary, error)
}

// OrganizerDeps are the collaborators of an OrganizerService. History and
// Limiter are optional.
type OrganizerDeps struct {
	Engine  *organizer.Engine
	Rules   *rules.Set
	History History
	Limiter *ratelimit.KeyedRateLimiter
	// Watch is the template for watch sessions; its Runner is set by the service.
	Watch monitor.Options
	// OnRun, if set, is called with the summary of every finished run.
	OnRun  func(domain.RunSummary)
	Logger *slog.Logger
}

// OrganizerService is the entry point used by the HTTP API, the CLI, and
// the daemon: manual organize runs, watch sessions, rules, and history.
type OrganizerService struct {
	engine  *organizer.Engine
	rules   *rules.Set
	history History
	limiter *ratelimit.KeyedRateLimiter
	watches *monitor.Manager
	onRun   func(domain.RunSummary)
	logger  *slog.Logger
}

// NewOrganizerService creates an OrganizerService.
func NewOrganizerService(deps OrganizerDeps) *OrganizerService {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	s := &OrganizerService{
		engine:  deps.Engine,
		rules:   deps.Rules,
		history: deps.History,
		limiter: deps.Limiter,
		onRun:   deps.OnRun,
		logger:  deps.Logger,
	}

	watch := deps.Watch
	watch.Runner = monitor.RunnerFunc(func(ctx context.Context, folder string) (*organizer.Result, error) {
		return s.run(ctx, folder, domain.TriggerWatch)
	})
	if watch.Logger == nil {
		watch.Logger = deps.Logger
	}
	s.watches = monitor.NewManager(watch)

	return s
}

// Organize sorts folder once with the current rules. API-triggered runs are
// rate limited per folder.
func (s *OrganizerService) Organize(ctx context.Context, folder string, trigger domain.Trigger) (*organizer.Result, error) {
	if trigger == domain.TriggerAPI && s.limiter != nil {
		key := folder
		if abs, err := filepath.Abs(folder); err == nil {
			key = abs
		}
		if !s.limiter.Allow(key) {
			retry := s.limiter.RetryAfter(key)
			return nil, domainerrors.RateLimitedf("too many organize requests for %s", key).
				WithDetails(map[string]any{"retry_after_seconds": int(retry.Seconds()) + 1})
		}
	}

	return s.run(ctx, folder, trigger)
}

func (s *OrganizerService) run(ctx context.Context, folder string, trigger domain.Trigger) (*organizer.Result, error) {
	res, err := s.engine.Organize(ctx, folder, s.rules.Snapshot())
	if res == nil {
		return nil, err
	}

	summary := res.Summary(trigger)
	if s.history != nil {
		if recErr := s.history.RecordRun(ctx, summary); recErr != nil {
			s.logger.Error("failed to record run", "run_id", res.RunID, "error", recErr)
		}
	}
	if s.onRun != nil {
		s.onRun(summary)
	}
	return res, err
}

// Categories returns the category table in order.
func (s *OrganizerService) Categories() []category.Category {
	return s.engine.Table().Categories()
}

// CollisionPolicy returns what organize runs do when a destination is taken.
func (s *OrganizerService) CollisionPolicy() domain.CollisionPolicy {
	return s.engine.Policy()
}

// Rules returns the current rules in order.
func (s *OrganizerService) Rules() []domain.Rule {
	return s.rules.Snapshot()
}

// AddRule validates and appends a rule.
func (s *OrganizerService) AddRule(rule domain.Rule) (domain.Rule, error) {
	return s.rules.Add(rule)
}

// RemoveRule deletes the rule at index.
func (s *OrganizerService) RemoveRule(index int) (domain.Rule, error) {
	return s.rules.Remove(index)
}

// StartWatch begins monitoring folder.
func (s *OrganizerService) StartWatch(ctx context.Context, folder string) (monitor.Status, error) {
	session, err := s.watches.Start(ctx, folder)
	if err != nil {
		return monitor.Status{}, err
	}
	return session.Status(), nil
}

// StopWatch stops monitoring folder.
func (s *OrganizerService) StopWatch(folder string) error {
	return s.watches.Stop(folder)
}

// WatchStatus returns the session for folder, or NOT_FOUND.
func (s *OrganizerService) WatchStatus(folder string) (monitor.Status, error) {
	session, ok := s.watches.Get(folder)
	if !ok {
		return monitor.Status{}, domainerrors.NotFoundf("%s is not being watched", folder)
	}
	return session.Status(), nil
}

// Watches lists all watch sessions.
func (s *OrganizerService) Watches() []monitor.Status {
	return s.watches.List()
}

// Session returns the live session for folder, if any.
func (s *OrganizerService) Session(folder string) (*monitor.Session, bool) {
	return s.watches.Get(folder)
}

// StopAll stops every watch session.
func (s *OrganizerService) StopAll() {
	s.watches.StopAll()
}

// History returns recent moves, newest first. folder may be empty.
func (s *OrganizerService) History(ctx context.Context, folder string, limit int) ([]domain.LogEntry, error) {
	if s.history == nil {
		return nil, nil
	}
	if folder != "" {
		if abs, err := filepath.Abs(folder); err == nil {
			folder = abs
		}
	}
	entries, err := s.history.ListMoves(ctx, sqlite.MoveFilter{Folder: folder, Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	return entries, nil
}

// Runs returns recent run summaries, newest first. folder may be empty.
func (s *OrganizerService) Runs(ctx context.Context, folder string, limit int) ([]domain.RunSummary, error) {
	if s.history == nil {
		return nil, nil
	}
	if folder != "" {
		if abs, err := filepath.Abs(folder); err == nil {
			folder = abs
		}
	}
	runs, err := s.history.ListRuns(ctx, folder, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}
