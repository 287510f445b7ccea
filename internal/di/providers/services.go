package providers

import (
	"log/slog"

	"github.com/samber/do/v2"

	"github.com/listenupapp/autosort/internal/config"
	"github.com/listenupapp/autosort/internal/domain"
	"github.com/listenupapp/autosort/internal/ignore"
	"github.com/listenupapp/autosort/internal/monitor"
	"github.com/listenupapp/autosort/internal/organizer"
	"github.com/listenupapp/autosort/internal/ratelimit"
	"github.com/listenupapp/autosort/internal/rules"
	"github.com/listenupapp/autosort/internal/service"
	"github.com/listenupapp/autosort/internal/watcher"
)

// LimiterHandle wraps the organize rate limiter with shutdown capability.
type LimiterHandle struct {
	*ratelimit.KeyedRateLimiter
}

// Shutdown implements do.Shutdownable.
func (h *LimiterHandle) Shutdown() error {
	h.Stop()
	return nil
}

// ProvideLimiter provides the per-folder limiter for API organize requests.
func ProvideLimiter(i do.Injector) (*LimiterHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	return &LimiterHandle{KeyedRateLimiter: ratelimit.PerMinute(cfg.Organizer.RatePerMinute)}, nil
}

// OrganizerServiceHandle wraps the organizer service so that watch sessions
// stop on shutdown.
type OrganizerServiceHandle struct {
	*service.OrganizerService
}

// Shutdown implements do.Shutdownable.
func (h *OrganizerServiceHandle) Shutdown() error {
	h.StopAll()
	return nil
}

// ProvideOrganizerService provides the organizer service.
func ProvideOrganizerService(i do.Injector) (*OrganizerServiceHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*slog.Logger](i)
	engine := do.MustInvoke[*organizer.Engine](i)
	ruleSet := do.MustInvoke[*rules.Set](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	limiter := do.MustInvoke[*LimiterHandle](i)
	matcher := do.MustInvoke[ignore.Matcher](i)
	events := do.MustInvoke[*SSEManagerHandle](i)

	svc := service.NewOrganizerService(service.OrganizerDeps{
		Engine:  engine,
		Rules:   ruleSet,
		History: storeHandle.Store,
		Limiter: limiter.KeyedRateLimiter,
		Watch: monitor.Options{
			Backends: watcher.NewFactory(log, watcher.Options{Kind: cfg.Organizer.WatcherBackend}),
			Ignore:   matcher,
			Exclude:  cfg.OwnFiles(),
			Debounce: cfg.Organizer.Debounce,
			MaxWait:  cfg.Organizer.MaxWait,
			Logger:   log,
			OnStateChange: func(folder string, state domain.SessionState) {
				log.Debug("watch state changed", "folder", folder, "state", state.String())
				events.WatchStateChanged(folder, state)
			},
		},
		OnRun:  events.RunCompleted,
		Logger: log,
	})

	return &OrganizerServiceHandle{OrganizerService: svc}, nil
}
