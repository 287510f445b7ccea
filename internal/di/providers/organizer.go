package providers

import (
	"log/slog"

	"github.com/samber/do/v2"

	"github.com/listenupapp/autosort/internal/category"
	"github.com/listenupapp/autosort/internal/config"
	"github.com/listenupapp/autosort/internal/ignore"
	"github.com/listenupapp/autosort/internal/journal"
	"github.com/listenupapp/autosort/internal/organizer"
	"github.com/listenupapp/autosort/internal/rules"
)

// ProvideCategories provides the category table, from CATEGORIES_PATH when set.
func ProvideCategories(i do.Injector) (*category.Table, error) {
	cfg := do.MustInvoke[*config.Config](i)

	log := do.MustInvoke[*slog.Logger](i)

	table := category.Default()
	if cfg.Paths.Categories != "" {
		loaded, err := category.Load(cfg.Paths.Categories)
		if err != nil {
			return nil, err
		}
		table = loaded
	}

	log.Debug("categories loaded", "path", cfg.Paths.Categories, "names", table.Names())
	return table, nil
}

// ProvideRules provides the rule set backed by the rules file.
func ProvideRules(i do.Injector) (*rules.Set, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*slog.Logger](i)

	set, err := rules.Open(rules.NewFile(cfg.Paths.Rules), log)
	if err != nil {
		return nil, err
	}

	log.Debug("rules loaded", "path", cfg.Paths.Rules, "count", set.Len())
	return set, nil
}

// ProvideSink provides the move journal: the text log, the history database,
// and the live event stream.
func ProvideSink(i do.Injector) (journal.Sink, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	events := do.MustInvoke[*SSEManagerHandle](i)

	return journal.Multi{
		journal.NewFileSink(cfg.Paths.LogFile),
		storeHandle.Store,
		events.Manager,
	}, nil
}

// ProvideIgnore provides the matcher for files organize runs leave alone.
func ProvideIgnore(i do.Injector) (ignore.Matcher, error) {
	cfg := do.MustInvoke[*config.Config](i)

	m := ignore.Default()
	if cfg.Organizer.IncludeHidden {
		m.Hidden = false
	}
	return m, nil
}

// ProvideEngine provides the organize engine.
func ProvideEngine(i do.Injector) (*organizer.Engine, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*slog.Logger](i)
	table := do.MustInvoke[*category.Table](i)
	sink := do.MustInvoke[journal.Sink](i)
	matcher := do.MustInvoke[ignore.Matcher](i)

	return organizer.NewEngine(organizer.Options{
		Table:   table,
		Mover:   organizer.NewMover(cfg.Organizer.CollisionPolicy, log),
		Sink:    sink,
		Locks:   organizer.NewFolderLocks(cfg.Paths.LockDir()),
		Ignore:  matcher,
		Exclude: cfg.OwnFiles(),
		Logger:  log,
	}), nil
}
