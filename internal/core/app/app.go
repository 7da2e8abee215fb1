// # internal/core/app/app.go

// Package app wires the engines into the running application: it owns the
// parser, the module resolver, the metric cache, and the latest scan
// snapshot, and exposes the operations the CLI, the HTTP server, and the
// watcher drive.
package app

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"steward/internal/core/config"
	"steward/internal/data/cache"
	"steward/internal/engine/metrics"
	"steward/internal/engine/parser"
	"steward/internal/engine/resolver"
	"steward/internal/engine/treemap"
)

// App is the composition root. All fields are set once in New; the
// snapshot is the only mutable state and is guarded by mu.
type App struct {
	Config   *config.Config
	Parser   *parser.Parser
	Resolver *resolver.ModuleResolver
	Builtins *resolver.BuiltinSet

	// Store is nil when the cache is disabled or failed to open.
	Store *cache.Store

	// IncludeTests controls whether *_test / *.spec files enter the scan.
	IncludeTests bool

	mu       sync.RWMutex
	snapshot *Snapshot

	updateMu sync.RWMutex
	onUpdate func(Update)
}

// Snapshot is the result of one completed scan.
type Snapshot struct {
	RunID     string
	Root      string
	StartedAt time.Time
	Duration  time.Duration
	Warnings  []string
	Tree      *treemap.Node
	Files     map[string]*metrics.FileMetrics
}

// Update is pushed to the registered handler after watch-triggered
// rescans so interactive frontends can refresh without polling.
type Update struct {
	Snapshot *Snapshot
	Changed  []string
}

// New builds the application from configuration. A cache that cannot be
// opened degrades to uncached operation with a warning; everything else
// failing is fatal.
func New(cfg *config.Config) (*App, error) {
	if cfg == nil {
		cfg = config.Default()
	}

	overrides := make(map[string]parser.LanguageOverride, len(cfg.Languages))
	for lang, settings := range cfg.Languages {
		overrides[lang] = parser.LanguageOverride{
			Enabled:    settings.Enabled,
			Extensions: settings.Extensions,
		}
	}
	registry, err := parser.BuildLanguageRegistry(overrides)
	if err != nil {
		return nil, err
	}
	loader, err := parser.NewGrammarLoaderWithRegistry(registry)
	if err != nil {
		return nil, err
	}

	a := &App{
		Config:       cfg,
		Parser:       parser.NewParser(loader),
		Resolver:     resolver.NewModuleResolver("", cfg.Resolver.TSConfigNames...),
		Builtins:     resolver.NewBuiltinSet(cfg.Resolver.ExtraBuiltins...),
		IncludeTests: true,
	}

	if cfg.Cache.Enabled {
		store, err := cache.Open(cfg.Cache.Path, cfg.Cache.BusyTimeout)
		if err != nil {
			slog.Warn("metric cache unavailable, scanning without it",
				"path", cfg.Cache.Path,
				"error", err)
		} else {
			a.Store = store
		}
	}

	return a, nil
}

// Close releases held resources. Safe to call more than once.
func (a *App) Close(ctx context.Context) error {
	if a == nil {
		return nil
	}
	if a.Store != nil {
		err := a.Store.Close()
		a.Store = nil
		return err
	}
	return nil
}

// Snapshot returns the latest completed scan, or nil before the first one.
func (a *App) Snapshot() *Snapshot {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.snapshot
}

func (a *App) setSnapshot(s *Snapshot) {
	a.mu.Lock()
	a.snapshot = s
	a.mu.Unlock()
}

// SetUpdateHandler registers the callback invoked after watch-triggered
// rescans. Passing nil removes the handler.
func (a *App) SetUpdateHandler(fn func(Update)) {
	a.updateMu.Lock()
	a.onUpdate = fn
	a.updateMu.Unlock()
}

func (a *App) emitUpdate(u Update) {
	a.updateMu.RLock()
	fn := a.onUpdate
	a.updateMu.RUnlock()
	if fn != nil {
		fn(u)
	}
}
