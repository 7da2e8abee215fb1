// # cmd/steward/app.go
package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"steward/internal/core/app"
	"steward/internal/core/watcher"
	"steward/internal/ui/report"
	"steward/internal/ui/server"
)

// runOnce scans once and prints the report to stdout. Logs go to stderr,
// so the report stays pipeable.
func runOnce(ctx context.Context, a *app.App, format string) error {
	snap, err := a.Scan(ctx)
	if err != nil {
		return err
	}

	history, err := a.RecentScans(10)
	if err != nil {
		slog.Warn("scan history unavailable", "error", err)
	}

	out, err := report.Render(format, report.FromSnapshot(snap, history))
	if err != nil {
		return err
	}
	fmt.Print(out)
	return nil
}

func runServe(ctx context.Context, a *app.App) error {
	srv, err := server.New(a.Config.Server, a.AnalysisService())
	if err != nil {
		return err
	}
	return srv.Start(ctx)
}

// runWatch scans, then keeps the snapshot current from filesystem events
// while the terminal UI displays it.
func runWatch(ctx context.Context, a *app.App) error {
	if _, err := a.Scan(ctx); err != nil {
		return err
	}

	w, err := buildWatcher(ctx, a)
	if err != nil {
		return err
	}
	defer w.Close()

	return runUI(ctx, a)
}

// buildWatcher wires the filesystem watcher to the application: scanner
// exclude rules, the registered language extensions, and the resolver
// config filenames whose changes must invalidate module resolution.
func buildWatcher(ctx context.Context, a *app.App) (*watcher.Watcher, error) {
	cfg := a.Config

	w, err := watcher.NewWatcher(cfg.Watch.Debounce, cfg.Scan.Exclude.Dirs, cfg.Scan.Exclude.Files, func(paths []string) {
		a.HandleChanges(ctx, paths)
	})
	if err != nil {
		return nil, err
	}

	var testSuffixes []string
	if !a.IncludeTests {
		testSuffixes = a.Parser.SupportedTestFileSuffixes()
	}
	w.SetLanguageFilters(a.Parser.SupportedExtensions(), cfg.Resolver.TSConfigNames, testSuffixes)

	roots := make([]string, 0, len(cfg.Scan.Paths))
	for _, p := range cfg.Scan.Paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			continue
		}
		roots = append(roots, abs)
	}
	if err := w.Watch(roots); err != nil {
		w.Close()
		return nil, err
	}
	return w, nil
}
