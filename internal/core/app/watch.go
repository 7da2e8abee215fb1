// # internal/core/app/watch.go
package app

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"steward/internal/engine/metrics"
	"steward/internal/engine/treemap"
)

// HandleChanges reprocesses one debounced batch of filesystem changes:
// removed files leave the cache and the snapshot, changed files are
// re-analyzed, and a fresh treemap is published to the update handler.
// tsconfig edits invalidate the resolver's memoized verdicts. Before the
// first scan a batch simply triggers one.
func (a *App) HandleChanges(ctx context.Context, paths []string) {
	if len(paths) == 0 {
		return
	}

	snap := a.Snapshot()
	if snap == nil {
		next, err := a.Scan(ctx)
		if err != nil {
			slog.Warn("scan after change failed", "error", err)
			return
		}
		a.emitUpdate(Update{Snapshot: next, Changed: paths})
		return
	}

	started := time.Now()
	files := make(map[string]*metrics.FileMetrics, len(snap.Files))
	for path, fm := range snap.Files {
		files[path] = fm
	}

	changed := make([]string, 0, len(paths))
	resolverDirty := false
	for _, p := range paths {
		abs := p
		if v, err := filepath.Abs(p); err == nil {
			abs = v
		}
		if a.Resolver.AffectsResolution(abs) {
			resolverDirty = true
			continue
		}
		if !a.Parser.IsSupportedPath(abs) {
			continue
		}
		if !a.IncludeTests && a.Parser.IsTestFile(abs) {
			continue
		}
		changed = append(changed, abs)

		if _, err := os.Stat(abs); err != nil {
			delete(files, abs)
			if a.Store != nil {
				if derr := a.Store.DeleteFile(abs); derr != nil {
					slog.Warn("cache delete failed", "path", abs, "error", derr)
				}
			}
			continue
		}

		fm, err := a.AnalyzeFile(abs)
		if err != nil {
			slog.Warn("re-analysis failed", "path", abs, "error", err)
			continue
		}
		files[abs] = fm
	}

	if resolverDirty {
		a.Resolver.Invalidate()
	}
	if len(changed) == 0 {
		return
	}

	next := &Snapshot{
		RunID:     uuid.NewString(),
		Root:      snap.Root,
		StartedAt: started,
		Duration:  time.Since(started),
		Tree:      treemap.Build(snap.Root, files),
		Files:     files,
	}
	a.setSnapshot(next)
	a.emitUpdate(Update{Snapshot: next, Changed: changed})

	slog.Info("updated after change",
		"changed", len(changed),
		"files", len(files),
		"duration_ms", next.Duration.Milliseconds())
}
