// # internal/core/app/service.go
package app

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"steward/internal/core/errors"
	"steward/internal/core/ports"
	"steward/internal/data/cache"
	"steward/internal/engine/metrics"
	"steward/internal/engine/scope"
	"steward/internal/engine/treemap"
	"steward/internal/shared/observability"
)

// Scan runs the full pipeline: walk the roots, analyze every file through
// the cache, build the treemap, persist the run. The returned snapshot is
// installed as the latest one.
func (a *App) Scan(ctx context.Context) (*Snapshot, error) {
	ctx, span := observability.Tracer.Start(ctx, "app.Scan")
	defer span.End()

	started := time.Now()
	runID := uuid.NewString()
	roots := uniqueScanRoots(a.Config.Scan.Paths)
	root := treemap.FindRepoRoot(commonRoot(roots))

	files, err := a.ScanDirectories(roots)
	if err != nil {
		return nil, err
	}
	slog.Info("scanning", "run_id", runID, "root", root, "files", len(files))

	results, warnings := a.analyzeFiles(ctx, files)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tree := treemap.Build(root, results)
	duration := time.Since(started)

	observability.ScanDuration.Observe(duration.Seconds())
	observability.ScanFiles.Set(float64(len(results)))

	snap := &Snapshot{
		RunID:     runID,
		Root:      root,
		StartedAt: started,
		Duration:  duration,
		Warnings:  warnings,
		Tree:      tree,
		Files:     results,
	}
	a.persistRun(snap)
	a.setSnapshot(snap)

	slog.Info("scan complete",
		"run_id", runID,
		"files", len(results),
		"loc", tree.Metrics.LOC,
		"duration_ms", duration.Milliseconds())
	return snap, nil
}

// persistRun records the scan row and drops cache entries for files the
// scan no longer sees. Persistence failures never fail the scan.
func (a *App) persistRun(snap *Snapshot) {
	if a.Store == nil {
		return
	}

	maxComplexity := 0
	keep := make([]string, 0, len(snap.Files))
	for path, fm := range snap.Files {
		keep = append(keep, path)
		if fm.MaxComplexity > maxComplexity {
			maxComplexity = fm.MaxComplexity
		}
	}

	record := cache.ScanRecord{
		RunID:         snap.RunID,
		Root:          snap.Root,
		StartedAt:     snap.StartedAt,
		Duration:      snap.Duration,
		FileCount:     len(snap.Files),
		TotalLOC:      snap.Tree.Metrics.LOC,
		MaxComplexity: maxComplexity,
	}
	if err := a.Store.RecordScan(record); err != nil {
		slog.Warn("recording scan failed", "run_id", snap.RunID, "error", err)
	}

	if pruned, err := a.Store.PruneExcept(keep); err != nil {
		slog.Warn("cache prune failed", "error", err)
	} else if pruned > 0 {
		slog.Debug("pruned stale cache entries", "count", pruned)
	}
}

// Analysis returns the latest snapshot, scanning first if none exists.
func (a *App) Analysis(ctx context.Context) (*Snapshot, error) {
	if snap := a.Snapshot(); snap != nil {
		return snap, nil
	}
	return a.Scan(ctx)
}

// Refresh always rescans.
func (a *App) Refresh(ctx context.Context) (*Snapshot, error) {
	return a.Scan(ctx)
}

// RecentScans lists persisted scan rows, newest first. Without a cache
// store there is no history.
func (a *App) RecentScans(limit int) ([]cache.ScanRecord, error) {
	if a.Store == nil {
		return nil, nil
	}
	return a.Store.RecentScans(limit)
}

// contentRoot is the directory file serving is confined to: the root of
// the latest scan, or the one an initial scan would use.
func (a *App) contentRoot() string {
	if snap := a.Snapshot(); snap != nil {
		return snap.Root
	}
	return treemap.FindRepoRoot(commonRoot(uniqueScanRoots(a.Config.Scan.Paths)))
}

// resolveUnderRoot normalizes a client-supplied path and rejects anything
// outside the scanned tree. Relative paths are anchored at the scanned
// root, not the server's working directory.
func (a *App) resolveUnderRoot(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", errors.New(errors.CodeValidationError, "path is required")
	}
	root := a.contentRoot()
	abs := filepath.FromSlash(trimmed)
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(root, abs)
	}
	abs = filepath.Clean(abs)
	rel, err := filepath.Rel(root, abs)
	if err != nil || (rel != "." && !filepath.IsLocal(rel)) {
		return "", errors.New(errors.CodeValidationError, "path escapes the scanned root")
	}
	return abs, nil
}

// FileContent serves one file's raw bytes, confined to the scanned root.
func (a *App) FileContent(ctx context.Context, path string) ([]byte, error) {
	abs, err := a.resolveUnderRoot(path)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeNotFound, "file not found")
	}
	if info.IsDir() {
		return nil, errors.New(errors.CodeValidationError, "path is not a file")
	}
	return os.ReadFile(abs)
}

// analyzeScopes parses the file fresh and runs the scope engine. The
// tree is released before returning; the analysis stands on its own.
func (a *App) analyzeScopes(path string) (*scope.Analysis, error) {
	abs, err := a.resolveUnderRoot(path)
	if err != nil {
		return nil, err
	}
	if !a.Parser.HasScopeRules(abs) {
		return nil, errors.New(errors.CodeNotSupported, "scope analysis covers TypeScript flavors only")
	}
	content, err := os.ReadFile(abs)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeNotFound, "file not found")
	}
	src, err := a.Parser.Parse(abs, content)
	if err != nil {
		return nil, err
	}
	defer src.Close()
	return scope.Analyze(abs, src.Root(), src.Content, a.Resolver)
}

// Overlay computes the token overlay and focus projection for one file
// slice.
func (a *App) Overlay(ctx context.Context, req ports.OverlayRequest) (*ports.OverlayResult, error) {
	_, span := observability.Tracer.Start(ctx, "app.Overlay")
	defer span.End()

	analysis, err := a.analyzeScopes(req.Path)
	if err != nil {
		return nil, err
	}
	return &ports.OverlayResult{
		Tokens: scope.TokenOverlay(analysis, req.SliceStart, req.SliceEnd, req.FocusStart, req.FocusEnd, a.Builtins),
		Focus:  scope.BuildFocusTree(analysis, req.FocusStart, req.FocusEnd),
	}, nil
}

// ScopeGraph renders the nested cluster graph for one file. The focus
// range does not change the graph; it selects which cluster id is
// reported back for highlighting.
func (a *App) ScopeGraph(ctx context.Context, req ports.ScopeGraphRequest) (*ports.ScopeGraphResult, error) {
	_, span := observability.Tracer.Start(ctx, "app.ScopeGraph")
	defer span.End()

	analysis, err := a.analyzeScopes(req.Path)
	if err != nil {
		return nil, err
	}
	focus := scope.FocusScope(analysis.Tree, req.FocusStart, req.FocusEnd)
	return &ports.ScopeGraphResult{
		Graph:        scope.ScopeGraph(analysis),
		FocusScopeID: analysis.Tree.Scope(focus).ID,
	}, nil
}

// Functions returns the metric entries for one file, preferring the
// latest snapshot and analyzing on demand otherwise.
func (a *App) Functions(ctx context.Context, path string) (*metrics.FileMetrics, error) {
	abs, err := a.resolveUnderRoot(path)
	if err != nil {
		return nil, err
	}
	if snap := a.Snapshot(); snap != nil {
		if fm, ok := snap.Files[abs]; ok {
			return fm, nil
		}
	}
	return a.AnalyzeFile(abs)
}

// analysisService adapts App to the port the frontends consume.
type analysisService struct {
	app *App
}

var _ ports.AnalysisService = (*analysisService)(nil)

// AnalysisService exposes the app through its port.
func (a *App) AnalysisService() ports.AnalysisService {
	return &analysisService{app: a}
}

func (s *analysisService) Analysis(ctx context.Context) (*treemap.Node, error) {
	snap, err := s.app.Analysis(ctx)
	if err != nil {
		return nil, err
	}
	return snap.Tree, nil
}

func (s *analysisService) Refresh(ctx context.Context) (*treemap.Node, error) {
	snap, err := s.app.Refresh(ctx)
	if err != nil {
		return nil, err
	}
	return snap.Tree, nil
}

func (s *analysisService) FileContent(ctx context.Context, path string) ([]byte, error) {
	return s.app.FileContent(ctx, path)
}

func (s *analysisService) Overlay(ctx context.Context, req ports.OverlayRequest) (*ports.OverlayResult, error) {
	return s.app.Overlay(ctx, req)
}

func (s *analysisService) ScopeGraph(ctx context.Context, req ports.ScopeGraphRequest) (*ports.ScopeGraphResult, error) {
	return s.app.ScopeGraph(ctx, req)
}

func (s *analysisService) Functions(ctx context.Context, path string) (*metrics.FileMetrics, error) {
	return s.app.Functions(ctx, path)
}

func (s *analysisService) Close(ctx context.Context) error {
	return s.app.Close(ctx)
}
