// # internal/core/app/analyze.go
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"sort"
	"sync"

	"steward/internal/core/errors"
	"steward/internal/data/cache"
	"steward/internal/engine/metrics"
	"steward/internal/engine/scope"
)

// AnalyzeFile produces metrics for one file, consulting the content-hash
// cache first. For languages the scope engine covers, the same parse also
// resolves identifiers so the unresolved count rides along with the
// metrics and survives caching.
func (a *App) AnalyzeFile(path string) (*metrics.FileMetrics, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(err, errors.CodeNotFound, "file not found")
		}
		return nil, err
	}

	hash := cache.HashContent(content)
	if a.Store != nil {
		if fm, ok, gerr := a.Store.GetFile(path, hash); gerr != nil {
			slog.Warn("cache lookup failed", "path", path, "error", gerr)
		} else if ok {
			return fm, nil
		}
	}

	src, err := a.Parser.Parse(path, content)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	fm, err := metrics.Analyze(src)
	if err != nil {
		return nil, err
	}

	if a.Parser.HasScopeRules(path) {
		analysis, aerr := scope.Analyze(path, src.Root(), src.Content, a.Resolver)
		if aerr != nil {
			slog.Debug("scope analysis failed", "path", path, "error", aerr)
		} else {
			for _, u := range analysis.Usages {
				if u.Binding == nil && !a.Builtins.IsBuiltin(u.Name) {
					fm.UnresolvedCount++
				}
			}
		}
	}

	if a.Store != nil {
		if perr := a.Store.PutFile(path, hash, fm); perr != nil {
			slog.Warn("cache write failed", "path", path, "error", perr)
		}
	}
	return fm, nil
}

// analyzeFiles fans the file list out to a bounded worker pool. Per-file
// failures are logged, collected as warnings, and skipped; the scan never
// fails because one file would not parse. Cancelling the context stops
// feeding new work.
func (a *App) analyzeFiles(ctx context.Context, files []string) (map[string]*metrics.FileMetrics, []string) {
	workers := a.Config.Scan.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(files) {
		workers = len(files)
	}
	if workers < 1 {
		workers = 1
	}

	jobs := make(chan string)
	results := make(map[string]*metrics.FileMetrics, len(files))
	var warnings []string
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				fm, err := a.AnalyzeFile(path)
				if err != nil {
					slog.Warn("analysis failed", "path", path, "error", err)
					mu.Lock()
					warnings = append(warnings, fmt.Sprintf("%s: %v", path, err))
					mu.Unlock()
					continue
				}
				mu.Lock()
				results[path] = fm
				mu.Unlock()
			}
		}()
	}

feed:
	for _, path := range files {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- path:
		}
	}
	close(jobs)
	wg.Wait()
	sort.Strings(warnings)
	return results, warnings
}
