// # internal/core/app/scanner.go
package app

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"
)

// uniqueScanRoots normalizes the configured scan paths: cleaned, made
// absolute, deduplicated, sorted. An empty list falls back to the
// working directory.
func uniqueScanRoots(paths []string) []string {
	seen := make(map[string]bool)
	roots := make([]string, 0, len(paths))
	for _, p := range paths {
		if strings.TrimSpace(p) == "" {
			continue
		}
		clean := filepath.Clean(p)
		if abs, err := filepath.Abs(clean); err == nil {
			clean = abs
		}
		if seen[clean] {
			continue
		}
		seen[clean] = true
		roots = append(roots, clean)
	}
	sort.Strings(roots)
	if len(roots) == 0 {
		if cwd, err := os.Getwd(); err == nil {
			roots = append(roots, cwd)
		} else {
			roots = append(roots, ".")
		}
	}
	return roots
}

// compileGlobs compiles exclude patterns, logging and dropping the ones
// that do not parse so a single bad pattern cannot disable the scan.
func compileGlobs(patterns []string, label string) []glob.Glob {
	globs := make([]glob.Glob, 0, len(patterns))
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern)
		if err != nil {
			slog.Warn("invalid exclude pattern",
				"kind", label,
				"pattern", pattern,
				"error", err)
			continue
		}
		globs = append(globs, g)
	}
	return globs
}

func matchAny(globs []glob.Glob, name string) bool {
	for _, g := range globs {
		if g.Match(name) {
			return true
		}
	}
	return false
}

// ScanDirectories walks the given roots and returns every file the
// parser supports, minus excluded directories, excluded file patterns,
// test files when disabled, and files over the configured size limit.
// Unreadable paths are logged and skipped; the walk itself never fails
// because of one entry.
func (a *App) ScanDirectories(roots []string) ([]string, error) {
	dirGlobs := compileGlobs(a.Config.Scan.Exclude.Dirs, "dir")
	fileGlobs := compileGlobs(a.Config.Scan.Exclude.Files, "file")
	maxSize := int64(a.Config.Limits.MaxFileSizeKB) * 1024

	var files []string
	seen := make(map[string]bool)
	for _, root := range roots {
		walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				slog.Warn("scan cannot enter path", "path", path, "error", err)
				if d != nil && d.IsDir() {
					return fs.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				// A root named like an excluded dir was asked for explicitly.
				if path != root && matchAny(dirGlobs, d.Name()) {
					return fs.SkipDir
				}
				return nil
			}
			if !a.Parser.IsSupportedPath(path) {
				return nil
			}
			if !a.IncludeTests && a.Parser.IsTestFile(path) {
				return nil
			}
			if matchAny(fileGlobs, d.Name()) {
				return nil
			}
			if maxSize > 0 {
				if info, ierr := d.Info(); ierr == nil && info.Size() > maxSize {
					slog.Debug("skipping oversized file", "path", path, "size", info.Size())
					return nil
				}
			}
			if !seen[path] {
				seen[path] = true
				files = append(files, path)
			}
			return nil
		})
		if walkErr != nil {
			return nil, walkErr
		}
	}
	sort.Strings(files)
	return files, nil
}

// commonRoot returns the deepest directory containing every root. With a
// single root it is that root itself.
func commonRoot(roots []string) string {
	if len(roots) == 0 {
		return "."
	}
	common := roots[0]
	for _, root := range roots[1:] {
		for !isUnder(common, root) {
			parent := filepath.Dir(common)
			if parent == common {
				return common
			}
			common = parent
		}
	}
	return common
}

// isUnder reports whether path equals dir or lives inside it.
func isUnder(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	return err == nil && (rel == "." || filepath.IsLocal(rel))
}
