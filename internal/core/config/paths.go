package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

type ResolvedPaths struct {
	ProjectRoot string
	CachePath   string
}

// ResolvePaths anchors the config's relative paths at the project root.
func ResolvePaths(cfg *Config, cwd string) (ResolvedPaths, error) {
	if strings.TrimSpace(cwd) == "" {
		return ResolvedPaths{}, fmt.Errorf("cwd must not be empty")
	}

	root, err := DetectProjectRoot(append(append([]string(nil), cfg.Scan.Paths...), cwd))
	if err != nil {
		return ResolvedPaths{}, err
	}

	cachePath := strings.TrimSpace(cfg.Cache.Path)
	if cachePath != "" && !filepath.IsAbs(cachePath) {
		cachePath = filepath.Join(root, cachePath)
	}

	return ResolvedPaths{
		ProjectRoot: filepath.Clean(root),
		CachePath:   filepath.Clean(cachePath),
	}, nil
}

// DetectProjectRoot walks up from each candidate until a repository marker
// appears. Candidates are tried in order; the working directory is the
// fallback when nothing matches.
func DetectProjectRoot(candidates []string) (string, error) {
	markers := []string{
		".git",
		"steward.toml",
		"package.json",
		"tsconfig.json",
	}

	for _, candidate := range candidates {
		if strings.TrimSpace(candidate) == "" {
			continue
		}

		abs, err := filepath.Abs(candidate)
		if err != nil {
			continue
		}
		root := abs
		if info, err := os.Stat(abs); err == nil && !info.IsDir() {
			root = filepath.Dir(abs)
		}

		for {
			for _, marker := range markers {
				if _, err := os.Stat(filepath.Join(root, marker)); err == nil {
					return filepath.Clean(root), nil
				}
			}
			parent := filepath.Dir(root)
			if parent == root {
				break
			}
			root = parent
		}
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Clean(cwd), nil
}
