// # internal/engine/resolver/tsconfig.go
package resolver

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"steward/internal/shared/util"
)

var defaultTSConfigNames = []string{"tsconfig.json", "tsconfig.app.json", "tsconfig.base.json"}

// findTSConfig walks from dir toward the filesystem root and returns the
// first tsconfig variant it finds. Only the nearest one is consulted; a
// project with split configs is expected to chain them via extends, which
// baseUrl/paths loading does not follow.
func findTSConfig(dir string, names []string) string {
	for current := dir; ; {
		for _, name := range names {
			candidate := filepath.Join(current, name)
			if isFile(candidate) {
				return candidate
			}
		}
		parent := filepath.Dir(current)
		if parent == current {
			return ""
		}
		current = parent
	}
}

// loadTSConfigPaths reads baseUrl and paths from a tsconfig file. The file
// may carry comments; unreadable or malformed files yield an empty mapping
// with the config's directory as base.
func loadTSConfigPaths(path string) (string, map[string][]string) {
	dir := filepath.Dir(path)
	raw, err := os.ReadFile(path)
	if err != nil {
		return dir, nil
	}

	var data struct {
		CompilerOptions struct {
			BaseURL string         `json:"baseUrl"`
			Paths   map[string]any `json:"paths"`
		} `json:"compilerOptions"`
	}
	if err := json.Unmarshal(stripJSONComments(raw), &data); err != nil {
		return dir, nil
	}

	baseDir := dir
	if base := strings.TrimSpace(data.CompilerOptions.BaseURL); base != "" {
		baseDir = filepath.Join(dir, base)
	}

	paths := make(map[string][]string, len(data.CompilerOptions.Paths))
	for pattern, value := range data.CompilerOptions.Paths {
		switch v := value.(type) {
		case string:
			paths[pattern] = []string{v}
		case []any:
			var targets []string
			for _, entry := range v {
				if s, ok := entry.(string); ok {
					targets = append(targets, s)
				}
			}
			paths[pattern] = targets
		}
	}
	return baseDir, paths
}

// applyTSConfigPaths expands an import path through the paths mapping and
// returns filesystem candidates under baseDir. Patterns carry at most one
// star; targets without a star get the wildcard appended as a path segment.
// Patterns are applied in sorted order so candidate order is stable.
func applyTSConfigPaths(importPath, baseDir string, paths map[string][]string) []string {
	if len(paths) == 0 {
		return nil
	}

	var candidates []string
	for _, pattern := range util.SortedStringKeys(paths) {
		targets := paths[pattern]
		star := strings.Index(pattern, "*")
		if star < 0 {
			if importPath != pattern {
				continue
			}
			for _, target := range targets {
				candidates = append(candidates, filepath.Join(baseDir, target))
			}
			continue
		}

		prefix, suffix := pattern[:star], pattern[star+1:]
		if !strings.HasPrefix(importPath, prefix) || !strings.HasSuffix(importPath, suffix) {
			continue
		}
		wildcard := importPath[len(prefix) : len(importPath)-len(suffix)]
		for _, target := range targets {
			var expanded string
			switch tStar := strings.Index(target, "*"); {
			case tStar >= 0:
				expanded = target[:tStar] + wildcard + target[tStar+1:]
			case wildcard == "":
				expanded = target
			case strings.HasSuffix(target, "/") || strings.HasPrefix(wildcard, "/"):
				expanded = target + wildcard
			default:
				expanded = target + "/" + wildcard
			}
			candidates = append(candidates, filepath.Join(baseDir, expanded))
		}
	}
	return candidates
}

// stripJSONComments removes // and /* */ comments from JSONC so tsconfig
// files parse with the standard decoder. String contents, including escaped
// quotes, pass through untouched.
func stripJSONComments(src []byte) []byte {
	out := make([]byte, 0, len(src))
	var inString, inLine, inBlock bool
	var quote byte

	for i := 0; i < len(src); i++ {
		ch := src[i]
		var next byte
		if i+1 < len(src) {
			next = src[i+1]
		}

		switch {
		case inLine:
			if ch == '\n' {
				inLine = false
				out = append(out, ch)
			}
		case inBlock:
			if ch == '*' && next == '/' {
				inBlock = false
				i++
			}
		case inString:
			out = append(out, ch)
			switch ch {
			case '\\':
				if i+1 < len(src) {
					out = append(out, src[i+1])
					i++
				}
			case quote:
				inString = false
			}
		case ch == '\'' || ch == '"':
			inString = true
			quote = ch
			out = append(out, ch)
		case ch == '/' && next == '/':
			inLine = true
			i++
		case ch == '/' && next == '*':
			inBlock = true
			i++
		default:
			out = append(out, ch)
		}
	}
	return out
}
