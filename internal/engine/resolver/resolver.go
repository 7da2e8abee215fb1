// # internal/engine/resolver/resolver.go
package resolver

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// ModuleResolver classifies import specifiers against the project on disk.
// Relative specifiers are always internal, even when the target file is
// missing; bare specifiers are internal only when a tsconfig path mapping
// lands on an existing module. Everything else is an external package.
// Verdicts are cached per importing directory, so repeated analysis of a
// large tree does not re-walk tsconfig chains.
type ModuleResolver struct {
	// tsconfigOverride pins the tsconfig file instead of discovering the
	// nearest one above the importing file. Empty means discover.
	tsconfigOverride string
	tsconfigNames    []string

	mu    sync.RWMutex
	cache map[string]verdict
}

type verdict struct {
	internal bool
	path     string
}

func NewModuleResolver(tsconfigOverride string, tsconfigNames ...string) *ModuleResolver {
	names := tsconfigNames
	if len(names) == 0 {
		names = defaultTSConfigNames
	}
	return &ModuleResolver{
		tsconfigOverride: tsconfigOverride,
		tsconfigNames:    names,
		cache:            make(map[string]verdict),
	}
}

// Resolve reports whether the specifier points inside the project and, when
// it does and the module exists, the resolved file path.
func (r *ModuleResolver) Resolve(importingFile, specifier string) (bool, string) {
	dir := filepath.Dir(importingFile)
	key := dir + "\x00" + specifier

	r.mu.RLock()
	v, ok := r.cache[key]
	r.mu.RUnlock()
	if ok {
		return v.internal, v.path
	}

	v = r.classify(dir, specifier)

	r.mu.Lock()
	r.cache[key] = v
	r.mu.Unlock()
	return v.internal, v.path
}

// Invalidate drops all cached verdicts. The watcher calls this when a
// tsconfig or module file changes on disk.
func (r *ModuleResolver) Invalidate() {
	r.mu.Lock()
	r.cache = make(map[string]verdict)
	r.mu.Unlock()
}

// AffectsResolution reports whether a change to the named file can alter
// module resolution, meaning cached verdicts should be invalidated.
func (r *ModuleResolver) AffectsResolution(path string) bool {
	base := filepath.Base(path)
	for _, name := range r.tsconfigNames {
		if base == name {
			return true
		}
	}
	return false
}

func (r *ModuleResolver) classify(dir, specifier string) verdict {
	if strings.HasPrefix(specifier, ".") {
		return verdict{internal: true, path: resolveModuleFile(filepath.Join(dir, specifier))}
	}

	tsconfig := r.tsconfigOverride
	if tsconfig == "" {
		tsconfig = findTSConfig(dir, r.tsconfigNames)
	}
	if tsconfig == "" {
		return verdict{}
	}
	baseDir, paths := loadTSConfigPaths(tsconfig)
	for _, candidate := range applyTSConfigPaths(specifier, baseDir, paths) {
		if resolved := resolveModuleFile(candidate); resolved != "" {
			return verdict{internal: true, path: resolved}
		}
	}
	return verdict{}
}

var moduleSuffixes = []string{".ts", ".tsx", ".d.ts"}

var indexNames = []string{"index.ts", "index.tsx"}

// assetExtensions are importable non-module files. They never resolve to a
// TypeScript module, so probing stops early for them.
var assetExtensions = map[string]bool{
	".css": true, ".scss": true, ".sass": true, ".less": true, ".styl": true,
	".json": true, ".png": true, ".jpg": true, ".jpeg": true, ".gif": true,
	".svg": true, ".ico": true, ".webp": true, ".bmp": true, ".avif": true,
	".md": true, ".txt": true,
}

// resolveModuleFile probes a specifier candidate the way the TypeScript
// loader does: the exact path, then the module suffixes, then a package
// index. Candidates that already carry an extension still get the module
// suffixes appended, which covers names like utils.helpers.ts.
func resolveModuleFile(candidate string) string {
	candidate = filepath.Clean(candidate)
	if isFile(candidate) {
		return candidate
	}

	ext := filepath.Ext(candidate)
	if ext == "" {
		for _, suffix := range moduleSuffixes {
			if p := candidate + suffix; isFile(p) {
				return p
			}
		}
		for _, name := range indexNames {
			if p := filepath.Join(candidate, name); isFile(p) {
				return p
			}
		}
		return ""
	}

	if assetExtensions[strings.ToLower(ext)] {
		return ""
	}
	for _, suffix := range moduleSuffixes {
		if p := candidate + suffix; isFile(p) {
			return p
		}
	}
	return ""
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
