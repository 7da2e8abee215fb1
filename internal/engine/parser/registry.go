package parser

import (
	"fmt"
	"strings"
)

type LanguageSpec struct {
	Name             string
	Extensions       []string
	TestFileSuffixes []string
	// ScopeRules marks languages the scope engine can analyze. Everything
	// else is parsed for metrics only.
	ScopeRules bool
	Enabled    bool
}

func DefaultLanguageRegistry() map[string]LanguageSpec {
	return map[string]LanguageSpec{
		"typescript": {
			Name:             "typescript",
			Extensions:       []string{".ts", ".mts", ".cts"},
			TestFileSuffixes: []string{".test.ts", ".spec.ts"},
			ScopeRules:       true,
			Enabled:          true,
		},
		"tsx": {
			Name:             "tsx",
			Extensions:       []string{".tsx"},
			TestFileSuffixes: []string{".test.tsx", ".spec.tsx"},
			ScopeRules:       true,
			Enabled:          true,
		},
		"javascript": {
			Name:             "javascript",
			Extensions:       []string{".js", ".jsx", ".mjs", ".cjs"},
			TestFileSuffixes: []string{".test.js", ".spec.js"},
			Enabled:          true,
		},
		"python": {
			Name:             "python",
			Extensions:       []string{".py"},
			TestFileSuffixes: []string{"_test.py"},
			Enabled:          true,
		},
		"go": {
			Name:             "go",
			Extensions:       []string{".go"},
			TestFileSuffixes: []string{"_test.go"},
			Enabled:          true,
		},
		"java": {
			Name:       "java",
			Extensions: []string{".java"},
			Enabled:    true,
		},
		"rust": {
			Name:       "rust",
			Extensions: []string{".rs"},
			Enabled:    true,
		},
		"css": {
			Name:       "css",
			Extensions: []string{".css", ".scss"},
			Enabled:    true,
		},
		"html": {
			Name:       "html",
			Extensions: []string{".html", ".htm"},
			Enabled:    true,
		},
	}
}

// BuildLanguageRegistry applies optional per-language overrides on top of the
// defaults. Unknown language keys are rejected so typos do not silently
// disable analysis.
func BuildLanguageRegistry(overrides map[string]LanguageOverride) (map[string]LanguageSpec, error) {
	registry := DefaultLanguageRegistry()
	for langID, override := range overrides {
		key := strings.ToLower(strings.TrimSpace(langID))
		spec, ok := registry[key]
		if !ok {
			return nil, fmt.Errorf("unknown language %q in overrides", langID)
		}
		if override.Enabled != nil {
			spec.Enabled = *override.Enabled
		}
		if len(override.Extensions) > 0 {
			spec.Extensions = normalizeExtensions(override.Extensions)
		}
		registry[key] = spec
	}
	return registry, nil
}

type LanguageOverride struct {
	Enabled    *bool
	Extensions []string
}

func normalizeExtensions(extensions []string) []string {
	out := make([]string, 0, len(extensions))
	for _, ext := range extensions {
		trimmed := strings.ToLower(strings.TrimSpace(ext))
		if trimmed == "" {
			continue
		}
		if !strings.HasPrefix(trimmed, ".") {
			trimmed = "." + trimmed
		}
		out = append(out, trimmed)
	}
	return out
}

func cloneLanguageRegistry(registry map[string]LanguageSpec) map[string]LanguageSpec {
	out := make(map[string]LanguageSpec, len(registry))
	for id, spec := range registry {
		copied := spec
		copied.Extensions = append([]string(nil), spec.Extensions...)
		copied.TestFileSuffixes = append([]string(nil), spec.TestFileSuffixes...)
		out[id] = copied
	}
	return out
}
