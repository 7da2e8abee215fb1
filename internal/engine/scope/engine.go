// # internal/engine/scope/engine.go
package scope

import (
	"log/slog"
	"time"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"steward/internal/shared/observability"
)

// Analyze runs the full per-file pipeline: build the scope tree, register
// bindings, then resolve usages. The entry point is stateless; every call
// constructs its own structures, so concurrent calls for different files
// share nothing. The syntax tree must outlive the returned analysis only
// for the duration of this call.
func Analyze(path string, root *sitter.Node, source []byte, imports ImportClassifier) (*Analysis, error) {
	start := time.Now()
	tree, err := Build(path, root, source, imports)
	if err != nil {
		return nil, err
	}
	usages := Resolve(tree, root, source)
	observability.ScopeBuildDuration.Observe(time.Since(start).Seconds())

	resolved := 0
	for _, u := range usages {
		if u.Binding != nil {
			resolved++
		}
	}
	observability.UsagesResolvedTotal.Add(float64(resolved))
	observability.UnresolvedTotal.Add(float64(len(usages) - resolved))
	if unresolved := len(usages) - resolved; unresolved > 0 {
		slog.Debug("unresolved identifiers in file",
			"path", path,
			"unresolved", unresolved,
			"usages", len(usages))
	}

	return &Analysis{Path: path, Tree: tree, Usages: usages}, nil
}
