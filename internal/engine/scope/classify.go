// # internal/engine/scope/classify.go
package scope

import "fmt"

// Category is the classification of one usage relative to a focus scope.
type Category string

const (
	CategoryParam          Category = "param"
	CategoryLocal          Category = "local"
	CategoryCapture        Category = "capture"
	CategoryModule         Category = "module"
	CategoryImportInternal Category = "import-internal"
	CategoryImportExternal Category = "import-external"
	CategoryBuiltin        Category = "builtin"
	CategoryUnresolved     Category = "unresolved"
)

// BuiltinRegistry answers whether a free name is a platform global. The
// engine never computes this itself; it is supplied configuration.
type BuiltinRegistry interface {
	IsBuiltin(name string) bool
}

// FocusScope selects the smallest function scope whose span fully contains
// the given line range. Ties go to the earliest start line; when no
// function contains the range the global scope is the focus.
func FocusScope(tree *Tree, startLine, endLine int) int {
	best, bestSpan := 0, -1
	for i := 0; i < tree.Len(); i++ {
		s := tree.Scope(i)
		if s.Kind != ScopeFunction {
			continue
		}
		if s.StartLine > startLine || s.EndLine < endLine {
			continue
		}
		span := s.EndLine - s.StartLine
		if bestSpan < 0 || span < bestSpan ||
			(span == bestSpan && s.StartLine < tree.Scope(best).StartLine) {
			best, bestSpan = i, span
		}
	}
	return best
}

// Classify assigns a category, a deterministic symbol id, and a human
// tooltip to one usage. Parameters classify as param regardless of the
// focus scope; a binding owned by a strict ancestor of the focus becomes a
// capture; a binding that is neither ancestor nor descendant falls back to
// local.
func Classify(tree *Tree, u *Usage, focus int, builtins BuiltinRegistry) (Category, string, string) {
	b := u.Binding
	if b == nil {
		if builtins != nil && builtins.IsBuiltin(u.Name) {
			return CategoryBuiltin, "builtin:" + u.Name, "Builtin/global"
		}
		return CategoryUnresolved, "unresolved:" + u.Name, "Unresolved identifier"
	}

	if b.Kind == BindImport {
		id := fmt.Sprintf("imp:%s:%s:%s", tree.Path, b.Source, b.Name)
		if b.Internal {
			return CategoryImportInternal, id, "Import (internal): " + b.Source
		}
		return CategoryImportExternal, id, "Import (external): " + b.Source
	}

	id := fmt.Sprintf("def:%s:%d:%d:%s", tree.Path, b.Line, b.Column, b.Name)

	if b.Kind == BindParameter {
		return CategoryParam, id, "Parameter"
	}
	if b.Scope == 0 {
		return CategoryModule, id, fmt.Sprintf("Module scope (line %d)", b.Line)
	}
	if b.Scope == focus || tree.HasAncestor(b.Scope, focus) {
		return CategoryLocal, id, fmt.Sprintf("Local declaration (line %d)", b.Line)
	}
	if tree.HasAncestor(focus, b.Scope) {
		return CategoryCapture, id, fmt.Sprintf("Captured from outer scope (line %d)", b.Line)
	}
	return CategoryLocal, id, fmt.Sprintf("Local declaration (line %d)", b.Line)
}
