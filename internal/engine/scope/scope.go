// # internal/engine/scope/scope.go
//
// Package scope builds a lexical scope tree for one parsed source file,
// registers every declaration as a binding, resolves identifier occurrences
// against the scope chain, and classifies resolved references relative to a
// caller-supplied focus region. Everything is computed fresh per file and
// per request; the package keeps no state between calls.
package scope

import "fmt"

// ScopeKind is the structural kind of a lexical region.
type ScopeKind uint8

const (
	ScopeGlobal ScopeKind = iota
	ScopeFunction
	ScopeClass
	ScopeBlock
	ScopeCatch
	ScopeLoop
	ScopeConditional
	ScopeConditionExpr
	ScopeSwitch
	ScopeCase
	ScopeTryBlock
	ScopeCatchBlock
	ScopeFinallyBlock
	ScopeStructural
)

func (k ScopeKind) String() string {
	switch k {
	case ScopeGlobal:
		return "global"
	case ScopeFunction:
		return "function"
	case ScopeClass:
		return "class"
	case ScopeBlock:
		return "block"
	case ScopeCatch:
		return "catch"
	case ScopeLoop:
		return "loop"
	case ScopeConditional:
		return "if"
	case ScopeConditionExpr:
		return "condition"
	case ScopeSwitch:
		return "switch"
	case ScopeCase:
		return "case"
	case ScopeTryBlock:
		return "try"
	case ScopeCatchBlock:
		return "catch_block"
	case ScopeFinallyBlock:
		return "finally"
	case ScopeStructural:
		return "element"
	}
	return "unknown"
}

// ScopeRole refines a kind where one kind covers several visual flavors:
// the then/else branches of a conditional and the markup/object flavors of
// a structural element.
type ScopeRole uint8

const (
	RoleNone ScopeRole = iota
	RoleThen
	RoleElse
	RoleJSX
	RoleObject
)

// BindingKind is the declaration form that introduced a name.
type BindingKind uint8

const (
	BindLocal BindingKind = iota
	BindParameter
	BindFunction
	BindClass
	BindImport
	BindLoop
	BindCatch
)

func (k BindingKind) String() string {
	switch k {
	case BindLocal:
		return "local"
	case BindParameter:
		return "parameter"
	case BindFunction:
		return "function"
	case BindClass:
		return "class"
	case BindImport:
		return "import"
	case BindLoop:
		return "loop"
	case BindCatch:
		return "catch"
	}
	return "local"
}

// word is the short kind label used on graph variable nodes, e.g.
// "count (local)" or "props (param)". Loop bindings read as locals and
// catch bindings as params there; the distinction only matters to the
// classifier.
func (k BindingKind) word() string {
	switch k {
	case BindParameter, BindCatch:
		return "param"
	case BindFunction:
		return "function"
	case BindClass:
		return "class"
	case BindImport:
		return "import"
	}
	return "local"
}

// Binding is a declared name. Immutable once registered. Line is 1-based,
// Column is a 0-based column offset as reported by the parser.
type Binding struct {
	Name   string
	Kind   BindingKind
	Scope  int
	Line   int
	Column int

	// Import bindings only.
	Source       string
	Internal     bool
	ResolvedPath string
}

// Usage is one non-declaration occurrence of a name. Columns are 0-based
// with EndCol exclusive. Binding is nil when resolution found no match.
// AttrName carries the enclosing JSX attribute name when the occurrence
// sits inside an attribute value.
type Usage struct {
	Name     string
	Scope    int
	Line     int
	StartCol int
	EndCol   int
	AttrName string
	Binding  *Binding
}

// Scope is one lexical region. Parent and Children are arena indices into
// the owning Tree; Parent is -1 for the root. Children are kept in document
// order. Name is the bare derived name ("Outer", "onClick", "<div>"); Label
// is the display form used by the graph view ("Outer (function)").
type Scope struct {
	ID        string
	Kind      ScopeKind
	Role      ScopeRole
	Parent    int
	Children  []int
	StartLine int
	EndLine   int
	Name      string
	Label     string

	// Symbol table. Re-declaring a name in the same scope replaces the
	// binding but keeps its original position in declaration order.
	Bindings map[string]*Binding
	order    []string
}

func (s *Scope) declare(b *Binding) {
	if b == nil || b.Name == "" {
		return
	}
	if _, seen := s.Bindings[b.Name]; !seen {
		s.order = append(s.order, b.Name)
	}
	s.Bindings[b.Name] = b
}

// Declared returns the scope's bindings in declaration order.
func (s *Scope) Declared() []*Binding {
	out := make([]*Binding, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.Bindings[name])
	}
	return out
}

// Tree is the arena-backed scope tree for one file. Scopes are stored in a
// flat slice in creation (pre-)order; index 0 is always the global scope.
type Tree struct {
	Path   string
	scopes []Scope

	// Syntax-node id -> scope index, for the resolver pass.
	byNode map[uintptr]int
}

func (t *Tree) Len() int { return len(t.scopes) }

// Scope returns the scope at an arena index. The pointer stays valid for
// the lifetime of the tree; the arena is never grown after building.
func (t *Tree) Scope(i int) *Scope {
	if i < 0 || i >= len(t.scopes) {
		return nil
	}
	return &t.scopes[i]
}

func (t *Tree) Root() *Scope { return t.Scope(0) }

// Chain returns the ancestor chain of a scope, starting at the scope itself
// and ending at the root.
func (t *Tree) Chain(i int) []int {
	var chain []int
	for cur := i; cur >= 0 && cur < len(t.scopes); cur = t.scopes[cur].Parent {
		chain = append(chain, cur)
	}
	return chain
}

// HasAncestor reports whether anc appears strictly above i in the tree.
func (t *Tree) HasAncestor(i, anc int) bool {
	if i < 0 || i >= len(t.scopes) {
		return false
	}
	for cur := t.scopes[i].Parent; cur >= 0; cur = t.scopes[cur].Parent {
		if cur == anc {
			return true
		}
	}
	return false
}

// Lookup resolves a name by walking the scope chain from a starting scope
// up to the root. The first symbol-table hit wins; nil means unresolved.
func (t *Tree) Lookup(name string, from int) *Binding {
	for cur := from; cur >= 0 && cur < len(t.scopes); cur = t.scopes[cur].Parent {
		if b, ok := t.scopes[cur].Bindings[name]; ok {
			return b
		}
	}
	return nil
}

func (t *Tree) addScope(kind ScopeKind, role ScopeRole, parent, startLine, endLine int) int {
	idx := len(t.scopes)
	t.scopes = append(t.scopes, Scope{
		ID:        fmt.Sprintf("%s:%d:%d:%d", kind, startLine, endLine, idx),
		Kind:      kind,
		Role:      role,
		Parent:    parent,
		StartLine: startLine,
		EndLine:   endLine,
		Bindings:  make(map[string]*Binding),
	})
	if parent >= 0 {
		t.scopes[parent].Children = append(t.scopes[parent].Children, idx)
	}
	return idx
}

// Analysis is the resolved result for one file: the scope tree plus every
// collected usage in document order. It is the input to the overlay, graph,
// and focus-tree projections.
type Analysis struct {
	Path   string
	Tree   *Tree
	Usages []*Usage
}
