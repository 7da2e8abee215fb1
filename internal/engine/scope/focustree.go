// # internal/engine/scope/focustree.go
package scope

// FocusBinding is a name declared directly in a focus-tree scope.
type FocusBinding struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
	Line int    `json:"line"`
}

// FocusCapture is a name read in a scope but declared above it. Builtins
// and module-level bindings are not captures; only genuine closure state
// appears here. Line is the declaration line.
type FocusCapture struct {
	Name string `json:"name"`
	Line int    `json:"line"`
}

// FocusNode is one scope in the focus projection.
type FocusNode struct {
	Kind      string         `json:"kind"`
	Name      string         `json:"name"`
	StartLine int            `json:"startLine"`
	EndLine   int            `json:"endLine"`
	Declared  []FocusBinding `json:"declared"`
	Captured  []FocusCapture `json:"captured"`
	Children  []*FocusNode   `json:"children"`
}

// FocusTree is the scope subtree of the focus function, reduced to what a
// reader cares about: declarations, captures, and named child scopes.
type FocusTree struct {
	Root *FocusNode `json:"root"`
}

// BuildFocusTree projects the subtree rooted at the focus scope for the
// given line range. Scopes with nothing declared, nothing captured, and no
// surviving children are pruned; transparent layers (blocks, markup
// elements, branches) with content but no symbols of their own collapse
// into their children, so only function and class boundaries always keep
// their own level. The root is never pruned.
func BuildFocusTree(a *Analysis, focusStart, focusEnd int) *FocusTree {
	fb := &focusBuilder{
		tree:          a.Tree,
		usagesByScope: make(map[int][]*Usage),
	}
	for _, u := range a.Usages {
		fb.usagesByScope[u.Scope] = append(fb.usagesByScope[u.Scope], u)
	}
	focus := FocusScope(a.Tree, focusStart, focusEnd)
	nodes := fb.build(focus, true)
	return &FocusTree{Root: nodes[0]}
}

type focusBuilder struct {
	tree          *Tree
	usagesByScope map[int][]*Usage
}

func (fb *focusBuilder) build(idx int, root bool) []*FocusNode {
	s := fb.tree.Scope(idx)
	node := &FocusNode{
		Kind:      graphType(s),
		Name:      s.Name,
		StartLine: s.StartLine,
		EndLine:   s.EndLine,
		Declared:  fb.declared(s),
		Captured:  fb.captured(idx),
		Children:  make([]*FocusNode, 0),
	}
	for _, child := range s.Children {
		node.Children = append(node.Children, fb.build(child, false)...)
	}
	if root {
		return []*FocusNode{node}
	}
	if len(node.Declared) == 0 && len(node.Captured) == 0 {
		if len(node.Children) == 0 {
			return nil
		}
		if s.Kind != ScopeFunction && s.Kind != ScopeClass {
			return node.Children
		}
	}
	return []*FocusNode{node}
}

func (fb *focusBuilder) declared(s *Scope) []FocusBinding {
	out := make([]FocusBinding, 0, len(s.Bindings))
	for _, b := range s.Declared() {
		out = append(out, FocusBinding{Name: b.Name, Kind: b.Kind.word(), Line: b.Line})
	}
	return out
}

func (fb *focusBuilder) captured(idx int) []FocusCapture {
	seen := make(map[string]bool)
	out := make([]FocusCapture, 0)
	for _, u := range fb.usagesByScope[idx] {
		b := u.Binding
		if b == nil || b.Scope == idx || b.Scope == 0 {
			continue
		}
		if seen[u.Name] {
			continue
		}
		seen[u.Name] = true
		out = append(out, FocusCapture{Name: u.Name, Line: b.Line})
	}
	return out
}
