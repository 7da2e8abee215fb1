// # internal/engine/scope/build.go
package scope

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"steward/internal/core/errors"
	"steward/internal/engine/parser"
)

// ImportClassifier tags import bindings with their resolution result. The
// engine only records the answer; how specifiers map to files is the
// resolver's business. A nil classifier marks every import external.
type ImportClassifier interface {
	Resolve(importingFile, specifier string) (internal bool, resolvedPath string)
}

// Build walks the syntax tree once and produces the scope tree with every
// declaration registered. The traversal carries an explicit scope stack;
// nothing is shared between calls, so Build is safe to run concurrently
// for different files.
func Build(path string, root *sitter.Node, source []byte, imports ImportClassifier) (*Tree, error) {
	tree := &Tree{Path: path, byNode: make(map[uintptr]int)}
	endLine := 1
	if root != nil {
		endLine = int(root.EndPosition().Row) + 1
	}
	rootIdx := tree.addScope(ScopeGlobal, RoleNone, -1, 1, endLine)
	tree.scopes[rootIdx].Name = "global"
	tree.scopes[rootIdx].Label = "global"
	if root == nil {
		return tree, nil
	}

	b := &builder{tree: tree, src: source, imports: imports}
	if err := b.walk(root, []int{rootIdx}); err != nil {
		return nil, err
	}
	return tree, nil
}

type builder struct {
	tree    *Tree
	src     []byte
	imports ImportClassifier
}

func (b *builder) walk(node *sitter.Node, stack []int) error {
	if node == nil {
		return nil
	}
	if len(stack) == 0 {
		return errors.New(errors.CodeInvariant, "scope stack underflow")
	}
	enclosing := stack[len(stack)-1]
	current := enclosing

	if cls := classifyNode(node); cls != classNone {
		idx := b.openScope(cls, node, enclosing)
		b.tree.byNode[node.Id()] = idx
		current = idx
	}

	b.register(node, enclosing, current)

	childStack := stack
	if current != enclosing {
		childStack = append(stack, current)
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		if err := b.walk(node.Child(i), childStack); err != nil {
			return err
		}
	}
	return nil
}

func (b *builder) openScope(cls nodeClass, node *sitter.Node, parent int) int {
	kind, role := cls.scopeKind()
	idx := b.tree.addScope(kind, role, parent,
		int(node.StartPosition().Row)+1, int(node.EndPosition().Row)+1)
	b.labelScope(idx, cls, node)
	return idx
}

func (b *builder) labelScope(idx int, cls nodeClass, node *sitter.Node) {
	s := b.tree.Scope(idx)
	switch cls {
	case classFunction:
		name := parser.NodeName(node, b.src)
		if name == "" {
			name = "(anonymous)"
		}
		s.Name, s.Label = name, name+" (function)"
	case classClass:
		name := parser.NodeName(node, b.src)
		if name == "" {
			name = "(anonymous)"
		}
		s.Name, s.Label = name, name+" (class)"
	case classObject:
		name := parser.NodeName(node, b.src)
		if name == "" {
			name = "object"
		}
		s.Name, s.Label = name, name
	case classElement:
		label := "<" + jsxTag(node, b.src) + ">"
		s.Name, s.Label = label, label
	case classLoop:
		word := loopWord(node.Kind())
		s.Name, s.Label = word, word
	case classConditional:
		s.Name, s.Label = "if", "if"
	case classCondition:
		s.Name, s.Label = "condition", "condition"
	case classThenBranch:
		s.Name, s.Label = "then", "then"
	case classElseBranch:
		s.Name, s.Label = "else", "else"
	case classSwitch:
		s.Name, s.Label = "switch", "switch"
	case classCase:
		s.Name, s.Label = "case", "case"
	case classCaseDefault:
		s.Name, s.Label = "default", "default"
	case classTryBody:
		s.Name, s.Label = "try", "try"
	case classCatch:
		s.Name, s.Label = "catch", "catch"
	case classFinally:
		s.Name, s.Label = "finally", "finally"
	default:
		s.Name, s.Label = "block", "block"
	}
}

// register records the bindings a node introduces. enclosing is the scope
// the node was encountered in, current the scope the node itself opened
// (identical when it opened none). Declaration names go to enclosing so a
// function or class name stays visible to siblings and recursive calls.
func (b *builder) register(node *sitter.Node, enclosing, current int) {
	switch node.Kind() {
	case "import_statement":
		b.registerImports(node)
	case "variable_declarator":
		name := node.ChildByFieldName("name")
		if name == nil {
			return
		}
		kind := BindLocal
		if isLoopInitializer(node) {
			kind = BindLoop
		}
		for _, ident := range collectPatternIdentifiers(name) {
			b.declare(ident, kind, current)
		}
	case "required_parameter", "optional_parameter", "rest_parameter":
		for _, ident := range collectPatternIdentifiers(parameterPattern(node)) {
			b.declare(ident, BindParameter, current)
		}
	case "identifier":
		// Single bare parameter of an arrow function: tile => ...
		if parent := node.Parent(); parent != nil && parent.Kind() == "arrow_function" &&
			parser.SameNode(parent.ChildByFieldName("parameter"), node) {
			b.declare(node, BindParameter, current)
		}
	case "catch_clause":
		if param := node.ChildByFieldName("parameter"); param != nil {
			for _, ident := range collectPatternIdentifiers(param) {
				b.declare(ident, BindCatch, current)
			}
		}
	case "function_declaration", "generator_function_declaration":
		if name := node.ChildByFieldName("name"); name != nil {
			b.declare(name, BindFunction, enclosing)
		}
	case "function_expression", "generator_function":
		// A named function expression is only visible inside itself.
		if name := node.ChildByFieldName("name"); name != nil {
			b.declare(name, BindFunction, current)
		}
	case "class_declaration", "abstract_class_declaration":
		if name := node.ChildByFieldName("name"); name != nil {
			b.declare(name, BindClass, enclosing)
		}
	case "class_expression":
		if name := node.ChildByFieldName("name"); name != nil {
			b.declare(name, BindClass, current)
		}
	case "enum_declaration":
		if name := node.ChildByFieldName("name"); name != nil {
			b.declare(name, BindLocal, enclosing)
		}
	case "for_in_statement":
		if !loopDeclaresBinding(node) {
			return
		}
		if left := node.ChildByFieldName("left"); left != nil {
			for _, ident := range collectPatternIdentifiers(left) {
				b.declare(ident, BindLoop, current)
			}
		}
	}
}

func (b *builder) declare(ident *sitter.Node, kind BindingKind, scopeIdx int) {
	name := nodeText(ident, b.src)
	if name == "" {
		return
	}
	s := b.tree.Scope(scopeIdx)
	if s == nil {
		return
	}
	s.declare(&Binding{
		Name:   name,
		Kind:   kind,
		Scope:  scopeIdx,
		Line:   int(ident.StartPosition().Row) + 1,
		Column: int(ident.StartPosition().Column),
	})
}

// registerImports handles default, namespace, and named import forms.
// Import bindings always live in the global scope and carry the source
// specifier plus the classifier's verdict. Type-only imports introduce no
// value bindings and are skipped entirely.
func (b *builder) registerImports(node *sitter.Node) {
	var clause *sitter.Node
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "type":
			if nodeText(child, b.src) == "type" {
				return
			}
		case "import_clause":
			clause = child
		}
	}
	if clause == nil {
		return
	}

	source := strings.Trim(nodeText(node.ChildByFieldName("source"), b.src), `'"`)
	internal, resolved := false, ""
	if b.imports != nil && source != "" {
		internal, resolved = b.imports.Resolve(b.tree.Path, source)
	}

	for i := uint(0); i < clause.ChildCount(); i++ {
		child := clause.Child(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "identifier":
			b.declareImport(child, source, internal, resolved)
		case "namespace_import":
			name := child.ChildByFieldName("name")
			if name == nil {
				for j := uint(0); j < child.ChildCount(); j++ {
					if c := child.Child(j); c != nil && c.Kind() == "identifier" {
						name = c
						break
					}
				}
			}
			if name != nil {
				b.declareImport(name, source, internal, resolved)
			}
		case "named_imports":
			b.registerNamedImports(child, source, internal, resolved)
		}
	}
}

func (b *builder) registerNamedImports(named *sitter.Node, source string, internal bool, resolved string) {
	for i := uint(0); i < named.ChildCount(); i++ {
		spec := named.Child(i)
		if spec == nil || spec.Kind() != "import_specifier" {
			continue
		}
		if specIsTypeOnly(spec, b.src) {
			continue
		}
		local := spec.ChildByFieldName("alias")
		if local == nil {
			local = spec.ChildByFieldName("name")
		}
		if local != nil {
			b.declareImport(local, source, internal, resolved)
		}
	}
}

func specIsTypeOnly(spec *sitter.Node, src []byte) bool {
	for i := uint(0); i < spec.ChildCount(); i++ {
		if c := spec.Child(i); c != nil && c.Kind() == "type" && nodeText(c, src) == "type" {
			return true
		}
	}
	return false
}

func (b *builder) declareImport(ident *sitter.Node, source string, internal bool, resolved string) {
	name := nodeText(ident, b.src)
	if name == "" {
		return
	}
	b.tree.scopes[0].declare(&Binding{
		Name:         name,
		Kind:         BindImport,
		Scope:        0,
		Line:         int(ident.StartPosition().Row) + 1,
		Column:       int(ident.StartPosition().Column),
		Source:       source,
		Internal:     internal,
		ResolvedPath: resolved,
	})
}

// collectPatternIdentifiers extracts the binding positions from a
// destructuring pattern (or a plain identifier). Property-name sides of
// renamed pairs and default-value expressions are not bindings and are
// never collected.
func collectPatternIdentifiers(node *sitter.Node) []*sitter.Node {
	var idents []*sitter.Node
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n == nil {
			return
		}
		switch n.Kind() {
		case "identifier", "shorthand_property_identifier", "shorthand_property_identifier_pattern":
			idents = append(idents, n)
			return
		case "pair_pattern":
			walk(n.ChildByFieldName("value"))
			return
		case "assignment_pattern", "object_assignment_pattern":
			walk(n.ChildByFieldName("left"))
			return
		case "member_expression", "subscript_expression", "call_expression", "property_identifier",
			"jsx_opening_element", "jsx_closing_element", "jsx_self_closing_element":
			return
		}
		for i := uint(0); i < n.ChildCount(); i++ {
			walk(n.Child(i))
		}
	}
	walk(node)
	return idents
}

func isLoopInitializer(declarator *sitter.Node) bool {
	parent := declarator.Parent()
	if parent == nil {
		return false
	}
	switch parent.Kind() {
	case "lexical_declaration", "variable_declaration":
	default:
		return false
	}
	grand := parent.Parent()
	return grand != nil && grand.Kind() == "for_statement" &&
		parser.SameNode(grand.ChildByFieldName("initializer"), parent)
}

func loopDeclaresBinding(forIn *sitter.Node) bool {
	for i := uint(0); i < forIn.ChildCount(); i++ {
		if c := forIn.Child(i); c != nil {
			switch c.Kind() {
			case "const", "let", "var":
				return true
			}
		}
	}
	return false
}

func jsxTag(node *sitter.Node, src []byte) string {
	switch node.Kind() {
	case "jsx_self_closing_element":
		return nodeText(node.ChildByFieldName("name"), src)
	case "jsx_element":
		if open := node.Child(0); open != nil && open.Kind() == "jsx_opening_element" {
			return nodeText(open.ChildByFieldName("name"), src)
		}
	}
	return ""
}

func nodeText(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	start, end := node.StartByte(), node.EndByte()
	if start >= end || int(end) > len(source) {
		return ""
	}
	return string(source[start:end])
}
