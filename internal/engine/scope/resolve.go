// # internal/engine/scope/resolve.go
package scope

import (
	sitter "github.com/tree-sitter/go-tree-sitter"

	"steward/internal/engine/parser"
)

// Resolve runs the second traversal over the syntax tree: every identifier
// occurrence that is not itself a declaration target, property name, or
// markup tag becomes a usage and is resolved against the finished scope
// chain. Usages come back in document order; a nil Binding marks a
// resolution miss, which is a result, not an error.
func Resolve(tree *Tree, root *sitter.Node, source []byte) []*Usage {
	if tree == nil || root == nil {
		return nil
	}
	r := &resolver{tree: tree, src: source, skip: make(map[uint]bool)}
	r.walk(root, 0)
	return r.usages
}

type resolver struct {
	tree   *Tree
	src    []byte
	usages []*Usage

	// Start bytes of identifiers that sit in binding position inside a
	// declaration pattern. Marked when the enclosing declaration node is
	// visited, which is always before its identifiers in the traversal.
	skip map[uint]bool
}

func (r *resolver) walk(node *sitter.Node, current int) {
	if node == nil {
		return
	}
	if idx, ok := r.tree.byNode[node.Id()]; ok {
		current = idx
	}

	r.markBindingPositions(node)

	switch node.Kind() {
	case "identifier", "shorthand_property_identifier":
		r.collect(node, current)
	}

	for i := uint(0); i < node.ChildCount(); i++ {
		r.walk(node.Child(i), current)
	}
}

func (r *resolver) markBindingPositions(node *sitter.Node) {
	switch node.Kind() {
	case "variable_declarator":
		r.markPattern(node.ChildByFieldName("name"))
	case "required_parameter", "optional_parameter", "rest_parameter":
		r.markPattern(parameterPattern(node))
	case "catch_clause":
		r.markPattern(node.ChildByFieldName("parameter"))
	case "for_in_statement":
		if loopDeclaresBinding(node) {
			r.markPattern(node.ChildByFieldName("left"))
		}
	}
}

func (r *resolver) markPattern(pattern *sitter.Node) {
	if pattern == nil {
		return
	}
	for _, ident := range collectPatternIdentifiers(pattern) {
		r.skip[ident.StartByte()] = true
	}
}

func (r *resolver) collect(node *sitter.Node, current int) {
	if r.skip[node.StartByte()] {
		return
	}
	if !isReferencePosition(node) {
		return
	}
	name := nodeText(node, r.src)
	if name == "" {
		return
	}
	r.usages = append(r.usages, &Usage{
		Name:     name,
		Scope:    current,
		Line:     int(node.StartPosition().Row) + 1,
		StartCol: int(node.StartPosition().Column),
		EndCol:   int(node.EndPosition().Column),
		AttrName: jsxAttributeName(node, r.src),
		Binding:  r.tree.Lookup(name, current),
	})
}

// isReferencePosition filters out occurrences that name something rather
// than read it: declaration names, import/export clause internals, markup
// tags, and namespace paths.
func isReferencePosition(node *sitter.Node) bool {
	parent := node.Parent()
	if parent == nil {
		return false
	}
	switch parent.Kind() {
	case "function_declaration", "function_expression",
		"generator_function", "generator_function_declaration",
		"class_declaration", "class_expression", "abstract_class_declaration",
		"enum_declaration":
		return !parser.SameNode(parent.ChildByFieldName("name"), node)
	case "arrow_function":
		return !parser.SameNode(parent.ChildByFieldName("parameter"), node)
	case "jsx_opening_element", "jsx_closing_element", "jsx_self_closing_element",
		"jsx_namespace_name":
		return false
	case "import_statement", "import_clause", "import_specifier", "namespace_import":
		return false
	case "export_specifier":
		// export { name as alias }: only the left side reads a binding.
		return parser.SameNode(parent.ChildByFieldName("name"), node)
	case "nested_identifier":
		return false
	case "break_statement", "continue_statement", "labeled_statement":
		return false
	}
	return true
}

// parameterPattern returns the binding side of a parameter node, leaving
// type annotations and default-value expressions out of it.
func parameterPattern(param *sitter.Node) *sitter.Node {
	if pattern := param.ChildByFieldName("pattern"); pattern != nil {
		return pattern
	}
	return param
}

// jsxAttributeName walks outward from a usage through expression nodes and
// returns the enclosing JSX attribute name, if any. The walk never crosses
// a scope boundary, so callback bodies inside an attribute do not pick up
// the attribute's name.
func jsxAttributeName(node *sitter.Node, src []byte) string {
	for p := node.Parent(); p != nil; p = p.Parent() {
		switch p.Kind() {
		case "jsx_attribute":
			return nodeText(p.Child(0), src)
		case "jsx_expression", "call_expression", "arguments",
			"member_expression", "subscript_expression",
			"binary_expression", "unary_expression", "ternary_expression",
			"parenthesized_expression", "non_null_expression",
			"template_string", "template_substitution":
			// keep climbing
		default:
			return ""
		}
	}
	return ""
}
