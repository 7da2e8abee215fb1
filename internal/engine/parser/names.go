// # internal/engine/parser/names.go
package parser

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
)

// SameNode reports whether two node handles refer to the same syntax node.
// The bindings allocate a fresh handle on every child access, so pointer
// comparison is meaningless; identity comes from the node id.
func SameNode(a, b *sitter.Node) bool {
	if a == nil || b == nil {
		return false
	}
	return a.Id() == b.Id()
}

// NodeName derives a display name for a declaration-shaped node. Named
// declarations use their own "name" field. Anonymous functions are named
// from their surrounding context with a fixed precedence: assigned variable,
// assignment target, object key, JSX attribute, then call position. Functions
// passed as call arguments get the callee name with a "(ƒ)" suffix, and
// immediately-invoked expressions become "IIFE(ƒ)". The walk stops at the
// first statement or scope boundary, so a nested callback never inherits a
// name from outside its own expression. Returns "" when nothing applies.
func NodeName(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	if name := node.ChildByFieldName("name"); name != nil {
		return nodeName(name, source)
	}

	child := node
	for parent := node.Parent(); parent != nil; parent = parent.Parent() {
		switch parent.Kind() {
		case "variable_declarator":
			if SameNode(parent.ChildByFieldName("value"), child) {
				return nodeName(parent.ChildByFieldName("name"), source)
			}
			return ""
		case "assignment_expression":
			if !SameNode(parent.ChildByFieldName("right"), child) {
				return ""
			}
			return assignTargetName(parent.ChildByFieldName("left"), source)
		case "pair":
			if SameNode(parent.ChildByFieldName("value"), child) {
				return nodeName(parent.ChildByFieldName("key"), source)
			}
			return ""
		case "jsx_attribute":
			return nodeName(parent.Child(0), source)
		case "call_expression":
			fn := parent.ChildByFieldName("function")
			if SameNode(fn, child) {
				return "IIFE(ƒ)"
			}
			if callee := calleeName(fn, source); callee != "" {
				return callee + "(ƒ)"
			}
			return ""
		case "parenthesized_expression", "arguments", "jsx_expression", "type_assertion", "as_expression", "satisfies_expression", "non_null_expression", "await_expression":
			child = parent
		default:
			return ""
		}
	}
	return ""
}

func assignTargetName(left *sitter.Node, source []byte) string {
	if left == nil {
		return ""
	}
	if left.Kind() == "member_expression" {
		return nodeName(left.ChildByFieldName("property"), source)
	}
	return nodeName(left, source)
}

func calleeName(fn *sitter.Node, source []byte) string {
	if fn == nil {
		return ""
	}
	switch fn.Kind() {
	case "identifier":
		return nodeName(fn, source)
	case "member_expression":
		return nodeName(fn.ChildByFieldName("property"), source)
	}
	return ""
}

func nodeName(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	start, end := node.StartByte(), node.EndByte()
	if start >= end || int(end) > len(source) {
		return ""
	}
	return string(source[start:end])
}
