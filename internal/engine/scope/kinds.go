// # internal/engine/scope/kinds.go
package scope

import (
	sitter "github.com/tree-sitter/go-tree-sitter"

	"steward/internal/engine/parser"
)

// nodeClass is the structural classification of a syntax node. Every node
// is classified exactly once per traversal and the result drives both scope
// opening and labeling; call sites never re-check raw kind strings.
type nodeClass uint8

const (
	classNone nodeClass = iota
	classFunction
	classClass
	classBlock
	classCatch
	classLoop
	classConditional
	classCondition
	classThenBranch
	classElseBranch
	classSwitch
	classCase
	classCaseDefault
	classTryBody
	classFinally
	classElement
	classObject
)

func (c nodeClass) scopeKind() (ScopeKind, ScopeRole) {
	switch c {
	case classFunction:
		return ScopeFunction, RoleNone
	case classClass:
		return ScopeClass, RoleNone
	case classBlock:
		return ScopeBlock, RoleNone
	case classCatch:
		return ScopeCatch, RoleNone
	case classLoop:
		return ScopeLoop, RoleNone
	case classConditional:
		return ScopeConditional, RoleNone
	case classCondition:
		return ScopeConditionExpr, RoleNone
	case classThenBranch:
		return ScopeConditional, RoleThen
	case classElseBranch:
		return ScopeConditional, RoleElse
	case classSwitch:
		return ScopeSwitch, RoleNone
	case classCase, classCaseDefault:
		return ScopeCase, RoleNone
	case classTryBody:
		return ScopeTryBlock, RoleNone
	case classFinally:
		return ScopeFinallyBlock, RoleNone
	case classElement:
		return ScopeStructural, RoleJSX
	case classObject:
		return ScopeStructural, RoleObject
	}
	return ScopeBlock, RoleNone
}

func isFunctionKind(kind string) bool {
	switch kind {
	case "function_declaration", "function_expression", "function",
		"arrow_function", "method_definition",
		"generator_function", "generator_function_declaration":
		return true
	}
	return false
}

// classifyNode decides whether a node opens a scope and which kind it gets.
// Block-shaped nodes that are merely the body of a construct that already
// opened a scope (function, catch, finally, loop, case) classify as none so
// the region is represented exactly once.
func classifyNode(node *sitter.Node) nodeClass {
	kind := node.Kind()
	if isFunctionKind(kind) {
		return classFunction
	}
	switch kind {
	case "class_declaration", "class_expression", "abstract_class_declaration":
		return classClass
	case "statement_block":
		parent := node.Parent()
		if parent == nil {
			return classBlock
		}
		pk := parent.Kind()
		if isFunctionKind(pk) {
			return classNone
		}
		switch pk {
		case "catch_clause", "finally_clause", "else_clause",
			"for_statement", "for_in_statement", "while_statement", "do_statement",
			"switch_case", "switch_default":
			return classNone
		case "if_statement":
			return classThenBranch
		case "try_statement":
			return classTryBody
		}
		return classBlock
	case "catch_clause":
		return classCatch
	case "finally_clause":
		return classFinally
	case "else_clause":
		return classElseBranch
	case "if_statement":
		return classConditional
	case "parenthesized_expression":
		if parent := node.Parent(); parent != nil && parent.Kind() == "if_statement" &&
			parser.SameNode(parent.ChildByFieldName("condition"), node) {
			return classCondition
		}
		return classNone
	case "for_statement", "for_in_statement", "while_statement", "do_statement":
		return classLoop
	case "switch_statement":
		return classSwitch
	case "switch_case":
		return classCase
	case "switch_default":
		return classCaseDefault
	case "jsx_element", "jsx_self_closing_element", "jsx_fragment":
		return classElement
	case "object":
		if objectHoldsFunctions(node) {
			return classObject
		}
		return classNone
	}
	return classNone
}

// objectHoldsFunctions reports whether an object literal directly contains
// a function-valued member. Only such literals become structural layers;
// plain data objects stay transparent.
func objectHoldsFunctions(node *sitter.Node) bool {
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "method_definition":
			return true
		case "pair":
			if value := child.ChildByFieldName("value"); value != nil && isFunctionKind(value.Kind()) {
				return true
			}
		}
	}
	return false
}

func loopWord(kind string) string {
	switch kind {
	case "while_statement":
		return "while"
	case "do_statement":
		return "do"
	}
	return "for"
}
