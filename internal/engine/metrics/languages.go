// # internal/engine/metrics/languages.go
package metrics

// languageRules maps one grammar's node vocabulary onto the extraction
// model. functionKinds open function entries, containerKinds open the rest.
// decisionKinds add a cyclomatic branch each; logicalKinds are the binary
// nodes whose operator field is tested against logicalOps. blockNames name
// entries by construct instead of identifier.
type languageRules struct {
	functionKinds  map[string]bool
	containerKinds map[string]string
	blockNames     map[string]string
	nameFields     []string
	decisionKinds  map[string]bool
	logicalKinds   map[string]bool
	logicalOps     map[string]bool
	nestingKinds   map[string]bool
	commentKinds   map[string]bool
	importKinds    map[string]bool
	classKinds     map[string]bool
	paramKinds     map[string]bool
}

var languageTable = map[string]*languageRules{
	"typescript": typescriptRules,
	"tsx":        typescriptRules,
	"javascript": javascriptRules,
	"python":     pythonRules,
	"go":         goRules,
	"java":       javaRules,
	"rust":       rustRules,
	"css":        cssRules,
	"html":       htmlRules,
}

var typescriptRules = &languageRules{
	functionKinds: set(
		"function_declaration", "function_expression", "function",
		"arrow_function", "method_definition",
		"generator_function", "generator_function_declaration",
	),
	containerKinds: map[string]string{
		"class_declaration":          KindClass,
		"class_expression":           KindClass,
		"abstract_class_declaration": KindClass,
		"interface_declaration":      KindInterface,
		"type_alias_declaration":     KindType,
		"enum_declaration":           KindEnum,
		"object":                     KindObject,
	},
	nameFields: []string{"name"},
	decisionKinds: set(
		"if_statement", "for_statement", "for_in_statement",
		"while_statement", "do_statement", "catch_clause",
		"ternary_expression", "switch_case",
	),
	logicalKinds: set("binary_expression"),
	logicalOps:   set("&&", "||", "??"),
	nestingKinds: set(
		"if_statement", "for_statement", "for_in_statement",
		"while_statement", "do_statement", "switch_statement", "try_statement",
	),
	commentKinds: set("comment"),
	importKinds:  set("import_statement"),
	classKinds:   set("class_declaration", "abstract_class_declaration", "class_expression"),
	paramKinds:   set("required_parameter", "optional_parameter", "rest_parameter"),
}

var javascriptRules = &languageRules{
	functionKinds: set(
		"function_declaration", "function_expression", "function",
		"arrow_function", "method_definition",
		"generator_function", "generator_function_declaration",
	),
	containerKinds: map[string]string{
		"class_declaration": KindClass,
		"class_expression":  KindClass,
		"object":            KindObject,
	},
	nameFields: []string{"name"},
	decisionKinds: set(
		"if_statement", "for_statement", "for_in_statement",
		"while_statement", "do_statement", "catch_clause",
		"ternary_expression", "switch_case",
	),
	logicalKinds: set("binary_expression"),
	logicalOps:   set("&&", "||", "??"),
	nestingKinds: set(
		"if_statement", "for_statement", "for_in_statement",
		"while_statement", "do_statement", "switch_statement", "try_statement",
	),
	commentKinds: set("comment"),
	importKinds:  set("import_statement"),
	classKinds:   set("class_declaration", "class_expression"),
	paramKinds: set(
		"identifier", "object_pattern", "array_pattern",
		"assignment_pattern", "rest_pattern",
	),
}

var pythonRules = &languageRules{
	functionKinds: set("function_definition", "async_function_definition", "lambda"),
	containerKinds: map[string]string{
		"class_definition": KindClass,
		"if_statement":     KindBlock,
		"for_statement":    KindBlock,
		"while_statement":  KindBlock,
		"try_statement":    KindBlock,
		"with_statement":   KindBlock,
		"match_statement":  KindBlock,
	},
	blockNames: map[string]string{
		"lambda":          "(lambda)",
		"if_statement":    "(if)",
		"for_statement":   "(for)",
		"while_statement": "(while)",
		"try_statement":   "(try)",
		"with_statement":  "(with)",
		"match_statement": "(match)",
	},
	nameFields: []string{"name"},
	decisionKinds: set(
		"if_statement", "for_statement", "while_statement",
		"except_clause", "with_statement", "match_statement",
		"try_statement", "case_pattern",
	),
	logicalKinds: set("boolean_operator"),
	logicalOps:   set("and", "or"),
	nestingKinds: set(
		"if_statement", "for_statement", "while_statement",
		"try_statement", "with_statement", "match_statement",
	),
	commentKinds: set("comment"),
	importKinds:  set("import_statement", "import_from_statement"),
	classKinds:   set("class_definition"),
	paramKinds: set(
		"identifier", "typed_parameter", "default_parameter",
		"typed_default_parameter", "list_splat_pattern", "dictionary_splat_pattern",
	),
}

var goRules = &languageRules{
	functionKinds: set("function_declaration", "method_declaration", "func_literal"),
	nameFields:    []string{"name"},
	decisionKinds: set(
		"if_statement", "for_statement",
		"expression_case", "type_case", "communication_case",
	),
	logicalKinds: set("binary_expression"),
	logicalOps:   set("&&", "||"),
	nestingKinds: set(
		"if_statement", "for_statement",
		"expression_switch_statement", "type_switch_statement", "select_statement",
	),
	commentKinds: set("comment"),
	importKinds:  set("import_declaration"),
	classKinds:   set("type_spec"),
	paramKinds:   set("parameter_declaration", "variadic_parameter_declaration"),
}

var javaRules = &languageRules{
	functionKinds: set("method_declaration", "constructor_declaration", "lambda_expression"),
	containerKinds: map[string]string{
		"class_declaration":     KindClass,
		"interface_declaration": KindInterface,
		"enum_declaration":      KindEnum,
		"record_declaration":    KindClass,
	},
	nameFields: []string{"name"},
	decisionKinds: set(
		"if_statement", "for_statement", "enhanced_for_statement",
		"while_statement", "do_statement", "catch_clause",
		"ternary_expression", "switch_label",
	),
	logicalKinds: set("binary_expression"),
	logicalOps:   set("&&", "||"),
	nestingKinds: set(
		"if_statement", "for_statement", "enhanced_for_statement",
		"while_statement", "do_statement", "switch_expression", "try_statement",
	),
	commentKinds: set("line_comment", "block_comment"),
	importKinds:  set("import_declaration"),
	classKinds: set(
		"class_declaration", "interface_declaration",
		"enum_declaration", "record_declaration",
	),
	paramKinds: set("formal_parameter", "spread_parameter", "identifier"),
}

var rustRules = &languageRules{
	functionKinds: set("function_item", "closure_expression"),
	containerKinds: map[string]string{
		"impl_item":  KindClass,
		"trait_item": KindInterface,
	},
	nameFields: []string{"name", "type"},
	decisionKinds: set(
		"if_expression", "while_expression", "for_expression",
		"loop_expression", "match_arm",
	),
	logicalKinds: set("binary_expression"),
	logicalOps:   set("&&", "||"),
	nestingKinds: set(
		"if_expression", "while_expression", "for_expression",
		"loop_expression", "match_expression",
	),
	commentKinds: set("line_comment", "block_comment"),
	importKinds:  set("use_declaration"),
	classKinds:   set("struct_item", "enum_item", "trait_item"),
	paramKinds:   set("parameter", "self_parameter", "identifier"),
}

var cssRules = &languageRules{
	containerKinds: map[string]string{"rule_set": KindRule},
	commentKinds:   set("comment"),
	importKinds:    set("import_statement"),
}

var htmlRules = &languageRules{
	nestingKinds: set("element"),
	commentKinds: set("comment"),
}

func set(kinds ...string) map[string]bool {
	m := make(map[string]bool, len(kinds))
	for _, kind := range kinds {
		m[kind] = true
	}
	return m
}
