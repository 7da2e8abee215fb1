// # internal/engine/metrics/metrics.go

// Package metrics computes per-file size and complexity figures from a
// parsed syntax tree. Unlike the scope engine, which only understands the
// TypeScript flavors, this package covers every registered grammar through
// small per-language node tables.
package metrics

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"steward/internal/core/errors"
	"steward/internal/engine/parser"
)

// Entry kinds. Functions carry cyclomatic complexity; the rest are
// structural containers that exist so their member functions nest.
const (
	KindFunction  = "function"
	KindClass     = "class"
	KindInterface = "interface"
	KindType      = "type"
	KindEnum      = "enum"
	KindObject    = "object"
	KindBlock     = "block"
	KindRule      = "rule"
)

// FunctionMetrics is one extracted entry: a function, or a named container
// (class, interface, type alias, enum, function-holding object literal)
// with its member functions nested under Children. Line spans are 1-based
// and inclusive; NLOC is the raw span length.
type FunctionMetrics struct {
	Name         string             `json:"name"`
	Kind         string             `json:"kind"`
	StartLine    int                `json:"startLine"`
	EndLine      int                `json:"endLine"`
	NLOC         int                `json:"nloc"`
	Complexity   int                `json:"complexity"`
	ParamCount   int                `json:"paramCount"`
	MaxNesting   int                `json:"maxNesting"`
	CommentLines int                `json:"commentLines"`
	TodoCount    int                `json:"todoCount"`
	Children     []*FunctionMetrics `json:"children,omitempty"`
}

// FileMetrics aggregates one file. NLOC counts non-blank lines, so it can
// be smaller than the sum of entry spans. AvgComplexity and MaxComplexity
// cover function entries only, containers excluded. UnresolvedCount is
// filled by the scan pipeline for languages the scope engine covers; the
// analyzer itself leaves it zero.
type FileMetrics struct {
	Path            string             `json:"path"`
	Language        string             `json:"language"`
	NLOC            int                `json:"nloc"`
	CommentLines    int                `json:"commentLines"`
	CommentDensity  float64            `json:"commentDensity"`
	MaxNesting      int                `json:"maxNesting"`
	ImportCount     int                `json:"importCount"`
	ClassCount      int                `json:"classCount"`
	TodoCount       int                `json:"todoCount"`
	FunctionCount   int                `json:"functionCount"`
	AvgComplexity   float64            `json:"avgComplexity"`
	MaxComplexity   int                `json:"maxComplexity"`
	UnresolvedCount int                `json:"unresolvedCount"`
	Functions       []*FunctionMetrics `json:"functions"`
}

// Analyze extracts metrics from a parsed source file. Files in languages
// without a metrics table still get line counts; everything else stays
// zero. The returned tree of entries is in document order.
func Analyze(src *parser.Source) (*FileMetrics, error) {
	if src == nil || src.Root() == nil {
		return nil, errors.New(errors.CodeValidationError, "metrics: source has no parse tree")
	}
	fm := &FileMetrics{
		Path:     src.Path,
		Language: src.Language,
		NLOC:     countNonBlankLines(src.Content),
	}
	rules, ok := languageTable[src.Language]
	if !ok {
		return fm, nil
	}

	a := &analyzer{src: src.Content, rules: rules}
	fm.Functions = a.extract(src.Root(), false)
	fm.CommentLines, fm.TodoCount = a.commentCounts(src.Root())
	fm.MaxNesting = a.maxNesting(src.Root())
	a.countFileNodes(src.Root(), fm)
	if fm.NLOC > 0 {
		fm.CommentDensity = float64(fm.CommentLines) / float64(fm.NLOC)
	}

	sum := 0
	forEachEntry(fm.Functions, func(fn *FunctionMetrics) {
		if fn.Kind != KindFunction {
			return
		}
		fm.FunctionCount++
		sum += fn.Complexity
		if fn.Complexity > fm.MaxComplexity {
			fm.MaxComplexity = fn.Complexity
		}
	})
	if fm.FunctionCount > 0 {
		fm.AvgComplexity = float64(sum) / float64(fm.FunctionCount)
	}
	return fm, nil
}

// forEachEntry visits every entry in the tree in document order.
func forEachEntry(list []*FunctionMetrics, visit func(*FunctionMetrics)) {
	for _, fn := range list {
		visit(fn)
		forEachEntry(fn.Children, visit)
	}
}

type analyzer struct {
	src   []byte
	rules *languageRules
}

// extract walks the tree collecting entries. Nodes that open an entry
// become parents for everything extracted below them; all other nodes are
// transparent. insideFunction gates object-literal containers: an object
// assigned at module level is a structural tile of the file, but inside a
// function its members surface directly as the function's children.
func (a *analyzer) extract(node *sitter.Node, insideFunction bool) []*FunctionMetrics {
	var out []*FunctionMetrics
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		kind, ok := a.entryKind(child, insideFunction)
		if !ok {
			out = append(out, a.extract(child, insideFunction)...)
			continue
		}
		entry := a.entryMetrics(child, kind)
		entry.Children = a.extract(child, insideFunction || kind == KindFunction)
		out = append(out, entry)
	}
	return out
}

func (a *analyzer) entryKind(node *sitter.Node, insideFunction bool) (string, bool) {
	kind := node.Kind()
	if a.rules.functionKinds[kind] {
		return KindFunction, true
	}
	entry, ok := a.rules.containerKinds[kind]
	if !ok {
		return "", false
	}
	if entry == KindObject && (insideFunction || !holdsFunctionMember(node, a.rules.functionKinds)) {
		return "", false
	}
	return entry, true
}

func (a *analyzer) entryMetrics(node *sitter.Node, kind string) *FunctionMetrics {
	start := int(node.StartPosition().Row) + 1
	end := int(node.EndPosition().Row) + 1
	entry := &FunctionMetrics{
		Name:       a.entryName(node),
		Kind:       kind,
		StartLine:  start,
		EndLine:    end,
		NLOC:       end - start + 1,
		Complexity: a.complexity(node),
		ParamCount: a.paramCount(node),
		MaxNesting: a.maxNesting(node),
	}
	entry.CommentLines, entry.TodoCount = a.commentCounts(node)
	return entry
}

func (a *analyzer) entryName(node *sitter.Node) string {
	if word, ok := a.rules.blockNames[node.Kind()]; ok {
		return word
	}
	if node.Kind() == "rule_set" {
		if sel := node.Child(0); sel != nil {
			return collapseSpace(a.text(sel))
		}
	}
	for _, field := range a.rules.nameFields {
		if name := node.ChildByFieldName(field); name != nil {
			return a.text(name)
		}
	}
	if name := parser.NodeName(node, a.src); name != "" {
		return name
	}
	return "(anonymous)"
}

// complexity is the cyclomatic count for one entry: 1 plus one per decision
// point in its body. Nested entries are opaque; a nested construct that is
// itself a decision point (a loop entry, say) still counts as a single
// branch of the current entry while its internals count toward its own.
func (a *analyzer) complexity(root *sitter.Node) int {
	complexity := 1
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		kind := n.Kind()
		if !parser.SameNode(n, root) {
			if _, opens := a.entryKind(n, true); opens {
				if a.rules.decisionKinds[kind] {
					complexity++
				}
				return
			}
			if a.rules.decisionKinds[kind] {
				complexity++
			}
		}
		if a.rules.logicalKinds[kind] {
			if op := n.ChildByFieldName("operator"); op != nil && a.rules.logicalOps[a.text(op)] {
				complexity++
			}
		}
		for i := uint(0); i < n.ChildCount(); i++ {
			if child := n.Child(i); child != nil {
				walk(child)
			}
		}
	}
	walk(root)
	return complexity
}

func (a *analyzer) paramCount(node *sitter.Node) int {
	params := node.ChildByFieldName("parameters")
	if params == nil {
		// Bare arrow parameter: tile => ...
		if node.ChildByFieldName("parameter") != nil {
			return 1
		}
		return 0
	}
	if params.Kind() == "identifier" {
		return 1
	}
	count := 0
	for i := uint(0); i < params.NamedChildCount(); i++ {
		child := params.NamedChild(i)
		if child == nil {
			continue
		}
		if a.rules.paramKinds[child.Kind()] {
			count++
		}
	}
	return count
}

func (a *analyzer) maxNesting(root *sitter.Node) int {
	deepest := 0
	var walk func(n *sitter.Node, depth int)
	walk = func(n *sitter.Node, depth int) {
		if depth > deepest {
			deepest = depth
		}
		for i := uint(0); i < n.ChildCount(); i++ {
			child := n.Child(i)
			if child == nil {
				continue
			}
			next := depth
			if a.rules.nestingKinds[child.Kind()] {
				next++
			}
			walk(child, next)
		}
	}
	walk(root, 0)
	return deepest
}

func (a *analyzer) commentCounts(root *sitter.Node) (lines, todos int) {
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if a.rules.commentKinds[n.Kind()] {
			lines += int(n.EndPosition().Row) - int(n.StartPosition().Row) + 1
			text := a.text(n)
			if strings.Contains(text, "TODO") || strings.Contains(text, "FIXME") {
				todos++
			}
		}
		for i := uint(0); i < n.ChildCount(); i++ {
			if child := n.Child(i); child != nil {
				walk(child)
			}
		}
	}
	walk(root)
	return lines, todos
}

func (a *analyzer) countFileNodes(root *sitter.Node, fm *FileMetrics) {
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		kind := n.Kind()
		if a.rules.importKinds[kind] {
			fm.ImportCount++
		}
		if a.rules.classKinds[kind] {
			fm.ClassCount++
		}
		for i := uint(0); i < n.ChildCount(); i++ {
			if child := n.Child(i); child != nil {
				walk(child)
			}
		}
	}
	walk(root)
}

func (a *analyzer) text(n *sitter.Node) string {
	start, end := n.StartByte(), n.EndByte()
	if start > end || end > uint(len(a.src)) {
		return ""
	}
	return string(a.src[start:end])
}

// holdsFunctionMember reports whether an object literal directly contains a
// function-valued member. Plain data objects never become containers.
func holdsFunctionMember(node *sitter.Node, functionKinds map[string]bool) bool {
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "method_definition":
			return true
		case "pair":
			if value := child.ChildByFieldName("value"); value != nil && functionKinds[value.Kind()] {
				return true
			}
		}
	}
	return false
}

func countNonBlankLines(content []byte) int {
	count := 0
	for _, line := range strings.Split(string(content), "\n") {
		if strings.TrimSpace(line) != "" {
			count++
		}
	}
	return count
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
