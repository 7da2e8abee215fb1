// # internal/engine/treemap/treemap.go

// Package treemap arranges per-file analysis results into the nested
// folder/file/function hierarchy the viewer renders. Folder metrics are
// aggregates over their children; file and function nodes keep the
// figures the metrics engine produced. Synthetic fragments absorb lines
// no child claims, so a parent cell never shrinks below the sum of its
// children.
package treemap

import (
	"os"
	"path/filepath"
	"strings"

	"steward/internal/engine/metrics"
	"steward/internal/shared/util"
)

// Node types as serialized to the viewer.
const (
	TypeFolder   = "folder"
	TypeFile     = "file"
	TypeFunction = "function"
	TypeFragment = "code_fragment"
)

// Metrics is the figure set attached to every node. Complexity holds the
// file average for files, the absolute value for function entries, and
// the maximum over children for folders.
type Metrics struct {
	LOC           int     `json:"loc"`
	Complexity    float64 `json:"complexity"`
	FunctionCount int     `json:"function_count"`
}

// Node is one treemap cell.
type Node struct {
	Name     string  `json:"name"`
	Type     string  `json:"type"`
	Path     string  `json:"path"`
	Metrics  Metrics `json:"metrics"`
	Children []*Node `json:"children"`
}

// New returns a node with an empty child list so it serializes as [].
func New(name, nodeType, path string) *Node {
	return &Node{Name: name, Type: nodeType, Path: path, Children: []*Node{}}
}

// Build assembles the tree for every analyzed file under root. Files
// outside root are skipped. Paths are inserted in sorted order, so the
// same input always produces the same tree.
func Build(root string, files map[string]*metrics.FileMetrics) *Node {
	tree := New("root", TypeFolder, root)
	index := map[string]*Node{root: tree}

	for _, path := range util.SortedStringKeys(files) {
		fm := files[path]
		if fm == nil {
			continue
		}
		rel, err := filepath.Rel(root, path)
		if err != nil || !filepath.IsLocal(rel) {
			continue
		}

		parts := strings.Split(filepath.ToSlash(rel), "/")
		parent := tree
		current := root
		for _, part := range parts[:len(parts)-1] {
			current = filepath.Join(current, part)
			folder, ok := index[current]
			if !ok {
				folder = New(part, TypeFolder, current)
				parent.Children = append(parent.Children, folder)
				index[current] = folder
			}
			parent = folder
		}

		file := New(parts[len(parts)-1], TypeFile, path)
		attachFile(file, fm)
		parent.Children = append(parent.Children, file)
	}

	Aggregate(tree)
	return tree
}

// attachFile fills a file node from its metrics: the file's own figures
// plus one child per top-level entry. Lines claimed by no entry surface
// as a "(misc/imports)" fragment, so imports and module-level glue stay
// visible in the treemap instead of vanishing.
func attachFile(node *Node, fm *metrics.FileMetrics) {
	node.Metrics = Metrics{
		LOC:           fm.NLOC,
		Complexity:    fm.AvgComplexity,
		FunctionCount: fm.FunctionCount,
	}

	claimed := 0
	for _, entry := range fm.Functions {
		node.Children = append(node.Children, entryNode(node.Path, entry))
		claimed += entry.NLOC
	}

	if remainder := fm.NLOC - claimed; remainder > 0 {
		misc := New("(misc/imports)", TypeFragment, node.Path+"::__misc__")
		misc.Metrics.LOC = remainder
		node.Children = append(node.Children, misc)
	}
}

// entryNode converts one metrics entry into a treemap cell, recursing
// into nested entries. When an entry spans more lines than its children
// claim, a synthetic "(body)" fragment absorbs the difference; a parent
// with children therefore always has loc equal to the sum of its
// children's loc.
func entryNode(parentPath string, entry *metrics.FunctionMetrics) *Node {
	node := New(displayName(entry), TypeFunction, parentPath+"::"+entry.Name)
	node.Metrics = Metrics{
		LOC:        entry.NLOC,
		Complexity: float64(entry.Complexity),
	}

	claimed := 0
	for _, child := range entry.Children {
		node.Children = append(node.Children, entryNode(node.Path, child))
		claimed += child.NLOC
	}
	if len(entry.Children) > 0 {
		if remainder := entry.NLOC - claimed; remainder > 0 {
			body := New("(body)", TypeFragment, node.Path+"::(body)")
			body.Metrics.LOC = remainder
			node.Children = append(node.Children, body)
		}
	}
	return node
}

// displayName decorates container entries with their kind so a class and
// a function sharing a name stay distinguishable. Functions, control
// blocks, and CSS rules keep their bare name.
func displayName(entry *metrics.FunctionMetrics) string {
	switch entry.Kind {
	case metrics.KindClass, metrics.KindInterface, metrics.KindType, metrics.KindEnum, metrics.KindObject:
		return entry.Name + " (" + entry.Kind + ")"
	}
	return entry.Name
}

// Aggregate recomputes folder metrics bottom-up: lines and function
// counts sum, complexity takes the worst child. File and function nodes
// keep the figures attached when they were built.
func Aggregate(node *Node) Metrics {
	if len(node.Children) == 0 {
		return node.Metrics
	}
	var total Metrics
	for _, child := range node.Children {
		m := Aggregate(child)
		total.LOC += m.LOC
		if m.Complexity > total.Complexity {
			total.Complexity = m.Complexity
		}
		total.FunctionCount += m.FunctionCount
	}
	if node.Type == TypeFolder {
		node.Metrics = total
	}
	return node.Metrics
}

// FindRepoRoot walks up from start looking for a .git entry and returns
// the first directory carrying one. Without a repository marker the
// start directory itself is the root.
func FindRepoRoot(start string) string {
	current, err := filepath.Abs(start)
	if err != nil {
		return start
	}
	for dir := current; ; {
		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return current
		}
		dir = parent
	}
}
