// # internal/engine/scope/graph.go
package scope

import "fmt"

// GraphLabel, GraphEdge, and GraphNode form the layout-ready shape served
// to the visualization: nested clusters mirroring the scope tree, variable
// and usage leaf nodes inside them, and a flat edge list on the root. All
// ids derive from source positions, so identical input produces an
// identical graph.
type GraphLabel struct {
	Text string `json:"text"`
}

type GraphEdge struct {
	ID      string   `json:"id"`
	Type    string   `json:"type,omitempty"`
	Sources []string `json:"sources"`
	Targets []string `json:"targets"`

	DefStartLine   int `json:"defStartLine,omitempty"`
	DefEndLine     int `json:"defEndLine,omitempty"`
	UsageStartLine int `json:"usageStartLine,omitempty"`
	UsageEndLine   int `json:"usageEndLine,omitempty"`
}

type GraphNode struct {
	ID            string            `json:"id"`
	Type          string            `json:"type"`
	Labels        []GraphLabel      `json:"labels"`
	Width         int               `json:"width,omitempty"`
	Height        int               `json:"height,omitempty"`
	StartLine     int               `json:"startLine,omitempty"`
	EndLine       int               `json:"endLine,omitempty"`
	Children      []*GraphNode      `json:"children,omitempty"`
	Edges         []*GraphEdge      `json:"edges,omitempty"`
	LayoutOptions map[string]string `json:"layoutOptions,omitempty"`
}

const (
	variableNodeWidth  = 100
	variableNodeHeight = 40
	usageNodeWidth     = 60
	usageNodeHeight    = 30
)

// graphType maps a scope to its cluster type string. Conditionals split
// into if/if_branch/else_branch and structural elements into jsx/object;
// every other kind renders under its own name.
func graphType(s *Scope) string {
	switch s.Kind {
	case ScopeConditional:
		switch s.Role {
		case RoleThen:
			return "if_branch"
		case RoleElse:
			return "else_branch"
		}
		return "if"
	case ScopeStructural:
		if s.Role == RoleObject {
			return "object"
		}
		return "jsx"
	}
	return s.Kind.String()
}

// ScopeGraph renders the nested cluster graph for one analysis. Variable
// nodes appear in declaration order, usage nodes in document order, and
// every def-to-usage edge plus the synthetic control-flow edges are
// attached flat on the root cluster. Empty non-structural clusters are
// pruned so the view only shows regions that carry information.
func ScopeGraph(a *Analysis) *GraphNode {
	g := &graphBuilder{
		a:             a,
		usagesByScope: make(map[int][]*Usage),
		varIDs:        make(map[*Binding]string),
	}
	for _, u := range a.Usages {
		g.usagesByScope[u.Scope] = append(g.usagesByScope[u.Scope], u)
	}
	root := g.cluster(0)
	root.Edges = g.edges
	return root
}

type graphBuilder struct {
	a             *Analysis
	usagesByScope map[int][]*Usage
	varIDs        map[*Binding]string
	edges         []*GraphEdge
}

func (g *graphBuilder) cluster(idx int) *GraphNode {
	s := g.a.Tree.Scope(idx)
	node := &GraphNode{
		ID:            s.ID,
		Type:          graphType(s),
		Labels:        []GraphLabel{{Text: s.Label}},
		StartLine:     s.StartLine,
		EndLine:       s.EndLine,
		LayoutOptions: clusterLayout(),
	}

	for _, b := range s.Declared() {
		id := fmt.Sprintf("var-%d-%d-%s", b.Line, b.Column, b.Name)
		g.varIDs[b] = id
		node.Children = append(node.Children, &GraphNode{
			ID:        id,
			Type:      "variable",
			Labels:    []GraphLabel{{Text: b.Name + " (" + b.Kind.word() + ")"}},
			Width:     variableNodeWidth,
			Height:    variableNodeHeight,
			StartLine: b.Line,
			EndLine:   b.Line,
		})
	}

	for _, u := range g.usagesByScope[idx] {
		id := fmt.Sprintf("use-%d-%d-%s", u.Line, u.StartCol, u.Name)
		label := u.Name
		if u.AttrName != "" {
			label = u.AttrName + ": " + u.Name
		}
		node.Children = append(node.Children, &GraphNode{
			ID:        id,
			Type:      "usage",
			Labels:    []GraphLabel{{Text: label}},
			Width:     usageNodeWidth,
			Height:    usageNodeHeight,
			StartLine: u.Line,
			EndLine:   u.Line,
		})
		if u.Binding != nil {
			if varID, ok := g.varIDs[u.Binding]; ok {
				g.edges = append(g.edges, &GraphEdge{
					ID:             "edge-" + varID + "-" + id,
					Sources:        []string{varID},
					Targets:        []string{id},
					DefStartLine:   u.Binding.Line,
					DefEndLine:     u.Binding.Line,
					UsageStartLine: u.Line,
					UsageEndLine:   u.Line,
				})
			}
		}
	}

	var kept []int
	for _, childIdx := range s.Children {
		if child := g.cluster(childIdx); child != nil {
			node.Children = append(node.Children, child)
			kept = append(kept, childIdx)
		}
	}
	g.linkControlFlow(s, kept)

	if idx != 0 && len(node.Children) == 0 && s.Kind != ScopeStructural {
		return nil
	}
	return node
}

// linkControlFlow adds layout-only edges between consecutive surviving
// sibling scopes: try to catch, catch to finally, then-branch to
// else-branch, and case to case inside a switch. They carry no resolution
// semantics.
func (g *graphBuilder) linkControlFlow(parent *Scope, kept []int) {
	for i := 0; i+1 < len(kept); i++ {
		from := g.a.Tree.Scope(kept[i])
		to := g.a.Tree.Scope(kept[i+1])
		linked := false
		switch {
		case from.Kind == ScopeTryBlock && to.Kind == ScopeCatch:
			linked = true
		case from.Kind == ScopeTryBlock && to.Kind == ScopeFinallyBlock:
			linked = true
		case from.Kind == ScopeCatch && to.Kind == ScopeFinallyBlock:
			linked = true
		case parent.Kind == ScopeSwitch && from.Kind == ScopeCase && to.Kind == ScopeCase:
			linked = true
		case parent.Kind == ScopeConditional && from.Role == RoleThen && to.Role == RoleElse:
			linked = true
		}
		if linked {
			g.edges = append(g.edges, &GraphEdge{
				ID:      "cf-" + from.ID + "-" + to.ID,
				Type:    "control-flow",
				Sources: []string{from.ID},
				Targets: []string{to.ID},
			})
		}
	}
}

func clusterLayout() map[string]string {
	return map[string]string{
		"elk.algorithm": "layered",
		"elk.direction": "DOWN",
		"elk.padding":   "[top=20,left=20,bottom=20,right=20]",
	}
}
