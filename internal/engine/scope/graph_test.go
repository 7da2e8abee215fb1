// # internal/engine/scope/graph_test.go
package scope

import "testing"

func walkGraph(n *GraphNode, fn func(*GraphNode)) {
	fn(n)
	for _, child := range n.Children {
		walkGraph(child, fn)
	}
}

func findNodesByType(root *GraphNode, typ string) []*GraphNode {
	var out []*GraphNode
	walkGraph(root, func(n *GraphNode) {
		if n.Type == typ {
			out = append(out, n)
		}
	})
	return out
}

func findNodeByLabel(root *GraphNode, label string) *GraphNode {
	var found *GraphNode
	walkGraph(root, func(n *GraphNode) {
		if found == nil && len(n.Labels) > 0 && n.Labels[0].Text == label {
			found = n
		}
	})
	return found
}

func controlFlowEdges(root *GraphNode) []*GraphEdge {
	var out []*GraphEdge
	for _, e := range root.Edges {
		if e.Type == "control-flow" {
			out = append(out, e)
		}
	}
	return out
}

func TestScopeGraphEndToEnd(t *testing.T) {
	code := "const x = 1;\nconst y = x + 1;\n"
	a := analyzeFixture(t, "flow.ts", code, nil)

	root := ScopeGraph(a)
	if root.Type != "global" || root.Labels[0].Text != "global" {
		t.Fatalf("root = %s %q, want global cluster", root.Type, root.Labels[0].Text)
	}

	vars := findNodesByType(root, "variable")
	if len(vars) != 2 {
		t.Fatalf("variable nodes = %d, want 2", len(vars))
	}
	if vars[0].ID != "var-1-6-x" || vars[0].Labels[0].Text != "x (local)" {
		t.Errorf("first variable = %s %q", vars[0].ID, vars[0].Labels[0].Text)
	}
	if vars[1].ID != "var-2-6-y" || vars[1].Labels[0].Text != "y (local)" {
		t.Errorf("second variable = %s %q", vars[1].ID, vars[1].Labels[0].Text)
	}
	if vars[0].Width != 100 || vars[0].Height != 40 {
		t.Errorf("variable size = %dx%d, want 100x40", vars[0].Width, vars[0].Height)
	}

	uses := findNodesByType(root, "usage")
	if len(uses) != 1 {
		t.Fatalf("usage nodes = %d, want 1", len(uses))
	}
	if uses[0].ID != "use-2-10-x" || uses[0].Labels[0].Text != "x" {
		t.Errorf("usage = %s %q", uses[0].ID, uses[0].Labels[0].Text)
	}
	if uses[0].Width != 60 || uses[0].Height != 30 {
		t.Errorf("usage size = %dx%d, want 60x30", uses[0].Width, uses[0].Height)
	}

	if len(root.Edges) != 1 {
		t.Fatalf("edges = %d, want 1", len(root.Edges))
	}
	e := root.Edges[0]
	if e.ID != "edge-var-1-6-x-use-2-10-x" {
		t.Errorf("edge id = %q", e.ID)
	}
	if len(e.Sources) != 1 || e.Sources[0] != "var-1-6-x" ||
		len(e.Targets) != 1 || e.Targets[0] != "use-2-10-x" {
		t.Errorf("edge endpoints = %v -> %v", e.Sources, e.Targets)
	}
	if e.DefStartLine != 1 || e.DefEndLine != 1 || e.UsageStartLine != 2 || e.UsageEndLine != 2 {
		t.Errorf("edge line metadata = %+v", e)
	}
}

func TestScopeGraphFunctionCluster(t *testing.T) {
	code := `
const globalVar = 42;

function myFunction(param1) {
  const localVar = globalVar + param1;
  return localVar;
}
`
	a := analyzeFixture(t, "fncluster.ts", code, nil)
	root := ScopeGraph(a)

	fn := findNodeByLabel(root, "myFunction (function)")
	if fn == nil {
		t.Fatalf("function cluster not found")
	}
	if fn.Type != "function" {
		t.Errorf("function cluster type = %s", fn.Type)
	}
	if fn.StartLine != 4 || fn.EndLine != 7 {
		t.Errorf("function cluster span = %d..%d, want 4..7", fn.StartLine, fn.EndLine)
	}

	if v := findNodeByLabel(fn, "param1 (param)"); v == nil {
		t.Errorf("param1 variable node missing")
	}
	if v := findNodeByLabel(fn, "localVar (local)"); v == nil {
		t.Errorf("localVar variable node missing")
	}
	if v := findNodeByLabel(root, "myFunction (function)"); v == nil {
		t.Errorf("myFunction variable node missing at root")
	}

	// Usage labels carry the bare name.
	var usageLabels []string
	for _, u := range findNodesByType(fn, "usage") {
		usageLabels = append(usageLabels, u.Labels[0].Text)
	}
	want := []string{"globalVar", "param1", "localVar"}
	if len(usageLabels) != len(want) {
		t.Fatalf("usages in function = %v, want %v", usageLabels, want)
	}
	for i := range want {
		if usageLabels[i] != want[i] {
			t.Errorf("usage[%d] = %q, want %q", i, usageLabels[i], want[i])
		}
	}

	if blocks := findNodesByType(root, "block"); len(blocks) != 0 {
		t.Errorf("function body produced %d block clusters, want 0", len(blocks))
	}

	var defEdges int
	for _, e := range root.Edges {
		if e.Type == "" {
			defEdges++
		}
	}
	if defEdges != 3 {
		t.Errorf("def edges = %d, want 3", defEdges)
	}
	// globalVar def crosses into the function cluster with line metadata.
	for _, e := range root.Edges {
		if e.ID == "edge-var-2-6-globalVar-use-5-19-globalVar" {
			if e.DefStartLine != 2 || e.UsageStartLine != 5 {
				t.Errorf("globalVar edge metadata = %+v", e)
			}
			return
		}
	}
	t.Errorf("globalVar def edge not found in %d edges", len(root.Edges))
}

func TestScopeGraphSingleIf(t *testing.T) {
	code := `
const v = 1;
if (v > 0) {
  doThing(v);
} else {
  other(v);
}
`
	a := analyzeFixture(t, "singleif.ts", code, nil)
	root := ScopeGraph(a)

	ifs := findNodesByType(root, "if")
	if len(ifs) != 1 {
		t.Fatalf("if clusters = %d, want exactly 1", len(ifs))
	}
	ifCluster := ifs[0]
	if ifCluster.Labels[0].Text != "if" {
		t.Errorf("if label = %q", ifCluster.Labels[0].Text)
	}

	var types []string
	for _, child := range ifCluster.Children {
		types = append(types, child.Type)
	}
	want := []string{"condition", "if_branch", "else_branch"}
	if len(types) != len(want) {
		t.Fatalf("if children = %v, want %v", types, want)
	}
	for i := range want {
		if types[i] != want[i] {
			t.Errorf("if child[%d] = %s, want %s", i, types[i], want[i])
		}
	}

	cf := controlFlowEdges(root)
	if len(cf) != 1 {
		t.Fatalf("control-flow edges = %d, want 1", len(cf))
	}
	if cf[0].Sources[0] != ifCluster.Children[1].ID || cf[0].Targets[0] != ifCluster.Children[2].ID {
		t.Errorf("control-flow edge %v -> %v, want then -> else", cf[0].Sources, cf[0].Targets)
	}
}

func TestScopeGraphTryCatchControlFlow(t *testing.T) {
	code := `
function processData(data) {
  try {
    const result = JSON.parse(data);
    return result;
  } catch (error) {
    console.error("failed", error);
    return null;
  }
}
`
	a := analyzeFixture(t, "trycatch.ts", code, nil)
	root := ScopeGraph(a)

	tries := findNodesByType(root, "try")
	catches := findNodesByType(root, "catch")
	if len(tries) != 1 || len(catches) != 1 {
		t.Fatalf("try/catch clusters = %d/%d, want 1/1", len(tries), len(catches))
	}
	if v := findNodeByLabel(catches[0], "error (param)"); v == nil {
		t.Errorf("catch parameter variable node missing")
	}

	cf := controlFlowEdges(root)
	if len(cf) != 1 {
		t.Fatalf("control-flow edges = %d, want 1", len(cf))
	}
	if cf[0].Sources[0] != tries[0].ID || cf[0].Targets[0] != catches[0].ID {
		t.Errorf("control-flow edge %v -> %v, want try -> catch", cf[0].Sources, cf[0].Targets)
	}
}

func TestScopeGraphBranchesSurviveOnUnresolvedUsages(t *testing.T) {
	code := `
function checkValue(x) {
  if (x > 10) {
    setLineOffset(x);
  } else {
    clearLine();
  }
}
`
	a := analyzeFixture(t, "branches.ts", code, nil)
	root := ScopeGraph(a)

	thens := findNodesByType(root, "if_branch")
	elses := findNodesByType(root, "else_branch")
	if len(thens) != 1 || len(elses) != 1 {
		t.Fatalf("branch clusters = %d/%d, want 1/1", len(thens), len(elses))
	}
	// The unresolved call keeps the branch alive and gets its own node.
	if u := findNodeByLabel(thens[0], "setLineOffset"); u == nil || u.Type != "usage" {
		t.Errorf("unresolved usage node missing from then branch")
	}

	cf := controlFlowEdges(root)
	if len(cf) != 1 {
		t.Fatalf("control-flow edges = %d, want 1", len(cf))
	}
	if cf[0].Sources[0] != thens[0].ID || cf[0].Targets[0] != elses[0].ID {
		t.Errorf("control-flow edge %v -> %v, want then -> else", cf[0].Sources, cf[0].Targets)
	}
}

func TestScopeGraphJSXClusters(t *testing.T) {
	code := `
const visible = true;
const message = "hi";
const Toast = () => (
  <Show when={visible}>
    <div>{message}</div>
  </Show>
);
`
	a := analyzeFixture(t, "toast.tsx", code, nil)
	root := ScopeGraph(a)

	if fn := findNodeByLabel(root, "Toast (function)"); fn == nil || fn.Type != "function" {
		t.Fatalf("Toast function cluster missing")
	}

	show := findNodeByLabel(root, "<Show>")
	if show == nil || show.Type != "jsx" {
		t.Fatalf("<Show> cluster missing")
	}
	if u := findNodeByLabel(show, "when: visible"); u == nil || u.Type != "usage" {
		t.Errorf("attribute usage label missing, want %q", "when: visible")
	}

	div := findNodeByLabel(show, "<div>")
	if div == nil || div.Type != "jsx" {
		t.Fatalf("<div> cluster missing inside <Show>")
	}
	if u := findNodeByLabel(div, "message"); u == nil || u.Type != "usage" {
		t.Errorf("child expression usage missing from <div>")
	}

	// Tag names never become usage nodes.
	for _, label := range []string{"Show", "div"} {
		walkGraph(root, func(n *GraphNode) {
			if n.Type == "usage" && n.Labels[0].Text == label {
				t.Errorf("tag %s leaked as usage node", label)
			}
		})
	}
}

func TestScopeGraphObjectAndClassClusters(t *testing.T) {
	code := `
const myObj = {
  foo: function() {
    const x = 1;
    return x;
  }
};

class MyClass {
  method() {
    const y = 2;
    return y;
  }
}
`
	a := analyzeFixture(t, "objclass.ts", code, nil)
	root := ScopeGraph(a)

	obj := findNodeByLabel(root, "myObj")
	if obj == nil || obj.Type != "object" {
		t.Fatalf("myObj object cluster missing")
	}
	foo := findNodeByLabel(obj, "foo (function)")
	if foo == nil || foo.Type != "function" {
		t.Errorf("foo function cluster not nested under myObj")
	}

	cls := findNodeByLabel(root, "MyClass (class)")
	if cls == nil || cls.Type != "class" {
		t.Fatalf("MyClass class cluster missing")
	}
	method := findNodeByLabel(cls, "method (function)")
	if method == nil || method.Type != "function" {
		t.Errorf("method function cluster not nested under MyClass")
	}
}

func TestScopeGraphPrunesEmptyClusters(t *testing.T) {
	code := `
function f() {
  if (noSuchFlag) {
  } else {
  }
}
function g() {}
`
	a := analyzeFixture(t, "prune.ts", code, nil)
	root := ScopeGraph(a)

	if got := findNodesByType(root, "if_branch"); len(got) != 0 {
		t.Errorf("empty then branch survived pruning")
	}
	if got := findNodesByType(root, "else_branch"); len(got) != 0 {
		t.Errorf("empty else branch survived pruning")
	}
	// The if itself stays: its condition carries a usage.
	if got := findNodesByType(root, "if"); len(got) != 1 {
		t.Errorf("if clusters = %d, want 1", len(got))
	}
	if cf := controlFlowEdges(root); len(cf) != 0 {
		t.Errorf("control-flow edges between pruned branches = %d, want 0", len(cf))
	}

	// g is empty and disappears; its declaration node remains.
	var fnClusters []string
	walkGraph(root, func(n *GraphNode) {
		if n.Type == "function" {
			fnClusters = append(fnClusters, n.Labels[0].Text)
		}
	})
	if len(fnClusters) != 1 || fnClusters[0] != "f (function)" {
		t.Errorf("function clusters = %v, want only f", fnClusters)
	}
	if v := findNodeByLabel(root, "g (function)"); v == nil || v.Type != "variable" {
		t.Errorf("g variable node missing after cluster pruned")
	}
}

func TestScopeGraphSwitchCases(t *testing.T) {
	code := `
switch (k) {
  case 1:
    one(k);
    break;
  case 2:
    two(k);
    break;
  default:
    fallback(k);
}
`
	a := analyzeFixture(t, "switchgraph.ts", code, nil)
	root := ScopeGraph(a)

	sw := findNodesByType(root, "switch")
	if len(sw) != 1 {
		t.Fatalf("switch clusters = %d, want 1", len(sw))
	}
	var caseLabels []string
	for _, child := range sw[0].Children {
		if child.Type == "case" {
			caseLabels = append(caseLabels, child.Labels[0].Text)
		}
	}
	want := []string{"case", "case", "default"}
	if len(caseLabels) != len(want) {
		t.Fatalf("case labels = %v, want %v", caseLabels, want)
	}
	for i := range want {
		if caseLabels[i] != want[i] {
			t.Errorf("case[%d] = %q, want %q", i, caseLabels[i], want[i])
		}
	}

	cf := controlFlowEdges(root)
	if len(cf) != 2 {
		t.Errorf("control-flow edges through cases = %d, want 2", len(cf))
	}
}

func TestScopeGraphLayoutOptions(t *testing.T) {
	a := analyzeFixture(t, "layout.ts", nestedFixture, nil)
	root := ScopeGraph(a)

	walkGraph(root, func(n *GraphNode) {
		switch n.Type {
		case "variable", "usage":
			if n.LayoutOptions != nil {
				t.Errorf("leaf %s carries layout options", n.ID)
			}
		default:
			if n.LayoutOptions["elk.algorithm"] != "layered" ||
				n.LayoutOptions["elk.direction"] != "DOWN" ||
				n.LayoutOptions["elk.padding"] != "[top=20,left=20,bottom=20,right=20]" {
				t.Errorf("cluster %s layout options = %v", n.ID, n.LayoutOptions)
			}
		}
	})
}
