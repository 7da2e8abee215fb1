// # internal/engine/scope/build_test.go
package scope

import (
	"strings"
	"testing"
)

func TestBuildFunctionScope(t *testing.T) {
	code := `
function greet(name) {
  const message = "hi " + name;
  return message;
}
`
	a := analyzeFixture(t, "fn.ts", code, nil)

	fns := findScopesByKind(a.Tree, ScopeFunction)
	if len(fns) != 1 {
		t.Fatalf("function scopes = %d, want 1", len(fns))
	}
	fn := fns[0]
	if fn.Name != "greet" {
		t.Errorf("function name = %q, want greet", fn.Name)
	}
	if fn.Label != "greet (function)" {
		t.Errorf("function label = %q, want %q", fn.Label, "greet (function)")
	}
	if fn.StartLine != 2 || fn.EndLine != 5 {
		t.Errorf("function span = %d..%d, want 2..5", fn.StartLine, fn.EndLine)
	}

	// The declaration name binds in the enclosing scope, not its own.
	if _, ok := a.Tree.Root().Bindings["greet"]; !ok {
		t.Errorf("greet not bound in global scope")
	}
	if _, ok := fn.Bindings["greet"]; ok {
		t.Errorf("greet bound inside its own scope")
	}

	name, ok := fn.Bindings["name"]
	if !ok {
		t.Fatalf("parameter name not bound in function scope")
	}
	if name.Kind != BindParameter {
		t.Errorf("name kind = %v, want parameter", name.Kind)
	}
	msg, ok := fn.Bindings["message"]
	if !ok {
		t.Fatalf("message not bound in function scope")
	}
	if msg.Kind != BindLocal || msg.Line != 3 {
		t.Errorf("message = kind %v line %d, want local line 3", msg.Kind, msg.Line)
	}

	// The body block of a function never opens its own scope.
	for _, child := range fn.Children {
		if a.Tree.Scope(child).Kind == ScopeBlock {
			t.Errorf("function body produced a block scope")
		}
	}
}

func TestBuildConditionalScopes(t *testing.T) {
	code := `
const v = 1;
if (v > 0) {
  const a = v;
} else {
  const b = v;
}
`
	a := analyzeFixture(t, "cond.ts", code, nil)

	conds := findScopesByKind(a.Tree, ScopeConditional)
	if len(conds) != 1 {
		t.Fatalf("conditional scopes = %d, want 1", len(conds))
	}
	cond := conds[0]
	if cond.Label != "if" {
		t.Errorf("conditional label = %q, want if", cond.Label)
	}

	var kinds []string
	for _, child := range cond.Children {
		s := a.Tree.Scope(child)
		switch {
		case s.Kind == ScopeConditionExpr:
			kinds = append(kinds, "condition")
		case s.Role == RoleThen:
			kinds = append(kinds, "then")
		case s.Role == RoleElse:
			kinds = append(kinds, "else")
		default:
			kinds = append(kinds, s.Kind.String())
		}
	}
	got := strings.Join(kinds, ",")
	if got != "condition,then,else" {
		t.Errorf("conditional children = %s, want condition,then,else", got)
	}
}

func TestBuildElseIfChain(t *testing.T) {
	code := `
const v = 2;
if (v === 1) {
  const a = 1;
} else if (v === 2) {
  const b = 2;
} else {
  const c = 3;
}
`
	a := analyzeFixture(t, "chain.ts", code, nil)

	conds := findScopesByKind(a.Tree, ScopeConditional)
	if len(conds) != 2 {
		t.Fatalf("conditional scopes = %d, want 2 (outer if plus else-if)", len(conds))
	}
	// The nested if lives inside the outer else branch.
	inner := conds[1]
	parent := a.Tree.Scope(inner.Parent)
	if parent.Role != RoleElse {
		t.Errorf("nested if parent role = %v, want else", parent.Role)
	}
}

func TestBuildTryCatchFinally(t *testing.T) {
	code := `
try {
  risky();
} catch (err) {
  console.log(err);
} finally {
  cleanup();
}
`
	a := analyzeFixture(t, "try.ts", code, nil)

	tries := findScopesByKind(a.Tree, ScopeTryBlock)
	catches := findScopesByKind(a.Tree, ScopeCatch)
	finallies := findScopesByKind(a.Tree, ScopeFinallyBlock)
	if len(tries) != 1 || len(catches) != 1 || len(finallies) != 1 {
		t.Fatalf("try/catch/finally = %d/%d/%d, want 1/1/1", len(tries), len(catches), len(finallies))
	}

	errBinding, ok := catches[0].Bindings["err"]
	if !ok {
		t.Fatalf("catch parameter err not bound")
	}
	if errBinding.Kind != BindCatch {
		t.Errorf("err kind = %v, want catch", errBinding.Kind)
	}

	// All three hang off global in document order.
	root := a.Tree.Root()
	var order []ScopeKind
	for _, child := range root.Children {
		order = append(order, a.Tree.Scope(child).Kind)
	}
	want := []ScopeKind{ScopeTryBlock, ScopeCatch, ScopeFinallyBlock}
	if len(order) != len(want) {
		t.Fatalf("global children = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("global children = %v, want %v", order, want)
		}
	}
}

func TestBuildDestructuringBindings(t *testing.T) {
	code := `
const obj = { a: 1, b: 2 };
const { a, b: renamed } = obj;
`
	a := analyzeFixture(t, "destructure.ts", code, nil)

	root := a.Tree.Root()
	if _, ok := root.Bindings["a"]; !ok {
		t.Errorf("shorthand a not bound")
	}
	if _, ok := root.Bindings["renamed"]; !ok {
		t.Errorf("renamed target not bound")
	}
	// b is only a source property name in the pattern, never a binding.
	if b, ok := root.Bindings["b"]; ok && b.Line == 3 {
		t.Errorf("property key b registered as a binding")
	}
}

func TestBuildDestructuringDefaults(t *testing.T) {
	code := `
const fallback = 0;
const { count = fallback } = settings;
`
	a := analyzeFixture(t, "defaults.ts", code, nil)

	root := a.Tree.Root()
	if _, ok := root.Bindings["count"]; !ok {
		t.Errorf("count not bound from defaulted pattern")
	}
	// The default expression must stay a usage, not become a binding.
	if fb := root.Bindings["fallback"]; fb == nil || fb.Line != 2 {
		t.Errorf("fallback binding shifted by pattern default")
	}
	uses := findUsages(a, "fallback")
	if len(uses) != 1 || uses[0].Line != 3 {
		t.Errorf("fallback usages = %+v, want one on line 3", uses)
	}
}

func TestBuildParameterDefaults(t *testing.T) {
	code := `
const base = 10;
function scale(factor = base) {
  return factor;
}
`
	a := analyzeFixture(t, "paramdefault.ts", code, nil)

	fn := findScopesByKind(a.Tree, ScopeFunction)[0]
	if _, ok := fn.Bindings["factor"]; !ok {
		t.Errorf("factor not bound as parameter")
	}
	if _, ok := fn.Bindings["base"]; ok {
		t.Errorf("default expression base leaked into parameter bindings")
	}
	uses := findUsages(a, "base")
	if len(uses) != 1 {
		t.Fatalf("base usages = %d, want 1", len(uses))
	}
	if uses[0].Binding == nil || uses[0].Binding.Line != 2 {
		t.Errorf("base default usage did not resolve to line 2 declaration")
	}
}

func TestBuildArrowBareParameter(t *testing.T) {
	code := "const id = x => x;\n"
	a := analyzeFixture(t, "arrow.ts", code, nil)

	fn := findScopesByKind(a.Tree, ScopeFunction)[0]
	x, ok := fn.Bindings["x"]
	if !ok {
		t.Fatalf("bare arrow parameter x not bound")
	}
	if x.Kind != BindParameter {
		t.Errorf("x kind = %v, want parameter", x.Kind)
	}
	// The body x is a usage of the parameter, not a second binding.
	uses := findUsages(a, "x")
	if len(uses) != 1 {
		t.Fatalf("x usages = %d, want 1", len(uses))
	}
	if uses[0].Binding != x {
		t.Errorf("body x did not resolve to the parameter")
	}
}

func TestBuildImportBindings(t *testing.T) {
	code := `
import def from './local';
import * as ns from 'external-pkg';
import { named, orig as alias } from './other';
import type { OnlyType } from './types';
import { type Inline, value } from './mixed';
`
	imports := fakeImports{
		"./local": "src/local.ts",
		"./other": "src/other.ts",
		"./mixed": "src/mixed.ts",
	}
	a := analyzeFixture(t, "imports.ts", code, imports)

	root := a.Tree.Root()
	cases := []struct {
		name     string
		internal bool
		source   string
	}{
		{"def", true, "./local"},
		{"ns", false, "external-pkg"},
		{"named", true, "./other"},
		{"alias", true, "./other"},
		{"value", true, "./mixed"},
	}
	for _, tc := range cases {
		b, ok := root.Bindings[tc.name]
		if !ok {
			t.Errorf("import %s not bound", tc.name)
			continue
		}
		if b.Kind != BindImport {
			t.Errorf("%s kind = %v, want import", tc.name, b.Kind)
		}
		if b.Internal != tc.internal {
			t.Errorf("%s internal = %v, want %v", tc.name, b.Internal, tc.internal)
		}
		if b.Source != tc.source {
			t.Errorf("%s source = %q, want %q", tc.name, b.Source, tc.source)
		}
	}

	if _, ok := root.Bindings["OnlyType"]; ok {
		t.Errorf("type-only import OnlyType registered as binding")
	}
	if _, ok := root.Bindings["Inline"]; ok {
		t.Errorf("inline type specifier Inline registered as binding")
	}
	if _, ok := root.Bindings["orig"]; ok {
		t.Errorf("original name of aliased import registered as binding")
	}
}

func TestBuildObjectLiteralScope(t *testing.T) {
	code := `
const myObj = {
  foo: function() {
    return 1;
  },
  plain: 42
};
`
	a := analyzeFixture(t, "obj.ts", code, nil)

	structurals := findScopesByKind(a.Tree, ScopeStructural)
	if len(structurals) != 1 {
		t.Fatalf("structural scopes = %d, want 1", len(structurals))
	}
	obj := structurals[0]
	if obj.Role != RoleObject {
		t.Errorf("object role = %v, want object", obj.Role)
	}
	if obj.Label != "myObj" {
		t.Errorf("object label = %q, want myObj", obj.Label)
	}

	// The function-valued member nests inside the object scope.
	fns := findScopesByKind(a.Tree, ScopeFunction)
	if len(fns) != 1 {
		t.Fatalf("function scopes = %d, want 1", len(fns))
	}
	if fns[0].Parent != scopeIndex(a.Tree, obj) {
		t.Errorf("foo function not parented by object scope")
	}
	if fns[0].Label != "foo (function)" {
		t.Errorf("member function label = %q, want %q", fns[0].Label, "foo (function)")
	}
}

func TestBuildPlainObjectNoScope(t *testing.T) {
	code := "const data = { a: 1, b: [2, 3] };\n"
	a := analyzeFixture(t, "plainobj.ts", code, nil)

	if got := findScopesByKind(a.Tree, ScopeStructural); len(got) != 0 {
		t.Errorf("plain data object opened %d structural scopes, want 0", len(got))
	}
}

func TestBuildJSXScopes(t *testing.T) {
	code := `
const App = () => {
  return (
    <Show when={visible}>
      <div>{count}</div>
    </Show>
  );
};
`
	a := analyzeFixture(t, "app.tsx", code, nil)

	structurals := findScopesByKind(a.Tree, ScopeStructural)
	var labels []string
	for _, s := range structurals {
		if s.Role == RoleJSX {
			labels = append(labels, s.Label)
		}
	}
	if len(labels) != 2 || labels[0] != "<Show>" || labels[1] != "<div>" {
		t.Errorf("jsx labels = %v, want [<Show> <div>]", labels)
	}
}

func TestBuildAnonymousFunctionNames(t *testing.T) {
	code := `
function main() {
  items.sort(function(a, b) { return a - b; });
  items.map((item) => item * 2);
  const myFunc = function() { return 1; };
  const obj = {
    myMethod: function() { return 2; }
  };
  baz(() => 3);
  (function() { return 4; })();
}
`
	a := analyzeFixture(t, "anon.ts", code, nil)

	var names []string
	for _, fn := range findScopesByKind(a.Tree, ScopeFunction) {
		if fn.Name == "main" {
			continue
		}
		names = append(names, fn.Name)
	}
	want := []string{"sort(ƒ)", "map(ƒ)", "myFunc", "myMethod", "baz(ƒ)", "IIFE(ƒ)"}
	if len(names) != len(want) {
		t.Fatalf("anonymous names = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("name[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestBuildLoopBindings(t *testing.T) {
	code := `
const items = [1, 2];
for (const item of items) {
  use(item);
}
for (let i = 0; i < 2; i++) {
  use(i);
}
let j = 0;
for (j = 0; j < 2; j++) {
  use(j);
}
`
	a := analyzeFixture(t, "loops.ts", code, nil)

	loops := findScopesByKind(a.Tree, ScopeLoop)
	if len(loops) != 3 {
		t.Fatalf("loop scopes = %d, want 3", len(loops))
	}
	if b, ok := loops[0].Bindings["item"]; !ok || b.Kind != BindLoop {
		t.Errorf("for..of item not bound as loop variable")
	}
	if b, ok := loops[1].Bindings["i"]; !ok || b.Kind != BindLoop {
		t.Errorf("for initializer i not bound as loop variable")
	}
	if _, ok := loops[2].Bindings["j"]; ok {
		t.Errorf("reused outer j rebound inside loop")
	}
	if b, ok := a.Tree.Root().Bindings["j"]; !ok || b.Line != 8 {
		t.Errorf("outer j binding missing or moved")
	}
}

func TestBuildClassScope(t *testing.T) {
	code := `
class MyClass {
  method() {
    return 1;
  }
}
`
	a := analyzeFixture(t, "class.ts", code, nil)

	classes := findScopesByKind(a.Tree, ScopeClass)
	if len(classes) != 1 {
		t.Fatalf("class scopes = %d, want 1", len(classes))
	}
	cls := classes[0]
	if cls.Label != "MyClass (class)" {
		t.Errorf("class label = %q, want %q", cls.Label, "MyClass (class)")
	}
	if b, ok := a.Tree.Root().Bindings["MyClass"]; !ok || b.Kind != BindClass {
		t.Errorf("MyClass not bound as class in global scope")
	}

	methods := findScopesByKind(a.Tree, ScopeFunction)
	if len(methods) != 1 {
		t.Fatalf("method scopes = %d, want 1", len(methods))
	}
	if methods[0].Parent != scopeIndex(a.Tree, cls) {
		t.Errorf("method not parented by class scope")
	}
	if methods[0].Label != "method (function)" {
		t.Errorf("method label = %q, want %q", methods[0].Label, "method (function)")
	}
}

func TestBuildScopeSpansNested(t *testing.T) {
	code := `
function outer() {
  if (cond) {
    for (const k of items) {
      inner(k);
    }
  }
}
`
	a := analyzeFixture(t, "spans.ts", code, nil)

	for i := 1; i < a.Tree.Len(); i++ {
		s := a.Tree.Scope(i)
		p := a.Tree.Scope(s.Parent)
		if s.StartLine < p.StartLine || s.EndLine > p.EndLine {
			t.Errorf("scope %s (%d..%d) escapes parent %s (%d..%d)",
				s.ID, s.StartLine, s.EndLine, p.ID, p.StartLine, p.EndLine)
		}
	}
}

func TestBuildSwitchScopes(t *testing.T) {
	code := `
switch (mode) {
  case 1: {
    one();
    break;
  }
  case 2:
    two();
    break;
  default:
    other();
}
`
	a := analyzeFixture(t, "switch.ts", code, nil)

	switches := findScopesByKind(a.Tree, ScopeSwitch)
	cases := findScopesByKind(a.Tree, ScopeCase)
	if len(switches) != 1 {
		t.Fatalf("switch scopes = %d, want 1", len(switches))
	}
	if len(cases) != 3 {
		t.Fatalf("case scopes = %d, want 3 (two cases plus default)", len(cases))
	}
	for _, c := range cases {
		if a.Tree.Scope(c.Parent).Kind != ScopeSwitch {
			t.Errorf("case %s not parented by switch", c.ID)
		}
	}
}
