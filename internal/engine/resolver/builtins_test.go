// # internal/engine/resolver/builtins_test.go
package resolver

import "testing"

func TestBuiltinSetDefaults(t *testing.T) {
	s := NewBuiltinSet()

	for _, name := range []string{"console", "setTimeout", "__dirname", "Promise", "structuredClone"} {
		if !s.IsBuiltin(name) {
			t.Errorf("%s missing from default builtins", name)
		}
	}
	for _, name := range []string{"myHelper", "react", ""} {
		if s.IsBuiltin(name) {
			t.Errorf("%s wrongly counted as builtin", name)
		}
	}
}

func TestBuiltinSetExtras(t *testing.T) {
	s := NewBuiltinSet("Deno", "Bun", "")

	if !s.IsBuiltin("Deno") || !s.IsBuiltin("Bun") {
		t.Errorf("configured extras not registered")
	}
	if s.IsBuiltin("") {
		t.Errorf("empty extra registered")
	}
	if !s.IsBuiltin("console") {
		t.Errorf("defaults lost when extras added")
	}
}
