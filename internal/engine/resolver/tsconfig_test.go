// # internal/engine/resolver/tsconfig_test.go
package resolver

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestStripJSONComments(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"line comment", "{\"a\":1,//c\n\"b\":2}", "{\"a\":1,\n\"b\":2}"},
		{"trailing line comment", `{"a":1} // x`, `{"a":1} `},
		{"block comment", `{"a":/*x*/1}`, `{"a":1}`},
		{"multiline block", "{\"a\":/*\nx\n*/1}", `{"a":1}`},
		{"slashes in string", `{"a":"//not a comment"}`, `{"a":"//not a comment"}`},
		{"escaped quote", `{"q":"he said \"hi\" // ok"}`, `{"q":"he said \"hi\" // ok"}`},
		{"single quotes", `{'a':'/*keep*/'}`, `{'a':'/*keep*/'}`},
	}
	for _, tc := range cases {
		if got := string(stripJSONComments([]byte(tc.in))); got != tc.want {
			t.Errorf("%s: got %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestApplyTSConfigPaths(t *testing.T) {
	paths := map[string][]string{
		"@/*":   {"src/*"},
		"utils": {"shared/utils.ts"},
		"lib/*": {"vendor"},
		"*.css": {"styles/*"},
	}

	cases := []struct {
		importPath string
		want       []string
	}{
		{"@/a/b", []string{"/base/src/a/b"}},
		{"utils", []string{"/base/shared/utils.ts"}},
		{"lib/x", []string{"/base/vendor/x"}},
		{"theme.css", []string{"/base/styles/theme"}},
		{"unmapped", nil},
	}
	for _, tc := range cases {
		got := applyTSConfigPaths(tc.importPath, "/base", paths)
		if !reflect.DeepEqual(got, tc.want) {
			t.Errorf("applyTSConfigPaths(%q) = %v, want %v", tc.importPath, got, tc.want)
		}
	}
}

func TestApplyTSConfigPathsMultipleTargets(t *testing.T) {
	paths := map[string][]string{"@/*": {"src/*", "fallback/*"}}
	got := applyTSConfigPaths("@/x", "/base", paths)
	want := []string{"/base/src/x", "/base/fallback/x"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("targets expanded to %v, want %v", got, want)
	}
}

func TestLoadTSConfigPaths(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "tsconfig.json")
	content := `{
  // comments are legal in tsconfig
  "compilerOptions": {
    "baseUrl": "./app",
    "paths": {
      "@/*": ["src/*"],
      "single": "one/file.ts" /* bare string form */
    }
  }
}`
	if err := os.WriteFile(cfg, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	baseDir, paths := loadTSConfigPaths(cfg)
	if baseDir != filepath.Join(dir, "app") {
		t.Errorf("baseDir = %q, want %q", baseDir, filepath.Join(dir, "app"))
	}
	if !reflect.DeepEqual(paths["@/*"], []string{"src/*"}) {
		t.Errorf("star mapping = %v", paths["@/*"])
	}
	if !reflect.DeepEqual(paths["single"], []string{"one/file.ts"}) {
		t.Errorf("string mapping = %v", paths["single"])
	}
}

func TestLoadTSConfigPathsMalformed(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "tsconfig.json")
	if err := os.WriteFile(cfg, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	baseDir, paths := loadTSConfigPaths(cfg)
	if baseDir != dir {
		t.Errorf("baseDir = %q, want config dir on parse failure", baseDir)
	}
	if len(paths) != 0 {
		t.Errorf("paths = %v, want empty on parse failure", paths)
	}
}

func TestFindTSConfig(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "tsconfig.base.json"), "{}")
	writeFile(t, filepath.Join(root, "pkg", "tsconfig.app.json"), "{}")
	writeFile(t, filepath.Join(root, "pkg", "deep", "nested", "file.ts"), "")

	// Nearest directory wins, searching upward.
	if got := findTSConfig(filepath.Join(root, "pkg", "deep", "nested"), defaultTSConfigNames); got != filepath.Join(root, "pkg", "tsconfig.app.json") {
		t.Errorf("findTSConfig = %q, want pkg/tsconfig.app.json", got)
	}

	// tsconfig.json outranks the variants in the same directory.
	writeFile(t, filepath.Join(root, "pkg", "tsconfig.json"), "{}")
	if got := findTSConfig(filepath.Join(root, "pkg", "deep", "nested"), defaultTSConfigNames); got != filepath.Join(root, "pkg", "tsconfig.json") {
		t.Errorf("findTSConfig = %q, want pkg/tsconfig.json", got)
	}
}
