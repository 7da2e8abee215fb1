package util

import (
	"reflect"
	"testing"
)

func TestSortedStringKeys(t *testing.T) {
	m := map[string]int{"b.ts": 2, "a.ts": 1, "c/d.ts": 3}
	got := SortedStringKeys(m)
	want := []string{"a.ts", "b.ts", "c/d.ts"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SortedStringKeys = %v, want %v", got, want)
	}
}

func TestSortedStringKeysEmpty(t *testing.T) {
	if got := SortedStringKeys(map[string]struct{}{}); len(got) != 0 {
		t.Errorf("expected empty slice, got %v", got)
	}
}
