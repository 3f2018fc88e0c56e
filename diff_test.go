package dyaml_test

import (
	"testing"

	dyaml "github.com/exergy-connect/RestrictedYAML"
)

func TestDiff_EqualTrees(t *testing.T) {
	a := map[string]any{"x": int64(1), "y": []any{"a", "b"}}
	b := map[string]any{"x": int64(1), "y": []any{"a", "b"}}
	if changes := dyaml.Diff(a, b, dyaml.DiffOptions{}); len(changes) != 0 {
		t.Fatalf("expected no changes, got %v", changes)
	}
}

func TestDiff_Kinds(t *testing.T) {
	a := map[string]any{"keep": int64(1), "gone": "old", "edit": "before", "list": []any{int64(1), int64(2)}}
	b := map[string]any{"keep": int64(1), "new": "fresh", "edit": "after", "list": []any{int64(1)}}
	changes := dyaml.Diff(a, b, dyaml.DiffOptions{})
	got := map[string]dyaml.ChangeKind{}
	for _, c := range changes {
		got[c.Path] = c.Kind
	}
	if got["/gone"] != dyaml.Removed || got["/new"] != dyaml.Added || got["/edit"] != dyaml.Changed {
		t.Fatalf("changes = %v", changes)
	}
	if got["/list/1"] != dyaml.Removed {
		t.Fatalf("expected removed sequence tail: %v", changes)
	}
	if len(changes) != 4 {
		t.Fatalf("expected 4 changes, got %v", changes)
	}
}

func TestDiff_NumericKindsDistinct(t *testing.T) {
	changes := dyaml.Diff(map[string]any{"n": int64(1)}, map[string]any{"n": 1.0}, dyaml.DiffOptions{})
	if len(changes) != 1 || changes[0].Kind != dyaml.Changed {
		t.Fatalf("int64 vs float64 must differ: %v", changes)
	}
}

func TestDiff_IgnoreAnnotations(t *testing.T) {
	a := map[string]any{dyaml.AnnotationKey: "old note", "v": int64(1)}
	b := map[string]any{dyaml.AnnotationKey: "new note", "v": int64(2)}
	all := dyaml.Diff(a, b, dyaml.DiffOptions{})
	if len(all) != 2 {
		t.Fatalf("expected 2 changes, got %v", all)
	}
	var annotated int
	for _, c := range all {
		if c.Annotation {
			annotated++
		}
	}
	if annotated != 1 {
		t.Fatalf("expected exactly one annotation change: %v", all)
	}
	filtered := dyaml.Diff(a, b, dyaml.DiffOptions{IgnoreAnnotations: true})
	if len(filtered) != 1 || filtered[0].Path != "/v" {
		t.Fatalf("filtered = %v", filtered)
	}
}

func TestDiff_Deterministic(t *testing.T) {
	a := map[string]any{"b": int64(1), "a": int64(2), "c": int64(3)}
	b := map[string]any{}
	changes := dyaml.Diff(a, b, dyaml.DiffOptions{})
	if len(changes) != 3 || changes[0].Path != "/a" || changes[1].Path != "/b" || changes[2].Path != "/c" {
		t.Fatalf("changes not in lexicographic order: %v", changes)
	}
}
