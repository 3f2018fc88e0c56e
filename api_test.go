package dyaml_test

import (
	"strings"
	"testing"

	dyaml "github.com/exergy-connect/RestrictedYAML"
)

func TestNormalize_PreservesCommentsAsData(t *testing.T) {
	src := []byte(`# User profile
name: John  # User's name
age: 30
`)
	out, err := dyaml.Normalize(src, dyaml.SynthOptions{Preserve: true})
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	lines := strings.Split(out, "\n")
	if !strings.HasPrefix(lines[0], `"$human$":`) {
		t.Fatalf("annotation must lead the output:\n%s", out)
	}
	if !strings.Contains(lines[0], "User profile") || !strings.Contains(lines[0], "name: User's name") {
		t.Fatalf("consolidated comments missing:\n%s", out)
	}
	// Normalized output is canonical.
	res := dyaml.Validate([]byte(out))
	if !res.Valid {
		t.Fatalf("normalized output invalid: %v\n%s", res.Errors, out)
	}
}

func TestNormalize_StripMode(t *testing.T) {
	src := []byte("# drop me\nname: John\n")
	out, err := dyaml.Normalize(src, dyaml.SynthOptions{Preserve: false})
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if out != "name: John" {
		t.Fatalf("out = %q", out)
	}
}

func TestNormalize_SortsAndCanonicalizes(t *testing.T) {
	src := []byte("zebra: 1\napple: '2'\nbanana: 03.50\n")
	out, err := dyaml.Normalize(src, dyaml.SynthOptions{})
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	want := "apple: \"2\"\nbanana: 3.5\nzebra: 1"
	if out != want {
		t.Fatalf("out = %q, want %q", out, want)
	}
}

func TestNormalize_MalformedInput(t *testing.T) {
	if _, err := dyaml.Normalize([]byte("a: [unclosed"), dyaml.SynthOptions{}); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	src := []byte("b: 2\na: 1\n")
	once, err := dyaml.Normalize(src, dyaml.SynthOptions{Preserve: true})
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	// No comments and no pre-existing annotations: re-normalizing canonical
	// output must be a fixed point.
	twice, err := dyaml.Normalize([]byte(once), dyaml.SynthOptions{Preserve: true})
	if err != nil {
		t.Fatalf("re-normalize: %v", err)
	}
	if once != twice {
		t.Fatalf("normalize not stable:\n%s\nvs\n%s", once, twice)
	}
}
