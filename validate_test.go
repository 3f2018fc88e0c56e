package dyaml_test

import (
	"testing"

	dyaml "github.com/exergy-connect/RestrictedYAML"
	"github.com/exergy-connect/RestrictedYAML/checksum"
)

func hasCode(iss dyaml.Issues, code string) bool {
	for _, is := range iss {
		if is.Code == code {
			return true
		}
	}
	return false
}

func codeAtLine(iss dyaml.Issues, code string, line int) bool {
	for _, is := range iss {
		if is.Code == code && is.Line == line {
			return true
		}
	}
	return false
}

func TestValidate_AcceptsCanonical(t *testing.T) {
	docs := []string{
		"active: true\nage: 30\nname: John",
		"null",
		"list: []\nmap: {}",
		"- 1\n- two\n- 3.5",
	}
	for _, doc := range docs {
		res := dyaml.Validate([]byte(doc))
		if !res.Valid {
			t.Errorf("doc %q invalid: %v", doc, res.Errors)
		}
	}
}

func TestValidate_RejectsLineComment(t *testing.T) {
	res := dyaml.Validate([]byte("# Comment\nage: 30\nname: John"))
	if res.Valid {
		t.Fatalf("expected invalid")
	}
	if !codeAtLine(res.Errors, dyaml.CodeComment, 1) {
		t.Fatalf("expected comment error on line 1: %v", res.Errors)
	}
}

func TestValidate_RejectsInlineComment(t *testing.T) {
	res := dyaml.Validate([]byte("age: 30\nname: John  # inline"))
	if res.Valid || !codeAtLine(res.Errors, dyaml.CodeComment, 2) {
		t.Fatalf("expected inline comment error on line 2: %v", res.Errors)
	}
}

func TestValidate_AllowsHashInsideQuotes(t *testing.T) {
	res := dyaml.Validate([]byte(`tag: "a # b"`))
	if hasCode(res.Errors, dyaml.CodeComment) {
		t.Fatalf("hash inside quotes flagged as comment: %v", res.Errors)
	}
}

func TestValidate_RejectsTabs(t *testing.T) {
	res := dyaml.Validate([]byte("name:\tJohn\nage: 30"))
	if res.Valid || !codeAtLine(res.Errors, dyaml.CodeTab, 1) {
		t.Fatalf("expected tab error on line 1: %v", res.Errors)
	}
}

func TestValidate_RejectsFlowStyle(t *testing.T) {
	res := dyaml.Validate([]byte("config: {key: value}"))
	if res.Valid || !codeAtLine(res.Errors, dyaml.CodeFlowStyle, 1) {
		t.Fatalf("expected flow style error on line 1: %v", res.Errors)
	}
	res = dyaml.Validate([]byte("items: [1, 2]"))
	if res.Valid || !hasCode(res.Errors, dyaml.CodeFlowStyle) {
		t.Fatalf("expected flow style error: %v", res.Errors)
	}
}

func TestValidate_RejectsAnchorsAndAliases(t *testing.T) {
	res := dyaml.Validate([]byte("base: &anchor 1\nother: *anchor"))
	if res.Valid {
		t.Fatalf("expected invalid")
	}
	if !codeAtLine(res.Errors, dyaml.CodeAnchorAlias, 1) || !codeAtLine(res.Errors, dyaml.CodeAnchorAlias, 2) {
		t.Fatalf("expected anchor/alias errors on both lines: %v", res.Errors)
	}
}

func TestValidate_RejectsDocumentMarkers(t *testing.T) {
	res := dyaml.Validate([]byte("---\nname: John"))
	if res.Valid || !codeAtLine(res.Errors, dyaml.CodeDocumentMarker, 1) {
		t.Fatalf("expected document marker error: %v", res.Errors)
	}
}

func TestValidate_RejectsTrailingSpace(t *testing.T) {
	res := dyaml.Validate([]byte("age: 30 \nname: John"))
	if res.Valid || !codeAtLine(res.Errors, dyaml.CodeTrailingSpace, 1) {
		t.Fatalf("expected trailing space error on line 1: %v", res.Errors)
	}
}

func TestValidate_KeyOrderIsWarning(t *testing.T) {
	res := dyaml.Validate([]byte("name: John\nage: 30"))
	if !hasCode(res.Warnings, dyaml.CodeKeyOrder) {
		t.Fatalf("expected key order warning: %v", res.Warnings)
	}
	// Out-of-order keys also fail the authoritative canonicality check.
	if res.Valid || !hasCode(res.Errors, dyaml.CodeNotCanonical) {
		t.Fatalf("expected canonicality error: %v", res.Errors)
	}
}

func TestValidate_AnnotationPosition(t *testing.T) {
	res := dyaml.Validate([]byte("age: 30\n\"$human$\": note"))
	if !hasCode(res.Warnings, dyaml.CodeAnnotationPosition) {
		t.Fatalf("expected annotation position warning: %v", res.Warnings)
	}
}

func TestValidate_ChecksumMismatch(t *testing.T) {
	res := dyaml.Validate([]byte(`"$human$": "note[crc32:AAAAAA]"` + "\nage: 30"))
	if res.Valid || !hasCode(res.Errors, dyaml.CodeChecksumMismatch) {
		t.Fatalf("expected checksum mismatch error: %v", res.Errors)
	}
}

func TestValidate_StampedAnnotationRoundTrip(t *testing.T) {
	tree := map[string]any{
		dyaml.AnnotationKey: checksum.Stamp("reviewed by ops"),
		"age":               int64(30),
	}
	text := dyaml.Encode(tree)
	res := dyaml.Validate([]byte(text))
	if !res.Valid {
		t.Fatalf("stamped canonical doc invalid:\n%s\n%v", text, res.Errors)
	}
}

func TestValidate_DuplicateKey(t *testing.T) {
	res := dyaml.Validate([]byte("age: 1\nage: 2"))
	if res.Valid || !hasCode(res.Errors, dyaml.CodeDuplicateKey) {
		t.Fatalf("expected duplicate key error: %v", res.Errors)
	}
}

func TestValidate_NonCanonicalSpacing(t *testing.T) {
	// Parseable, ordered, but wrong indentation width.
	res := dyaml.Validate([]byte("config:\n    host: localhost"))
	if res.Valid || !hasCode(res.Errors, dyaml.CodeNotCanonical) {
		t.Fatalf("expected canonicality error: %v", res.Errors)
	}
}
