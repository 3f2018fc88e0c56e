package dyaml

import (
	"fmt"
	"strings"
)

// Issue codes (exported consts for IDE completion and type safety by convention)
const (
	CodeParseError         = "parse_error"
	CodeDuplicateKey       = "duplicate_key"
	CodeComment            = "comment"
	CodeDocumentMarker     = "document_marker"
	CodeAnchorAlias        = "anchor_alias"
	CodeTab                = "tab"
	CodeTrailingSpace      = "trailing_space"
	CodeFlowStyle          = "flow_style"
	CodeAnnotationRepeated = "annotation_repeated"
	CodeAnnotationPosition = "annotation_position"
	CodeKeyOrder           = "key_order"
	CodeInvalidKey         = "invalid_key"
	CodeChecksumMismatch   = "checksum_mismatch"
	CodeParityMismatch     = "parity_mismatch"
	CodeParityMissing      = "parity_missing"
	CodeMarkerMalformed    = "marker_malformed"
	CodeNotCanonical       = "not_canonical"
)

// Severity expresses the severity level for issues.
type Severity int

const (
	Warning Severity = iota
	Error
)

// Issue represents a single validation entry.
type Issue struct {
	Line     int    // 1-based source line; 0 for document-level issues.
	Path     string // Slash-separated tree path (for example: /items/2/price).
	Code     string // One of the codes listed above.
	Message  string
	Severity Severity
}

// Issues is a collection of validation entries that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := n
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		if it.Line > 0 {
			fmt.Fprintf(b, "%s at line %d", it.Code, it.Line)
		} else if it.Path != "" {
			fmt.Fprintf(b, "%s at %s", it.Code, it.Path)
		} else {
			b.WriteString(it.Code)
		}
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// Result is the outcome of a validation run. A run always completes and
// returns the full collected set; Valid reflects the error set only.
type Result struct {
	Valid    bool   `json:"valid"`
	Errors   Issues `json:"errors"`
	Warnings Issues `json:"warnings"`
}
