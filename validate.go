package dyaml

import (
	"errors"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/exergy-connect/RestrictedYAML/checksum"
)

// Validate checks whether data is already canonical restricted-form text.
// Every check is accumulated rather than short-circuited; only a failed basic
// parse suppresses the structural checks that depend on it. Tabs are checked
// before parsing because they may themselves cause the parse to fail. The
// authoritative canonicality verdict is the final re-encode comparison; the
// line-level checks exist to produce more actionable diagnostics first.
func Validate(data []byte) Result {
	text := string(data)
	lines := strings.Split(text, "\n")
	var errs, warns Issues

	tabFound := false
	for i, line := range lines {
		if strings.Contains(line, "\t") {
			tabFound = true
			errs = append(errs, Issue{Line: i + 1, Code: CodeTab, Severity: Error,
				Message: "tabs not allowed, use 2 spaces for indentation"})
		}
	}

	for i, line := range lines {
		n := i + 1
		stripped := strings.TrimSpace(line)

		if strings.HasPrefix(stripped, "#") {
			errs = append(errs, Issue{Line: n, Code: CodeComment, Severity: Error,
				Message: "comments not allowed (use " + AnnotationKey + " fields instead)"})
		} else if pos := scanOutsideQuotes(line, "#"); pos >= 0 {
			if after := strings.TrimSpace(line[pos+1:]); after != "" {
				errs = append(errs, Issue{Line: n, Code: CodeComment, Severity: Error,
					Message: "inline comments not allowed (use " + AnnotationKey + " fields instead)"})
			}
		}

		if stripped == "---" || stripped == "..." || strings.HasPrefix(stripped, "--- ") {
			errs = append(errs, Issue{Line: n, Code: CodeDocumentMarker, Severity: Error,
				Message: "document markers (---, ...) not allowed"})
		}

		if scanOutsideQuotes(line, "&*") >= 0 {
			errs = append(errs, Issue{Line: n, Code: CodeAnchorAlias, Severity: Error,
				Message: "anchors (&) and aliases (*) not allowed"})
		}

		if flowIndicatorAt(line) >= 0 {
			errs = append(errs, Issue{Line: n, Code: CodeFlowStyle, Severity: Error,
				Message: "flow style ({...}, [...]) not allowed, use block style"})
		}

		if stripped != "" && strings.TrimRight(line, " ") != line {
			errs = append(errs, Issue{Line: n, Code: CodeTrailingSpace, Severity: Error,
				Message: "trailing spaces not allowed"})
		}
	}

	var tree any
	parsed := false
	if !tabFound {
		var root yaml.Node
		if err := yaml.Unmarshal(data, &root); err != nil {
			errs = append(errs, Issue{Line: 0, Code: CodeParseError, Severity: Error,
				Message: "invalid YAML: " + err.Error()})
		} else if root.Kind != 0 && len(root.Content) > 0 {
			doc := root.Content[0]
			checkNode(doc, nil, &errs, &warns)
			v, err := nodeToValue(doc)
			var dk *DuplicateKeyError
			switch {
			case errors.As(err, &dk):
				errs = append(errs, Issue{Line: dk.Line, Code: CodeDuplicateKey, Severity: Error,
					Message: err.Error()})
			case err != nil:
				errs = append(errs, Issue{Line: 0, Code: CodeParseError, Severity: Error,
					Message: err.Error()})
			default:
				tree = v
				parsed = true
			}
		} else {
			// Empty document: the canonical rendering of null is "null".
			parsed = true
		}
	}

	if parsed && Encode(tree) != strings.TrimSpace(text) {
		errs = append(errs, Issue{Line: 0, Code: CodeNotCanonical, Severity: Error,
			Message: "document is not in canonical restricted form (re-encoding differs)"})
	}

	return Result{Valid: len(errs) == 0, Errors: errs, Warnings: warns}
}

// checkNode verifies per-mapping structural rules over the parsed node tree,
// which preserves key order and source positions.
func checkNode(n *yaml.Node, path Path, errs, warns *Issues) {
	switch n.Kind {
	case yaml.MappingNode:
		keys := make([]string, 0, len(n.Content)/2)
		annoSeen := false
		for i := 0; i+1 < len(n.Content); i += 2 {
			k := n.Content[i]
			v := n.Content[i+1]
			keys = append(keys, k.Value)

			if k.Value == AnnotationKey {
				if annoSeen {
					*errs = append(*errs, Issue{Line: k.Line, Path: path.String(), Code: CodeAnnotationRepeated,
						Severity: Error, Message: "multiple " + AnnotationKey + " fields in one mapping (only one allowed)"})
				}
				annoSeen = true
				if i != 0 {
					*warns = append(*warns, Issue{Line: k.Line, Path: path.String(), Code: CodeAnnotationPosition,
						Severity: Warning, Message: AnnotationKey + " field must be the first key"})
				}
				if v.Kind == yaml.ScalarNode {
					if err := checksum.Validate(v.Value); err != nil {
						*errs = append(*errs, Issue{Line: v.Line, Path: path.Child(AnnotationKey).String(),
							Code: CodeChecksumMismatch, Severity: Error, Message: err.Error()})
					}
				}
			} else if !identRe.MatchString(k.Value) {
				*warns = append(*warns, Issue{Line: k.Line, Path: path.String(), Code: CodeInvalidKey,
					Severity: Warning, Message: "mapping key " + strconv.Quote(k.Value) + " is not a restricted identifier"})
			}

			checkNode(v, path.Child(k.Value), errs, warns)
		}

		rest := make([]string, 0, len(keys))
		for _, k := range keys {
			if k != AnnotationKey {
				rest = append(rest, k)
			}
		}
		if !sort.StringsAreSorted(rest) {
			*warns = append(*warns, Issue{Line: n.Line, Path: path.String(), Code: CodeKeyOrder,
				Severity: Warning, Message: "mapping keys not in strict lexicographic order"})
		}
	case yaml.SequenceNode:
		for i, item := range n.Content {
			checkNode(item, path.Child(strconv.Itoa(i)), errs, warns)
		}
	}
}

// scanOutsideQuotes returns the index of the first byte from set that occurs
// outside single- or double-quoted spans, or -1.
func scanOutsideQuotes(line, set string) int {
	inQuotes := false
	var quoteChar byte
	for i := 0; i < len(line); i++ {
		c := line[i]
		if (c == '"' || c == '\'') && (i == 0 || line[i-1] != '\\') {
			if !inQuotes {
				inQuotes = true
				quoteChar = c
			} else if c == quoteChar {
				inQuotes = false
			}
			continue
		}
		if !inQuotes && strings.IndexByte(set, c) >= 0 {
			return i
		}
	}
	return -1
}

// flowIndicatorAt finds a flow-collection indicator outside quotes, skipping
// the canonical empty tokens "[]" and "{}".
func flowIndicatorAt(line string) int {
	inQuotes := false
	var quoteChar byte
	for i := 0; i < len(line); i++ {
		c := line[i]
		if (c == '"' || c == '\'') && (i == 0 || line[i-1] != '\\') {
			if !inQuotes {
				inQuotes = true
				quoteChar = c
			} else if c == quoteChar {
				inQuotes = false
			}
			continue
		}
		if inQuotes {
			continue
		}
		if c == '[' || c == '{' {
			if i+1 < len(line) && ((c == '[' && line[i+1] == ']') || (c == '{' && line[i+1] == '}')) {
				i++ // canonical empty collection token
				continue
			}
			return i
		}
		if c == ']' || c == '}' {
			return i
		}
	}
	return -1
}
