package dyaml

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

const indentUnit = "  "

// scalarIndicators force quoting when present anywhere in a scalar;
// startIndicators force quoting when a scalar begins with one of them.
const (
	scalarIndicators = ":#|>-{}[]&*!%@`\"' \t"
	startIndicators  = "-?:[]{}!*&#|>'\"%@ "
)

var (
	identRe       = regexp.MustCompile(`^[A-Za-z0-9_]+$`)
	integerRe     = regexp.MustCompile(`^-?[0-9]+$`)
	floatRe       = regexp.MustCompile(`^-?[0-9]+\.[0-9]+$`)
	leadingZeroRe = regexp.MustCompile(`^0[0-9]`)
	radixPrefixRe = regexp.MustCompile(`^0[oOxX]`)
	timestampRe   = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)
	bareFracRe    = regexp.MustCompile(`^\.\d`)
	exponentRe    = regexp.MustCompile(`^-?\d+\.?\d*[eE][+-]?\d+$`)
)

// keywordSpellings are the plain-scalar spellings a YAML resolver turns into
// booleans, nulls, special floats, or merge keys. A string spelled exactly
// like one of these is emitted quoted so it reparses as a string. The set
// covers every casing the resolver accepts, plus the YAML 1.1 booleans.
var keywordSpellings = map[string]struct{}{
	"true": {}, "True": {}, "TRUE": {},
	"false": {}, "False": {}, "FALSE": {},
	"yes": {}, "Yes": {}, "YES": {},
	"no": {}, "No": {}, "NO": {},
	"on": {}, "On": {}, "ON": {},
	"off": {}, "Off": {}, "OFF": {},
	"null": {}, "Null": {}, "NULL": {}, "~": {},
	".nan": {}, ".NaN": {}, ".NAN": {},
	".inf": {}, ".Inf": {}, ".INF": {},
	"+.inf": {}, "+.Inf": {}, "+.INF": {},
	"-.inf": {}, "-.Inf": {}, "-.INF": {},
	"<<": {},
}

// Encode renders a value tree into its unique restricted-form text. It is
// total and deterministic: output depends only on the tree's content, never
// on prior formatting. No trailing newline is emitted.
func Encode(v any) string {
	return renderValue(v, 0)
}

// renderValue returns either a bare scalar token or a block of newline-joined
// lines, each prefixed with indent levels of two spaces.
func renderValue(v any, indent int) string {
	switch t := v.(type) {
	case map[string]any:
		if len(t) == 0 {
			return "{}"
		}
		return renderMapping(t, indent)
	case []any:
		if len(t) == 0 {
			return "[]"
		}
		return renderSequence(t, indent)
	default:
		return scalarToken(v)
	}
}

func renderMapping(m map[string]any, indent int) string {
	prefix := strings.Repeat(indentUnit, indent)
	lines := make([]string, 0, len(m))
	for _, k := range sortedKeys(m) {
		v := m[k]
		if isBlock(v) {
			lines = append(lines, prefix+encodeKey(k)+":")
			lines = append(lines, renderValue(v, indent+1))
		} else {
			lines = append(lines, prefix+encodeKey(k)+": "+renderValue(v, indent+1))
		}
	}
	return strings.Join(lines, "\n")
}

func renderSequence(s []any, indent int) string {
	prefix := strings.Repeat(indentUnit, indent)
	lines := make([]string, 0, len(s))
	for _, item := range s {
		if isBlock(item) {
			// Fold the child block's first line onto the dash; "- " is one
			// indent unit wide, so continuation lines stay aligned.
			block := renderValue(item, indent+1)
			first, rest, multi := strings.Cut(block, "\n")
			lines = append(lines, prefix+"- "+strings.TrimPrefix(first, prefix+indentUnit))
			if multi {
				lines = append(lines, rest)
			}
		} else {
			lines = append(lines, prefix+"- "+renderValue(item, indent+1))
		}
	}
	return strings.Join(lines, "\n")
}

// isBlock reports whether a value renders as an indented block rather than a
// single inline token.
func isBlock(v any) bool {
	switch t := v.(type) {
	case map[string]any:
		return len(t) > 0
	case []any:
		return len(t) > 0
	}
	return false
}

// sortedKeys returns the mapping keys in strict lexicographic order with the
// annotation key, when present, forced first regardless of its rank.
func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	annotated := false
	for k := range m {
		if k == AnnotationKey {
			annotated = true
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if annotated {
		keys = append([]string{AnnotationKey}, keys...)
	}
	return keys
}

// encodeKey emits a mapping key, unquoted only when it matches the restricted
// identifier pattern. Non-identifier keys fall back to quoted form; such
// output is outside the declared canonical key grammar and the validator
// flags it.
func encodeKey(k string) string {
	if identRe.MatchString(k) {
		return k
	}
	return quote(k)
}

func scalarToken(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case bool:
		if t {
			return "true"
		}
		return "false"
	case int64:
		return strconv.FormatInt(t, 10)
	case int:
		return strconv.FormatInt(int64(t), 10)
	case int32:
		return strconv.FormatInt(int64(t), 10)
	case uint64:
		return strconv.FormatUint(t, 10)
	case float64:
		return canonicalFloat(t)
	case float32:
		return canonicalFloat(float64(t))
	case string:
		if needsQuotes(t) {
			return quote(t)
		}
		return t
	default:
		// Unknown kinds degrade to their quoted string form.
		return quote(fmt.Sprint(v))
	}
}

// canonicalFloat renders a float in canonical decimal form: at least one
// digit on each side of the point, no trailing zeros beyond the last. NaN and
// the signed infinities become quoted sentinel tokens. Magnitudes that would
// need exponent notation are emitted as a quoted literal of their default
// string form rather than silently reshaped.
func canonicalFloat(f float64) string {
	if math.IsNaN(f) {
		return `".nan"`
	}
	if math.IsInf(f, 1) {
		return `".inf"`
	}
	if math.IsInf(f, -1) {
		return `"-.inf"`
	}
	abs := math.Abs(f)
	if f != 0 && (abs < 1e-4 || abs >= 1e16) {
		return `"` + strconv.FormatFloat(f, 'g', -1, 64) + `"`
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// needsQuotes applies the deterministic quoting rules: a scalar is emitted
// unquoted only when no rule below fires.
func needsQuotes(s string) bool {
	if s == "" {
		return true
	}
	if strings.ContainsAny(s, scalarIndicators) {
		return true
	}
	if strings.ContainsRune(startIndicators, rune(s[0])) {
		return true
	}
	first, _ := utf8.DecodeRuneInString(s)
	last, _ := utf8.DecodeLastRuneInString(s)
	if unicode.IsSpace(first) || unicode.IsSpace(last) {
		return true
	}
	if strings.ContainsAny(s, "\n\r") {
		return true
	}
	if integerRe.MatchString(s) || floatRe.MatchString(s) {
		return true
	}
	if leadingZeroRe.MatchString(s) {
		return true
	}
	if strings.Contains(s, "_") && integerRe.MatchString(strings.ReplaceAll(s, "_", "")) {
		return true
	}
	if strings.HasPrefix(s, "+") {
		return true
	}
	if radixPrefixRe.MatchString(s) || timestampRe.MatchString(s) || bareFracRe.MatchString(s) {
		return true
	}
	if _, ok := keywordSpellings[s]; ok {
		return true
	}
	return exponentRe.MatchString(s)
}

func quote(s string) string {
	return `"` + escapeString(s) + `"`
}

// escapeString applies the minimal fixed escape table: backslash, quote,
// newline, tab, and remaining control characters as \xHH.
func escapeString(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '\\':
			b.WriteString(`\\`)
		case r == '"':
			b.WriteString(`\"`)
		case r == '\n':
			b.WriteString(`\n`)
		case r == '\t':
			b.WriteString(`\t`)
		case r < 0x20:
			fmt.Fprintf(&b, `\x%02x`, r)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
