package dyaml

import (
	"strconv"
	"strings"

	"github.com/exergy-connect/RestrictedYAML/checksum"
)

// SynthOptions controls annotation synthesis.
type SynthOptions struct {
	// Preserve lifts extracted comments into $human$ fields. When false every
	// existing $human$ field is stripped instead and the comments are ignored.
	Preserve bool
	// StampChecksum appends a fresh [crc32:...] marker to every $human$ field
	// after consolidation, replacing any pre-existing marker.
	StampChecksum bool
}

// Synthesize produces an augmented value tree in which every comment-bearing
// mapping carries a single consolidated $human$ field. The input tree is not
// mutated.
//
// When a mapping already carries a $human$ field the consolidated text is
// appended to it with the same " | " join; repeated synthesis against its own
// output therefore grows the field rather than being idempotent.
func Synthesize(v any, comments []Comment, opt SynthOptions) any {
	if !opt.Preserve {
		return Strip(v)
	}
	out := addAnnotations(v, comments, nil)
	if opt.StampChecksum {
		out = stampAnnotations(out)
	}
	return out
}

// Strip recursively removes every $human$ field from every mapping, leaving
// all other data untouched. Idempotent and total.
func Strip(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			if k == AnnotationKey {
				continue
			}
			out[k] = Strip(vv)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = Strip(item)
		}
		return out
	default:
		return v
	}
}

func addAnnotations(v any, comments []Comment, path Path) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t)+1)
		consolidated := consolidate(comments, path, t)
		if existing, ok := t[AnnotationKey].(string); ok {
			if consolidated != "" {
				consolidated = existing + " | " + consolidated
			} else {
				consolidated = existing
			}
		}
		if consolidated != "" {
			out[AnnotationKey] = consolidated
		}
		for k, vv := range t {
			if k == AnnotationKey {
				continue
			}
			out[k] = addAnnotations(vv, comments, path.Child(k))
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = addAnnotations(item, comments, path.Child(strconv.Itoa(i)))
		}
		return out
	default:
		return v
	}
}

// consolidate joins, in extraction order, every comment record identifying
// the scope of the mapping m at path: standalone records at the mapping's own
// path, trailing records on its scalar entries, and the trailing record on
// the parent entry that introduced the mapping itself. Keyed records render
// as "key: text"; literal pipes are escaped to keep the join reversible.
func consolidate(comments []Comment, path Path, m map[string]any) string {
	var parts []string
	for _, c := range comments {
		switch {
		case c.Path.Equal(path) && c.Key == "":
			parts = append(parts, escapePipes(c.Text))
		case c.Path.Equal(path) && c.Key != "" && !isMapping(m[c.Key]):
			parts = append(parts, c.Key+": "+escapePipes(c.Text))
		case len(path) > 0 && c.Path.Equal(path.Parent()) && c.Key == path[len(path)-1]:
			parts = append(parts, c.Key+": "+escapePipes(c.Text))
		}
	}
	return strings.Join(parts, " | ")
}

func isMapping(v any) bool {
	_, ok := v.(map[string]any)
	return ok
}

func escapePipes(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

// stampAnnotations re-stamps the checksum marker on every $human$ field at
// every depth.
func stampAnnotations(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			if k == AnnotationKey {
				if s, ok := vv.(string); ok {
					out[k] = checksum.Stamp(s)
					continue
				}
			}
			out[k] = stampAnnotations(vv)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = stampAnnotations(item)
		}
		return out
	default:
		return v
	}
}
