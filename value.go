package dyaml

import "strings"

// Value trees are plain Go values: nil, bool, int64, float64, string, []any
// and map[string]any. Parse, FromJSON and the yaml.Node converters below only
// ever produce this shape; Encode additionally tolerates the smaller Go
// numeric kinds for caller convenience.

// AnnotationKey is the reserved mapping key carrying consolidated human
// commentary as structured data.
const AnnotationKey = "$human$"

// Path addresses a location in a value tree as a sequence of mapping keys and
// stringified sequence indices.
type Path []string

// Child returns a new Path extended by one segment. The receiver is never
// aliased, so paths can be held across recursive calls.
func (p Path) Child(seg string) Path {
	out := make(Path, len(p)+1)
	copy(out, p)
	out[len(p)] = seg
	return out
}

// String renders the path in slash form ("/a/0/b"); the root renders as "/".
func (p Path) String() string {
	if len(p) == 0 {
		return "/"
	}
	return "/" + strings.Join(p, "/")
}

// Equal reports whether two paths address the same location.
func (p Path) Equal(q Path) bool {
	if len(p) != len(q) {
		return false
	}
	for i := range p {
		if p[i] != q[i] {
			return false
		}
	}
	return true
}

// Parent returns the path with its last segment removed; the root's parent is
// the root itself.
func (p Path) Parent() Path {
	if len(p) == 0 {
		return p
	}
	return p[:len(p)-1]
}

// Equal reports deep semantic equality of two value trees. Integer and
// floating-point values are distinct kinds and never compare equal across
// kinds.
func Equal(a, b any) bool {
	switch av := a.(type) {
	case map[string]any:
		bv, ok := b.(map[string]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, v := range av {
			w, ok := bv[k]
			if !ok || !Equal(v, w) {
				return false
			}
		}
		return true
	case []any:
		bv, ok := b.([]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !Equal(av[i], bv[i]) {
				return false
			}
		}
		return true
	default:
		return a == b
	}
}
