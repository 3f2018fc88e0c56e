package dyaml

import (
	"sort"
	"strconv"
)

// ChangeKind classifies one semantic difference between two value trees.
type ChangeKind int

const (
	Added ChangeKind = iota
	Removed
	Changed
)

func (k ChangeKind) String() string {
	switch k {
	case Added:
		return "added"
	case Removed:
		return "removed"
	default:
		return "changed"
	}
}

// Change is a single semantic difference located by path. Annotation marks
// changes to $human$ fields so callers can report or ignore commentary drift
// separately from data drift.
type Change struct {
	Path       string     `json:"path"`
	Kind       ChangeKind `json:"kind"`
	Old        any        `json:"old,omitempty"`
	New        any        `json:"new,omitempty"`
	Annotation bool       `json:"annotation,omitempty"`
}

// DiffOptions controls tree comparison.
type DiffOptions struct {
	// IgnoreAnnotations drops changes whose path ends in a $human$ field.
	IgnoreAnnotations bool
}

// Diff compares two value trees structurally, ignoring any formatting
// concerns, and returns the ordered list of differences. Mapping keys are
// visited in lexicographic order so the result is deterministic.
func Diff(a, b any, opt DiffOptions) []Change {
	var out []Change
	diffValue(a, b, nil, opt, &out)
	return out
}

func diffValue(a, b any, path Path, opt DiffOptions, out *[]Change) {
	am, aIsMap := a.(map[string]any)
	bm, bIsMap := b.(map[string]any)
	if aIsMap && bIsMap {
		keys := unionKeys(am, bm)
		for _, k := range keys {
			av, aok := am[k]
			bv, bok := bm[k]
			child := path.Child(k)
			switch {
			case aok && !bok:
				record(out, Change{Path: child.String(), Kind: Removed, Old: av}, k, opt)
			case !aok && bok:
				record(out, Change{Path: child.String(), Kind: Added, New: bv}, k, opt)
			default:
				diffValue(av, bv, child, opt, out)
			}
		}
		return
	}

	as, aIsSeq := a.([]any)
	bs, bIsSeq := b.([]any)
	if aIsSeq && bIsSeq {
		n := len(as)
		if len(bs) > n {
			n = len(bs)
		}
		for i := 0; i < n; i++ {
			child := path.Child(strconv.Itoa(i))
			switch {
			case i >= len(bs):
				record(out, Change{Path: child.String(), Kind: Removed, Old: as[i]}, "", opt)
			case i >= len(as):
				record(out, Change{Path: child.String(), Kind: Added, New: bs[i]}, "", opt)
			default:
				diffValue(as[i], bs[i], child, opt, out)
			}
		}
		return
	}

	if !Equal(a, b) {
		key := ""
		if len(path) > 0 {
			key = path[len(path)-1]
		}
		record(out, Change{Path: path.String(), Kind: Changed, Old: a, New: b}, key, opt)
	}
}

func record(out *[]Change, c Change, key string, opt DiffOptions) {
	c.Annotation = key == AnnotationKey
	if c.Annotation && opt.IgnoreAnnotations {
		return
	}
	*out = append(*out, c)
}

func unionKeys(a, b map[string]any) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	keys := make([]string, 0, len(a)+len(b))
	for k := range a {
		seen[k] = struct{}{}
		keys = append(keys, k)
	}
	for k := range b {
		if _, ok := seen[k]; !ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}
