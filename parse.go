package dyaml

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// CommentKind classifies an extracted comment record.
type CommentKind int

const (
	// CommentStandalone is a full-line comment.
	CommentStandalone CommentKind = iota
	// CommentTrailing is an inline comment following a "key: value" entry.
	CommentTrailing
)

// Comment is a single comment record extracted from the original input text.
// Path addresses the enclosing structure; Key, when non-empty, names the
// entry within that structure the comment is attached to. Records are
// produced once per parse and consumed entirely by Synthesize.
type Comment struct {
	Text string
	Kind CommentKind
	Line int
	Path Path
	Key  string
}

// DuplicateKeyError reports a duplicate key found in a YAML mapping with both
// the first occurrence position and the duplicate occurrence position.
type DuplicateKeyError struct {
	Key       string
	FirstLine int
	FirstCol  int
	Line      int
	Col       int
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate key %q at %d:%d (first at %d:%d)", e.Key, e.Line, e.Col, e.FirstLine, e.FirstCol)
}

// Parse decodes arbitrary superset YAML into a value tree plus the comment
// records recovered from the text. Duplicate mapping keys are rejected.
// Comment-to-path association is best effort: standalone and trailing
// comments attached to mapping entries are recovered with full paths;
// comments floating inside scalar sequences may be dropped.
func Parse(data []byte) (any, []Comment, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, nil, err
	}
	if root.Kind == 0 || len(root.Content) == 0 {
		return nil, nil, nil
	}
	doc := root.Content[0]
	v, err := nodeToValue(doc)
	if err != nil {
		return nil, nil, err
	}
	var comments []Comment
	appendStandalone(root.HeadComment, doc.Line, nil, &comments)
	collectComments(doc, nil, &comments)
	appendStandalone(root.FootComment, doc.Line, nil, &comments)
	return v, comments, nil
}

// nodeToValue converts a yaml.Node into the plain value-tree shape
// (map[string]any, []any, primitives), rejecting duplicate keys.
func nodeToValue(n *yaml.Node) (any, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return nodeToValue(n.Content[0])
	case yaml.AliasNode:
		if n.Alias != nil {
			return nodeToValue(n.Alias)
		}
		return nil, nil
	case yaml.MappingNode:
		m := make(map[string]any, len(n.Content)/2)
		first := make(map[string][2]int, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			k := n.Content[i]
			v := n.Content[i+1]
			key := k.Value
			if pos, dup := first[key]; dup {
				return nil, &DuplicateKeyError{Key: key, FirstLine: pos[0], FirstCol: pos[1], Line: k.Line, Col: k.Column}
			}
			first[key] = [2]int{k.Line, k.Column}
			val, err := nodeToValue(v)
			if err != nil {
				return nil, err
			}
			m[key] = val
		}
		return m, nil
	case yaml.SequenceNode:
		arr := make([]any, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := nodeToValue(c)
			if err != nil {
				return nil, err
			}
			arr = append(arr, v)
		}
		return arr, nil
	case yaml.ScalarNode:
		switch n.Tag {
		case "!!str", "!", "":
			return n.Value, nil
		case "!!null":
			return nil, nil
		case "!!bool":
			if n.Value == "true" {
				return true, nil
			}
			if n.Value == "false" {
				return false, nil
			}
			return n.Value, nil
		case "!!int":
			if i, err := strconv.ParseInt(n.Value, 0, 64); err == nil {
				return i, nil
			}
			return n.Value, nil
		case "!!float":
			if f, err := strconv.ParseFloat(n.Value, 64); err == nil {
				return f, nil
			}
			return n.Value, nil
		default:
			return n.Value, nil
		}
	default:
		return nil, nil
	}
}

// collectComments walks the node tree accumulating comment records with the
// path of the enclosing structure. Head comments on a mapping entry become
// standalone records at the mapping's own path; line comments become trailing
// records keyed by the entry they follow.
func collectComments(n *yaml.Node, path Path, out *[]Comment) {
	switch n.Kind {
	case yaml.MappingNode:
		// Comments above the block itself (e.g. at the top of the document)
		// attach to the container node rather than its first entry.
		appendStandalone(n.HeadComment, n.Line, path, out)
		for i := 0; i+1 < len(n.Content); i += 2 {
			k := n.Content[i]
			v := n.Content[i+1]
			appendStandalone(k.HeadComment, k.Line, path, out)
			trailing := k.LineComment
			if trailing == "" {
				trailing = v.LineComment
			}
			if text := commentText(trailing); text != "" {
				*out = append(*out, Comment{Text: text, Kind: CommentTrailing, Line: k.Line, Path: path, Key: k.Value})
			}
			appendStandalone(k.FootComment, k.Line, path, out)
			if v.Kind == yaml.MappingNode || v.Kind == yaml.SequenceNode {
				collectComments(v, path.Child(k.Value), out)
			}
		}
	case yaml.SequenceNode:
		appendStandalone(n.HeadComment, n.Line, path, out)
		for i, item := range n.Content {
			itemPath := path.Child(strconv.Itoa(i))
			if item.Kind == yaml.MappingNode || item.Kind == yaml.SequenceNode {
				collectComments(item, itemPath, out)
			} else {
				appendStandalone(item.HeadComment, item.Line, path, out)
			}
		}
	case yaml.ScalarNode:
		appendStandalone(n.HeadComment, n.Line, path, out)
		if text := commentText(n.LineComment); text != "" {
			*out = append(*out, Comment{Text: text, Kind: CommentTrailing, Line: n.Line, Path: path})
		}
	}
}

// appendStandalone splits a possibly multi-line head/foot comment block into
// one standalone record per line. Line numbers are reconstructed by counting
// back from the anchoring node and are therefore approximate when blank lines
// separate the block from its node.
func appendStandalone(block string, anchorLine int, path Path, out *[]Comment) {
	if block == "" {
		return
	}
	lines := strings.Split(block, "\n")
	base := anchorLine - len(lines)
	for i, ln := range lines {
		if text := commentText(ln); text != "" {
			*out = append(*out, Comment{Text: text, Kind: CommentStandalone, Line: base + i, Path: path})
		}
	}
}

func commentText(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "#")
	return strings.TrimSpace(s)
}
