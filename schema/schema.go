// Package schema implements schema-driven field encoding for restricted-form
// documents. A JSON-Schema-shaped document annotates field paths with
// x-encoding directives (case normalization, checksum, parity); Apply applies
// them to a value tree and Check verifies them, walking the data and the
// schema's properties/items structure in lockstep.
package schema

import (
	"fmt"
	"strings"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	dyaml "github.com/exergy-connect/RestrictedYAML"
	"github.com/exergy-connect/RestrictedYAML/checksum"
)

// Directive is the set of transformations declared for one field's text
// value via the x-encoding extension. Lowercase and Uppercase are mutually
// exclusive; when both are set Lowercase wins.
type Directive struct {
	Lowercase bool `json:"lowercase,omitempty" yaml:"lowercase"`
	Uppercase bool `json:"uppercase,omitempty" yaml:"uppercase"`
	Checksum  bool `json:"crc32,omitempty" yaml:"crc32"`
	Parity    bool `json:"parity,omitempty" yaml:"parity"`
}

// Schema is a minimal JSON-Schema representation carrying x-encoding
// directives at properties/items nodes. The core never mutates a Schema;
// one instance may be shared read-only across concurrent operations.
type Schema struct {
	Type       string             `json:"type,omitempty" yaml:"type"`
	Properties map[string]*Schema `json:"properties,omitempty" yaml:"properties"`
	Items      *Schema            `json:"items,omitempty" yaml:"items"`
	Required   []string           `json:"required,omitempty" yaml:"required"`
	XEncoding  *Directive         `json:"x-encoding,omitempty" yaml:"x-encoding"`
}

// LoadJSON decodes a schema document from JSON.
func LoadJSON(data []byte) (*Schema, error) {
	var s Schema
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("invalid schema document: %w", err)
	}
	return &s, nil
}

// LoadYAML decodes a schema document from YAML.
func LoadYAML(data []byte) (*Schema, error) {
	var s Schema
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("invalid schema document: %w", err)
	}
	return &s, nil
}

// Load decodes a schema document, accepting JSON first and falling back to
// YAML.
func Load(data []byte) (*Schema, error) {
	if s, err := LoadJSON(data); err == nil {
		return s, nil
	}
	return LoadYAML(data)
}

// Apply walks the value tree and the schema in lockstep and applies each
// resolved directive to its string-valued leaf: strip any existing checksum
// marker, case-transform the residual content, re-stamp the checksum when
// directed, then append the parity marker computed over the value as it
// stands (covering the checksum marker when both are present). A new tree is
// returned; the input is not mutated.
func Apply(v any, s *Schema) any {
	return applyAt(v, s)
}

func applyAt(v any, s *Schema) any {
	if s == nil {
		return v
	}
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[k] = applyAt(vv, s.childFor(k))
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = applyAt(item, s.Items)
		}
		return out
	case string:
		if s.XEncoding != nil {
			return applyDirective(t, s.XEncoding)
		}
		return v
	default:
		return v
	}
}

func applyDirective(value string, d *Directive) string {
	_, content := checksum.Extract(value)
	switch {
	case d.Lowercase:
		content = strings.ToLower(content)
	case d.Uppercase:
		content = strings.ToUpper(content)
	}
	if d.Checksum {
		content = checksum.Stamp(content)
	}
	if d.Parity {
		content = checksum.AppendParity(content)
	}
	return content
}

// Check walks the value tree and the schema in lockstep and verifies each
// resolved directive. Parity directives mandate the literal presence of a
// well-formed [parity:N] suffix; checksum directives accept an absent marker
// and only diagnose a present one that is malformed or mismatched. The
// asymmetry is intentional.
func Check(v any, s *Schema) dyaml.Issues {
	var iss dyaml.Issues
	checkAt(v, s, nil, &iss)
	return iss
}

func checkAt(v any, s *Schema, path dyaml.Path, iss *dyaml.Issues) {
	if s == nil {
		return
	}
	switch t := v.(type) {
	case map[string]any:
		for k, vv := range t {
			checkAt(vv, s.childFor(k), path.Child(k), iss)
		}
	case []any:
		for i, item := range t {
			checkAt(item, s.Items, path.Child(fmt.Sprintf("%d", i)), iss)
		}
	case string:
		if s.XEncoding != nil {
			checkDirective(t, s.XEncoding, path, iss)
		}
	}
}

func checkDirective(value string, d *Directive, path dyaml.Path, iss *dyaml.Issues) {
	rest := value
	if d.Parity {
		bit, content, ok := checksum.ExtractParity(rest)
		switch {
		case ok:
			if checksum.Parity(content) != bit {
				*iss = append(*iss, dyaml.Issue{Path: path.String(), Code: dyaml.CodeParityMismatch,
					Severity: dyaml.Error, Message: "parity check failed"})
			}
			rest = content
		case checksum.HasParityShape(rest):
			*iss = append(*iss, dyaml.Issue{Path: path.String(), Code: dyaml.CodeMarkerMalformed,
				Severity: dyaml.Error, Message: "malformed parity marker"})
			// Drop the bad suffix so the checksum pass judges the marker
			// underneath it on its own merits.
			rest = rest[:strings.LastIndex(rest, "[parity:")]
		default:
			*iss = append(*iss, dyaml.Issue{Path: path.String(), Code: dyaml.CodeParityMissing,
				Severity: dyaml.Error, Message: "parity marker required but missing"})
		}
	}
	if d.Checksum {
		mark, _ := checksum.Extract(rest)
		if mark == "" && checksum.HasChecksumShape(rest) {
			*iss = append(*iss, dyaml.Issue{Path: path.String(), Code: dyaml.CodeMarkerMalformed,
				Severity: dyaml.Error, Message: "malformed checksum marker"})
			return
		}
		if err := checksum.Validate(rest); err != nil {
			*iss = append(*iss, dyaml.Issue{Path: path.String(), Code: dyaml.CodeChecksumMismatch,
				Severity: dyaml.Error, Message: err.Error()})
		}
	}
}

// childFor resolves the schema node governing mapping key k: a matching
// properties entry, or the items schema's properties when this level is
// described as array items.
func (s *Schema) childFor(k string) *Schema {
	if s.Properties != nil {
		return s.Properties[k]
	}
	if s.Items != nil && s.Items.Properties != nil {
		return s.Items.Properties[k]
	}
	return nil
}
