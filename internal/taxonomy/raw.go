package taxonomy

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/xeipuuv/gojsonschema"
)

// RawTreeDescription is the tree document as published by the data source.
// The first level of Tree.Children holds unnamed branch containers whose own
// children are the real taxonomic branches.
type RawTreeDescription struct {
	Name any     `json:"name"`
	Tree RawTree `json:"tree"`
}

// RawTree is the "tree" object of a RawTreeDescription. Children are left
// undecoded so that malformed entries can be skipped one by one.
type RawTree struct {
	BranchLength *float64 `json:"branch_length,omitempty"`
	Children     []any    `json:"children"`
}

// rawNode is a single decoded child entry.
type rawNode struct {
	Name         any
	BranchLength *float64
	Children     []any
}

// documentSchema checks only the document envelope. Nested nodes are
// validated leniently during normalization.
const documentSchema = `{
  "type": "object",
  "required": ["tree"],
  "properties": {
    "name": {},
    "tree": {
      "type": "object",
      "required": ["children"],
      "properties": {
        "branch_length": {"type": ["number", "null"]},
        "children": {"type": "array"}
      }
    }
  }
}`

var schemaLoader = gojsonschema.NewStringLoader(documentSchema)

// Parse validates and decodes a tree document. source names the document in
// error messages.
func Parse(data []byte, source string) (*RawTreeDescription, error) {
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, &DataLoadError{Source: source, Err: fmt.Errorf("parsing document: %w", err)}
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return nil, &DataLoadError{Source: source, Err: errors.New("invalid document: " + strings.Join(msgs, "; "))}
	}

	var raw RawTreeDescription
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &DataLoadError{Source: source, Err: fmt.Errorf("decoding document: %w", err)}
	}
	return &raw, nil
}

// decodeNode decodes one child entry. Only a non-object entry is an error.
// Fields are decoded one at a time: a branch_length that is not a finite
// number is dropped, and a children value that is not a list leaves the node
// as a leaf. Each dropped field is described in problems.
func decodeNode(v any) (*rawNode, []string, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, nil, fmt.Errorf("expected object, got %T", v)
	}
	n := &rawNode{Name: m["name"]}
	var problems []string

	if bl, ok := m["branch_length"]; ok && bl != nil {
		var length float64
		err := errors.New("boolean")
		if _, isBool := bl.(bool); !isBool {
			err = weakDecode(bl, &length)
		}
		if err != nil || math.IsNaN(length) || math.IsInf(length, 0) {
			problems = append(problems, fmt.Sprintf("ignoring branch_length %v: not a finite number", bl))
		} else {
			n.BranchLength = &length
		}
	}

	if c, ok := m["children"]; ok && c != nil {
		if kids, isList := c.([]any); isList {
			n.Children = kids
		} else {
			problems = append(problems, fmt.Sprintf("ignoring children of type %T: not a list, node kept as a leaf", c))
		}
	}
	return n, problems, nil
}

// weakDecode converts a loosely typed JSON value, accepting numeric strings
// such as "1.5" for numbers.
func weakDecode(in, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(in)
}

// ToRaw converts a canonical tree back into the document shape, with all of
// the root's children in a single branch container.
func ToRaw(t *CanonicalTree) *RawTreeDescription {
	children := make([]any, 0, len(t.Root.Children))
	for _, c := range t.Root.Children {
		children = append(children, nodeToRaw(c))
	}
	return &RawTreeDescription{
		Name: t.Root.Name,
		Tree: RawTree{
			BranchLength: t.Root.BranchLength,
			Children:     []any{map[string]any{"children": children}},
		},
	}
}

func nodeToRaw(n *TaxonNode) map[string]any {
	m := map[string]any{"name": n.Name}
	if n.BranchLength != nil {
		m["branch_length"] = *n.BranchLength
	}
	if len(n.Children) > 0 {
		children := make([]any, 0, len(n.Children))
		for _, c := range n.Children {
			children = append(children, nodeToRaw(c))
		}
		m["children"] = children
	}
	return m
}
