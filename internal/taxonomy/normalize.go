package taxonomy

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
)

// builder accumulates one canonical node while merging. The index maps child
// names to their builders so sibling lookup stays O(1).
type builder struct {
	node  *TaxonNode
	index map[string]*builder
	kids  []*builder
}

func newBuilder(name string, length *float64) *builder {
	return &builder{
		node:  &TaxonNode{Name: name, BranchLength: copyLength(length)},
		index: make(map[string]*builder),
	}
}

// child returns the existing child with the given name, or appends a new one.
func (b *builder) child(name string, length *float64) *builder {
	if c, ok := b.index[name]; ok {
		if length != nil && c.node.BranchLength == nil {
			c.node.BranchLength = copyLength(length)
		}
		return c
	}
	c := newBuilder(name, length)
	b.index[name] = c
	b.kids = append(b.kids, c)
	return c
}

func (b *builder) build() *TaxonNode {
	if len(b.kids) > 0 {
		b.node.Children = make([]*TaxonNode, len(b.kids))
		for i, k := range b.kids {
			b.node.Children[i] = k.build()
		}
	}
	return b.node
}

type normalizer struct {
	logger   *slog.Logger
	warnings []Warning
}

// Normalize turns a raw document into a canonical tree: branch containers are
// flattened, names normalized and repeated sibling names merged into a single
// node holding the union of their subtrees. Malformed entries are skipped or
// renamed with a logged warning; Normalize never fails.
func Normalize(raw *RawTreeDescription, logger *slog.Logger) *CanonicalTree {
	if logger == nil {
		logger = slog.Default()
	}
	n := &normalizer{logger: logger}

	rootName, ok := usableName(raw.Name)
	if !ok {
		rootName = n.placeholder("/", "root has no usable name")
	}
	root := newBuilder(NormalizeName(rootName), raw.Tree.BranchLength)

	for i, container := range raw.Tree.Children {
		path := fmt.Sprintf("/tree/children[%d]", i)
		c, problems, err := decodeNode(container)
		if err != nil {
			n.warn(WarnInvalidChild, path, "skipping branch container: "+err.Error())
			continue
		}
		for _, p := range problems {
			n.warn(WarnInvalidField, path, p)
		}
		for j, grandchild := range c.Children {
			n.merge(root, grandchild, fmt.Sprintf("%s/children[%d]", path, j), true)
		}
	}

	t := NewCanonicalTree(root.build())
	t.warnings = n.warnings
	return t
}

func (n *normalizer) merge(parent *builder, item any, path string, top bool) {
	raw, problems, err := decodeNode(item)
	if err != nil {
		n.warn(WarnInvalidChild, path, "skipping child: "+err.Error())
		return
	}
	for _, p := range problems {
		n.warn(WarnInvalidField, path, p)
	}

	name, ok := usableName(raw.Name)
	if !ok {
		if top && raw.Name == nil && len(raw.Children) > 0 {
			n.warn(WarnNestedContainer, path, "unnamed node with children below a branch container; only one container level is flattened")
		}
		name = n.placeholder(path, "node has no usable name")
	}

	node := parent.child(NormalizeName(name), raw.BranchLength)
	for i, c := range raw.Children {
		n.merge(node, c, fmt.Sprintf("%s/children[%d]", path, i), false)
	}
}

func (n *normalizer) placeholder(path, reason string) string {
	name := "Unnamed Node " + uuid.NewString()[:5]
	n.warn(WarnUnnamed, path, fmt.Sprintf("%s, using %q", reason, name))
	return name
}

func (n *normalizer) warn(kind WarningKind, path, msg string) {
	w := Warning{Kind: kind, Path: path, Message: msg}
	n.warnings = append(n.warnings, w)
	n.logger.Warn("malformed tree node", "kind", string(kind), "path", path, "detail", msg)
}

func usableName(v any) (string, bool) {
	s, ok := v.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return "", false
	}
	return s, true
}

func copyLength(l *float64) *float64 {
	if l == nil {
		return nil
	}
	v := *l
	return &v
}
