package taxonomy

import "strings"

// TaxonNode is a species or clade in the canonical tree.
type TaxonNode struct {
	Name         string       `json:"name"`
	BranchLength *float64     `json:"branch_length,omitempty"`
	Children     []*TaxonNode `json:"children,omitempty"`
}

// IsLeaf reports whether the node has no children.
func (n *TaxonNode) IsLeaf() bool { return len(n.Children) == 0 }

// Length returns the branch length, or 0 when absent.
func (n *TaxonNode) Length() float64 {
	if n.BranchLength == nil {
		return 0
	}
	return *n.BranchLength
}

// Walk visits n and its descendants in pre-order. Returning false from fn
// stops the descent into that node's children.
func (n *TaxonNode) Walk(fn func(node *TaxonNode, depth int) bool) {
	n.walk(fn, 0)
}

func (n *TaxonNode) walk(fn func(*TaxonNode, int) bool, depth int) {
	if !fn(n, depth) {
		return
	}
	for _, child := range n.Children {
		child.walk(fn, depth+1)
	}
}

// Equal reports whether two trees are isomorphic: same names, branch lengths
// and children in the same order.
func (n *TaxonNode) Equal(o *TaxonNode) bool {
	if n == nil || o == nil {
		return n == o
	}
	if n.Name != o.Name || len(n.Children) != len(o.Children) {
		return false
	}
	if (n.BranchLength == nil) != (o.BranchLength == nil) {
		return false
	}
	if n.BranchLength != nil && *n.BranchLength != *o.BranchLength {
		return false
	}
	for i := range n.Children {
		if !n.Children[i].Equal(o.Children[i]) {
			return false
		}
	}
	return true
}

// CanonicalTree is a deduplicated, single-rooted taxonomic tree. It is built
// once by Normalize and must not be mutated afterwards.
type CanonicalTree struct {
	Root *TaxonNode `json:"root"`

	nodes    int
	leaves   int
	depth    int
	warnings []Warning
}

// NewCanonicalTree wraps an already-normalized root and computes its counts.
func NewCanonicalTree(root *TaxonNode) *CanonicalTree {
	t := &CanonicalTree{Root: root}
	root.Walk(func(n *TaxonNode, depth int) bool {
		t.nodes++
		if n.IsLeaf() {
			t.leaves++
		}
		t.depth = max(t.depth, depth)
		return true
	})
	return t
}

// NodeCount returns the number of nodes including the root.
func (t *CanonicalTree) NodeCount() int { return t.nodes }

// LeafCount returns the number of leaves (species).
func (t *CanonicalTree) LeafCount() int { return t.leaves }

// Depth returns the maximum topological depth; a lone root has depth 0.
func (t *CanonicalTree) Depth() int { return t.depth }

// Warnings returns the malformed-node warnings recorded while normalizing.
func (t *CanonicalTree) Warnings() []Warning { return t.warnings }

// NormalizeName replaces underscores with spaces, the way taxonomy names are
// written in the source documents.
func NormalizeName(name string) string {
	return strings.ReplaceAll(name, "_", " ")
}
