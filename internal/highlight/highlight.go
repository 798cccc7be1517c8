// Package highlight finds a target species in a canonical tree and marks the
// chain of ancestors from it up to the root.
package highlight

import (
	"strings"

	"github.com/ziadkadry99/kds-visual/internal/taxonomy"
)

// NoMatchMessage is shown when a tree is displayed for a name that is not in it.
const NoMatchMessage = "Species not found in the phylogenetic tree."

// Tier is the styling class of a node or edge.
type Tier string

const (
	TierTarget   Tier = "target"
	TierPath     Tier = "path"
	TierInternal Tier = "internal"
	TierLeaf     Tier = "leaf"
	TierDefault  Tier = "default"
)

// Set is the result of a highlight search. The zero value is the empty set.
type Set struct {
	Target string   `json:"target,omitempty"`
	Path   []string `json:"path,omitempty"` // root first, target last
	Query  string   `json:"query,omitempty"`

	ancestors map[string]struct{}
}

// Find searches tree in pre-order for a node whose name matches target,
// ignoring case, surrounding whitespace and underscores. The first match wins.
// An empty target or a missing name yields an empty set.
func Find(tree *taxonomy.CanonicalTree, target string) Set {
	query := canonical(target)
	if query == "" || tree == nil || tree.Root == nil {
		return Set{Query: strings.TrimSpace(target)}
	}

	var stack []*taxonomy.TaxonNode
	var found []*taxonomy.TaxonNode
	var search func(n *taxonomy.TaxonNode) bool
	search = func(n *taxonomy.TaxonNode) bool {
		stack = append(stack, n)
		if canonical(n.Name) == query {
			found = append([]*taxonomy.TaxonNode(nil), stack...)
			return true
		}
		for _, c := range n.Children {
			if search(c) {
				return true
			}
		}
		stack = stack[:len(stack)-1]
		return false
	}
	if !search(tree.Root) {
		return Set{Query: strings.TrimSpace(target)}
	}

	s := Set{
		Target:    found[len(found)-1].Name,
		Query:     strings.TrimSpace(target),
		Path:      make([]string, len(found)),
		ancestors: make(map[string]struct{}, len(found)),
	}
	for i, n := range found {
		s.Path[i] = n.Name
		s.ancestors[n.Name] = struct{}{}
	}
	return s
}

// Matched reports whether a target was found.
func (s Set) Matched() bool { return s.Target != "" }

// Has reports whether name lies on the path from the target to the root.
func (s Set) Has(name string) bool {
	_, ok := s.ancestors[name]
	return ok
}

// Ancestors returns the path names as a set, target included.
func (s Set) Ancestors() map[string]struct{} {
	out := make(map[string]struct{}, len(s.ancestors))
	for k := range s.ancestors {
		out[k] = struct{}{}
	}
	return out
}

// IsTarget reports whether name is the matched node. Only the lookup is
// case-insensitive; styling compares the exact canonical name.
func (s Set) IsTarget(name string) bool {
	return s.Matched() && s.Target == name
}

// NodeTier classifies a node for styling.
func (s Set) NodeTier(name string, leaf bool) Tier {
	switch {
	case s.IsTarget(name):
		return TierTarget
	case s.Has(name):
		return TierPath
	case leaf:
		return TierLeaf
	default:
		return TierInternal
	}
}

// EdgeTier classifies an edge: path when both ends are on the ancestor path.
func (s Set) EdgeTier(source, target string) Tier {
	if s.Has(source) && s.Has(target) {
		return TierPath
	}
	return TierDefault
}

// Message returns NoMatchMessage when a non-empty query found nothing.
func (s Set) Message() string {
	if s.Query != "" && !s.Matched() {
		return NoMatchMessage
	}
	return ""
}

func canonical(name string) string {
	return strings.ToLower(strings.TrimSpace(taxonomy.NormalizeName(name)))
}
