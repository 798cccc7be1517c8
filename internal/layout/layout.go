// Package layout computes dendrogram positions for a canonical tree.
//
// X is the perpendicular axis: leaves are spaced evenly in traversal order
// and internal nodes sit at the mean of their children. Y is the depth axis,
// scaled to fill the stretched horizontal extent.
package layout

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/ziadkadry99/kds-visual/internal/taxonomy"
)

// ErrDegenerateViewport is returned when the container has no area yet.
// Callers should defer the layout until a real size is observed.
var ErrDegenerateViewport = errors.New("viewport has zero or negative size")

// ErrEmptyTree is returned for a nil tree or a tree without a root.
var ErrEmptyTree = errors.New("tree has no root")

// Point is a positioned tree node. Parent is a navigation link only.
type Point struct {
	Name     string   `json:"name"`
	X        float64  `json:"x"`
	Y        float64  `json:"y"`
	Depth    int      `json:"depth"`
	Leaf     bool     `json:"leaf"`
	Children []*Point `json:"children,omitempty"`

	Parent *Point              `json:"-"`
	Node   *taxonomy.TaxonNode `json:"-"`

	// distance from the root in branch length, and to the deepest leaf in levels
	cumLength float64
	height    int
}

// Size is a width/height pair in pixels.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Framing is the suggested initial pan and scale for a layout.
type Framing struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	K float64 `json:"k"`
}

// Link is a parent to child edge.
type Link struct {
	Source *Point
	Target *Point
}

// Result is the output of one layout pass. It is discarded on the next pass.
type Result struct {
	Root     *Point    `json:"root"`
	Extent   Size      `json:"extent"`
	Viewport Size      `json:"viewport"`
	Metrics  Metrics   `json:"metrics"`
	Initial  Framing   `json:"initial"`
	Mode     DepthMode `json:"mode"`

	points []*Point
	leaves []*Point
}

// Points returns every point in pre-order.
func (r *Result) Points() []*Point { return r.points }

// Leaves returns the leaf points in traversal order.
func (r *Result) Leaves() []*Point { return r.leaves }

// Links returns all edges in pre-order of their target node.
func (r *Result) Links() []Link {
	links := make([]Link, 0, len(r.points))
	for _, p := range r.points {
		if p.Parent != nil {
			links = append(links, Link{Source: p.Parent, Target: p})
		}
	}
	return links
}

// Lookup returns the first point (pre-order) with the given name.
func (r *Result) Lookup(name string) *Point {
	for _, p := range r.points {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// Compute lays out tree inside a width x height viewport.
func Compute(tree *taxonomy.CanonicalTree, width, height float64, cfg Config) (*Result, error) {
	if !(width > 0) || !(height > 0) || math.IsInf(width, 0) || math.IsInf(height, 0) {
		return nil, fmt.Errorf("layout %gx%g: %w", width, height, ErrDegenerateViewport)
	}
	if tree == nil || tree.Root == nil {
		return nil, ErrEmptyTree
	}
	cfg = cfg.withDefaults()

	m := metricsFor(width, height, cfg)
	r := &Result{
		Viewport: Size{Width: width, Height: height},
		Metrics:  m,
		Mode:     cfg.DepthMode,
	}
	r.Root = r.build(tree.Root, nil, 0, 0)

	leafCount := float64(len(r.leaves))
	r.Extent = Size{
		Width:  (width - m.Left - m.Right) * cfg.BranchStretchFactor,
		Height: math.Max(height-2*m.Top, leafCount*cfg.DesiredLeafSeparation),
	}

	spacing := r.Extent.Height / leafCount
	for i, leaf := range r.leaves {
		leaf.X = (float64(i) + 0.5) * spacing
	}
	center(r.Root)
	r.placeDepth(cfg.DepthMode)

	r.Initial = Framing{
		X: m.Left - tree.Root.Length()*cfg.BranchStretchFactor/2,
		Y: m.Top - r.Extent.Height/2,
		K: 1,
	}
	return r, nil
}

func (r *Result) build(n *taxonomy.TaxonNode, parent *Point, depth int, cum float64) *Point {
	p := &Point{
		Name:      n.Name,
		Depth:     depth,
		Leaf:      n.IsLeaf(),
		Parent:    parent,
		Node:      n,
		cumLength: cum,
	}
	r.points = append(r.points, p)
	if p.Leaf {
		r.leaves = append(r.leaves, p)
		return p
	}
	p.Children = make([]*Point, len(n.Children))
	for i, c := range n.Children {
		child := r.build(c, p, depth+1, cum+math.Max(c.Length(), 0))
		p.Children[i] = child
		p.height = max(p.height, child.height+1)
	}
	return p
}

// center sets each internal node's X to the mean of its children.
func center(p *Point) {
	if p.Leaf {
		return
	}
	xs := make([]float64, len(p.Children))
	for i, c := range p.Children {
		center(c)
		xs[i] = c.X
	}
	p.X = stat.Mean(xs, nil)
}

func (r *Result) placeDepth(mode DepthMode) {
	var maxDepth int
	var maxLength float64
	for _, p := range r.points {
		maxDepth = max(maxDepth, p.Depth)
		maxLength = math.Max(maxLength, p.cumLength)
	}
	if mode == DepthBranchLength && maxLength == 0 {
		mode = DepthTopological
		r.Mode = mode
	}

	for _, p := range r.points {
		var frac float64
		switch mode {
		case DepthCluster:
			if r.Root.height > 0 {
				frac = 1 - float64(p.height)/float64(r.Root.height)
			}
		case DepthBranchLength:
			frac = p.cumLength / maxLength
		default:
			if maxDepth > 0 {
				frac = float64(p.Depth) / float64(maxDepth)
			}
		}
		p.Y = frac * r.Extent.Width
	}
}
