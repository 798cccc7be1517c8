package render

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ziadkadry99/kds-visual/internal/highlight"
	"github.com/ziadkadry99/kds-visual/internal/layout"
	"github.com/ziadkadry99/kds-visual/internal/taxonomy"
)

func sampleTree() *taxonomy.CanonicalTree {
	return taxonomy.NewCanonicalTree(&taxonomy.TaxonNode{Name: "Life", Children: []*taxonomy.TaxonNode{
		{Name: "Mammalia", Children: []*taxonomy.TaxonNode{
			{Name: "Panthera tigris sumatrae"},
			{Name: "Pongo pygmaeus"},
		}},
		{Name: "Aves", Children: []*taxonomy.TaxonNode{
			{Name: "Cacatua sulphurea"},
		}},
	}})
}

func renderSample(t *testing.T, target string, tr Transform) (*layout.Result, *Scene) {
	t.Helper()
	tree := sampleTree()
	res, err := layout.Compute(tree, 1000, 600, layout.DefaultConfig())
	require.NoError(t, err)
	return res, Render(res, highlight.Find(tree, target), tr)
}

func nodeByName(s *Scene, name string) Node {
	for _, n := range s.Nodes {
		if n.Name == name {
			return n
		}
	}
	return Node{}
}

func TestRenderStyling(t *testing.T) {
	res, s := renderSample(t, "panthera tigris sumatrae", Identity)

	require.Len(t, s.Nodes, len(res.Points()))
	require.Len(t, s.Edges, len(res.Links()))
	assert.Equal(t, "Panthera tigris sumatrae", s.Target)
	assert.Empty(t, s.Message)

	target := nodeByName(s, "Panthera tigris sumatrae")
	assert.Equal(t, highlight.TierTarget, target.Tier)
	assert.Equal(t, ColorTarget, target.Fill)
	assert.Equal(t, ColorPath, target.Stroke)
	assert.Equal(t, res.Metrics.PathNodeStroke, target.StrokeWidth)
	assert.Equal(t, "bold", target.Label.Weight)
	assert.Equal(t, "start", target.Label.Anchor)
	assert.Equal(t, res.Metrics.LeafLabelDX, target.Label.DX)

	mammalia := nodeByName(s, "Mammalia")
	assert.Equal(t, ColorPath, mammalia.Fill)
	assert.Equal(t, "600", mammalia.Label.Weight)
	assert.Equal(t, "middle", mammalia.Label.Anchor)
	assert.Equal(t, res.Metrics.InternalLabelDY, mammalia.Label.DY)

	aves := nodeByName(s, "Aves")
	assert.Equal(t, ColorInternal, aves.Fill)
	assert.Equal(t, ColorNodeStroke, aves.Stroke)
	assert.Equal(t, "normal", aves.Label.Weight)
	assert.Equal(t, ColorLabel, aves.Label.Color)
	assert.Equal(t, ColorLeaf, nodeByName(s, "Cacatua sulphurea").Fill)

	var pathEdges int
	for _, e := range s.Edges {
		if e.Tier == highlight.TierPath {
			pathEdges++
			assert.Equal(t, ColorPath, e.Stroke)
			assert.Equal(t, res.Metrics.PathLinkWidth, e.Width)
		} else {
			assert.Equal(t, "url(#"+GradientID+")", e.Stroke)
			assert.Equal(t, res.Metrics.LinkWidth, e.Width)
		}
	}
	assert.Equal(t, 2, pathEdges)
}

func TestRenderNoMatch(t *testing.T) {
	_, s := renderSample(t, "Nonexistent species", Identity)
	assert.Equal(t, highlight.NoMatchMessage, s.Message)
	for _, n := range s.Nodes {
		assert.NotEqual(t, highlight.TierPath, n.Tier)
		assert.NotEqual(t, highlight.TierTarget, n.Tier)
	}
	for _, e := range s.Edges {
		assert.Equal(t, highlight.TierDefault, e.Tier)
	}
}

func TestRenderTransformDoesNotMoveNodes(t *testing.T) {
	_, a := renderSample(t, "Aves", Identity)
	_, b := renderSample(t, "Aves", Transform{X: 300, Y: -50, K: 4})

	assert.Equal(t, a.Nodes, b.Nodes)
	assert.Equal(t, a.Edges, b.Edges)
	assert.Equal(t, 400, b.Zoom)
}

func TestRenderIsIdempotent(t *testing.T) {
	_, a := renderSample(t, "Pongo pygmaeus", Identity)
	_, b := renderSample(t, "Pongo pygmaeus", Identity)
	assert.Equal(t, a, b)
}

func TestLinkPath(t *testing.T) {
	src := &layout.Point{X: 10, Y: 0}
	dst := &layout.Point{X: 30, Y: 100}
	assert.Equal(t, "M0,10C50,10 50,30 100,30", linkPath(src, dst))
}

func TestRevealTimings(t *testing.T) {
	_, s := renderSample(t, "", Identity)

	// 5 links, 6 nodes: the last link ends at 4*15+500.
	assert.Equal(t, int64(560), s.RevealMS)
	assert.Equal(t, Timing{DelayMS: 30, DurationMS: 400}, s.Nodes[1].Fade)
	assert.Equal(t, Timing{DelayMS: 80, DurationMS: 300}, s.Nodes[1].Grow)
	assert.Equal(t, Timing{DelayMS: 15, DurationMS: 500}, s.Edges[1].Fade)
}

func TestRevealIsCapped(t *testing.T) {
	kids := make([]*taxonomy.TaxonNode, 400)
	for i := range kids {
		kids[i] = &taxonomy.TaxonNode{Name: fmt.Sprintf("species %d", i)}
	}
	tree := taxonomy.NewCanonicalTree(&taxonomy.TaxonNode{Name: "root", Children: kids})
	res, err := layout.Compute(tree, 1000, 600, layout.DefaultConfig())
	require.NoError(t, err)

	s := Render(res, highlight.Set{}, Identity)
	assert.LessOrEqual(t, s.RevealMS, DefaultRevealCap.Milliseconds())

	last := s.Nodes[len(s.Nodes)-1]
	assert.Greater(t, last.Fade.DelayMS, s.Nodes[1].Fade.DelayMS, "stagger is kept, only compressed")
}

func TestRevealCapBelowOneAnimation(t *testing.T) {
	res, _ := renderSample(t, "", Identity)

	limit := 200 * time.Millisecond
	s := Options{Palette: DefaultPalette(), RevealCap: limit}.Render(res, highlight.Set{}, Identity)

	assert.LessOrEqual(t, s.RevealMS, limit.Milliseconds())
	assert.Equal(t, Timing{DelayMS: 0, DurationMS: 200}, s.Edges[len(s.Edges)-1].Fade)
	assert.Equal(t, Timing{DelayMS: 50, DurationMS: 150}, s.Nodes[len(s.Nodes)-1].Grow)
}

func TestStaggerFitsLimit(t *testing.T) {
	at := stagger(3, 50*time.Millisecond, 10*time.Millisecond, 300*time.Millisecond, 20*time.Millisecond)
	assert.Equal(t, Timing{DelayMS: 20, DurationMS: 0}, at(2))

	at = stagger(5, 0, 100*time.Millisecond, 100*time.Millisecond, 300*time.Millisecond)
	assert.Equal(t, Timing{DelayMS: 200, DurationMS: 100}, at(4))
}

func TestWriteSVG(t *testing.T) {
	tree := taxonomy.NewCanonicalTree(&taxonomy.TaxonNode{Name: "Life", Children: []*taxonomy.TaxonNode{
		{Name: "Felis <catus> & co"},
	}})
	res, err := layout.Compute(tree, 500, 400, layout.DefaultConfig())
	require.NoError(t, err)
	s := Render(res, highlight.Find(tree, "Life"), ResetTransform(res))

	var buf bytes.Buffer
	require.NoError(t, WriteSVG(&buf, s, SVGOptions{Title: "Tree"}))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, `<svg xmlns="http://www.w3.org/2000/svg"`))
	assert.Contains(t, out, `id="link-gradient"`)
	assert.Contains(t, out, `transform="`+s.Transform.String()+`"`)
	assert.Contains(t, out, "Felis &lt;catus&gt; &amp; co")
	assert.NotContains(t, out, "<animate")
	assert.Equal(t, 1, strings.Count(out, `class="zoom"`), "a single zoom group")
	assert.Equal(t, 2, strings.Count(out, "<circle"))
	assert.Contains(t, out, "Zoom: 100%")

	buf.Reset()
	require.NoError(t, WriteSVG(&buf, s, SVGOptions{Animate: true}))
	assert.Contains(t, buf.String(), `<animate attributeName="r"`)

	assert.Error(t, WriteSVG(&buf, nil, SVGOptions{}))
}

func TestWriteChart(t *testing.T) {
	tree := sampleTree()
	var buf bytes.Buffer
	err := WriteChart(&buf, tree, highlight.Find(tree, "Pongo pygmaeus"), ChartOptions{Title: "Phylogenetic tree"})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Pongo pygmaeus")
	assert.Contains(t, out, "Cacatua sulphurea")
	assert.Contains(t, out, ColorTarget)
	assert.Contains(t, out, "Phylogenetic tree")

	assert.Error(t, WriteChart(&buf, nil, highlight.Set{}, ChartOptions{}))
}
