// Package render turns a layout and a highlight set into a drawable scene,
// and owns the pan/zoom transform applied to it.
package render

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/ziadkadry99/kds-visual/internal/highlight"
	"github.com/ziadkadry99/kds-visual/internal/layout"
)

// Entry animation timings.
const (
	LinkFade         = 500 * time.Millisecond
	LinkStagger      = 15 * time.Millisecond
	NodeFade         = 400 * time.Millisecond
	NodeStagger      = 30 * time.Millisecond
	CircleGrow       = 300 * time.Millisecond
	CircleOffset     = 50 * time.Millisecond
	DefaultRevealCap = 3 * time.Second
)

// Timing is the delay and duration of one element's entry animation, in ms.
type Timing struct {
	DelayMS    int64 `json:"delay_ms"`
	DurationMS int64 `json:"duration_ms"`
}

// End is when the animation finishes, in ms from the start of the reveal.
func (t Timing) End() int64 { return t.DelayMS + t.DurationMS }

// Label is the text drawn next to a node, positioned relative to it.
type Label struct {
	Text     string  `json:"text"`
	DX       float64 `json:"dx"`
	DY       float64 `json:"dy"`
	Baseline string  `json:"baseline,omitempty"`
	Anchor   string  `json:"anchor"`
	FontSize float64 `json:"font_size"`
	Weight   string  `json:"weight"`
	Color    string  `json:"color"`
}

// Edge is a curved horizontal link from parent to child.
type Edge struct {
	Source  string         `json:"source"`
	Target  string         `json:"target"`
	D       string         `json:"d"`
	Stroke  string         `json:"stroke"`
	Width   float64        `json:"width"`
	Opacity float64        `json:"opacity"`
	Tier    highlight.Tier `json:"tier"`
	Fade    Timing         `json:"fade"`
}

// Node is a circle with a label. X and Y are screen axes in world units:
// X follows depth and Y follows leaf order.
type Node struct {
	Name        string         `json:"name"`
	X           float64        `json:"x"`
	Y           float64        `json:"y"`
	Leaf        bool           `json:"leaf"`
	Radius      float64        `json:"radius"`
	Fill        string         `json:"fill"`
	Stroke      string         `json:"stroke"`
	StrokeWidth float64        `json:"stroke_width"`
	Tier        highlight.Tier `json:"tier"`
	Label       Label          `json:"label"`
	Fade        Timing         `json:"fade"`
	Grow        Timing         `json:"grow"`
}

// Scene is a complete drawable description of the tree. Each render
// produces a fresh Scene that replaces the previous one.
type Scene struct {
	Viewport  layout.Size `json:"viewport"`
	Extent    layout.Size `json:"extent"`
	Transform Transform   `json:"transform"`
	Zoom      int         `json:"zoom_percent"`
	Compact   bool        `json:"compact"`
	Target    string      `json:"target,omitempty"`
	Path      []string    `json:"path,omitempty"`
	Message   string      `json:"message,omitempty"`
	Edges     []Edge      `json:"edges"`
	Nodes     []Node      `json:"nodes"`
	RevealMS  int64       `json:"reveal_ms"`
}

// Options tune scene construction.
type Options struct {
	Palette   Palette
	RevealCap time.Duration
}

// DefaultOptions returns the stock palette and reveal cap.
func DefaultOptions() Options {
	return Options{Palette: DefaultPalette(), RevealCap: DefaultRevealCap}
}

// Render builds a scene with the default options.
func Render(r *layout.Result, hl highlight.Set, t Transform) *Scene {
	return DefaultOptions().Render(r, hl, t)
}

// Render builds a scene for layout r, styled by hl and viewed through t.
// Layout positions are never changed here; pan and zoom only touch t.
func (o Options) Render(r *layout.Result, hl highlight.Set, t Transform) *Scene {
	pal := o.Palette.withDefaults()
	limit := o.RevealCap
	if limit <= 0 {
		limit = DefaultRevealCap
	}
	m := r.Metrics

	s := &Scene{
		Viewport:  r.Viewport,
		Extent:    r.Extent,
		Transform: t,
		Zoom:      t.Percent(),
		Compact:   m.Compact,
		Target:    hl.Target,
		Path:      hl.Path,
		Message:   hl.Message(),
	}

	links := r.Links()
	linkAt := stagger(len(links), 0, LinkStagger, LinkFade, limit)
	s.Edges = make([]Edge, len(links))
	for i, l := range links {
		e := Edge{
			Source:  l.Source.Name,
			Target:  l.Target.Name,
			D:       linkPath(l.Source, l.Target),
			Tier:    hl.EdgeTier(l.Source.Name, l.Target.Name),
			Stroke:  "url(#" + GradientID + ")",
			Width:   m.LinkWidth,
			Opacity: 0.7,
			Fade:    linkAt(i),
		}
		if e.Tier == highlight.TierPath {
			e.Stroke = pal.Path
			e.Width = m.PathLinkWidth
			e.Opacity = 1
		}
		s.Edges[i] = e
		s.RevealMS = max(s.RevealMS, e.Fade.End())
	}

	points := r.Points()
	nodeAt := stagger(len(points), 0, NodeStagger, NodeFade, limit)
	growAt := stagger(len(points), CircleOffset, NodeStagger, CircleGrow, limit)
	s.Nodes = make([]Node, len(points))
	for i, p := range points {
		tier := hl.NodeTier(p.Name, p.Leaf)
		n := Node{
			Name:        p.Name,
			X:           p.Y,
			Y:           p.X,
			Leaf:        p.Leaf,
			Radius:      m.Radius,
			Fill:        pal.Fill(tier),
			Stroke:      ColorNodeStroke,
			StrokeWidth: m.NodeStroke,
			Tier:        tier,
			Label: Label{
				Text:     p.Name,
				FontSize: m.FontSize,
				Weight:   LabelWeight(tier),
				Color:    pal.LabelColor(tier),
			},
			Fade: nodeAt(i),
			Grow: growAt(i),
		}
		if tier == highlight.TierTarget || tier == highlight.TierPath {
			n.Stroke = pal.Path
			n.StrokeWidth = m.PathNodeStroke
		}
		if p.Leaf {
			n.Label.DX = m.LeafLabelDX
			n.Label.Baseline = "0.31em"
			n.Label.Anchor = "start"
		} else {
			n.Label.DY = m.InternalLabelDY
			n.Label.Anchor = "middle"
		}
		s.Nodes[i] = n
		s.RevealMS = max(s.RevealMS, n.Fade.End(), n.Grow.End())
	}
	return s
}

// stagger spaces n animations step apart, starting at offset. When the whole
// sequence would end after limit, the step is shrunk so it fits; when a single
// animation already overruns limit, offset and duration shrink too and all
// elements start together.
func stagger(n int, offset, step, duration, limit time.Duration) func(int) Timing {
	switch {
	case offset+duration > limit:
		offset = min(offset, limit)
		duration = limit - offset
		step = 0
	case n > 1 && offset+time.Duration(n-1)*step+duration > limit:
		step = (limit - duration - offset) / time.Duration(n-1)
	}
	return func(i int) Timing {
		return Timing{
			DelayMS:    (offset + time.Duration(i)*step).Milliseconds(),
			DurationMS: duration.Milliseconds(),
		}
	}
}

// linkPath is a horizontal cubic link: the control points share the
// midpoint on the depth axis.
func linkPath(src, dst *layout.Point) string {
	mid := (src.Y + dst.Y) / 2
	return fmt.Sprintf("M%s,%sC%s,%s %s,%s %s,%s",
		num(src.Y), num(src.X),
		num(mid), num(src.X),
		num(mid), num(dst.X),
		num(dst.Y), num(dst.X))
}

func num(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}
