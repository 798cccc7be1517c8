package render

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/ziadkadry99/kds-visual/internal/highlight"
	"github.com/ziadkadry99/kds-visual/internal/taxonomy"
)

// ChartOptions configure the interactive chart page.
type ChartOptions struct {
	Title   string
	Width   string
	Height  string
	Compact bool
	Palette Palette
}

// WriteChart writes an interactive HTML tree chart with roam (pan and zoom)
// enabled and the ancestor path of hl highlighted.
func WriteChart(w io.Writer, tree *taxonomy.CanonicalTree, hl highlight.Set, o ChartOptions) error {
	if tree == nil || tree.Root == nil {
		return fmt.Errorf("writing chart: empty tree")
	}
	pal := o.Palette.withDefaults()
	if o.Width == "" {
		o.Width = "100%"
	}
	if o.Height == "" {
		o.Height = "800px"
	}
	radius, font := float32(6), float32(11)
	left, right := "10%", "20%"
	if o.Compact {
		radius, font = 4, 9
		left, right = "8%", "15%"
	}

	subtitle := hl.Message()
	if hl.Matched() {
		subtitle = "Highlighted: " + hl.Target
	}

	tc := charts.NewTree()
	tc.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: o.Title,
			Width:     o.Width,
			Height:    o.Height,
		}),
		charts.WithTitleOpts(opts.Title{Title: o.Title, Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "item"}),
	)

	root := chartNode(tree.Root, hl, pal, radius)
	tc.AddSeries(tree.Root.Name, []opts.TreeData{*root},
		charts.WithTreeOpts(opts.TreeChart{
			Layout:            "orthogonal",
			Orient:            "LR",
			Roam:              opts.Bool(true),
			ExpandAndCollapse: opts.Bool(true),
			InitialTreeDepth:  -1,
			Left:              left,
			Right:             right,
			Top:               "5%",
			Bottom:            "5%",
			Label:             &opts.Label{Show: opts.Bool(true), Position: "top", Color: pal.Label, FontSize: font},
			Leaves: &opts.TreeLeaves{
				Label: &opts.Label{Show: opts.Bool(true), Position: "right", Color: pal.Label, FontSize: font},
			},
		}),
		charts.WithLineStyleOpts(opts.LineStyle{Color: ColorInternal, Width: 1.5, Curveness: 0.5}),
	)

	if err := tc.Render(w); err != nil {
		return fmt.Errorf("writing chart: %w", err)
	}
	return nil
}

func chartNode(n *taxonomy.TaxonNode, hl highlight.Set, pal Palette, radius float32) *opts.TreeData {
	tier := hl.NodeTier(n.Name, n.IsLeaf())
	d := &opts.TreeData{
		Name:       n.Name,
		Symbol:     "circle",
		SymbolSize: radius * 2,
		ItemStyle:  &opts.ItemStyle{Color: pal.Fill(tier)},
	}
	if n.BranchLength != nil {
		d.Value = *n.BranchLength
	}
	for _, c := range n.Children {
		child := chartNode(c, hl, pal, radius)
		if hl.EdgeTier(n.Name, c.Name) == highlight.TierPath {
			child.LineStyle = &opts.LineStyle{Color: pal.Path, Width: 3.5}
		}
		d.Children = append(d.Children, child)
	}
	return d
}
