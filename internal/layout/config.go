package layout

import "fmt"

// DepthMode selects how the depth axis is derived.
type DepthMode string

const (
	// DepthTopological places nodes by their depth in the tree.
	DepthTopological DepthMode = "depth"
	// DepthCluster aligns every leaf at the far edge, like a dendrogram.
	DepthCluster DepthMode = "cluster"
	// DepthBranchLength places nodes by cumulative branch length from the root.
	DepthBranchLength DepthMode = "branch_length"
)

// ParseDepthMode validates a configured depth mode. Empty selects the default.
func ParseDepthMode(s string) (DepthMode, error) {
	switch m := DepthMode(s); m {
	case "":
		return DepthTopological, nil
	case DepthTopological, DepthCluster, DepthBranchLength:
		return m, nil
	default:
		return "", fmt.Errorf("unknown depth mode %q (want depth, cluster or branch_length)", s)
	}
}

// Config holds the tunables of a layout pass.
type Config struct {
	DesiredLeafSeparation float64   `koanf:"leaf_separation" yaml:"leaf_separation"`
	BranchStretchFactor   float64   `koanf:"stretch" yaml:"stretch"`
	CompactWidth          float64   `koanf:"compact_width" yaml:"compact_width"`
	DepthMode             DepthMode `koanf:"depth_mode" yaml:"depth_mode"`
}

// DefaultConfig returns the stock layout settings.
func DefaultConfig() Config {
	return Config{
		DesiredLeafSeparation: 30,
		BranchStretchFactor:   4,
		CompactWidth:          640,
		DepthMode:             DepthTopological,
	}
}

// withDefaults fills zero fields from DefaultConfig.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.DesiredLeafSeparation <= 0 {
		c.DesiredLeafSeparation = d.DesiredLeafSeparation
	}
	if c.BranchStretchFactor <= 0 {
		c.BranchStretchFactor = d.BranchStretchFactor
	}
	if c.CompactWidth <= 0 {
		c.CompactWidth = d.CompactWidth
	}
	if c.DepthMode == "" {
		c.DepthMode = d.DepthMode
	}
	return c
}

// Metrics are the viewport-dependent drawing sizes: margins, node radius,
// label sizes and stroke widths. Compact screens get smaller values.
type Metrics struct {
	Compact bool `json:"compact"`

	Left   float64 `json:"left"`
	Right  float64 `json:"right"`
	Top    float64 `json:"top"`
	Radius float64 `json:"radius"`

	FontSize        float64 `json:"font_size"`
	LeafLabelDX     float64 `json:"leaf_label_dx"`
	InternalLabelDY float64 `json:"internal_label_dy"`

	LinkWidth      float64 `json:"link_width"`
	PathLinkWidth  float64 `json:"path_link_width"`
	NodeStroke     float64 `json:"node_stroke"`
	PathNodeStroke float64 `json:"path_node_stroke"`
}

func metricsFor(width, height float64, cfg Config) Metrics {
	if width < cfg.CompactWidth {
		return Metrics{
			Compact:         true,
			Left:            width * 0.08,
			Right:           width * 0.15,
			Top:             height * 0.05,
			Radius:          4,
			FontSize:        9,
			LeafLabelDX:     8,
			InternalLabelDY: -(4 + 3),
			LinkWidth:       1.5,
			PathLinkWidth:   2.5,
			NodeStroke:      1,
			PathNodeStroke:  1.5,
		}
	}
	return Metrics{
		Left:            width * 0.10,
		Right:           width * 0.20,
		Top:             height * 0.05,
		Radius:          6,
		FontSize:        11,
		LeafLabelDX:     12,
		InternalLabelDY: -(6 + 5),
		LinkWidth:       2,
		PathLinkWidth:   3.5,
		NodeStroke:      2,
		PathNodeStroke:  2.5,
	}
}
