package render

import "github.com/ziadkadry99/kds-visual/internal/highlight"

// Colors of the three-tier highlight scheme.
const (
	ColorTarget     = "#ef4444"
	ColorPath       = "#FAAC18"
	ColorInternal   = "#10b981"
	ColorLeaf       = "#06b6d4"
	ColorLabel      = "#374151"
	ColorNodeStroke = "#fff"

	GradientID = "link-gradient"
)

// Palette resolves tier colors. Empty fields fall back to DefaultPalette.
type Palette struct {
	Target   string `json:"target" koanf:"target" yaml:"target"`
	Path     string `json:"path" koanf:"path" yaml:"path"`
	Internal string `json:"internal" koanf:"internal" yaml:"internal"`
	Leaf     string `json:"leaf" koanf:"leaf" yaml:"leaf"`
	Label    string `json:"label" koanf:"label" yaml:"label"`
}

// DefaultPalette returns the stock colors.
func DefaultPalette() Palette {
	return Palette{
		Target:   ColorTarget,
		Path:     ColorPath,
		Internal: ColorInternal,
		Leaf:     ColorLeaf,
		Label:    ColorLabel,
	}
}

// Fill returns the node fill for a tier.
func (p Palette) Fill(t highlight.Tier) string {
	switch t {
	case highlight.TierTarget:
		return p.Target
	case highlight.TierPath:
		return p.Path
	case highlight.TierLeaf:
		return p.Leaf
	default:
		return p.Internal
	}
}

// LabelColor returns the label color for a tier.
func (p Palette) LabelColor(t highlight.Tier) string {
	switch t {
	case highlight.TierTarget:
		return p.Target
	case highlight.TierPath:
		return p.Path
	default:
		return p.Label
	}
}

// LabelWeight returns the font weight for a tier.
func LabelWeight(t highlight.Tier) string {
	switch t {
	case highlight.TierTarget:
		return "bold"
	case highlight.TierPath:
		return "600"
	default:
		return "normal"
	}
}

func (p Palette) withDefaults() Palette {
	d := DefaultPalette()
	if p.Target == "" {
		p.Target = d.Target
	}
	if p.Path == "" {
		p.Path = d.Path
	}
	if p.Internal == "" {
		p.Internal = d.Internal
	}
	if p.Leaf == "" {
		p.Leaf = d.Leaf
	}
	if p.Label == "" {
		p.Label = d.Label
	}
	return p
}
