package render

import (
	"fmt"
	"math"

	"github.com/ziadkadry99/kds-visual/internal/layout"
)

// ZoomStep is the factor applied by one zoom-in or zoom-out command.
const ZoomStep = 1.3

// Transform is the pan and zoom applied to the whole rendered group.
// Screen position = world position * K + (X, Y).
type Transform struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	K float64 `json:"k"`
}

// Identity is the untransformed view.
var Identity = Transform{K: 1}

// String formats the transform as an SVG transform attribute.
func (t Transform) String() string {
	return fmt.Sprintf("translate(%s,%s) scale(%s)", num(t.X), num(t.Y), num(t.K))
}

// Percent is the zoom level for display, e.g. 130 for K=1.3.
func (t Transform) Percent() int {
	return int(math.Round(t.K * 100))
}

// Apply maps a world coordinate to the screen.
func (t Transform) Apply(x, y float64) (float64, float64) {
	return x*t.K + t.X, y*t.K + t.Y
}

// Invert maps a screen coordinate back to the world.
func (t Transform) Invert(x, y float64) (float64, float64) {
	return (x - t.X) / t.K, (y - t.Y) / t.K
}

// ScaleExtent bounds the zoom factor.
type ScaleExtent struct {
	Min float64 `json:"min" koanf:"min" yaml:"min"`
	Max float64 `json:"max" koanf:"max" yaml:"max"`
}

var (
	// FreeZoom is the range used by the full tree view.
	FreeZoom = ScaleExtent{Min: 0.05, Max: 10}
	// SimplifiedZoom is the narrower range of the embedded panel view.
	SimplifiedZoom = ScaleExtent{Min: 0.5, Max: 5}
)

// Clamp limits k to the extent.
func (e ScaleExtent) Clamp(k float64) float64 {
	return math.Min(e.Max, math.Max(e.Min, k))
}

// Validate checks that the extent is a usable, non-empty range.
func (e ScaleExtent) Validate() error {
	if !(e.Min > 0) || !(e.Max >= e.Min) || math.IsInf(e.Max, 0) {
		return fmt.Errorf("invalid zoom extent [%g, %g]", e.Min, e.Max)
	}
	return nil
}

// ZoomBy multiplies the scale by factor, keeping the screen point (cx, cy)
// fixed. The result is clamped to extent. Non-positive factors are ignored.
func ZoomBy(t Transform, factor float64, extent ScaleExtent, cx, cy float64) Transform {
	if !(factor > 0) || math.IsInf(factor, 0) {
		return t
	}
	if t.K <= 0 {
		t.K = 1
	}
	k := extent.Clamp(t.K * factor)
	wx, wy := t.Invert(cx, cy)
	return Transform{X: cx - wx*k, Y: cy - wy*k, K: k}
}

// ZoomIn zooms by ZoomStep about (cx, cy).
func ZoomIn(t Transform, extent ScaleExtent, cx, cy float64) Transform {
	return ZoomBy(t, ZoomStep, extent, cx, cy)
}

// ZoomOut zooms by 1/ZoomStep about (cx, cy).
func ZoomOut(t Transform, extent ScaleExtent, cx, cy float64) Transform {
	return ZoomBy(t, 1/ZoomStep, extent, cx, cy)
}

// Pan translates the view by a screen-space offset.
func Pan(t Transform, dx, dy float64) Transform {
	t.X += dx
	t.Y += dy
	return t
}

// ResetTransform returns the initial framing suggested by the layout.
func ResetTransform(r *layout.Result) Transform {
	if r == nil {
		return Identity
	}
	return Transform{X: r.Initial.X, Y: r.Initial.Y, K: r.Initial.K}
}
