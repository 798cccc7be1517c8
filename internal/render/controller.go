package render

import (
	"fmt"

	"github.com/ziadkadry99/kds-visual/internal/layout"
)

// ActionKind names a view transform command.
type ActionKind string

const (
	ActionZoomIn  ActionKind = "zoom_in"
	ActionZoomOut ActionKind = "zoom_out"
	ActionZoomBy  ActionKind = "zoom_by"
	ActionPan     ActionKind = "pan"
	ActionReset   ActionKind = "reset"
	ActionSet     ActionKind = "set"
)

// Action is a single user gesture or command on the view transform.
type Action struct {
	Kind      ActionKind `json:"type"`
	Factor    float64    `json:"factor,omitempty"`
	DX        float64    `json:"dx,omitempty"`
	DY        float64    `json:"dy,omitempty"`
	Transform *Transform `json:"transform,omitempty"`
}

// Controller owns the current view transform. All changes go through Apply.
// A Controller is not safe for concurrent use.
type Controller struct {
	extent   ScaleExtent
	viewport layout.Size
	initial  Transform
	current  Transform
}

// NewController creates a controller bounded by extent.
func NewController(extent ScaleExtent) *Controller {
	return &Controller{extent: extent, initial: Identity, current: Identity}
}

// Attach points the controller at a new layout. The view returns to the
// layout's initial framing, since the previous transform referred to
// coordinates that no longer exist.
func (c *Controller) Attach(r *layout.Result) Transform {
	c.viewport = r.Viewport
	c.initial = ResetTransform(r)
	c.current = c.initial
	return c.current
}

// Transform returns the current transform.
func (c *Controller) Transform() Transform { return c.current }

// Extent returns the zoom bounds.
func (c *Controller) Extent() ScaleExtent { return c.extent }

// Apply reduces an action into the current transform and returns the result.
func (c *Controller) Apply(a Action) (Transform, error) {
	cx, cy := c.viewport.Width/2, c.viewport.Height/2
	switch a.Kind {
	case ActionZoomIn:
		c.current = ZoomIn(c.current, c.extent, cx, cy)
	case ActionZoomOut:
		c.current = ZoomOut(c.current, c.extent, cx, cy)
	case ActionZoomBy:
		c.current = ZoomBy(c.current, a.Factor, c.extent, cx, cy)
	case ActionPan:
		c.current = Pan(c.current, a.DX, a.DY)
	case ActionReset:
		c.current = c.initial
	case ActionSet:
		if a.Transform == nil {
			return c.current, fmt.Errorf("set action without transform")
		}
		t := *a.Transform
		t.K = c.extent.Clamp(t.K)
		c.current = t
	default:
		return c.current, fmt.Errorf("unknown view action %q", a.Kind)
	}
	return c.current, nil
}
