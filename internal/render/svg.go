package render

import (
	"fmt"
	"html/template"
	"io"
)

// SVGOptions control standalone SVG output.
type SVGOptions struct {
	// Animate adds the staggered entry animation. Static output draws the
	// final state directly.
	Animate bool
	Title   string
}

type svgData struct {
	*Scene
	SVGOptions
	GradientID string
}

var svgFuncs = template.FuncMap{"num": num}

var svgTemplate = template.Must(template.New("svg").Funcs(svgFuncs).Parse(svgSource))

// WriteSVG writes scene as a standalone SVG document. All elements sit in a
// single group that carries the view transform.
func WriteSVG(w io.Writer, s *Scene, opts SVGOptions) error {
	if s == nil {
		return fmt.Errorf("writing svg: nil scene")
	}
	data := svgData{Scene: s, SVGOptions: opts, GradientID: GradientID}
	if err := svgTemplate.Execute(w, data); err != nil {
		return fmt.Errorf("writing svg: %w", err)
	}
	return nil
}

const svgSource = `<svg xmlns="http://www.w3.org/2000/svg" width="{{num .Viewport.Width}}" height="{{num .Viewport.Height}}" viewBox="0 0 {{num .Viewport.Width}} {{num .Viewport.Height}}" font-family="system-ui, -apple-system, sans-serif">
{{- if .Title}}
  <title>{{.Title}}</title>
{{- end}}
  <defs>
    <linearGradient id="{{.GradientID}}" x1="0%" y1="0%" x2="100%" y2="0%">
      <stop offset="0%" stop-color="#10b981" stop-opacity="0.8"/>
      <stop offset="100%" stop-color="#06b6d4" stop-opacity="0.6"/>
    </linearGradient>
    <filter id="node-shadow" x="-50%" y="-50%" width="200%" height="200%">
      <feDropShadow dx="0" dy="1" stdDeviation="1.5" flood-opacity="0.25"/>
    </filter>
  </defs>
  <g class="zoom" transform="{{.Transform.String}}">
    <g class="links" fill="none">
{{- range .Edges}}
      <path class="link {{.Tier}}" d="{{.D}}" stroke="{{.Stroke}}" stroke-width="{{num .Width}}"
        {{- if $.Animate}} opacity="0"><animate attributeName="opacity" from="0" to="{{num .Opacity}}" begin="{{.Fade.DelayMS}}ms" dur="{{.Fade.DurationMS}}ms" fill="freeze"/></path>
        {{- else}} opacity="{{num .Opacity}}"/>{{end}}
{{- end}}
    </g>
    <g class="nodes">
{{- range .Nodes}}
      <g class="node {{.Tier}}" transform="translate({{num .X}},{{num .Y}})"{{if $.Animate}} opacity="0"{{end}}>
        {{- if $.Animate}}<animate attributeName="opacity" from="0" to="1" begin="{{.Fade.DelayMS}}ms" dur="{{.Fade.DurationMS}}ms" fill="freeze"/>{{end}}
        <circle r="{{if $.Animate}}0{{else}}{{num .Radius}}{{end}}" fill="{{.Fill}}" stroke="{{.Stroke}}" stroke-width="{{num .StrokeWidth}}" filter="url(#node-shadow)">
          {{- if $.Animate}}<animate attributeName="r" from="0" to="{{num .Radius}}" begin="{{.Grow.DelayMS}}ms" dur="{{.Grow.DurationMS}}ms" fill="freeze"/>{{end -}}
        </circle>
        <text x="{{num .Label.DX}}" y="{{num .Label.DY}}"{{if .Label.Baseline}} dy="{{.Label.Baseline}}"{{end}} text-anchor="{{.Label.Anchor}}" font-size="{{num .Label.FontSize}}" font-weight="{{.Label.Weight}}" fill="{{.Label.Color}}">{{.Label.Text}}</text>
      </g>
{{- end}}
    </g>
  </g>
{{- if .Message}}
  <text class="message" x="{{num .Viewport.Width}}" dx="-8" y="24" text-anchor="end" font-size="12" fill="#6b7280">{{.Message}}</text>
{{- end}}
  <text class="zoom-level" x="8" y="{{num .Viewport.Height}}" dy="-8" font-size="11" fill="#6b7280">Zoom: {{.Zoom}}%</text>
</svg>
`
