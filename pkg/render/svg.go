package render

import (
	"bytes"
	"fmt"
	"html"

	"github.com/matzehuels/modelcanvas/pkg/layout"
	"github.com/matzehuels/modelcanvas/pkg/model"
)

// Palette holds the fill and stroke colors for each element class.
type Palette struct {
	TensorFill   string
	TensorStroke string
	OpFill       string
	OpStroke     string
	BoxFill      string
	BoxStroke    string
	Edge         string
	BackEdge     string
	Text         string
	BoxText      string
}

// DefaultPalette is a light scheme with blue tensors, neutral operations,
// and red back edges.
func DefaultPalette() Palette {
	return Palette{
		TensorFill:   "#eef6ff",
		TensorStroke: "#4a90d9",
		OpFill:       "#ffffff",
		OpStroke:     "#55555f",
		BoxFill:      "#f7f7fa",
		BoxStroke:    "#b8b8c4",
		Edge:         "#777782",
		BackEdge:     "#c0392b",
		Text:         "#22222a",
		BoxText:      "#666670",
	}
}

// SVGOption configures SVG rendering via [RenderSVG].
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	palette Palette
	title   string
}

// WithPalette overrides the default color palette.
func WithPalette(p Palette) SVGOption { return func(r *svgRenderer) { r.palette = p } }

// WithTitle sets the document title element.
func WithTitle(t string) SVGOption { return func(r *svgRenderer) { r.title = t } }

// RenderSVG produces a standalone SVG document for the layout. Nested
// layouts are resolved to absolute coordinates first, so both variants
// draw identically. The draw order is boxes (outermost first), edges,
// then nodes, keeping leaves on top of everything they overlap.
func RenderSVG(l layout.Layout, opts ...SVGOption) []byte {
	r := svgRenderer{palette: DefaultPalette()}
	for _, opt := range opts {
		opt(&r)
	}
	p := r.palette
	abs := l.Absolute()

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		abs.Width, abs.Height, abs.Width, abs.Height)
	if r.title != "" {
		fmt.Fprintf(&buf, "  <title>%s</title>\n", html.EscapeString(r.title))
	}
	renderDefs(&buf, p)

	for _, b := range abs.Boxes {
		renderBox(&buf, p, b)
	}
	for _, e := range abs.Edges {
		renderEdge(&buf, p, e)
	}
	for _, n := range abs.Nodes {
		renderNode(&buf, p, n)
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func renderDefs(buf *bytes.Buffer, p Palette) {
	fmt.Fprintf(buf, `  <defs>
    <marker id="arrow" viewBox="0 0 10 10" refX="9" refY="5" markerWidth="7" markerHeight="7" orient="auto-start-reverse">
      <path d="M 0 1 L 9 5 L 0 9 z" fill="%s"/>
    </marker>
    <marker id="arrow-back" viewBox="0 0 10 10" refX="9" refY="5" markerWidth="7" markerHeight="7" orient="auto-start-reverse">
      <path d="M 0 1 L 9 5 L 0 9 z" fill="%s"/>
    </marker>
    <style>
      text { font-family: ui-sans-serif, system-ui, sans-serif; }
      .node-label { font-size: 12px; }
      .box-label { font-size: 11px; font-weight: 600; }
      .edge-label { font-size: 10px; }
    </style>
  </defs>
`, p.Edge, p.BackEdge)
}

func renderBox(buf *bytes.Buffer, p Palette, b layout.ContainerBox) {
	fmt.Fprintf(buf, `  <rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" rx="8" fill="%s" stroke="%s"/>`+"\n",
		b.X, b.Y, b.Width, b.Height, p.BoxFill, p.BoxStroke)
	if b.Label != "" {
		fmt.Fprintf(buf, `  <text x="%.1f" y="%.1f" class="box-label" fill="%s">%s</text>`+"\n",
			b.X+10, b.Y+15, p.BoxText, html.EscapeString(b.Label))
	}
}

func renderEdge(buf *bytes.Buffer, p Palette, e layout.RoutedEdge) {
	stroke, marker, dash := p.Edge, "arrow", ""
	if e.Back {
		stroke, marker, dash = p.BackEdge, "arrow-back", ` stroke-dasharray="6 3"`
	}
	fmt.Fprintf(buf, `  <path d="%s" fill="none" stroke="%s"%s marker-end="url(#%s)"/>`+"\n",
		layout.PathData(e), stroke, dash, marker)

	if e.Count > 1 && e.Label != nil {
		fmt.Fprintf(buf, `  <text x="%.1f" y="%.1f" class="edge-label" text-anchor="middle" fill="%s">&#215;%d</text>`+"\n",
			e.Label.X, e.Label.Y-4, stroke, e.Count)
	}
}

func renderNode(buf *bytes.Buffer, p Palette, n layout.PlacedNode) {
	fill, stroke := p.OpFill, p.OpStroke
	rx := 4.0
	if n.Kind == model.NodeKindTensor {
		fill, stroke = p.TensorFill, p.TensorStroke
		rx = n.Height / 2
	}
	width := 1.0
	if n.IsInput || n.IsOutput {
		width = 2
	}
	fmt.Fprintf(buf, `  <rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" rx="%.1f" fill="%s" stroke="%s" stroke-width="%.0f"/>`+"\n",
		n.X, n.Y, n.Width, n.Height, rx, fill, stroke, width)

	label := n.Label
	if label == "" {
		label = n.ID
	}
	fmt.Fprintf(buf, `  <text x="%.1f" y="%.1f" class="node-label" text-anchor="middle" dominant-baseline="middle" fill="%s">%s</text>`+"\n",
		n.X+n.Width/2, n.Y+n.Height/2, p.Text, html.EscapeString(label))
}
