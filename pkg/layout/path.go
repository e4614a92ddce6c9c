package layout

import (
	"fmt"
	"strings"
)

// PathData converts a routed edge into SVG path data for rendering.
//
//   - Forward edges with exactly two points become a cubic S-curve with
//     control points at the horizontal midpoint of the span.
//   - Forward edges with more points become a chain of quadratic
//     segments through the intermediate points.
//   - Back edges render their polyline verbatim - the loop synthesis
//     already sampled the rounded corners.
func PathData(e RoutedEdge) string {
	if len(e.Path) < 2 {
		return ""
	}
	if e.Back {
		return polyline(e.Path)
	}
	if len(e.Path) == 2 {
		return sCurve(e.Path[0], e.Path[1])
	}
	return quadChain(e.Path)
}

func polyline(pts []Point) string {
	var b strings.Builder
	fmt.Fprintf(&b, "M %s", coord(pts[0]))
	for _, p := range pts[1:] {
		fmt.Fprintf(&b, " L %s", coord(p))
	}
	return b.String()
}

// sCurve draws a cubic Bézier whose control points sit at the horizontal
// midpoint, producing the standard S-shaped connector between ranks.
func sCurve(a, b Point) string {
	midX := (a.X + b.X) / 2
	return fmt.Sprintf("M %s C %s, %s, %s",
		coord(a),
		coord(Point{X: midX, Y: a.Y}),
		coord(Point{X: midX, Y: b.Y}),
		coord(b))
}

// quadChain draws quadratic segments using each intermediate point as a
// control point, joining at the midpoints between successive controls so
// the curve stays smooth through the whole chain.
func quadChain(pts []Point) string {
	var b strings.Builder
	fmt.Fprintf(&b, "M %s", coord(pts[0]))
	for i := 1; i < len(pts)-1; i++ {
		ctrl := pts[i]
		end := Point{
			X: (pts[i].X + pts[i+1].X) / 2,
			Y: (pts[i].Y + pts[i+1].Y) / 2,
		}
		if i == len(pts)-2 {
			end = pts[i+1]
		}
		fmt.Fprintf(&b, " Q %s, %s", coord(ctrl), coord(end))
	}
	return b.String()
}

func coord(p Point) string {
	return fmt.Sprintf("%.1f %.1f", p.X, p.Y)
}
