package layout

import (
	"math"

	"github.com/matzehuels/modelcanvas/pkg/layout/solver"
	"github.com/matzehuels/modelcanvas/pkg/model"
)

// routeEdges produces the drawn path of every edge whose endpoints both
// resolved to placed nodes. Edges with a missing endpoint are dropped
// without affecting any other edge.
//
// Forward edges use the solver's route points verbatim when present and
// non-trivial, falling back to a straight connector between the facing
// anchors. Back edges never have solver geometry (they were excluded
// from the solve) and always get a synthesized loop path.
func (e *Engine) routeEdges(g *model.Graph, back map[string]bool, nodes map[string]PlacedNode, res *solver.Result) []RoutedEdge {
	out := make([]RoutedEdge, 0, g.EdgeCount())
	for _, edge := range g.Edges() {
		src, ok := nodes[edge.From]
		if !ok {
			continue
		}
		dst, ok := nodes[edge.To]
		if !ok {
			continue
		}

		routed := RoutedEdge{
			From:  edge.From,
			To:    edge.To,
			Count: edge.Count,
			Back:  back[edge.Key()],
		}
		if routed.Back {
			path, label := e.loopPath(src.RightCenter(), dst.LeftCenter())
			routed.Path = path
			routed.Label = &label
		} else {
			routed.Path = forwardPath(res.Route(edge.From, edge.To), src, dst)
		}
		out = append(out, routed)
	}
	return out
}

// forwardPath returns the solver route if it carries at least two points,
// otherwise a straight connector from the source's right-center anchor to
// the target's left-center anchor.
func forwardPath(route []solver.Point, src, dst PlacedNode) []Point {
	if len(route) >= 2 {
		out := make([]Point, len(route))
		for i, p := range route {
			out[i] = Point{X: p.X, Y: p.Y}
		}
		return out
	}
	return []Point{src.RightCenter(), dst.LeftCenter()}
}

// loopPath synthesizes the path of a cycle-closing edge: leave the source
// rightward, arc above the topmost endpoint, cross, and descend into the
// target from the left. Corners are rounded so the polyline renders
// smoothly verbatim. The returned label point sits at the midpoint of the
// arc's top segment.
//
// The skeleton is six corners wide:
//
//	src ─→ A        C ──→ D
//	       │  B ──→ C     │
//	       A═══════ (top) D
//	                      ↓ dst
//
// with the rightward extension scaled to the horizontal gap between the
// endpoints and the arc height both clamped to configured bounds.
func (e *Engine) loopPath(src, dst Point) ([]Point, Point) {
	gap := math.Abs(dst.X - src.X)
	ext := clamp(gap*e.cfg.LoopExtScale, e.cfg.LoopExtMin, e.cfg.LoopExtMax)
	arc := clamp(gap*e.cfg.LoopArcScale, e.cfg.LoopArcMin, e.cfg.LoopArcMax)
	top := math.Min(src.Y, dst.Y) - arc

	// Two corners share each vertical run of length arc (and each
	// horizontal run of length ext), so the radius may claim at most half
	// of either. This also keeps every rounded sample strictly above the
	// anchor rows.
	radius := math.Min(e.cfg.LoopCornerRadius, math.Min(arc/2, ext/2))

	ax := src.X + ext
	dx := dst.X - ext

	// The top run travels from ax to dx. With the target left of the
	// source, the usual orientation for a cycle-closing edge, that is
	// westward; the corners on either end must round toward that side
	// or the path overshoots the extension and zigzags across the top.
	hdir := east
	if dx < ax {
		hdir = west
	}

	path := []Point{src}
	// Up out of the source, across the top, down into the target. Each
	// corner is emitted as a sampled rounded turn; sampling starts past
	// the corner entry so no intermediate point sits at the anchor rows.
	path = appendCorner(path, Point{X: ax, Y: src.Y}, east, north, radius)
	path = appendCorner(path, Point{X: ax, Y: top}, north, hdir, radius)
	path = appendCorner(path, Point{X: dx, Y: top}, hdir, south, radius)
	path = appendCorner(path, Point{X: dx, Y: dst.Y}, south, east, radius)
	// The last corner's exit sample sits on the target's anchor row;
	// drop it so the closing segment runs there directly and every
	// intermediate point stays strictly above both anchors.
	path = path[:len(path)-1]
	path = append(path, dst)

	label := Point{X: (ax + dx) / 2, Y: top}
	return path, label
}

// Unit directions in y-down screen space.
var (
	east  = Point{X: 1, Y: 0}
	west  = Point{X: -1, Y: 0}
	north = Point{X: 0, Y: -1}
	south = Point{X: 0, Y: 1}
)

// appendCorner appends a rounded 90° turn at corner, entering along in
// and leaving along out. The turn is approximated by sampling the
// quadratic Bézier with the corner as control point; the t=0 sample is
// skipped because it coincides with the previous segment's direction.
func appendCorner(path []Point, corner, in, out Point, radius float64) []Point {
	entry := Point{X: corner.X - in.X*radius, Y: corner.Y - in.Y*radius}
	exit := Point{X: corner.X + out.X*radius, Y: corner.Y + out.Y*radius}
	for _, t := range []float64{0.25, 0.5, 0.75, 1} {
		mt := 1 - t
		path = append(path, Point{
			X: mt*mt*entry.X + 2*mt*t*corner.X + t*t*exit.X,
			Y: mt*mt*entry.Y + 2*mt*t*corner.Y + t*t*exit.Y,
		})
	}
	return path
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
