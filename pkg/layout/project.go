package layout

import (
	"math"

	"github.com/matzehuels/modelcanvas/pkg/layout/solver"
	"github.com/matzehuels/modelcanvas/pkg/model"
)

// projectNodes converts the solver's center-coordinate results into
// absolute top-left placed nodes, keyed by node ID.
//
// Numeric fallbacks apply whenever the solver reported no geometry for a
// node or reported a non-finite coordinate or size: the configured
// fallback size and a zero origin are substituted so invalid numbers
// never propagate into rendering.
func (e *Engine) projectNodes(g *model.Graph, res *solver.Result) map[string]PlacedNode {
	out := make(map[string]PlacedNode, g.NodeCount())
	for _, n := range g.Nodes() {
		var w, h, cx, cy float64
		if geo, ok := res.NodeGeometry(n.ID); ok {
			w = sizeOr(geo.Width, e.cfg.FallbackWidth)
			h = sizeOr(geo.Height, e.cfg.FallbackHeight)
			cx = coordOr(geo.X, w/2)
			cy = coordOr(geo.Y, h/2)
		} else {
			w, h = e.cfg.FallbackWidth, e.cfg.FallbackHeight
			cx, cy = w/2, h/2
		}

		parent := n.Parent
		if !g.HasContainer(parent) {
			parent = ""
		}
		out[n.ID] = PlacedNode{
			ID:       n.ID,
			Label:    n.DisplayLabel(),
			Kind:     n.Kind,
			Parent:   parent,
			IsInput:  n.IsInput,
			IsOutput: n.IsOutput,
			X:        cx - w/2,
			Y:        cy - h/2,
			Width:    w,
			Height:   h,
		}
	}
	return out
}

// projectCluster converts a solver cluster geometry to a top-left
// rectangle, reporting false when the geometry is absent or degenerate
// (non-finite or non-positive size) so the caller can fall back to
// manual aggregation.
func projectCluster(res *solver.Result, id string) (x, y, w, h float64, ok bool) {
	geo, found := res.ClusterGeometry(id)
	if !found {
		return 0, 0, 0, 0, false
	}
	if !finite(geo.X) || !finite(geo.Y) || !finite(geo.Width) || !finite(geo.Height) {
		return 0, 0, 0, 0, false
	}
	if geo.Width <= 0 || geo.Height <= 0 {
		return 0, 0, 0, 0, false
	}
	return geo.X - geo.Width/2, geo.Y - geo.Height/2, geo.Width, geo.Height, true
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// sizeOr substitutes the fallback for non-finite or non-positive sizes.
func sizeOr(f, fallback float64) float64 {
	if !finite(f) || f <= 0 {
		return fallback
	}
	return f
}

// coordOr substitutes the fallback for non-finite coordinates. Zero is a
// legitimate coordinate and passes through.
func coordOr(f, fallback float64) float64 {
	if !finite(f) {
		return fallback
	}
	return f
}
