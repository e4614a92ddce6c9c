package layout

import (
	"context"
	"fmt"

	"github.com/matzehuels/modelcanvas/pkg/layout/solver"
	"github.com/matzehuels/modelcanvas/pkg/layout/sugiyama"
	"github.com/matzehuels/modelcanvas/pkg/model"
	"github.com/matzehuels/modelcanvas/pkg/model/transform"
)

// Options selects the output variant of a layout invocation.
type Options struct {
	// Nested switches node and box coordinates from absolute to
	// parent-relative, for renderers that draw containers as nested
	// coordinate frames. Edge paths stay absolute in both variants.
	Nested bool

	// Direction is the main layout axis. Defaults to left-to-right.
	Direction solver.Direction
}

// Engine computes layouts. It is immutable after construction and safe
// for concurrent use.
type Engine struct {
	solver solver.Engine
	cfg    Config
}

// NewEngine creates an engine around the given positioning engine. A nil
// engine selects the built-in sugiyama implementation.
func NewEngine(eng solver.Engine, cfg Config) *Engine {
	if eng == nil {
		eng = sugiyama.New()
	}
	return &Engine{solver: eng, cfg: cfg}
}

// Layout converts g into a drawing description.
//
// The invocation runs to completion synchronously: back-edge
// classification, hierarchy resolution, one solver call, coordinate
// projection, box synthesis, and edge routing. An empty graph
// short-circuits to an empty layout with the minimum canvas size without
// touching the solver.
func (e *Engine) Layout(ctx context.Context, g *model.Graph, opts Options) (*Layout, error) {
	if g.NodeCount() == 0 {
		return &Layout{
			Nodes:  []PlacedNode{},
			Edges:  []RoutedEdge{},
			Width:  e.cfg.CanvasMinWidth,
			Height: e.cfg.CanvasMinHeight,
			Nested: opts.Nested,
		}, nil
	}

	dir := opts.Direction
	if dir == "" {
		dir = solver.LeftToRight
	}

	back := transform.BackEdges(g)
	hier := transform.ResolveHierarchy(g)

	req := e.buildRequest(g, hier, back, dir)
	res, err := e.solver.Solve(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("solve layout: %w", err)
	}

	nodes := e.projectNodes(g, res)
	boxes := e.synthesizeBoxes(g, hier, res, nodes)
	edges := e.routeEdges(g, back, nodes, res)

	l := &Layout{
		Edges:  edges,
		Nested: opts.Nested,
	}
	l.Width, l.Height = e.canvasSize(nodes, boxes)

	if opts.Nested {
		l.Nodes, l.Boxes = toRelative(g, hier, nodes, boxes)
	} else {
		l.Nodes, l.Boxes = collectNodes(g, nodes), boxes
	}
	return l, nil
}

// canvasSize returns the maximum right/bottom extent over all nodes and
// boxes plus the margin, floored at the configured minimum.
func (e *Engine) canvasSize(nodes map[string]PlacedNode, boxes []ContainerBox) (w, h float64) {
	for _, n := range nodes {
		if n.Right() > w {
			w = n.Right()
		}
		if n.Bottom() > h {
			h = n.Bottom()
		}
	}
	for _, b := range boxes {
		if b.Right() > w {
			w = b.Right()
		}
		if b.Bottom() > h {
			h = b.Bottom()
		}
	}
	w += e.cfg.CanvasMargin
	h += e.cfg.CanvasMargin
	if w < e.cfg.CanvasMinWidth {
		w = e.cfg.CanvasMinWidth
	}
	if h < e.cfg.CanvasMinHeight {
		h = e.cfg.CanvasMinHeight
	}
	return w, h
}

// collectNodes flattens the placed-node map into the graph's node order.
func collectNodes(g *model.Graph, nodes map[string]PlacedNode) []PlacedNode {
	out := make([]PlacedNode, 0, len(nodes))
	for _, n := range g.Nodes() {
		if p, ok := nodes[n.ID]; ok {
			out = append(out, p)
		}
	}
	return out
}

// toRelative converts absolute node and box coordinates into frames
// relative to each entity's immediate parent box origin. Entities whose
// parent has no box (or no parent at all) keep absolute coordinates.
func toRelative(g *model.Graph, hier *transform.Hierarchy, nodes map[string]PlacedNode, boxes []ContainerBox) ([]PlacedNode, []ContainerBox) {
	origin := make(map[string]Point, len(boxes))
	for _, b := range boxes {
		origin[b.ID] = Point{X: b.X, Y: b.Y}
	}

	outNodes := collectNodes(g, nodes)
	for i := range outNodes {
		if o, ok := origin[outNodes[i].Parent]; ok {
			outNodes[i].X -= o.X
			outNodes[i].Y -= o.Y
		}
	}

	outBoxes := make([]ContainerBox, len(boxes))
	copy(outBoxes, boxes)
	for i := range outBoxes {
		parent := hier.Parent(outBoxes[i].ID)
		if o, ok := origin[parent]; ok {
			outBoxes[i].X -= o.X
			outBoxes[i].Y -= o.Y
		}
	}
	return outNodes, outBoxes
}
