package layout

import (
	"github.com/matzehuels/modelcanvas/pkg/layout/solver"
	"github.com/matzehuels/modelcanvas/pkg/model"
	"github.com/matzehuels/modelcanvas/pkg/model/transform"
)

// synthesizeBoxes produces the absolute bounding rectangle of every
// container, processing deepest containers first so each box is finished
// before its ancestors aggregate it.
//
// When the solver produced usable cluster geometry it is used directly.
// Otherwise the box is the union of the container's directly-owned nodes
// and its descendant boxes, expanded by depth-dependent padding plus the
// label band. Containers with neither direct nodes nor descendant boxes
// are omitted from the output entirely.
//
// The returned slice is ordered ascending by depth (parents first), the
// order renderers need to paint outer boxes below inner ones.
func (e *Engine) synthesizeBoxes(g *model.Graph, hier *transform.Hierarchy, res *solver.Result, nodes map[string]PlacedNode) []ContainerBox {
	byID := make(map[string]ContainerBox, g.ContainerCount())

	for _, c := range hier.ByDepthDescending() {
		if x, y, w, h, ok := projectCluster(res, c.ID); ok {
			byID[c.ID] = ContainerBox{
				ID:     c.ID,
				Label:  c.DisplayLabel(),
				Depth:  c.Depth,
				Parent: hier.Parent(c.ID),
				X:      x,
				Y:      y,
				Width:  w,
				Height: h,
			}
			continue
		}

		box, ok := e.fallbackBox(c, hier, nodes, byID)
		if ok {
			byID[c.ID] = box
		}
	}

	var out []ContainerBox
	for _, c := range hier.ByDepth() {
		if b, ok := byID[c.ID]; ok {
			out = append(out, b)
		}
	}
	return out
}

// fallbackBox aggregates a container's box from its direct nodes and the
// already-computed boxes of its descendant containers.
func (e *Engine) fallbackBox(c *model.Container, hier *transform.Hierarchy, nodes map[string]PlacedNode, byID map[string]ContainerBox) (ContainerBox, bool) {
	var bounds *bboxRect

	for _, id := range hier.Members(c.ID) {
		if n, ok := nodes[id]; ok {
			bounds = extend(bounds, n.X, n.Y, n.Right(), n.Bottom())
		}
	}
	for _, id := range hier.Descendants(c.ID) {
		if b, ok := byID[id]; ok {
			bounds = extend(bounds, b.X, b.Y, b.Right(), b.Bottom())
		}
	}
	if bounds == nil {
		return ContainerBox{}, false
	}

	pad := e.cfg.boxPadding(c.Depth)
	bounds.left -= pad
	bounds.right += pad
	bounds.bottom += pad
	bounds.top -= pad + e.cfg.LabelBand

	return ContainerBox{
		ID:     c.ID,
		Label:  c.DisplayLabel(),
		Depth:  c.Depth,
		Parent: hier.Parent(c.ID),
		X:      bounds.left,
		Y:      bounds.top,
		Width:  bounds.right - bounds.left,
		Height: bounds.bottom - bounds.top,
	}, true
}

type bboxRect struct {
	left, top, right, bottom float64
}

func extend(b *bboxRect, left, top, right, bottom float64) *bboxRect {
	if b == nil {
		return &bboxRect{left: left, top: top, right: right, bottom: bottom}
	}
	if left < b.left {
		b.left = left
	}
	if top < b.top {
		b.top = top
	}
	if right > b.right {
		b.right = right
	}
	if bottom > b.bottom {
		b.bottom = bottom
	}
	return b
}
