package layout

import (
	"slices"

	"github.com/matzehuels/modelcanvas/pkg/model"
)

// Point is a 2D coordinate in the layout output space (y grows downward).
type Point struct {
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
}

// PlacedNode is a laid-out leaf node: copied identity fields plus
// top-left geometry. In the nested variant X and Y are relative to the
// owning container's box origin; otherwise they are absolute.
type PlacedNode struct {
	ID       string         `json:"id" bson:"id"`
	Label    string         `json:"label,omitempty" bson:"label,omitempty"`
	Kind     model.NodeKind `json:"kind" bson:"kind"`
	Parent   string         `json:"parent,omitempty" bson:"parent,omitempty"`
	IsInput  bool           `json:"is_input,omitempty" bson:"is_input,omitempty"`
	IsOutput bool           `json:"is_output,omitempty" bson:"is_output,omitempty"`

	X      float64 `json:"x" bson:"x"`
	Y      float64 `json:"y" bson:"y"`
	Width  float64 `json:"width" bson:"width"`
	Height float64 `json:"height" bson:"height"`
}

// Right returns the x coordinate of the node's right edge.
func (n PlacedNode) Right() float64 { return n.X + n.Width }

// Bottom returns the y coordinate of the node's bottom edge.
func (n PlacedNode) Bottom() float64 { return n.Y + n.Height }

// RightCenter returns the outgoing anchor point on the node boundary.
func (n PlacedNode) RightCenter() Point { return Point{X: n.X + n.Width, Y: n.Y + n.Height/2} }

// LeftCenter returns the incoming anchor point on the node boundary.
func (n PlacedNode) LeftCenter() Point { return Point{X: n.X, Y: n.Y + n.Height/2} }

// RoutedEdge is a drawn edge: the ordered path points, the collapsed
// multiplicity count, and whether the edge closes a cycle. Back edges
// carry a label anchor at the apex of their loop for multiplicity labels.
// Edge paths are always absolute, even in the nested variant.
type RoutedEdge struct {
	From  string  `json:"from" bson:"from"`
	To    string  `json:"to" bson:"to"`
	Count int     `json:"count" bson:"count"`
	Back  bool    `json:"back,omitempty" bson:"back,omitempty"`
	Path  []Point `json:"path" bson:"path"`
	Label *Point  `json:"label,omitempty" bson:"label,omitempty"`
}

// ContainerBox is a laid-out container rectangle. In the nested variant
// X and Y are relative to the parent container's box origin.
type ContainerBox struct {
	ID     string `json:"id" bson:"id"`
	Label  string `json:"label,omitempty" bson:"label,omitempty"`
	Depth  int    `json:"depth" bson:"depth"`
	Parent string `json:"parent,omitempty" bson:"parent,omitempty"`

	X      float64 `json:"x" bson:"x"`
	Y      float64 `json:"y" bson:"y"`
	Width  float64 `json:"width" bson:"width"`
	Height float64 `json:"height" bson:"height"`
}

// Right returns the x coordinate of the box's right edge.
func (b ContainerBox) Right() float64 { return b.X + b.Width }

// Bottom returns the y coordinate of the box's bottom edge.
func (b ContainerBox) Bottom() float64 { return b.Y + b.Height }

// Layout is the complete drawing description derived from one engine
// invocation: positioned nodes, routed edges, container boxes, and the
// overall canvas size. It holds no reference back into the input graph
// beyond copied identity fields and is consumed read-only by renderers.
type Layout struct {
	Nodes  []PlacedNode   `json:"nodes" bson:"nodes"`
	Edges  []RoutedEdge   `json:"edges" bson:"edges"`
	Boxes  []ContainerBox `json:"boxes,omitempty" bson:"boxes,omitempty"`
	Width  float64        `json:"width" bson:"width"`
	Height float64        `json:"height" bson:"height"`

	// Nested records which coordinate variant produced this layout:
	// parent-relative node/box coordinates when true, absolute otherwise.
	Nested bool `json:"nested,omitempty" bson:"nested,omitempty"`
}

// Node returns the placed node with the given ID, or nil if absent.
func (l *Layout) Node(id string) *PlacedNode {
	for i := range l.Nodes {
		if l.Nodes[i].ID == id {
			return &l.Nodes[i]
		}
	}
	return nil
}

// Box returns the container box with the given ID, or nil if absent.
func (l *Layout) Box(id string) *ContainerBox {
	for i := range l.Boxes {
		if l.Boxes[i].ID == id {
			return &l.Boxes[i]
		}
	}
	return nil
}

// Absolute returns a copy of the layout with absolute coordinates.
// For a flat layout this is a plain copy; for the nested variant the
// parent-relative node and box origins are resolved against the parent
// chain. Boxes are ordered parents before children, so one forward pass
// over them resolves every origin.
func (l *Layout) Absolute() Layout {
	out := Layout{
		Nodes:  slices.Clone(l.Nodes),
		Edges:  slices.Clone(l.Edges),
		Boxes:  slices.Clone(l.Boxes),
		Width:  l.Width,
		Height: l.Height,
	}
	if !l.Nested {
		out.Nested = l.Nested
		return out
	}

	origin := make(map[string]Point, len(out.Boxes))
	for i := range out.Boxes {
		b := &out.Boxes[i]
		if p, ok := origin[b.Parent]; ok {
			b.X += p.X
			b.Y += p.Y
		}
		origin[b.ID] = Point{X: b.X, Y: b.Y}
	}
	for i := range out.Nodes {
		n := &out.Nodes[i]
		if p, ok := origin[n.Parent]; ok {
			n.X += p.X
			n.Y += p.Y
		}
	}
	return out
}
