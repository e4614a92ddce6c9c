// Package solver defines the boundary between the layout engine and the
// layered-DAG positioning engine it delegates to.
//
// The contract is deliberately narrow: the caller registers sized nodes,
// padded compound clusters, and weighted directed edges; the engine
// returns a center coordinate and effective size for every registered
// entity plus polyline route points for every edge. Rank assignment,
// crossing minimization, and coordinate assignment are entirely the
// engine's concern.
//
// Engines are allowed to omit geometry for any entity (an isolated empty
// cluster, for instance). Consumers must treat a missing entry as a
// supported outcome and fall back, never as an error.
package solver

import "context"

// Direction is the main layout axis preference.
type Direction string

const (
	// LeftToRight places successive ranks along the x axis.
	LeftToRight Direction = "LR"
	// TopToBottom places successive ranks along the y axis.
	TopToBottom Direction = "TB"
)

// Node is a leaf entity with a fixed size. Parent, when non-empty, names
// the cluster directly containing the node.
type Node struct {
	ID     string
	Width  float64
	Height float64
	Parent string
}

// Cluster is a compound entity grouping nodes and other clusters. The
// engine computes its geometry from its contents plus the requested
// padding. PadTop is typically larger than PadBottom to reserve a label
// band above the cluster contents.
type Cluster struct {
	ID     string
	Label  string
	Parent string
	PadX   float64
	PadTop float64
	PadBot float64
}

// Edge is a directed connection between two registered nodes. Weight
// biases the engine's ordering heuristics - heavier edges are kept
// shorter and straighter.
type Edge struct {
	From   string
	To     string
	Weight int
}

// Graph is the accumulated layout request. Clusters must be registered
// parents before children; the layout adapter guarantees this by
// registering in ascending hierarchy depth.
type Graph struct {
	Direction Direction
	NodeSep   float64 // minimum gap between nodes in the same rank
	RankSep   float64 // minimum gap between adjacent ranks
	Nodes     []Node
	Clusters  []Cluster
	Edges     []Edge
}

// NewGraph creates an empty request with the given direction preference.
func NewGraph(dir Direction) *Graph {
	return &Graph{Direction: dir}
}

// AddNode registers a leaf node.
func (g *Graph) AddNode(n Node) { g.Nodes = append(g.Nodes, n) }

// AddCluster registers a compound cluster.
func (g *Graph) AddCluster(c Cluster) { g.Clusters = append(g.Clusters, c) }

// AddEdge registers a directed edge.
func (g *Graph) AddEdge(e Edge) { g.Edges = append(g.Edges, e) }

// Point is a 2D coordinate in the engine's absolute output space.
type Point struct {
	X float64
	Y float64
}

// Geometry is the computed placement of a node or cluster. X and Y are
// the center of the entity, matching the convention of layered layout
// engines; top-left conversion happens downstream.
type Geometry struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Result maps registered entity IDs to computed geometry and edge keys
// ("from->to") to ordered route points. Missing entries mean the engine
// produced no usable geometry for that entity.
type Result struct {
	Nodes    map[string]Geometry
	Clusters map[string]Geometry
	Routes   map[string][]Point
}

// NewResult creates an empty result with initialized maps.
func NewResult() *Result {
	return &Result{
		Nodes:    make(map[string]Geometry),
		Clusters: make(map[string]Geometry),
		Routes:   make(map[string][]Point),
	}
}

// NodeGeometry returns the geometry for a leaf node, reporting whether
// the engine produced one.
func (r *Result) NodeGeometry(id string) (Geometry, bool) {
	g, ok := r.Nodes[id]
	return g, ok
}

// ClusterGeometry returns the geometry for a cluster, reporting whether
// the engine produced one.
func (r *Result) ClusterGeometry(id string) (Geometry, bool) {
	g, ok := r.Clusters[id]
	return g, ok
}

// Route returns the intermediate route points for the edge from->to, or
// nil if the engine produced none.
func (r *Result) Route(from, to string) []Point {
	return r.Routes[from+"->"+to]
}

// Engine is a layered-DAG positioning engine. Solve is a blocking,
// in-process computation; implementations must be safe for concurrent
// calls with independent graphs.
type Engine interface {
	Solve(ctx context.Context, g *Graph) (*Result, error)
}
