package model

import (
	"errors"
	"maps"
	"slices"
)

var (
	// ErrInvalidNodeID is returned by [Graph.AddNode] when the node ID is
	// empty. All nodes must have non-empty identifiers.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned by [Graph.AddNode] when a node with
	// the same ID already exists in the graph.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrInvalidContainerID is returned by [Graph.AddContainer] when the
	// container ID is empty.
	ErrInvalidContainerID = errors.New("container ID must not be empty")

	// ErrDuplicateContainerID is returned by [Graph.AddContainer] when a
	// container with the same ID already exists.
	ErrDuplicateContainerID = errors.New("duplicate container ID")

	// ErrInvalidEdgeEndpoint is returned by [Graph.AddEdge] when From or To
	// is empty. Edges referencing node IDs that were never added are legal
	// input - layout drops them during routing rather than failing here,
	// because graph descriptions arrive from an external producer that may
	// reference nodes it failed to resolve.
	ErrInvalidEdgeEndpoint = errors.New("edge endpoints must not be empty")
)

// Metadata stores arbitrary key-value pairs attached to nodes or the graph.
// It typically carries producer-side details (layer parameters, shapes as
// strings, source file references). Metadata maps are never nil after a
// node has been added to a graph.
type Metadata map[string]any

// NodeKind distinguishes the two leaf categories of a computation graph.
// The kind determines the fixed size class a node receives during layout.
type NodeKind int

const (
	// NodeKindOperation represents a function or module application
	// (convolution, linear layer, activation). Standard size class.
	NodeKindOperation NodeKind = iota
	// NodeKindTensor represents a tensor-valued leaf (input, output,
	// intermediate buffer). Compact size class.
	NodeKindTensor
)

// Node represents a leaf vertex in the computation graph.
//
// The zero value is not usable - ID must be set before adding to a Graph.
// Position and size are never stored on the node; layout attaches geometry
// to its own derived result instead.
type Node struct {
	ID    string   // Unique identifier
	Label string   // Display name (defaults to ID when empty)
	Kind  NodeKind // Tensor or operation leaf
	Shape []int    // Optional tensor shape metadata
	Meta  Metadata // Arbitrary key-value metadata (never nil after AddNode)

	// IsInput and IsOutput flag graph boundary nodes.
	IsInput  bool
	IsOutput bool

	// Depth is the nesting depth of the node in the module hierarchy
	// (0 = top level). Caller-supplied and trusted, not recomputed.
	Depth int
	// Parent is the ID of the container directly owning this node, or
	// empty for a top-level node. A parent ID not present in the container
	// map is treated as absent.
	Parent string

	// NumParams is the number of trainable parameters attached to the
	// node, used for summaries and detail panes only.
	NumParams int
}

// IsTensor reports whether the node is a tensor-valued leaf.
func (n Node) IsTensor() bool { return n.Kind == NodeKindTensor }

// DisplayLabel returns the label if set, otherwise the ID.
func (n Node) DisplayLabel() string {
	if n.Label != "" {
		return n.Label
	}
	return n.ID
}

// Edge represents a directed connection between two nodes. Count is the
// number of underlying connections collapsed into one drawn edge; a Count
// of zero is normalized to one by AddEdge.
//
// Edges are not required to be acyclic, and endpoints are not required to
// resolve to added nodes.
type Edge struct {
	From  string // Source node ID
	To    string // Target node ID
	Count int    // Collapsed multiplicity (>= 1 after AddEdge)
}

// Key returns the canonical "from->to" identity of the edge, used for
// back-edge set membership and solver route lookup.
func (e Edge) Key() string { return e.From + "->" + e.To }

// Container represents a group in the module hierarchy. Containers form a
// forest: a container with no (or unknown) parent is a root, and a
// container's Depth is expected to be strictly greater than its parent's.
// Depth is caller-supplied and trusted - see the transform package for the
// ordering that relies on it.
type Container struct {
	ID     string // Unique identifier
	Label  string // Display label
	Depth  int    // Nesting depth (1 = top-level container)
	Parent string // Directly owning container ID, empty for roots
}

// DisplayLabel returns the label if set, otherwise the ID.
func (c Container) DisplayLabel() string {
	if c.Label != "" {
		return c.Label
	}
	return c.ID
}

// Graph is the abstract description of a computation graph handed to
// layout. It indexes nodes and containers by ID and maintains adjacency
// for traversal.
//
// The zero value is not usable - use New. Graph is not safe for concurrent
// mutation without external synchronization; concurrent read-only use
// (including concurrent layout invocations) is fine.
type Graph struct {
	nodes      map[string]*Node
	containers map[string]*Container
	edges      []Edge
	outgoing   map[string][]string // nodeID -> successor IDs
	incoming   map[string][]string // nodeID -> predecessor IDs
	meta       Metadata
}

// New creates an empty graph with optional graph-level metadata.
func New(meta Metadata) *Graph {
	if meta == nil {
		meta = Metadata{}
	}
	return &Graph{
		nodes:      make(map[string]*Node),
		containers: make(map[string]*Container),
		outgoing:   make(map[string][]string),
		incoming:   make(map[string][]string),
		meta:       meta,
	}
}

// Meta returns the graph-level metadata map. Never nil.
func (g *Graph) Meta() Metadata { return g.meta }

// AddNode adds a leaf node to the graph.
// Returns ErrInvalidNodeID for an empty ID or ErrDuplicateNodeID when the
// ID is already taken. The node's Meta field is initialized to an empty
// map if nil.
func (g *Graph) AddNode(n Node) error {
	if n.ID == "" {
		return ErrInvalidNodeID
	}
	if _, exists := g.nodes[n.ID]; exists {
		return ErrDuplicateNodeID
	}
	if n.Meta == nil {
		n.Meta = Metadata{}
	}
	node := &n
	g.nodes[node.ID] = node
	return nil
}

// AddContainer adds a container to the graph.
// Returns ErrInvalidContainerID for an empty ID or ErrDuplicateContainerID
// when the ID is already taken. The declared parent is not validated here:
// an unknown parent demotes the container to a root during hierarchy
// resolution instead of failing the whole graph.
func (g *Graph) AddContainer(c Container) error {
	if c.ID == "" {
		return ErrInvalidContainerID
	}
	if _, exists := g.containers[c.ID]; exists {
		return ErrDuplicateContainerID
	}
	g.containers[c.ID] = &c
	return nil
}

// AddEdge adds a directed edge. Cycles are allowed, and endpoints are not
// required to resolve to added nodes (see ErrInvalidEdgeEndpoint). A zero
// Count is normalized to one.
func (g *Graph) AddEdge(e Edge) error {
	if e.From == "" || e.To == "" {
		return ErrInvalidEdgeEndpoint
	}
	if e.Count <= 0 {
		e.Count = 1
	}
	g.edges = append(g.edges, e)
	g.outgoing[e.From] = append(g.outgoing[e.From], e.To)
	g.incoming[e.To] = append(g.incoming[e.To], e.From)
	return nil
}

// Node returns the node with the given ID, or nil if absent.
func (g *Graph) Node(id string) *Node { return g.nodes[id] }

// Container returns the container with the given ID, or nil if absent.
func (g *Graph) Container(id string) *Container { return g.containers[id] }

// HasNode reports whether a node with the given ID exists.
func (g *Graph) HasNode(id string) bool {
	_, ok := g.nodes[id]
	return ok
}

// HasContainer reports whether a container with the given ID exists.
func (g *Graph) HasContainer(id string) bool {
	_, ok := g.containers[id]
	return ok
}

// Nodes returns all nodes sorted by ID. Sorting keeps every downstream
// traversal (and therefore the layout output) deterministic for identical
// input.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, 0, len(g.nodes))
	for _, n := range g.nodes {
		out = append(out, n)
	}
	slices.SortFunc(out, func(a, b *Node) int {
		return compareIDs(a.ID, b.ID)
	})
	return out
}

// Containers returns all containers sorted by ID.
func (g *Graph) Containers() []*Container {
	out := make([]*Container, 0, len(g.containers))
	for _, c := range g.containers {
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b *Container) int {
		return compareIDs(a.ID, b.ID)
	})
	return out
}

// Edges returns the edge list in insertion order.
// The returned slice is shared - callers must not modify it.
func (g *Graph) Edges() []Edge { return g.edges }

// Successors returns the IDs of nodes reachable from id by one edge, in
// edge insertion order. Duplicate entries appear when parallel edges exist.
func (g *Graph) Successors(id string) []string { return g.outgoing[id] }

// Predecessors returns the IDs of nodes with an edge into id.
func (g *Graph) Predecessors(id string) []string { return g.incoming[id] }

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// ContainerCount returns the number of containers.
func (g *Graph) ContainerCount() int { return len(g.containers) }

// Roots returns the nodes with no incoming edges, sorted by ID. For a
// model graph these are usually the input tensors.
func (g *Graph) Roots() []*Node {
	var out []*Node
	for _, n := range g.Nodes() {
		if len(g.incoming[n.ID]) == 0 {
			out = append(out, n)
		}
	}
	return out
}

// Clone returns a deep copy of the graph. Node metadata maps are copied
// shallowly (values are shared).
func (g *Graph) Clone() *Graph {
	out := New(maps.Clone(g.meta))
	for _, n := range g.nodes {
		c := *n
		c.Meta = maps.Clone(n.Meta)
		c.Shape = slices.Clone(n.Shape)
		out.nodes[c.ID] = &c
	}
	for _, c := range g.containers {
		cc := *c
		out.containers[cc.ID] = &cc
	}
	out.edges = slices.Clone(g.edges)
	for k, v := range g.outgoing {
		out.outgoing[k] = slices.Clone(v)
	}
	for k, v := range g.incoming {
		out.incoming[k] = slices.Clone(v)
	}
	return out
}

func compareIDs(a, b string) int {
	if a < b {
		return -1
	}
	if a > b {
		return 1
	}
	return 0
}
