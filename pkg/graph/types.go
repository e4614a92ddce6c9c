package graph

import (
	"encoding/json"
	"fmt"

	"github.com/matzehuels/modelcanvas/pkg/model"
)

// =============================================================================
// Constants - Single Source of Truth
// =============================================================================

// Node kinds. An empty kind deserializes as an operation node.
const (
	KindTensor    = "tensor"
	KindOperation = "operation"
)

// =============================================================================
// Graph - Computation Graph Serialization
// =============================================================================

// Graph is the canonical serialization format for computation graphs.
// Used for API responses, storage, caching, and cross-tool compatibility.
//
// The format is human-readable and designed for round-trip fidelity:
// import → layout → export → re-import produces identical structure.
type Graph struct {
	Nodes      []Node         `json:"nodes" bson:"nodes"`
	Containers []Container    `json:"containers,omitempty" bson:"containers,omitempty"`
	Edges      []Edge         `json:"edges" bson:"edges"`
	Meta       map[string]any `json:"meta,omitempty" bson:"meta,omitempty"`
}

// =============================================================================
// Node - Leaf Vertex
// =============================================================================

// Node is the serialized form of a computation graph leaf.
type Node struct {
	ID        string         `json:"id" bson:"id"`
	Label     string         `json:"label,omitempty" bson:"label,omitempty"` // Display label (defaults to ID)
	Kind      string         `json:"kind,omitempty" bson:"kind,omitempty"`   // "tensor" or "operation" (empty = operation)
	Shape     []int          `json:"shape,omitempty" bson:"shape,omitempty"` // Tensor shape, when known
	Input     bool           `json:"input,omitempty" bson:"input,omitempty"`
	Output    bool           `json:"output,omitempty" bson:"output,omitempty"`
	Depth     int            `json:"depth,omitempty" bson:"depth,omitempty"`
	Parent    string         `json:"parent,omitempty" bson:"parent,omitempty"` // Owning container ID
	NumParams int            `json:"num_params,omitempty" bson:"num_params,omitempty"`
	Meta      map[string]any `json:"meta,omitempty" bson:"meta,omitempty"`
}

// IsTensor returns true if this is a tensor node.
func (n *Node) IsTensor() bool { return n.Kind == KindTensor }

// DisplayLabel returns the label if set, otherwise the ID.
func (n *Node) DisplayLabel() string {
	if n.Label != "" {
		return n.Label
	}
	return n.ID
}

// =============================================================================
// Container - Hierarchy Group
// =============================================================================

// Container represents a module-hierarchy group. Depth and Parent come
// from the producer and pass through unchanged.
type Container struct {
	ID     string `json:"id" bson:"id"`
	Label  string `json:"label,omitempty" bson:"label,omitempty"`
	Depth  int    `json:"depth" bson:"depth"`
	Parent string `json:"parent,omitempty" bson:"parent,omitempty"`
}

// =============================================================================
// Edge - Directed Connection
// =============================================================================

// Edge represents a directed edge in the computation graph. Count is the
// number of underlying connections collapsed into one drawn edge; zero is
// treated as one on import.
type Edge struct {
	From  string `json:"from" bson:"from"`
	To    string `json:"to" bson:"to"`
	Count int    `json:"count,omitempty" bson:"count,omitempty"`
}

// =============================================================================
// Model ↔ Graph Conversion
// =============================================================================

// FromModel converts a model graph to its serialization format.
// Nodes and containers are sorted by ID for deterministic output.
func FromModel(g *model.Graph) Graph {
	out := Graph{
		Nodes: make([]Node, 0, g.NodeCount()),
		Edges: make([]Edge, 0, g.EdgeCount()),
		Meta:  copyMeta(g.Meta()),
	}

	for _, n := range g.Nodes() {
		out.Nodes = append(out.Nodes, nodeFromModel(n))
	}
	for _, c := range g.Containers() {
		out.Containers = append(out.Containers, Container{
			ID:     c.ID,
			Label:  c.Label,
			Depth:  c.Depth,
			Parent: c.Parent,
		})
	}
	for _, e := range g.Edges() {
		out.Edges = append(out.Edges, Edge{From: e.From, To: e.To, Count: e.Count})
	}

	return out
}

// ToModel converts a serialized Graph to a model graph.
// Returns an error for empty or duplicate IDs; unknown edge endpoints and
// cycles are legal and pass through.
func ToModel(gj Graph) (*model.Graph, error) {
	g := model.New(copyMeta(gj.Meta))

	for _, nj := range gj.Nodes {
		n := model.Node{
			ID:        nj.ID,
			Label:     nj.Label,
			Kind:      stringToKind(nj.Kind),
			Shape:     nj.Shape,
			Meta:      copyMeta(nj.Meta),
			IsInput:   nj.Input,
			IsOutput:  nj.Output,
			Depth:     nj.Depth,
			Parent:    nj.Parent,
			NumParams: nj.NumParams,
		}
		if err := g.AddNode(n); err != nil {
			return nil, fmt.Errorf("add node %s: %w", nj.ID, err)
		}
	}

	for _, cj := range gj.Containers {
		c := model.Container{
			ID:     cj.ID,
			Label:  cj.Label,
			Depth:  cj.Depth,
			Parent: cj.Parent,
		}
		if err := g.AddContainer(c); err != nil {
			return nil, fmt.Errorf("add container %s: %w", cj.ID, err)
		}
	}

	for _, ej := range gj.Edges {
		if err := g.AddEdge(model.Edge{From: ej.From, To: ej.To, Count: ej.Count}); err != nil {
			return nil, fmt.Errorf("add edge %s→%s: %w", ej.From, ej.To, err)
		}
	}

	return g, nil
}

// copyMeta creates a shallow copy of metadata to avoid mutation.
func copyMeta(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	result := make(map[string]any, len(m))
	for k, v := range m {
		result[k] = v
	}
	return result
}

// UnmarshalGraph deserializes JSON bytes to a Graph.
func UnmarshalGraph(data []byte) (Graph, error) {
	var g Graph
	if err := json.Unmarshal(data, &g); err != nil {
		return Graph{}, err
	}
	return g, nil
}

// =============================================================================
// Internal Helpers
// =============================================================================

func nodeFromModel(n *model.Node) Node {
	return Node{
		ID:        n.ID,
		Label:     n.Label,
		Kind:      kindToString(n.Kind),
		Shape:     n.Shape,
		Input:     n.IsInput,
		Output:    n.IsOutput,
		Depth:     n.Depth,
		Parent:    n.Parent,
		NumParams: n.NumParams,
		Meta:      cleanMeta(n.Meta),
	}
}

// cleanMeta returns a copy of metadata, or nil if it is empty so the field
// serializes away under omitempty.
func cleanMeta(m map[string]any) map[string]any {
	if len(m) == 0 {
		return nil
	}
	return copyMeta(m)
}

func kindToString(k model.NodeKind) string {
	if k == model.NodeKindTensor {
		return KindTensor
	}
	return ""
}

func stringToKind(s string) model.NodeKind {
	if s == KindTensor {
		return model.NodeKindTensor
	}
	return model.NodeKindOperation
}
