package view

import (
	"slices"
	"sync"

	"github.com/matzehuels/modelcanvas/pkg/model"
	"github.com/matzehuels/modelcanvas/pkg/model/transform"
)

// =============================================================================
// Types
// =============================================================================

// Kind classifies a visible element.
type Kind string

const (
	// KindContainer is a hierarchy group, expandable when it has children.
	KindContainer Kind = "container"
	// KindTensor is a tensor-valued leaf.
	KindTensor Kind = "tensor"
	// KindOperation is an operation leaf.
	KindOperation Kind = "operation"
)

// EdgeType classifies a visible edge.
type EdgeType string

const (
	// EdgeHierarchy connects an expanded container to each direct child.
	EdgeHierarchy EdgeType = "hierarchy"
	// EdgeSequence connects consecutive siblings of an expanded container.
	EdgeSequence EdgeType = "sequence"
)

// Node is a visible element: a leaf node or a container at its current
// expansion state.
type Node struct {
	ID          string `json:"id" bson:"id"`
	Label       string `json:"label" bson:"label"`
	Kind        Kind   `json:"kind" bson:"kind"`
	NumParams   int    `json:"num_params" bson:"num_params"`
	HasChildren bool   `json:"has_children" bson:"has_children"`
	Expanded    bool   `json:"expanded" bson:"expanded"`
	Depth       int    `json:"depth" bson:"depth"`
	Parent      string `json:"parent,omitempty" bson:"parent,omitempty"`
}

// Edge is a visible structural edge.
type Edge struct {
	From string   `json:"from" bson:"from"`
	To   string   `json:"to" bson:"to"`
	Type EdgeType `json:"type" bson:"type"`
}

// Graph is the visible graph for the current expansion state.
type Graph struct {
	Nodes []Node `json:"nodes" bson:"nodes"`
	Edges []Edge `json:"edges" bson:"edges"`
}

// Details is the full description of one element, for detail panes.
type Details struct {
	ID          string         `json:"id" bson:"id"`
	Label       string         `json:"label" bson:"label"`
	Kind        Kind           `json:"kind" bson:"kind"`
	NumParams   int            `json:"num_params" bson:"num_params"`
	HasChildren bool           `json:"has_children" bson:"has_children"`
	ChildCount  int            `json:"child_count" bson:"child_count"`
	Children    []string       `json:"children,omitempty" bson:"children,omitempty"`
	Parent      string         `json:"parent,omitempty" bson:"parent,omitempty"`
	Depth       int            `json:"depth" bson:"depth"`
	Shape       []int          `json:"shape,omitempty" bson:"shape,omitempty"`
	Input       bool           `json:"input,omitempty" bson:"input,omitempty"`
	Output      bool           `json:"output,omitempty" bson:"output,omitempty"`
	Meta        map[string]any `json:"meta,omitempty" bson:"meta,omitempty"`
	Expanded    bool           `json:"expanded" bson:"expanded"`
}

// Summary aggregates graph-wide totals.
type Summary struct {
	Nodes       int `json:"nodes" bson:"nodes"`
	Containers  int `json:"containers" bson:"containers"`
	Edges       int `json:"edges" bson:"edges"`
	TotalParams int `json:"total_params" bson:"total_params"`
}

// =============================================================================
// Builder
// =============================================================================

// Builder maintains expand/collapse state over a model graph and computes
// the visible graph it implies. Safe for concurrent use.
type Builder struct {
	graph *model.Graph
	hier  *transform.Hierarchy

	// params aggregates trainable parameters per container over all
	// descendant leaves, computed once at construction.
	params map[string]int

	mu       sync.RWMutex
	expanded map[string]bool
}

// NewBuilder creates a builder with everything collapsed.
func NewBuilder(g *model.Graph) *Builder {
	b := &Builder{
		graph:    g,
		hier:     transform.ResolveHierarchy(g),
		params:   make(map[string]int),
		expanded: make(map[string]bool),
	}
	for _, c := range b.hier.ByDepthDescending() {
		total := 0
		for _, id := range b.hier.Members(c.ID) {
			total += g.Node(id).NumParams
		}
		for _, child := range b.hier.Children(c.ID) {
			total += b.params[child]
		}
		b.params[c.ID] = total
	}
	return b
}

// Initial returns the root-only graph: top-level containers and
// parentless leaves, all collapsed, with no edges.
func (b *Builder) Initial() Graph {
	out := Graph{Nodes: []Node{}, Edges: []Edge{}}
	for _, id := range b.roots() {
		out.Nodes = append(out.Nodes, b.element(id, false))
	}
	return out
}

// Visible returns the full visible graph for the current expansion
// state. Children of expanded containers appear with a hierarchy edge
// from the container and sequence edges between consecutive siblings.
func (b *Builder) Visible() Graph {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.visibleLocked()
}

// Expand marks a container expanded and returns the resulting visible
// graph. Expanding a leaf or an unknown ID is a no-op.
func (b *Builder) Expand(id string) Graph {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.graph.HasContainer(id) && b.hasChildren(id) {
		b.expanded[id] = true
	}
	return b.visibleLocked()
}

// Collapse collapses a container and, recursively, all of its
// descendants, so a later expand reveals exactly one level again.
func (b *Builder) Collapse(id string) Graph {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.expanded[id] {
		delete(b.expanded, id)
		for _, d := range b.hier.Descendants(id) {
			delete(b.expanded, d)
		}
	}
	return b.visibleLocked()
}

// Toggle flips the expansion state of a container.
func (b *Builder) Toggle(id string) Graph {
	b.mu.Lock()
	isExpanded := b.expanded[id]
	b.mu.Unlock()
	if isExpanded {
		return b.Collapse(id)
	}
	return b.Expand(id)
}

// IsExpanded reports whether the container is currently expanded.
func (b *Builder) IsExpanded(id string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.expanded[id]
}

// ExpansionState returns the sorted IDs of all expanded containers.
func (b *Builder) ExpansionState() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]string, 0, len(b.expanded))
	for id := range b.expanded {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

// SetExpansionState replaces the expansion state with the given IDs.
// Unknown and childless IDs are dropped.
func (b *Builder) SetExpansionState(ids []string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.expanded = make(map[string]bool, len(ids))
	for _, id := range ids {
		if b.graph.HasContainer(id) && b.hasChildren(id) {
			b.expanded[id] = true
		}
	}
}

// Details returns the full description of a container or leaf, or false
// when the ID is unknown.
func (b *Builder) Details(id string) (Details, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if c := b.graph.Container(id); c != nil {
		children := b.childIDs(id)
		return Details{
			ID:          c.ID,
			Label:       c.DisplayLabel(),
			Kind:        KindContainer,
			NumParams:   b.params[c.ID],
			HasChildren: len(children) > 0,
			ChildCount:  len(children),
			Children:    children,
			Parent:      b.hier.Parent(c.ID),
			Depth:       c.Depth,
			Expanded:    b.expanded[c.ID],
		}, true
	}

	if n := b.graph.Node(id); n != nil {
		parent := n.Parent
		if !b.graph.HasContainer(parent) {
			parent = ""
		}
		return Details{
			ID:        n.ID,
			Label:     n.DisplayLabel(),
			Kind:      leafKind(n),
			NumParams: n.NumParams,
			Parent:    parent,
			Depth:     n.Depth,
			Shape:     n.Shape,
			Input:     n.IsInput,
			Output:    n.IsOutput,
			Meta:      n.Meta,
		}, true
	}

	return Details{}, false
}

// Summary returns graph-wide totals.
func (b *Builder) Summary() Summary {
	total := 0
	for _, n := range b.graph.Nodes() {
		total += n.NumParams
	}
	return Summary{
		Nodes:       b.graph.NodeCount(),
		Containers:  b.graph.ContainerCount(),
		Edges:       b.graph.EdgeCount(),
		TotalParams: total,
	}
}

// =============================================================================
// Internal
// =============================================================================

func (b *Builder) visibleLocked() Graph {
	out := Graph{Nodes: []Node{}, Edges: []Edge{}}
	for _, id := range b.roots() {
		b.collect(id, &out)
	}
	return out
}

// collect appends the element and, when it is an expanded container, its
// children with hierarchy and sequence edges, descending recursively.
func (b *Builder) collect(id string, out *Graph) {
	isExpanded := b.expanded[id]
	out.Nodes = append(out.Nodes, b.element(id, isExpanded))

	if !isExpanded {
		return
	}

	prev := ""
	for _, child := range b.childIDs(id) {
		out.Edges = append(out.Edges, Edge{From: id, To: child, Type: EdgeHierarchy})
		if prev != "" {
			out.Edges = append(out.Edges, Edge{From: prev, To: child, Type: EdgeSequence})
		}
		b.collect(child, out)
		prev = child
	}
}

// element builds the visible node for a container or leaf ID.
func (b *Builder) element(id string, expanded bool) Node {
	if c := b.graph.Container(id); c != nil {
		return Node{
			ID:          c.ID,
			Label:       c.DisplayLabel(),
			Kind:        KindContainer,
			NumParams:   b.params[c.ID],
			HasChildren: b.hasChildren(c.ID),
			Expanded:    expanded,
			Depth:       c.Depth,
			Parent:      b.hier.Parent(c.ID),
		}
	}
	n := b.graph.Node(id)
	parent := n.Parent
	if !b.graph.HasContainer(parent) {
		parent = ""
	}
	return Node{
		ID:        n.ID,
		Label:     n.DisplayLabel(),
		Kind:      leafKind(n),
		NumParams: n.NumParams,
		Depth:     n.Depth,
		Parent:    parent,
	}
}

// roots returns top-level container and leaf IDs sorted together by ID.
func (b *Builder) roots() []string {
	var out []string
	for _, c := range b.graph.Containers() {
		if b.hier.Parent(c.ID) == "" {
			out = append(out, c.ID)
		}
	}
	for _, n := range b.graph.Nodes() {
		if n.Parent == "" || !b.graph.HasContainer(n.Parent) {
			out = append(out, n.ID)
		}
	}
	slices.Sort(out)
	return out
}

// childIDs returns the direct children of a container, child containers
// and member leaves merged and sorted by ID.
func (b *Builder) childIDs(id string) []string {
	children := b.hier.Children(id)
	members := b.hier.Members(id)
	out := make([]string, 0, len(children)+len(members))
	out = append(out, children...)
	out = append(out, members...)
	slices.Sort(out)
	return out
}

func (b *Builder) hasChildren(id string) bool {
	return len(b.hier.Children(id))+len(b.hier.Members(id)) > 0
}

func leafKind(n *model.Node) Kind {
	if n.IsTensor() {
		return KindTensor
	}
	return KindOperation
}
