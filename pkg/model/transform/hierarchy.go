package transform

import (
	"slices"

	"github.com/matzehuels/modelcanvas/pkg/model"
)

// Hierarchy is the resolved container forest of a graph. It is built once
// per layout invocation by [ResolveHierarchy] and answers the ordering and
// membership questions the layout passes need.
type Hierarchy struct {
	byDepth  []*model.Container  // ascending depth, ties broken by ID
	children map[string][]string // containerID -> direct child container IDs
	parents  map[string]string   // containerID -> effective parent (roots absent)
	members  map[string][]string // containerID -> directly owned node IDs
}

// ResolveHierarchy builds the container forest for g.
//
// Ordering relies on the caller-supplied Depth field rather than
// recomputing depth from the parent chain; this is a documented
// precondition of the graph contract. A container whose declared parent
// does not exist in the container map is treated as a root.
func ResolveHierarchy(g *model.Graph) *Hierarchy {
	h := &Hierarchy{
		children: make(map[string][]string),
		parents:  make(map[string]string),
		members:  make(map[string][]string),
	}

	h.byDepth = g.Containers()
	slices.SortStableFunc(h.byDepth, func(a, b *model.Container) int {
		if a.Depth != b.Depth {
			return a.Depth - b.Depth
		}
		if a.ID < b.ID {
			return -1
		}
		if a.ID > b.ID {
			return 1
		}
		return 0
	})

	for _, c := range h.byDepth {
		if c.Parent == "" || !g.HasContainer(c.Parent) {
			continue
		}
		h.parents[c.ID] = c.Parent
		h.children[c.Parent] = append(h.children[c.Parent], c.ID)
	}

	for _, n := range g.Nodes() {
		if n.Parent == "" || !g.HasContainer(n.Parent) {
			continue
		}
		h.members[n.Parent] = append(h.members[n.Parent], n.ID)
	}

	return h
}

// ByDepth returns all containers ordered by ascending depth, so parents
// always precede their children. The slice is shared - do not modify.
func (h *Hierarchy) ByDepth() []*model.Container { return h.byDepth }

// ByDepthDescending returns all containers ordered by descending depth,
// so every container is visited after all of its descendants.
func (h *Hierarchy) ByDepthDescending() []*model.Container {
	out := make([]*model.Container, len(h.byDepth))
	for i, c := range h.byDepth {
		out[len(h.byDepth)-1-i] = c
	}
	return out
}

// Parent returns the effective parent container ID of id, resolving
// dangling parent references to "" (root).
func (h *Hierarchy) Parent(id string) string { return h.parents[id] }

// Children returns the direct child container IDs of id.
func (h *Hierarchy) Children(id string) []string { return h.children[id] }

// Members returns the node IDs directly owned by container id.
func (h *Hierarchy) Members(id string) []string { return h.members[id] }

// Descendants returns the transitive set of descendant container IDs of
// id, computed by breadth-first expansion over the child adjacency. The
// container itself is not included.
func (h *Hierarchy) Descendants(id string) []string {
	var out []string
	queue := slices.Clone(h.children[id])
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		out = append(out, c)
		queue = append(queue, h.children[c]...)
	}
	return out
}
