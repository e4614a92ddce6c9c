package transform

import "github.com/matzehuels/modelcanvas/pkg/model"

// BackEdges classifies every edge of g and returns the set of edges that
// close a cycle, keyed by [model.Edge.Key] ("from->to") for O(1) membership
// tests during solver registration and edge routing.
//
// Classification uses depth-first search with white/gray/black coloring,
// restarted from every unvisited node so disconnected components are
// covered. An edge whose target is still on the active DFS path (gray) is
// a back edge. Which edge of a cycle gets marked depends only on traversal
// order - when a cycle has several candidate edges, callers must not
// assume a canonical choice.
//
// Runs in O(nodes + edges) and does not mutate g.
func BackEdges(g *model.Graph) map[string]bool {
	const (
		white = iota
		gray
		black
	)

	color := make(map[string]int, g.NodeCount())
	back := make(map[string]bool)

	var dfs func(node string)
	dfs = func(node string) {
		color[node] = gray
		for _, child := range g.Successors(node) {
			if !g.HasNode(child) {
				continue
			}
			switch color[child] {
			case white:
				dfs(child)
			case gray:
				back[node+"->"+child] = true
			}
		}
		color[node] = black
	}

	// Starting from the roots first keeps the classification stable for
	// the common case of a mostly-feed-forward graph: cycle edges pointing
	// against the data flow direction are the ones marked back.
	for _, n := range g.Roots() {
		if color[n.ID] == white {
			dfs(n.ID)
		}
	}
	for _, n := range g.Nodes() {
		if color[n.ID] == white {
			dfs(n.ID)
		}
	}

	return back
}
