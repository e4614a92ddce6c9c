package layout

import (
	"github.com/matzehuels/modelcanvas/pkg/layout/solver"
	"github.com/matzehuels/modelcanvas/pkg/model"
	"github.com/matzehuels/modelcanvas/pkg/model/transform"
)

// buildRequest assembles the solver contract from the graph:
//
//  1. Containers register as compound clusters in ascending-depth order
//     (parents before children), with horizontal padding and extra top
//     padding for the label band.
//  2. Leaf nodes register with their category's fixed size class and
//     their effective owning cluster.
//  3. Edges register weighted by multiplicity - except back edges, which
//     are excluded so the solver is never asked to lay out a cycle.
//     Edges with unresolved endpoints are skipped here and dropped again
//     during routing.
func (e *Engine) buildRequest(g *model.Graph, hier *transform.Hierarchy, back map[string]bool, dir solver.Direction) *solver.Graph {
	req := solver.NewGraph(dir)
	req.NodeSep = e.cfg.NodeSep
	req.RankSep = e.cfg.RankSep

	for _, c := range hier.ByDepth() {
		req.AddCluster(solver.Cluster{
			ID:     c.ID,
			Label:  c.DisplayLabel(),
			Parent: hier.Parent(c.ID),
			PadX:   e.cfg.ClusterPadX,
			PadTop: e.cfg.ClusterPadTop,
			PadBot: e.cfg.ClusterPadBot,
		})
	}

	for _, n := range g.Nodes() {
		w, h := e.cfg.nodeSize(n.IsTensor())
		parent := n.Parent
		if !g.HasContainer(parent) {
			parent = ""
		}
		req.AddNode(solver.Node{
			ID:     n.ID,
			Width:  w,
			Height: h,
			Parent: parent,
		})
	}

	for _, edge := range g.Edges() {
		if back[edge.Key()] {
			continue
		}
		if !g.HasNode(edge.From) || !g.HasNode(edge.To) {
			continue
		}
		req.AddEdge(solver.Edge{
			From:   edge.From,
			To:     edge.To,
			Weight: edge.Count,
		})
	}

	return req
}
