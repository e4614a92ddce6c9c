package sugiyama

import (
	"context"
	"testing"

	"github.com/matzehuels/modelcanvas/pkg/layout/solver"
)

func solve(t *testing.T, g *solver.Graph) *solver.Result {
	t.Helper()
	res, err := New().Solve(context.Background(), g)
	if err != nil {
		t.Fatalf("Solve() = %v", err)
	}
	return res
}

func chainGraph() *solver.Graph {
	g := solver.NewGraph(solver.LeftToRight)
	g.AddNode(solver.Node{ID: "a", Width: 100, Height: 40})
	g.AddNode(solver.Node{ID: "b", Width: 100, Height: 40})
	g.AddNode(solver.Node{ID: "c", Width: 100, Height: 40})
	g.AddEdge(solver.Edge{From: "a", To: "b", Weight: 1})
	g.AddEdge(solver.Edge{From: "b", To: "c", Weight: 1})
	return g
}

func TestSolve_EmptyGraph(t *testing.T) {
	res := solve(t, solver.NewGraph(solver.LeftToRight))
	if len(res.Nodes) != 0 {
		t.Errorf("empty request produced %d node geometries", len(res.Nodes))
	}
}

func TestSolve_ChainRankOrder(t *testing.T) {
	res := solve(t, chainGraph())

	a, _ := res.NodeGeometry("a")
	b, _ := res.NodeGeometry("b")
	c, _ := res.NodeGeometry("c")
	if !(a.X < b.X && b.X < c.X) {
		t.Errorf("rank x order violated: a=%g b=%g c=%g", a.X, b.X, c.X)
	}
	// Adjacent ranks separated by at least the rank gap.
	if gap := (b.X - b.Width/2) - (a.X + a.Width/2); gap < defaultRankSep {
		t.Errorf("rank gap %g, want >= %g", gap, defaultRankSep)
	}
}

func TestSolve_GeometryCarriesRequestedSizes(t *testing.T) {
	res := solve(t, chainGraph())
	for _, id := range []string{"a", "b", "c"} {
		geo, ok := res.NodeGeometry(id)
		if !ok {
			t.Fatalf("no geometry for %s", id)
		}
		if geo.Width != 100 || geo.Height != 40 {
			t.Errorf("node %s size = %gx%g, want 100x40", id, geo.Width, geo.Height)
		}
	}
}

func TestSolve_SameRankNodesDoNotOverlap(t *testing.T) {
	g := solver.NewGraph(solver.LeftToRight)
	g.AddNode(solver.Node{ID: "root", Width: 80, Height: 30})
	for _, id := range []string{"x", "y", "z"} {
		g.AddNode(solver.Node{ID: id, Width: 80, Height: 30})
		g.AddEdge(solver.Edge{From: "root", To: id, Weight: 1})
	}
	res := solve(t, g)

	geos := make([]solver.Geometry, 0, 3)
	for _, id := range []string{"x", "y", "z"} {
		geo, _ := res.NodeGeometry(id)
		geos = append(geos, geo)
	}
	for i := range geos {
		for j := i + 1; j < len(geos); j++ {
			top1, bot1 := geos[i].Y-geos[i].Height/2, geos[i].Y+geos[i].Height/2
			top2, bot2 := geos[j].Y-geos[j].Height/2, geos[j].Y+geos[j].Height/2
			if top1 < bot2 && top2 < bot1 {
				t.Errorf("rank siblings %d and %d overlap vertically", i, j)
			}
		}
	}
}

func TestSolve_ClusterEnclosesMembers(t *testing.T) {
	g := solver.NewGraph(solver.LeftToRight)
	g.AddCluster(solver.Cluster{ID: "grp", PadX: 10, PadTop: 30, PadBot: 10})
	g.AddNode(solver.Node{ID: "a", Width: 60, Height: 30, Parent: "grp"})
	g.AddNode(solver.Node{ID: "b", Width: 60, Height: 30, Parent: "grp"})
	g.AddNode(solver.Node{ID: "free", Width: 60, Height: 30})
	g.AddEdge(solver.Edge{From: "a", To: "b", Weight: 1})

	res := solve(t, g)
	cl, ok := res.ClusterGeometry("grp")
	if !ok {
		t.Fatal("no cluster geometry")
	}
	left, top := cl.X-cl.Width/2, cl.Y-cl.Height/2
	right, bottom := cl.X+cl.Width/2, cl.Y+cl.Height/2
	for _, id := range []string{"a", "b"} {
		geo, _ := res.NodeGeometry(id)
		if geo.X-geo.Width/2 < left || geo.X+geo.Width/2 > right ||
			geo.Y-geo.Height/2 < top || geo.Y+geo.Height/2 > bottom {
			t.Errorf("member %s escapes its cluster", id)
		}
	}
}

func TestSolve_EmptyClusterOmitted(t *testing.T) {
	g := solver.NewGraph(solver.LeftToRight)
	g.AddCluster(solver.Cluster{ID: "hollow", PadX: 10, PadTop: 10, PadBot: 10})
	g.AddNode(solver.Node{ID: "a", Width: 60, Height: 30})

	res := solve(t, g)
	if _, ok := res.ClusterGeometry("hollow"); ok {
		t.Error("empty cluster received geometry, want omission")
	}
}

func TestSolve_RoutesForEveryEdge(t *testing.T) {
	g := chainGraph()
	g.AddEdge(solver.Edge{From: "a", To: "c", Weight: 1}) // spans two ranks
	res := solve(t, g)

	if pts := res.Route("a", "b"); len(pts) < 2 {
		t.Errorf("route a→b has %d points, want >= 2", len(pts))
	}
	long := res.Route("a", "c")
	if len(long) < 3 {
		t.Errorf("rank-spanning route a→c has %d points, want an intermediate waypoint", len(long))
	}
}

func TestSolve_TopToBottomTransposesAxes(t *testing.T) {
	g := chainGraph()
	g.Direction = solver.TopToBottom
	res := solve(t, g)

	a, _ := res.NodeGeometry("a")
	c, _ := res.NodeGeometry("c")
	if !(a.Y < c.Y) {
		t.Errorf("TB ranks must advance along y: a.Y=%g c.Y=%g", a.Y, c.Y)
	}
	if a.Width != 100 || a.Height != 40 {
		t.Errorf("TB node size = %gx%g, want original 100x40", a.Width, a.Height)
	}
}

func TestSolve_IgnoresDanglingEdges(t *testing.T) {
	g := chainGraph()
	g.AddEdge(solver.Edge{From: "a", To: "ghost", Weight: 1})
	res := solve(t, g)

	if len(res.Nodes) != 3 {
		t.Errorf("placed %d nodes, want 3", len(res.Nodes))
	}
	if pts := res.Route("a", "ghost"); pts != nil {
		t.Errorf("dangling edge received a route: %v", pts)
	}
}
