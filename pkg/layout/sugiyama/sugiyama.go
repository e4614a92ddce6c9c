// Package sugiyama provides the built-in layered positioning engine.
//
// It implements the classic Sugiyama pipeline in pure Go: longest-path
// rank assignment, barycenter crossing reduction, and size-aware
// coordinate assignment, extended with compound-cluster support (members
// of a cluster are kept adjacent within each rank, and cluster geometry
// is aggregated bottom-up from member geometry plus padding).
//
// The engine expects an acyclic edge set - the layout adapter strips
// cycle-closing edges before registration. Edges referencing unregistered
// nodes are ignored.
package sugiyama

import (
	"context"
	"slices"
	"sort"

	"github.com/matzehuels/modelcanvas/pkg/layout/solver"
)

const (
	defaultNodeSep = 24.0
	defaultRankSep = 64.0
	marginX        = 32.0
	marginY        = 32.0

	// crossingPasses is the number of barycenter sweeps. Four forward and
	// backward passes reach a stable ordering on typical model graphs.
	crossingPasses = 4
)

// Engine is the built-in layered-DAG engine. The zero value is ready to
// use and safe for concurrent Solve calls.
type Engine struct{}

// New creates a built-in engine.
func New() *Engine { return &Engine{} }

var _ solver.Engine = (*Engine)(nil)

// Solve computes rank, order, and coordinates for the request. It never
// returns an error for graph-shaped input; the error return exists to
// satisfy the engine contract shared with external engines.
func (e *Engine) Solve(ctx context.Context, g *solver.Graph) (*solver.Result, error) {
	res := solver.NewResult()
	if len(g.Nodes) == 0 {
		return res, nil
	}

	// The pipeline is written for left-to-right flow. Top-to-bottom input
	// is transposed on the way in and the result transposed back.
	transposed := g.Direction == solver.TopToBottom
	work := g
	if transposed {
		work = transposeGraph(g)
	}

	s := newState(work)
	s.assignRanks()
	for i := 0; i < crossingPasses; i++ {
		s.reduceCrossings()
	}
	s.assignCoordinates()
	s.aggregateClusters(res)
	s.routeEdges(res)

	for id, geo := range s.geometry {
		res.Nodes[id] = geo
	}

	if transposed {
		transposeResult(res)
	}
	return res, nil
}

// state carries the per-solve working set so Solve stays re-entrant.
type state struct {
	graph    *solver.Graph
	nodes    map[string]solver.Node
	clusters map[string]solver.Cluster
	forward  map[string][]string
	backward map[string][]string
	rank     map[string]int
	order    [][]string // rank -> ordered node IDs
	geometry map[string]solver.Geometry
	nodeSep  float64
	rankSep  float64
}

func newState(g *solver.Graph) *state {
	s := &state{
		graph:    g,
		nodes:    make(map[string]solver.Node, len(g.Nodes)),
		clusters: make(map[string]solver.Cluster, len(g.Clusters)),
		forward:  make(map[string][]string),
		backward: make(map[string][]string),
		rank:     make(map[string]int),
		geometry: make(map[string]solver.Geometry),
		nodeSep:  g.NodeSep,
		rankSep:  g.RankSep,
	}
	if s.nodeSep <= 0 {
		s.nodeSep = defaultNodeSep
	}
	if s.rankSep <= 0 {
		s.rankSep = defaultRankSep
	}
	for _, n := range g.Nodes {
		s.nodes[n.ID] = n
	}
	for _, c := range g.Clusters {
		s.clusters[c.ID] = c
	}
	seen := make(map[[2]string]bool)
	for _, e := range g.Edges {
		if _, ok := s.nodes[e.From]; !ok {
			continue
		}
		if _, ok := s.nodes[e.To]; !ok {
			continue
		}
		key := [2]string{e.From, e.To}
		if seen[key] || e.From == e.To {
			continue
		}
		seen[key] = true
		s.forward[e.From] = append(s.forward[e.From], e.To)
		s.backward[e.To] = append(s.backward[e.To], e.From)
	}
	return s
}

// assignRanks computes longest-path ranks: every node sits one rank past
// its furthest predecessor, so edges always point in rank order.
func (s *state) assignRanks() {
	ids := sortedIDs(s.nodes)

	var visit func(id string) int
	visit = func(id string) int {
		if r, ok := s.rank[id]; ok {
			return r
		}
		// Mark before recursing; the edge set is acyclic so this value is
		// only observed by re-entry through diamond patterns.
		s.rank[id] = 0
		r := 0
		for _, pred := range s.backward[id] {
			if pr := visit(pred) + 1; pr > r {
				r = pr
			}
		}
		s.rank[id] = r
		return r
	}

	maxRank := 0
	for _, id := range ids {
		if r := visit(id); r > maxRank {
			maxRank = r
		}
	}

	s.order = make([][]string, maxRank+1)
	for _, id := range ids {
		r := s.rank[id]
		s.order[r] = append(s.order[r], id)
	}
	// Initial in-rank order: cluster chain first so cluster members stay
	// adjacent, ID second for determinism.
	for r := range s.order {
		s.sortRank(r, nil)
	}
}

// clusterChain returns the cluster path from root to the node's direct
// parent, used to group members of the same cluster within a rank.
func (s *state) clusterChain(id string) string {
	var parts []string
	cur := s.nodes[id].Parent
	for cur != "" {
		parts = append(parts, cur)
		cur = s.clusters[cur].Parent
	}
	slices.Reverse(parts)
	chain := ""
	for _, p := range parts {
		chain += p + "/"
	}
	return chain
}

// sortRank orders rank r by (cluster chain, barycenter, ID). A nil
// barycenter map sorts on chain and ID only.
func (s *state) sortRank(r int, bary map[string]float64) {
	layer := s.order[r]
	sort.SliceStable(layer, func(i, j int) bool {
		ci, cj := s.clusterChain(layer[i]), s.clusterChain(layer[j])
		if ci != cj {
			return ci < cj
		}
		if bary != nil {
			bi, bj := bary[layer[i]], bary[layer[j]]
			if bi != bj {
				return bi < bj
			}
		}
		return layer[i] < layer[j]
	})
}

// reduceCrossings runs one forward and one backward barycenter sweep.
// Each node is pulled toward the average in-rank position of its
// neighbors in the adjacent rank, within its cluster group.
func (s *state) reduceCrossings() {
	pos := make(map[string]float64)
	update := func(r int) {
		for i, id := range s.order[r] {
			pos[id] = float64(i)
		}
	}
	for r := range s.order {
		update(r)
	}

	sweep := func(r int, neighbors map[string][]string) {
		bary := make(map[string]float64, len(s.order[r]))
		for _, id := range s.order[r] {
			sum, count := 0.0, 0
			for _, n := range neighbors[id] {
				if p, ok := pos[n]; ok {
					sum += p
					count++
				}
			}
			if count > 0 {
				bary[id] = sum / float64(count)
			} else {
				bary[id] = pos[id]
			}
		}
		s.sortRank(r, bary)
		update(r)
	}

	for r := 1; r < len(s.order); r++ {
		sweep(r, s.backward)
	}
	for r := len(s.order) - 2; r >= 0; r-- {
		sweep(r, s.forward)
	}
}

// assignCoordinates places ranks along x (widest node wins the column)
// and stacks nodes along y, inserting an extra gap whenever adjacent
// nodes belong to different clusters so cluster padding has room.
func (s *state) assignCoordinates() {
	x := marginX
	for r, layer := range s.order {
		maxW := 0.0
		for _, id := range layer {
			if w := s.nodes[id].Width; w > maxW {
				maxW = w
			}
		}

		y := marginY
		prevChain := ""
		for i, id := range layer {
			n := s.nodes[id]
			chain := s.clusterChain(id)
			if i > 0 {
				y += s.nodeSep
				if chain != prevChain {
					y += s.clusterGap(prevChain, chain)
				}
			}
			s.geometry[id] = solver.Geometry{
				X:      x + maxW/2,
				Y:      y + n.Height/2,
				Width:  n.Width,
				Height: n.Height,
			}
			y += n.Height
			prevChain = chain
		}

		x += maxW
		if r < len(s.order)-1 {
			x += s.rankSep
		}
	}
}

// clusterGap returns the extra vertical space needed between two nodes
// with different cluster chains: enough for the pads of every cluster
// being exited and entered.
func (s *state) clusterGap(prev, next string) float64 {
	gap := 0.0
	for _, chain := range []string{prev, next} {
		cur := chain
		other := next
		if chain == next {
			other = prev
		}
		for cur != "" && !hasPrefix(other, cur) {
			id := lastChainElem(cur)
			c := s.clusters[id]
			gap += c.PadTop + c.PadBot
			cur = parentChain(cur)
		}
	}
	return gap / 2
}

// aggregateClusters computes cluster geometry deepest-first: the union of
// member nodes and child clusters, expanded by the cluster's padding.
func (s *state) aggregateClusters(res *solver.Result) {
	depth := make(map[string]int, len(s.clusters))
	var depthOf func(id string) int
	depthOf = func(id string) int {
		if d, ok := depth[id]; ok {
			return d
		}
		d := 1
		if p := s.clusters[id].Parent; p != "" {
			if _, ok := s.clusters[p]; ok {
				d = depthOf(p) + 1
			}
		}
		depth[id] = d
		return d
	}

	ids := sortedIDs(s.clusters)
	for _, id := range ids {
		depthOf(id)
	}
	slices.SortStableFunc(ids, func(a, b string) int {
		return depth[b] - depth[a]
	})

	members := make(map[string][]string)
	for _, n := range s.graph.Nodes {
		if n.Parent != "" {
			members[n.Parent] = append(members[n.Parent], n.ID)
		}
	}
	childClusters := make(map[string][]string)
	for _, c := range s.graph.Clusters {
		if c.Parent != "" {
			childClusters[c.Parent] = append(childClusters[c.Parent], c.ID)
		}
	}

	for _, id := range ids {
		c := s.clusters[id]
		var bounds *rect
		for _, m := range members[id] {
			if geo, ok := s.geometry[m]; ok {
				bounds = union(bounds, fromGeometry(geo))
			}
		}
		for _, cc := range childClusters[id] {
			if geo, ok := res.Clusters[cc]; ok {
				bounds = union(bounds, fromGeometry(geo))
			}
		}
		if bounds == nil {
			continue // empty cluster: no geometry, consumer falls back
		}
		bounds.left -= c.PadX
		bounds.right += c.PadX
		bounds.top -= c.PadTop
		bounds.bottom += c.PadBot
		res.Clusters[id] = solver.Geometry{
			X:      (bounds.left + bounds.right) / 2,
			Y:      (bounds.top + bounds.bottom) / 2,
			Width:  bounds.right - bounds.left,
			Height: bounds.bottom - bounds.top,
		}
	}
}

// routeEdges emits route points for every registered edge: endpoints at
// the node borders facing each other, plus one interpolated waypoint per
// intermediate rank for long edges.
func (s *state) routeEdges(res *solver.Result) {
	for _, e := range s.graph.Edges {
		src, ok := s.geometry[e.From]
		if !ok {
			continue
		}
		dst, ok := s.geometry[e.To]
		if !ok {
			continue
		}
		start := solver.Point{X: src.X + src.Width/2, Y: src.Y}
		end := solver.Point{X: dst.X - dst.Width/2, Y: dst.Y}
		points := []solver.Point{start}

		span := s.rank[e.To] - s.rank[e.From]
		for i := 1; i < span; i++ {
			t := float64(i) / float64(span)
			points = append(points, solver.Point{
				X: start.X + (end.X-start.X)*t,
				Y: start.Y + (end.Y-start.Y)*t,
			})
		}
		points = append(points, end)
		res.Routes[e.From+"->"+e.To] = points
	}
}

// rect is an axis-aligned bounding rectangle in absolute coordinates.
type rect struct {
	left, top, right, bottom float64
}

func fromGeometry(g solver.Geometry) rect {
	return rect{
		left:   g.X - g.Width/2,
		top:    g.Y - g.Height/2,
		right:  g.X + g.Width/2,
		bottom: g.Y + g.Height/2,
	}
}

func union(b *rect, r rect) *rect {
	if b == nil {
		return &r
	}
	if r.left < b.left {
		b.left = r.left
	}
	if r.top < b.top {
		b.top = r.top
	}
	if r.right > b.right {
		b.right = r.right
	}
	if r.bottom > b.bottom {
		b.bottom = r.bottom
	}
	return b
}

func sortedIDs[V any](m map[string]V) []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func hasPrefix(chain, prefix string) bool {
	return len(chain) >= len(prefix) && chain[:len(prefix)] == prefix
}

// lastChainElem returns the deepest cluster ID of a "a/b/c/" chain.
func lastChainElem(chain string) string {
	trimmed := chain[:len(chain)-1]
	for i := len(trimmed) - 1; i >= 0; i-- {
		if trimmed[i] == '/' {
			return trimmed[i+1:]
		}
	}
	return trimmed
}

// parentChain strips the deepest element of a "a/b/c/" chain.
func parentChain(chain string) string {
	trimmed := chain[:len(chain)-1]
	for i := len(trimmed) - 1; i >= 0; i-- {
		if trimmed[i] == '/' {
			return trimmed[:i+1]
		}
	}
	return ""
}

// transposeGraph swaps the axes of a request so the LR pipeline can serve
// TB layouts.
func transposeGraph(g *solver.Graph) *solver.Graph {
	out := &solver.Graph{
		Direction: solver.LeftToRight,
		NodeSep:   g.NodeSep,
		RankSep:   g.RankSep,
		Clusters:  slices.Clone(g.Clusters),
		Edges:     slices.Clone(g.Edges),
	}
	out.Nodes = make([]solver.Node, len(g.Nodes))
	for i, n := range g.Nodes {
		n.Width, n.Height = n.Height, n.Width
		out.Nodes[i] = n
	}
	return out
}

// transposeResult swaps the axes of a result back after a transposed solve.
func transposeResult(res *solver.Result) {
	for id, g := range res.Nodes {
		res.Nodes[id] = solver.Geometry{X: g.Y, Y: g.X, Width: g.Height, Height: g.Width}
	}
	for id, g := range res.Clusters {
		res.Clusters[id] = solver.Geometry{X: g.Y, Y: g.X, Width: g.Height, Height: g.Width}
	}
	for key, pts := range res.Routes {
		for i, p := range pts {
			pts[i] = solver.Point{X: p.Y, Y: p.X}
		}
		res.Routes[key] = pts
	}
}
