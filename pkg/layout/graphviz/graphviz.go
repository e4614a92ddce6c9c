// Package graphviz provides a layered positioning engine backed by the
// Graphviz dot algorithm via goccy/go-graphviz.
//
// The engine translates the solver request into DOT source (clusters as
// cluster_ subgraphs, fixed node sizes, weighted edges), runs the dot
// layout, and reads geometry back from the attributed DOT output
// (pos/width/height on nodes, bb on clusters, spline control points on
// edges). Graphviz works in points with a y-up origin; results are
// flipped to the y-down coordinate space the layout engine uses.
package graphviz

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	gv "github.com/goccy/go-graphviz"

	"github.com/matzehuels/modelcanvas/pkg/layout/solver"
)

// pointsPerInch converts the inch-based node size attributes of DOT
// output back to the point-based pos/bb coordinates.
const pointsPerInch = 72.0

// Engine runs Graphviz dot as the positioning engine. The zero value is
// ready to use; each Solve creates and closes its own Graphviz instance,
// keeping the engine safe for concurrent calls.
type Engine struct{}

// New creates a Graphviz-backed engine.
func New() *Engine { return &Engine{} }

var _ solver.Engine = (*Engine)(nil)

// Solve renders the request through dot and parses the resulting
// geometry. Entities Graphviz produced no geometry for are simply absent
// from the result, matching the engine contract.
func (e *Engine) Solve(ctx context.Context, g *solver.Graph) (*solver.Result, error) {
	res := solver.NewResult()
	if len(g.Nodes) == 0 {
		return res, nil
	}

	dot := buildDOT(g)

	viz, err := gv.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer viz.Close()

	parsed, err := gv.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer parsed.Close()

	var buf bytes.Buffer
	if err := viz.Render(ctx, parsed, gv.Format("dot"), &buf); err != nil {
		return nil, fmt.Errorf("dot layout: %w", err)
	}

	parseAttributedDOT(buf.String(), res)
	return res, nil
}

// buildDOT emits the request as DOT source. Node and cluster IDs pass
// through quoted verbatim; cluster subgraph names get the "cluster_"
// prefix dot requires to treat them as drawn clusters.
func buildDOT(g *solver.Graph) string {
	var b strings.Builder
	b.WriteString("digraph G {\n")
	fmt.Fprintf(&b, "  rankdir=%s;\n", dotRankdir(g.Direction))
	b.WriteString("  compound=true;\n")
	if g.NodeSep > 0 {
		fmt.Fprintf(&b, "  nodesep=%.3f;\n", g.NodeSep/pointsPerInch)
	}
	if g.RankSep > 0 {
		fmt.Fprintf(&b, "  ranksep=%.3f;\n", g.RankSep/pointsPerInch)
	}
	b.WriteString("  node [shape=box, fixedsize=true];\n\n")

	// Clusters arrive parents-before-children, so open subgraphs can be
	// nested by tracking the open parent chain.
	var open []string
	closeTo := func(parent string) {
		for len(open) > 0 && open[len(open)-1] != parent {
			open = open[:len(open)-1]
			b.WriteString(strings.Repeat("  ", len(open)+1) + "}\n")
		}
	}
	for _, c := range g.Clusters {
		closeTo(c.Parent)
		indent := strings.Repeat("  ", len(open)+1)
		fmt.Fprintf(&b, "%ssubgraph \"cluster_%s\" {\n", indent, c.ID)
		fmt.Fprintf(&b, "%s  label=%q;\n", indent, c.Label)
		fmt.Fprintf(&b, "%s  margin=%.0f;\n", indent, c.PadX)
		writeClusterNodes(&b, g, c.ID, indent+"  ")
		open = append(open, c.ID)
	}
	closeTo("")

	for _, n := range g.Nodes {
		if n.Parent != "" {
			continue // emitted inside its cluster
		}
		writeNode(&b, n, "  ")
	}

	b.WriteString("\n")
	for _, e := range g.Edges {
		fmt.Fprintf(&b, "  %q -> %q [weight=%d];\n", e.From, e.To, e.Weight)
	}
	b.WriteString("}\n")
	return b.String()
}

func writeClusterNodes(b *strings.Builder, g *solver.Graph, cluster, indent string) {
	for _, n := range g.Nodes {
		if n.Parent == cluster {
			writeNode(b, n, indent)
		}
	}
}

func writeNode(b *strings.Builder, n solver.Node, indent string) {
	fmt.Fprintf(b, "%s%q [width=%.3f, height=%.3f];\n",
		indent, n.ID, n.Width/pointsPerInch, n.Height/pointsPerInch)
}

func dotRankdir(d solver.Direction) string {
	if d == solver.TopToBottom {
		return "TB"
	}
	return "LR"
}

// =============================================================================
// Attributed DOT parsing
// =============================================================================

var (
	bbRe       = regexp.MustCompile(`\bbb="([-\d.]+),([-\d.]+),([-\d.]+),([-\d.]+)"`)
	posRe      = regexp.MustCompile(`\bpos="([^"]+)"`)
	widthRe    = regexp.MustCompile(`\bwidth="?([\d.]+)"?`)
	heightRe   = regexp.MustCompile(`\bheight="?([\d.]+)"?`)
	subgraphRe = regexp.MustCompile(`subgraph\s+"?cluster_([^"{\s]+)"?`)
	nodeRe     = regexp.MustCompile(`^"?([^"\[\]]+?)"?\s+\[`)
	edgeRe     = regexp.MustCompile(`^"?([^"\[\]]+?)"?\s*->\s*"?([^"\[\]]+?)"?\s+\[`)
)

// parseAttributedDOT walks dot's laid-out output statement by statement,
// tracking the open cluster stack so bb attributes attach to the right
// cluster, and flips all coordinates to y-down space at the end.
func parseAttributedDOT(out string, res *solver.Result) {
	maxY := 0.0
	var clusterStack []string
	pendingCluster := ""

	for _, stmt := range splitStatements(out) {
		switch {
		case strings.HasPrefix(stmt, "subgraph"):
			pendingCluster = ""
			if m := subgraphRe.FindStringSubmatch(stmt); m != nil {
				pendingCluster = m[1]
			}
		case stmt == "{":
			clusterStack = append(clusterStack, pendingCluster)
			pendingCluster = ""
		case stmt == "}":
			if len(clusterStack) > 0 {
				clusterStack = clusterStack[:len(clusterStack)-1]
			}
		case strings.HasPrefix(stmt, "graph"):
			m := bbRe.FindStringSubmatch(stmt)
			if m == nil {
				continue
			}
			llx, lly := parseFloat(m[1]), parseFloat(m[2])
			urx, ury := parseFloat(m[3]), parseFloat(m[4])
			if ury > maxY {
				maxY = ury
			}
			if id := currentCluster(clusterStack); id != "" {
				res.Clusters[id] = solver.Geometry{
					X:      (llx + urx) / 2,
					Y:      (lly + ury) / 2,
					Width:  urx - llx,
					Height: ury - lly,
				}
			}
		case edgeRe.MatchString(stmt):
			m := edgeRe.FindStringSubmatch(stmt)
			pos := posRe.FindStringSubmatch(stmt)
			if pos == nil {
				continue
			}
			if pts := parseSpline(pos[1]); len(pts) > 0 {
				res.Routes[m[1]+"->"+m[2]] = pts
			}
		case nodeRe.MatchString(stmt):
			m := nodeRe.FindStringSubmatch(stmt)
			id := strings.TrimSpace(m[1])
			if id == "node" || id == "edge" || id == "graph" {
				continue
			}
			pos := posRe.FindStringSubmatch(stmt)
			w := widthRe.FindStringSubmatch(stmt)
			h := heightRe.FindStringSubmatch(stmt)
			if pos == nil || w == nil || h == nil {
				continue
			}
			xy := strings.SplitN(pos[1], ",", 2)
			if len(xy) != 2 {
				continue
			}
			res.Nodes[id] = solver.Geometry{
				X:      parseFloat(xy[0]),
				Y:      parseFloat(xy[1]),
				Width:  parseFloat(w[1]) * pointsPerInch,
				Height: parseFloat(h[1]) * pointsPerInch,
			}
		}
	}

	flipY(res, maxY)
}

// splitStatements reassembles dot's wrapped output into whole statements
// plus bare brace tokens. Long attribute values continue with a trailing
// backslash; attribute lists wrap after a comma, so lines accumulate
// until their brackets balance.
func splitStatements(out string) []string {
	joined := strings.ReplaceAll(out, "\\\n", "")
	var stmts []string
	var pending string
	for _, line := range strings.Split(joined, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if pending != "" {
			pending += " " + line
		} else {
			pending = line
		}
		if strings.Count(pending, "[") > strings.Count(pending, "]") {
			continue
		}
		stmt := strings.TrimSpace(strings.TrimSuffix(pending, ";"))
		pending = ""
		if stmt == "" {
			continue
		}
		// "subgraph cluster_x {" arrives on one line; emit the brace as
		// its own token so the stack bookkeeping stays uniform.
		if strings.HasSuffix(stmt, "{") && stmt != "{" {
			stmts = append(stmts, strings.TrimSpace(strings.TrimSuffix(stmt, "{")), "{")
			continue
		}
		stmts = append(stmts, stmt)
	}
	return stmts
}

// currentCluster returns the innermost open cluster, skipping anonymous
// (non-cluster) subgraph frames.
func currentCluster(stack []string) string {
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i] != "" {
			return stack[i]
		}
	}
	return ""
}

// parseSpline decodes a dot edge pos attribute: optional "e,x,y" /
// "s,x,y" endpoint markers followed by spline control points.
func parseSpline(pos string) []solver.Point {
	var endPoint, startPoint *solver.Point
	var pts []solver.Point
	for _, tok := range strings.Fields(pos) {
		switch {
		case strings.HasPrefix(tok, "e,"):
			if p, ok := parsePoint(tok[2:]); ok {
				endPoint = &p
			}
		case strings.HasPrefix(tok, "s,"):
			if p, ok := parsePoint(tok[2:]); ok {
				startPoint = &p
			}
		default:
			if p, ok := parsePoint(tok); ok {
				pts = append(pts, p)
			}
		}
	}
	if startPoint != nil {
		pts = append([]solver.Point{*startPoint}, pts...)
	}
	if endPoint != nil {
		pts = append(pts, *endPoint)
	}
	return pts
}

func parsePoint(tok string) (solver.Point, bool) {
	xy := strings.SplitN(tok, ",", 2)
	if len(xy) != 2 {
		return solver.Point{}, false
	}
	return solver.Point{X: parseFloat(xy[0]), Y: parseFloat(xy[1])}, true
}

func parseFloat(s string) float64 {
	f, _ := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return f
}

// flipY converts Graphviz's y-up coordinates to the y-down space used by
// the rest of the pipeline.
func flipY(res *solver.Result, maxY float64) {
	for id, g := range res.Nodes {
		g.Y = maxY - g.Y
		res.Nodes[id] = g
	}
	for id, g := range res.Clusters {
		g.Y = maxY - g.Y
		res.Clusters[id] = g
	}
	for key, pts := range res.Routes {
		for i, p := range pts {
			pts[i].Y = maxY - p.Y
		}
		res.Routes[key] = pts
	}
}
