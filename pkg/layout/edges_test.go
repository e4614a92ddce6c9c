package layout

import (
	"strings"
	"testing"
)

func TestLoopPath_AnchorGeometry(t *testing.T) {
	eng := NewEngine(nil, DefaultConfig())
	src := Point{X: 10, Y: 10}
	dst := Point{X: 100, Y: 10}

	path, label := eng.loopPath(src, dst)

	if path[0] != src {
		t.Errorf("path starts at %v, want %v", path[0], src)
	}
	if path[len(path)-1] != dst {
		t.Errorf("path ends at %v, want %v", path[len(path)-1], dst)
	}
	for i, p := range path[1 : len(path)-1] {
		if p.Y >= 10 {
			t.Errorf("intermediate point %d = %v, want strictly above both anchors", i+1, p)
		}
	}
	if label.Y >= 10 {
		t.Errorf("label anchor %v not above the anchors", label)
	}
	if label.X <= src.X || label.X >= dst.X {
		t.Errorf("label anchor x = %g, want within the arc span", label.X)
	}
}

func TestLoopPath_ExtensionClamped(t *testing.T) {
	cfg := DefaultConfig()
	eng := NewEngine(nil, cfg)

	// Huge horizontal gap: extension and arc must respect their maxima.
	path, _ := eng.loopPath(Point{X: 0, Y: 100}, Point{X: 10000, Y: 100})
	maxX := 0.0
	minY := 100.0
	for _, p := range path {
		if p.X > maxX && p.X < 5000 {
			maxX = p.X
		}
		if p.Y < minY {
			minY = p.Y
		}
	}
	// The top corner's rounding may poke past the extension by at most
	// the corner radius.
	if maxX > cfg.LoopExtMax+cfg.LoopCornerRadius {
		t.Errorf("source-side extension reached %g, want <= %g", maxX, cfg.LoopExtMax+cfg.LoopCornerRadius)
	}
	if got := 100 - minY; got > cfg.LoopArcMax {
		t.Errorf("arc height %g, want <= %g", got, cfg.LoopArcMax)
	}

	// Tiny gap: extension and arc must respect their minima.
	path, _ = eng.loopPath(Point{X: 0, Y: 100}, Point{X: 4, Y: 100})
	minY = 100.0
	for _, p := range path {
		if p.Y < minY {
			minY = p.Y
		}
	}
	if got := 100 - minY; got < cfg.LoopArcMin {
		t.Errorf("arc height %g, want >= %g", got, cfg.LoopArcMin)
	}
}

func TestLoopPath_RightToLeft(t *testing.T) {
	cfg := DefaultConfig()
	eng := NewEngine(nil, cfg)

	// Target left of the source: how a cycle-closing edge actually
	// lies, since the ranking places the cycle's entry node first.
	src := Point{X: 200, Y: 100}
	dst := Point{X: 20, Y: 100}

	path, label := eng.loopPath(src, dst)

	if path[0] != src || path[len(path)-1] != dst {
		t.Fatalf("path runs %v..%v, want %v..%v", path[0], path[len(path)-1], src, dst)
	}

	// Every point stays within the clamped extensions on both sides.
	gap := src.X - dst.X
	ext := clamp(gap*cfg.LoopExtScale, cfg.LoopExtMin, cfg.LoopExtMax)
	lo, hi := dst.X-ext, src.X+ext
	for i, p := range path {
		if p.X < lo-1e-9 || p.X > hi+1e-9 {
			t.Errorf("point %d = %v outside the extensions [%g, %g]", i, p, lo, hi)
		}
	}

	// Leaving the source eastward, crossing the top westward, entering
	// the target eastward: exactly two horizontal reversals. More means
	// the corners round toward the wrong side.
	reversals := 0
	prev := 0.0
	for i := 1; i < len(path); i++ {
		d := path[i].X - path[i-1].X
		if d == 0 {
			continue
		}
		if prev != 0 && (d > 0) != (prev > 0) {
			reversals++
		}
		prev = d
	}
	if reversals != 2 {
		t.Errorf("path reverses horizontal direction %d times, want 2", reversals)
	}

	if label.X <= dst.X || label.X >= src.X {
		t.Errorf("label anchor x = %g, want between the endpoints", label.X)
	}
	if label.Y >= src.Y {
		t.Errorf("label anchor %v not above the anchors", label)
	}
}

func TestPathData_Forms(t *testing.T) {
	tests := []struct {
		name string
		edge RoutedEdge
		want string // required command letter
	}{
		{
			name: "two-point forward edge renders as cubic",
			edge: RoutedEdge{Path: []Point{{X: 0, Y: 0}, {X: 100, Y: 50}}},
			want: " C ",
		},
		{
			name: "multi-point forward edge renders as quadratic chain",
			edge: RoutedEdge{Path: []Point{{X: 0, Y: 0}, {X: 50, Y: 20}, {X: 100, Y: 0}}},
			want: " Q ",
		},
		{
			name: "back edge renders polyline verbatim",
			edge: RoutedEdge{Back: true, Path: []Point{{X: 0, Y: 0}, {X: 10, Y: -5}, {X: 20, Y: 0}}},
			want: " L ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PathData(tt.edge)
			if !strings.HasPrefix(got, "M ") {
				t.Errorf("PathData() = %q, want M prefix", got)
			}
			if !strings.Contains(got, tt.want) {
				t.Errorf("PathData() = %q, want %q command", got, tt.want)
			}
		})
	}

	if got := PathData(RoutedEdge{Path: []Point{{X: 1, Y: 1}}}); got != "" {
		t.Errorf("PathData(single point) = %q, want empty", got)
	}
}

func TestPathData_QuadChainEndsAtFinalPoint(t *testing.T) {
	edge := RoutedEdge{Path: []Point{{X: 0, Y: 0}, {X: 50, Y: 20}, {X: 80, Y: 10}, {X: 120, Y: 0}}}
	got := PathData(edge)
	if !strings.HasSuffix(got, "120.0 0.0") {
		t.Errorf("PathData() = %q, want path ending at the target point", got)
	}
}
