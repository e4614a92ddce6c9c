package graph

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/modelcanvas/pkg/layout"
)

func sampleLayout() layout.Layout {
	return layout.Layout{
		Nodes: []layout.PlacedNode{
			{ID: "in", X: 32, Y: 32, Width: 96, Height: 28},
			{ID: "relu", X: 192, Y: 26, Width: 128, Height: 40, Parent: "features"},
		},
		Edges: []layout.RoutedEdge{
			{From: "in", To: "relu", Count: 1, Path: []layout.Point{{X: 128, Y: 46}, {X: 192, Y: 46}}},
		},
		Boxes: []layout.ContainerBox{
			{ID: "features", Depth: 1, X: 168, Y: 2, Width: 176, Height: 88},
		},
		Width:  380,
		Height: 160,
	}
}

func TestLayoutRoundTrip(t *testing.T) {
	l := sampleLayout()

	data, err := MarshalLayout(l)
	if err != nil {
		t.Fatalf("MarshalLayout: %v", err)
	}

	got, err := UnmarshalLayout(data)
	if err != nil {
		t.Fatalf("UnmarshalLayout: %v", err)
	}

	if len(got.Nodes) != 2 || len(got.Edges) != 1 || len(got.Boxes) != 1 {
		t.Fatalf("shape = %d nodes, %d edges, %d boxes", len(got.Nodes), len(got.Edges), len(got.Boxes))
	}
	if n := got.Node("relu"); n == nil || n.Parent != "features" {
		t.Errorf("relu = %+v, want parent features", n)
	}
	if got.Width != l.Width || got.Height != l.Height {
		t.Errorf("canvas = %gx%g, want %gx%g", got.Width, got.Height, l.Width, l.Height)
	}
	if got.Edges[0].Path[1] != (layout.Point{X: 192, Y: 46}) {
		t.Errorf("edge path lost: %+v", got.Edges[0].Path)
	}
}

func TestUnmarshalLayoutValidation(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"InvalidJSON", `{not json}`},
		{"ZeroCanvas", `{"nodes": [], "edges": [], "width": 0, "height": 0}`},
		{"NodeWithoutID", `{"nodes": [{"x": 1, "y": 1}], "edges": [], "width": 100, "height": 100}`},
		{"DegeneratePath", `{"nodes": [], "edges": [{"from": "a", "to": "b", "path": [{"x": 1, "y": 1}]}], "width": 100, "height": 100}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := UnmarshalLayout([]byte(tt.input)); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestLayoutFileRoundTrip(t *testing.T) {
	l := sampleLayout()
	path := filepath.Join(t.TempDir(), "layout.json")

	if err := WriteLayoutFile(l, path); err != nil {
		t.Fatalf("WriteLayoutFile: %v", err)
	}
	got, err := ReadLayoutFile(path)
	if err != nil {
		t.Fatalf("ReadLayoutFile: %v", err)
	}
	if len(got.Nodes) != len(l.Nodes) {
		t.Errorf("nodes = %d, want %d", len(got.Nodes), len(l.Nodes))
	}
}

func TestReadLayoutFileNotFound(t *testing.T) {
	_, err := ReadLayoutFile("nonexistent.json")
	if err == nil || !strings.Contains(err.Error(), "nonexistent.json") {
		t.Errorf("err = %v, want path in message", err)
	}
}
