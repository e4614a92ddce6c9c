package model

import (
	"errors"
	"testing"
)

func TestAddNode_Validation(t *testing.T) {
	g := New(nil)

	if err := g.AddNode(Node{}); !errors.Is(err, ErrInvalidNodeID) {
		t.Errorf("AddNode(empty ID) = %v, want ErrInvalidNodeID", err)
	}

	if err := g.AddNode(Node{ID: "a"}); err != nil {
		t.Fatalf("AddNode(a) = %v", err)
	}
	if err := g.AddNode(Node{ID: "a"}); !errors.Is(err, ErrDuplicateNodeID) {
		t.Errorf("AddNode(duplicate) = %v, want ErrDuplicateNodeID", err)
	}

	if g.Node("a").Meta == nil {
		t.Error("AddNode should initialize nil Meta")
	}
}

func TestAddEdge_AllowsCyclesAndDanglingEndpoints(t *testing.T) {
	g := New(nil)
	g.AddNode(Node{ID: "a"})
	g.AddNode(Node{ID: "b"})

	if err := g.AddEdge(Edge{From: "a", To: "b"}); err != nil {
		t.Fatalf("AddEdge(a→b) = %v", err)
	}
	if err := g.AddEdge(Edge{From: "b", To: "a"}); err != nil {
		t.Errorf("AddEdge(cycle) = %v, cycles must be accepted", err)
	}
	if err := g.AddEdge(Edge{From: "a", To: "ghost"}); err != nil {
		t.Errorf("AddEdge(dangling) = %v, dangling endpoints must be accepted", err)
	}
	if err := g.AddEdge(Edge{From: "", To: "a"}); !errors.Is(err, ErrInvalidEdgeEndpoint) {
		t.Errorf("AddEdge(empty From) = %v, want ErrInvalidEdgeEndpoint", err)
	}
}

func TestAddEdge_NormalizesCount(t *testing.T) {
	g := New(nil)
	g.AddNode(Node{ID: "a"})
	g.AddNode(Node{ID: "b"})
	g.AddEdge(Edge{From: "a", To: "b"})
	g.AddEdge(Edge{From: "b", To: "a", Count: 3})

	if got := g.Edges()[0].Count; got != 1 {
		t.Errorf("zero Count normalized to %d, want 1", got)
	}
	if got := g.Edges()[1].Count; got != 3 {
		t.Errorf("explicit Count = %d, want 3", got)
	}
}

func TestNodes_SortedByID(t *testing.T) {
	g := New(nil)
	for _, id := range []string{"c", "a", "b"} {
		g.AddNode(Node{ID: id})
	}
	nodes := g.Nodes()
	for i, want := range []string{"a", "b", "c"} {
		if nodes[i].ID != want {
			t.Errorf("Nodes()[%d] = %s, want %s", i, nodes[i].ID, want)
		}
	}
}

func TestRoots(t *testing.T) {
	g := New(nil)
	g.AddNode(Node{ID: "in"})
	g.AddNode(Node{ID: "op"})
	g.AddNode(Node{ID: "out"})
	g.AddEdge(Edge{From: "in", To: "op"})
	g.AddEdge(Edge{From: "op", To: "out"})

	roots := g.Roots()
	if len(roots) != 1 || roots[0].ID != "in" {
		t.Errorf("Roots() = %v, want [in]", roots)
	}
}

func TestClone_Independent(t *testing.T) {
	g := New(Metadata{"name": "m"})
	g.AddNode(Node{ID: "a", Shape: []int{1, 2}})
	g.AddContainer(Container{ID: "c", Depth: 1})
	g.AddEdge(Edge{From: "a", To: "a"})

	c := g.Clone()
	c.AddNode(Node{ID: "b"})
	c.Node("a").Shape[0] = 99

	if g.HasNode("b") {
		t.Error("mutating clone added node to original")
	}
	if g.Node("a").Shape[0] != 1 {
		t.Error("clone shares Shape slice with original")
	}
	if !c.HasContainer("c") {
		t.Error("clone lost container")
	}
}

func TestDisplayLabel(t *testing.T) {
	if got := (Node{ID: "n1"}).DisplayLabel(); got != "n1" {
		t.Errorf("DisplayLabel() = %q, want ID fallback", got)
	}
	if got := (Node{ID: "n1", Label: "conv"}).DisplayLabel(); got != "conv" {
		t.Errorf("DisplayLabel() = %q, want label", got)
	}
}
