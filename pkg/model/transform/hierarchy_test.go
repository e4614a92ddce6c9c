package transform

import (
	"slices"
	"testing"

	"github.com/matzehuels/modelcanvas/pkg/model"
)

func buildHierarchy(t *testing.T) (*model.Graph, *Hierarchy) {
	t.Helper()
	g := model.New(nil)
	// root1 > mid > leaf, root2 standalone
	g.AddContainer(model.Container{ID: "mid", Depth: 2, Parent: "root1"})
	g.AddContainer(model.Container{ID: "root2", Depth: 1})
	g.AddContainer(model.Container{ID: "leaf", Depth: 3, Parent: "mid"})
	g.AddContainer(model.Container{ID: "root1", Depth: 1})
	g.AddNode(model.Node{ID: "n1", Parent: "mid"})
	g.AddNode(model.Node{ID: "n2", Parent: "leaf"})
	g.AddNode(model.Node{ID: "n3"})
	return g, ResolveHierarchy(g)
}

func TestByDepth_ParentsBeforeChildren(t *testing.T) {
	_, h := buildHierarchy(t)

	var ids []string
	for _, c := range h.ByDepth() {
		ids = append(ids, c.ID)
	}
	want := []string{"root1", "root2", "mid", "leaf"}
	if !slices.Equal(ids, want) {
		t.Errorf("ByDepth() = %v, want %v", ids, want)
	}

	desc := h.ByDepthDescending()
	if desc[0].ID != "leaf" {
		t.Errorf("ByDepthDescending()[0] = %s, want leaf", desc[0].ID)
	}
}

func TestDescendants(t *testing.T) {
	_, h := buildHierarchy(t)

	got := h.Descendants("root1")
	want := []string{"mid", "leaf"}
	if !slices.Equal(got, want) {
		t.Errorf("Descendants(root1) = %v, want %v", got, want)
	}
	if d := h.Descendants("leaf"); len(d) != 0 {
		t.Errorf("Descendants(leaf) = %v, want empty", d)
	}
}

func TestMembers(t *testing.T) {
	_, h := buildHierarchy(t)

	if got := h.Members("mid"); !slices.Equal(got, []string{"n1"}) {
		t.Errorf("Members(mid) = %v, want [n1]", got)
	}
	if got := h.Members("root2"); len(got) != 0 {
		t.Errorf("Members(root2) = %v, want empty", got)
	}
}

func TestResolveHierarchy_MissingParentIsRoot(t *testing.T) {
	g := model.New(nil)
	g.AddContainer(model.Container{ID: "orphan", Depth: 2, Parent: "nonexistent"})
	h := ResolveHierarchy(g)

	if p := h.Parent("orphan"); p != "" {
		t.Errorf("Parent(orphan) = %q, want root (empty)", p)
	}
}

func TestResolveHierarchy_NodeWithMissingParent(t *testing.T) {
	g := model.New(nil)
	g.AddContainer(model.Container{ID: "c", Depth: 1})
	g.AddNode(model.Node{ID: "n", Parent: "ghost"})
	h := ResolveHierarchy(g)

	if m := h.Members("ghost"); len(m) != 0 {
		t.Errorf("Members(ghost) = %v, dangling node parent must be ignored", m)
	}
}
