package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/modelcanvas/pkg/graph"
	"github.com/matzehuels/modelcanvas/pkg/model"
	"github.com/matzehuels/modelcanvas/pkg/pipeline"
)

func testCLI() *CLI {
	return New(io.Discard, log.FatalLevel)
}

// writeTestGraph writes a small hierarchical graph file and returns its path.
func writeTestGraph(t *testing.T) string {
	t.Helper()
	g := model.New(nil)
	mustAdd := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatal(err)
		}
	}
	mustAdd(g.AddContainer(model.Container{ID: "encoder", Label: "Encoder", Depth: 1}))
	mustAdd(g.AddNode(model.Node{ID: "in", Kind: model.NodeKindTensor, IsInput: true}))
	mustAdd(g.AddNode(model.Node{ID: "conv", Label: "Conv2d", Depth: 1, Parent: "encoder", NumParams: 1792}))
	mustAdd(g.AddNode(model.Node{ID: "relu", Label: "ReLU", Depth: 1, Parent: "encoder"}))
	mustAdd(g.AddNode(model.Node{ID: "out", Kind: model.NodeKindTensor, IsOutput: true}))
	mustAdd(g.AddEdge(model.Edge{From: "in", To: "conv"}))
	mustAdd(g.AddEdge(model.Edge{From: "conv", To: "relu"}))
	mustAdd(g.AddEdge(model.Edge{From: "relu", To: "out"}))

	path := filepath.Join(t.TempDir(), "model.json")
	if err := graph.WriteGraphFile(g, path); err != nil {
		t.Fatal(err)
	}
	return path
}

// isolateCache points the file cache at a temp directory for the test.
func isolateCache(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
}

func TestRunLayout(t *testing.T) {
	isolateCache(t)
	input := writeTestGraph(t)

	opts := pipeline.Options{}
	opts.SetLayoutDefaults()
	if err := testCLI().runLayout(context.Background(), input, opts, "", false); err != nil {
		t.Fatal(err)
	}

	out := strings.TrimSuffix(input, ".json") + ".layout.json"
	l, err := graph.ReadLayoutFile(out)
	if err != nil {
		t.Fatalf("read layout output: %v", err)
	}
	if len(l.Nodes) != 4 {
		t.Errorf("layout has %d nodes, want 4", len(l.Nodes))
	}
}

func TestRunLayout_MissingInput(t *testing.T) {
	isolateCache(t)
	opts := pipeline.Options{}
	opts.SetLayoutDefaults()
	err := testCLI().runLayout(context.Background(), filepath.Join(t.TempDir(), "absent.json"), opts, "", true)
	if err == nil {
		t.Fatal("expected an error for a missing input file")
	}
}

func TestRunRender(t *testing.T) {
	isolateCache(t)
	input := writeTestGraph(t)

	opts := pipeline.Options{Formats: []string{"svg", "json"}}
	opts.SetLayoutDefaults()
	opts.SetRenderDefaults()
	if err := testCLI().runRender(context.Background(), input, opts, "", false); err != nil {
		t.Fatal(err)
	}

	svg, err := os.ReadFile(strings.TrimSuffix(input, ".json") + ".svg")
	if err != nil {
		t.Fatalf("read svg output: %v", err)
	}
	if !strings.Contains(string(svg), "<svg") {
		t.Error("svg output missing root element")
	}
	if _, err := os.Stat(strings.TrimSuffix(input, ".json") + ".layout.json"); err != nil {
		t.Errorf("json output missing: %v", err)
	}
}

func TestRunInspect(t *testing.T) {
	input := writeTestGraph(t)
	c := testCLI()

	if err := c.runInspect(context.Background(), input, "", false); err != nil {
		t.Fatal(err)
	}
	if err := c.runInspect(context.Background(), input, "conv", false); err != nil {
		t.Fatal(err)
	}
	if err := c.runInspect(context.Background(), input, "", true); err != nil {
		t.Fatal(err)
	}
	if err := c.runInspect(context.Background(), input, "ghost", false); err == nil {
		t.Error("expected an error for an unknown node")
	}
}

func TestFormatParams(t *testing.T) {
	tests := []struct {
		in   int
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1792, "1,792"},
		{1234567, "1,234,567"},
	}
	for _, tt := range tests {
		if got := formatParams(tt.in); got != tt.want {
			t.Errorf("formatParams(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTreeModelToggle(t *testing.T) {
	g := model.New(nil)
	_ = g.AddContainer(model.Container{ID: "encoder", Label: "Encoder", Depth: 1})
	_ = g.AddNode(model.Node{ID: "conv", Label: "Conv2d", Depth: 1, Parent: "encoder", NumParams: 1792})
	_ = g.AddNode(model.Node{ID: "in", Kind: model.NodeKindTensor, IsInput: true})

	m := newTreeModel("model.json", g)
	if len(m.rows) != 2 {
		t.Fatalf("collapsed tree has %d rows, want 2", len(m.rows))
	}

	// Cursor starts on the container; enter expands it.
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(treeModel)
	if len(m.rows) != 3 {
		t.Fatalf("expanded tree has %d rows, want 3", len(m.rows))
	}
	if !m.rows[0].expanded {
		t.Error("container row should be marked expanded")
	}

	// Enter again collapses.
	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(treeModel)
	if len(m.rows) != 2 {
		t.Errorf("collapsed tree has %d rows, want 2", len(m.rows))
	}

	if v := m.View(); !strings.Contains(v, "Encoder") {
		t.Error("view should include the container label")
	}
}

func TestTreeModelMissingParentIsRoot(t *testing.T) {
	g := model.New(nil)
	_ = g.AddNode(model.Node{ID: "orphan", Label: "Orphan", Parent: "ghost"})
	_ = g.AddNode(model.Node{ID: "in", Kind: model.NodeKindTensor, IsInput: true})

	m := newTreeModel("model.json", g)
	if len(m.rows) != 2 {
		t.Fatalf("tree has %d rows, want 2", len(m.rows))
	}

	found := false
	for _, row := range m.rows {
		if row.id == "orphan" {
			found = true
			if row.indent != 0 {
				t.Errorf("orphan indent = %d, want 0", row.indent)
			}
		}
	}
	if !found {
		t.Error("node with a missing parent should render as a root")
	}
}

func TestRootCommand(t *testing.T) {
	root := testCLI().RootCommand()
	if root.Use != appName {
		t.Errorf("root use = %q, want %q", root.Use, appName)
	}
	want := []string{"layout", "render", "inspect", "view", "serve", "cache", "completion"}
	for _, name := range want {
		found := false
		for _, cmd := range root.Commands() {
			if cmd.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("missing %q subcommand", name)
		}
	}
}
