package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/modelcanvas/pkg/graph"
	"github.com/matzehuels/modelcanvas/pkg/model"
	"github.com/matzehuels/modelcanvas/pkg/model/transform"
	"github.com/matzehuels/modelcanvas/pkg/view"
)

// inspectCommand creates the inspect command for hierarchy summaries.
func (c *CLI) inspectCommand() *cobra.Command {
	var (
		nodeID   string
		showTree bool
	)

	cmd := &cobra.Command{
		Use:   "inspect [graph.json]",
		Short: "Print summaries and per-node details of a computation graph",
		Long: `Print summaries and per-node details of a computation graph.

Without flags, inspect prints graph-wide totals. With --node it prints
the full details of one leaf or module. With --tree it prints the module
hierarchy as an indented tree with parameter counts.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runInspect(cmd.Context(), args[0], nodeID, showTree)
		},
	}

	cmd.Flags().StringVarP(&nodeID, "node", "n", "", "print details for one node or module ID")
	cmd.Flags().BoolVar(&showTree, "tree", false, "print the module hierarchy tree")

	return cmd
}

func (c *CLI) runInspect(ctx context.Context, input, nodeID string, showTree bool) error {
	logger := loggerFromContext(ctx)
	p := newProgress(logger)

	g, err := graph.ReadGraphFile(input)
	if err != nil {
		return fmt.Errorf("load graph %s: %w", input, err)
	}
	b := view.NewBuilder(g)
	p.done(fmt.Sprintf("Loaded %s", input))

	if nodeID != "" {
		return printDetails(b, nodeID)
	}
	if showTree {
		printTree(g, b)
		return nil
	}

	s := b.Summary()
	fmt.Println(StyleTitle.Render(input))
	printKeyValue("nodes", fmt.Sprintf("%d", s.Nodes))
	printKeyValue("modules", fmt.Sprintf("%d", s.Containers))
	printKeyValue("edges", fmt.Sprintf("%d", s.Edges))
	printKeyValue("params", formatParams(s.TotalParams))
	return nil
}

func printDetails(b *view.Builder, id string) error {
	d, ok := b.Details(id)
	if !ok {
		return fmt.Errorf("no node or module %q", id)
	}

	fmt.Println(StyleTitle.Render(d.Label))
	printKeyValue("id", d.ID)
	printKeyValue("kind", string(d.Kind))
	if d.Parent != "" {
		printKeyValue("parent", d.Parent)
	}
	printKeyValue("depth", fmt.Sprintf("%d", d.Depth))
	if len(d.Shape) > 0 {
		printKeyValue("shape", fmt.Sprintf("%v", d.Shape))
	}
	if d.NumParams > 0 {
		printKeyValue("params", formatParams(d.NumParams))
	}
	if d.HasChildren {
		printKeyValue("children", fmt.Sprintf("%d", d.ChildCount))
		for _, child := range d.Children {
			printDetail("%s", child)
		}
	}
	if d.Input {
		printInfo("graph input")
	}
	if d.Output {
		printInfo("graph output")
	}
	return nil
}

// printTree prints the container hierarchy with leaves, indented by depth.
func printTree(g *model.Graph, b *view.Builder) {
	hier := transform.ResolveHierarchy(g)

	var walk func(id string, indent int)
	walk = func(id string, indent int) {
		d, ok := b.Details(id)
		if !ok {
			return
		}
		pad := strings.Repeat("  ", indent)
		line := pad + d.Label
		if d.NumParams > 0 {
			line += StyleDim.Render(" (" + formatParams(d.NumParams) + " params)")
		}
		if d.Kind == view.KindContainer {
			fmt.Println(StyleValue.Render(line))
		} else {
			fmt.Println(StyleDim.Render(line))
		}
		for _, child := range hier.Children(id) {
			walk(child, indent+1)
		}
		for _, member := range hier.Members(id) {
			walk(member, indent+1)
		}
	}

	for _, c := range g.Containers() {
		if c.Parent == "" {
			walk(c.ID, 0)
		}
	}
	for _, n := range g.Nodes() {
		if n.Parent == "" {
			walk(n.ID, 0)
		}
	}
}

// formatParams renders a parameter count with thousands grouping.
func formatParams(n int) string {
	s := fmt.Sprintf("%d", n)
	var out strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			out.WriteByte(',')
		}
		out.WriteRune(r)
	}
	return out.String()
}
