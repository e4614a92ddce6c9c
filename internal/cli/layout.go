package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/modelcanvas/pkg/graph"
	"github.com/matzehuels/modelcanvas/pkg/layout"
	"github.com/matzehuels/modelcanvas/pkg/pipeline"
)

// layoutCommand creates the layout command for computing drawing layouts.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output     string
		noCache    bool
		configPath string
	)
	opts := pipeline.Options{}
	opts.SetLayoutDefaults()

	cmd := &cobra.Command{
		Use:   "layout [graph.json]",
		Short: "Compute a drawing layout from a computation graph",
		Long: `Compute a drawing layout from a computation graph.

The layout command takes a graph.json file (exported from a model) and
computes node positions, container boxes, and edge routes. The output is
a layout.json file that can be rendered to SVG/PNG/PDF with 'render'.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath != "" {
				cfg, err := layout.LoadConfig(configPath)
				if err != nil {
					return fmt.Errorf("load layout config: %w", err)
				}
				opts.Config = &cfg
			}
			return c.runLayout(cmd.Context(), args[0], opts, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().StringVarP(&opts.Engine, "engine", "e", opts.Engine, "positioning engine: sugiyama (default), graphviz")
	cmd.Flags().StringVarP(&opts.Direction, "direction", "d", opts.Direction, "layout axis: LR (default), TB")
	cmd.Flags().BoolVar(&opts.Nested, "nested", false, "emit parent-relative coordinates")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "recompute even when cached")
	cmd.Flags().StringVar(&configPath, "config", "", "TOML file with sizing overrides")

	return cmd
}

// runLayout loads the graph, computes the layout, and writes the output.
func (c *CLI) runLayout(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool) error {
	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	g, err := runner.LoadGraph(ctx, input)
	if err != nil {
		return err
	}

	opts.Logger = c.Logger

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Computing %s layout...", opts.Engine))
	spinner.Start()

	l, cacheHit, err := runner.ComputeLayoutWithCacheInfo(ctx, g, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return fmt.Errorf("compute layout: %w", err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	out := outputPath(output, input, ".layout.json")
	if err := graph.WriteLayoutFile(l, out); err != nil {
		return fmt.Errorf("write output %s: %w", out, err)
	}

	printSuccess("Layout complete")
	printFile(out)
	printStats(g.NodeCount(), g.EdgeCount(), g.ContainerCount(), cacheHit)
	printNewline()
	printNextStep("Render", appName+" render "+input)

	return nil
}
