package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/modelcanvas/pkg/pipeline"
)

// renderCommand creates the render command for generating visualizations.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		output     string
		formatsStr string
		noCache    bool
	)
	opts := pipeline.Options{}
	opts.SetLayoutDefaults()
	opts.SetRenderDefaults()

	cmd := &cobra.Command{
		Use:   "render [graph.json]",
		Short: "Render a computation graph to SVG, PNG, PDF, or JSON",
		Long: `Render a computation graph to one or more output formats.

The render command runs the full layout and render pipeline: it loads
the graph, computes node positions and edge routes, and writes the
requested artifacts next to the input file (or to --output).

PNG and PDF output require rsvg-convert on the PATH.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.Formats); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), args[0], opts, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), json, pdf, png (comma-separated)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().StringVarP(&opts.Engine, "engine", "e", opts.Engine, "positioning engine: sugiyama (default), graphviz")
	cmd.Flags().StringVarP(&opts.Direction, "direction", "d", opts.Direction, "layout axis: LR (default), TB")
	cmd.Flags().BoolVar(&opts.Nested, "nested", false, "emit parent-relative coordinates (json)")
	cmd.Flags().StringVar(&opts.Title, "title", "", "canvas title drawn above the diagram")
	cmd.Flags().Float64Var(&opts.Scale, "scale", opts.Scale, "raster scale factor for PNG output")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "recompute even when cached")

	return cmd
}

// runRender executes the pipeline and writes one file per format.
func (c *CLI) runRender(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool) error {
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

	spinner := newSpinnerWithContext(ctx, "Rendering...")
	spinner.Start()

	result, err := runner.Execute(ctx, g, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	printSuccess("Render complete")
	for _, format := range opts.Formats {
		path := artifactPath(output, input, format, len(opts.Formats) > 1)
		if err := os.WriteFile(path, result.Artifacts[format], 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		printFile(path)
	}
	printStats(result.Stats.NodeCount, result.Stats.EdgeCount, result.Stats.ContainerCount,
		result.CacheInfo.LayoutHit && result.CacheInfo.RenderHit)

	return nil
}

// artifactPath derives the output path for one rendered format. With a
// single format an explicit --output is used verbatim; with several, it
// serves as base path and the format extension is appended. A derived
// path that would overwrite the input gets a .layout infix instead.
func artifactPath(output, input, format string, multi bool) string {
	if output != "" {
		if !multi {
			return output
		}
		return strings.TrimSuffix(output, filepath.Ext(output)) + "." + format
	}
	path := strings.TrimSuffix(input, filepath.Ext(input)) + "." + format
	if path == input {
		path = strings.TrimSuffix(input, filepath.Ext(input)) + ".layout." + format
	}
	return path
}
