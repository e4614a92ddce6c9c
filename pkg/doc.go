// Package pkg provides the core libraries for ModelCanvas computation
// graph visualization.
//
// # Overview
//
// ModelCanvas turns exported model computation graphs into layered
// diagrams that respect the module hierarchy: tensors and operations are
// leaf nodes, modules become nested container boxes, and edges flow
// along the chosen layout axis. The pkg directory is organized into
// these areas:
//
//  1. [model] - Domain graph (nodes, containers, hierarchy transforms)
//  2. [layout] - Positioning (solver abstraction, sugiyama, graphviz)
//  3. [render] - Output generation (SVG, PNG, PDF, layout JSON)
//  4. [view] - Expand/collapse views over the hierarchy
//  5. [pipeline] - Orchestration (load → layout → render, caching)
//  6. [graph] - Serialization types for graphs and layouts
//  7. [cache], [store] - Infrastructure (file/Redis cache, memory/Mongo store)
//
// # Architecture
//
// The typical data flow through ModelCanvas:
//
//	Exported graph JSON
//	         ↓
//	    [graph] package (deserialize, validate)
//	         ↓
//	    [model] package (graph structure + hierarchy resolution)
//	         ↓
//	    [layout] package (rank assignment + coordinates)
//	         ↓
//	    [render] package (SVG/PNG/PDF/JSON output)
//
// # Quick Start
//
// Load a graph and render a diagram:
//
//	import (
//	    "context"
//	    "github.com/matzehuels/modelcanvas/pkg/graph"
//	    "github.com/matzehuels/modelcanvas/pkg/layout"
//	    "github.com/matzehuels/modelcanvas/pkg/layout/sugiyama"
//	    "github.com/matzehuels/modelcanvas/pkg/render"
//	)
//
//	// 1. Load the graph
//	g, _ := graph.ReadGraphFile("model.json")
//
//	// 2. Compute the layout
//	eng := layout.NewEngine(sugiyama.New(), layout.DefaultConfig())
//	l, _ := eng.Layout(context.Background(), g, layout.Options{Nested: true})
//
//	// 3. Render
//	svg := render.RenderSVG(*l, render.WithTitle("model"))
//
// Or use the pipeline, which adds content-addressed caching:
//
//	import "github.com/matzehuels/modelcanvas/pkg/pipeline"
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, _ := runner.Execute(ctx, g, pipeline.Options{Formats: []string{"svg"}})
//
// # Interactive Views
//
// The [view] package maintains expand/collapse state over the module
// hierarchy. Collapsed containers appear as single summary nodes whose
// edges aggregate the connections of their hidden members:
//
//	b := view.NewBuilder(g)
//	vg := b.Expand("encoder")   // visible graph after expanding one module
//
// The HTTP API (internal/api) and the terminal browser (internal/cli)
// both build on this package.
package pkg
