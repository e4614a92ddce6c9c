// Package layout converts an abstract model graph into a concrete 2D
// drawing: per-node position and size, per-edge routed path, and
// per-container bounding box, ready for pixel-space rendering.
//
// The engine delegates rank assignment, crossing minimization, and
// coordinate assignment to a pluggable layered-DAG engine (see the solver
// subpackage); everything around that call lives here: cycle-safe edge
// registration, compound-hierarchy resolution, center-to-top-left
// coordinate projection, bounding-box synthesis with fallbacks, and edge
// routing including the synthesized loop paths for cycle-closing edges.
//
// A layout invocation is a pure function of its inputs: no state is
// retained between calls, nothing is mutated in place, and concurrent
// invocations with different graphs need no locking.
//
//	eng := layout.NewEngine(nil, layout.DefaultConfig())
//	l, err := eng.Layout(ctx, g, layout.Options{})
package layout
