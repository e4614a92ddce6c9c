// Package model defines the core graph structures for model visualization.
//
// A [Graph] holds the abstract description of a computation graph: leaf
// nodes (tensors and operations), directed edges between them, and nested
// containers that group nodes into a module hierarchy. The graph is the
// immutable input to layout - layout never mutates it, and a fresh layout
// result is derived on every invocation.
//
// Unlike a strict DAG, a Graph may contain cycles. Cycle handling is the
// responsibility of [github.com/matzehuels/modelcanvas/pkg/model/transform],
// which classifies cycle-closing edges so the layout solver only ever sees
// an acyclic subgraph.
package model
