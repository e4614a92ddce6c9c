// Package graph provides serialization types for computation graphs and layouts.
//
// This package defines the canonical wire format for Modelcanvas graph data,
// used for JSON files, API responses, caching, and cross-tool interoperability.
//
// # Architecture
//
// The package sits at the serialization boundary between internal
// representations and external formats:
//
//   - [Graph]: Serialization type (this package)
//   - pkg/model.Graph: Internal graph representation
//   - pkg/layout.Layout: Layout result (serializes directly, wrapped here)
//
// Use [FromModel]/[ToModel] to convert between them.
//
// # Graph Serialization
//
// Graphs use a node-link JSON format with an optional container forest:
//
//	{
//	  "nodes": [{"id": "input", "kind": "tensor"}, {"id": "conv1", "parent": "features"}],
//	  "containers": [{"id": "features", "depth": 1}],
//	  "edges": [{"from": "input", "to": "conv1"}]
//	}
//
// Common operations:
//
//	g, _ := graph.ReadGraphFile("model.json")   // File → model graph
//	graph.WriteGraphFile(g, "output.json")      // Model graph → File
//	data, _ := graph.MarshalGraph(g)            // Model graph → []byte
//	parsed, _ := graph.UnmarshalGraph(data)     // []byte → Graph
//
// # Layout Serialization
//
// Layout results carry their own JSON tags; this package adds validation
// and file helpers:
//
//	l, _ := graph.ReadLayoutFile("layout.json")
//	graph.WriteLayoutFile(l, "layout.json")
//
// # Node Metadata
//
// The meta object supports arbitrary key-value data from the producer,
// such as layer hyperparameters or source references. It passes through
// serialization untouched.
//
// # Concurrency
//
// All functions are safe for concurrent reads but not concurrent writes.
package graph
