// Package transform provides graph analysis passes that prepare a
// possibly-cyclic, hierarchy-annotated [model.Graph] for layered layout.
//
// Two passes live here:
//
//   - [BackEdges] classifies every edge as forward or cycle-closing via
//     depth-first search, so the layout solver is never handed a cycle.
//   - [Hierarchy] resolves the container forest: depth-ordered traversal,
//     parent/child adjacency, and transitive descendant sets.
//
// Both passes are pure: they read the graph and return fresh derived
// structures without mutating their input.
package transform
