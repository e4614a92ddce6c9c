// Package view computes the visible portion of a hierarchical model graph
// under interactive expand/collapse state.
//
// A [Builder] wraps a model graph and a set of expanded container IDs.
// Collapsed containers appear as single closed nodes; expanding one
// reveals its direct children, connected by hierarchy edges from the
// container and sequence edges between consecutive siblings. Collapsing a
// container also collapses every descendant, so re-expanding it reveals
// exactly one more level.
//
// Typical use from a server handler:
//
//	b := view.NewBuilder(g)
//	initial := b.Initial()          // roots only
//	after := b.Expand("features")   // one level deeper
//	state := b.ExpansionState()     // persistable ID list
//
// Builders are safe for concurrent use; the underlying graph must not be
// mutated while a builder holds it.
package view
