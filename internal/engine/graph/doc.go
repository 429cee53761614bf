// Package graph builds a live snippet expansion from a definition.
//
// A Definition is the already-structured graph form a snippet parser
// (or a catalog file) produces: an ordered body of segment definitions
// plus tab declarations. The builder allocates every fragment into one
// arena atomically, wires each tab to its field, wires each
// transformation to the source it derives from, registers reusable
// fragments so later references resolve to the same instance, and runs
// the initial derivation pass.
//
// Construction either succeeds completely or fails; the host never
// sees a partially-built snippet. A reference to a name never declared
// fails with ErrUnresolvedReference; a duplicate tab number fails with
// ErrDuplicateTabIndex.
package graph
