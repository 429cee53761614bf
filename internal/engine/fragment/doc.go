// Package fragment defines the data model for a live snippet expansion.
//
// A snippet is a graph of fragments: literal text, user-editable fields
// (placeholders and choices), regex transformations derived from other
// fragments, host- or client-supplied variables, code fragments filled in
// by executing external programs, and nested snippet expansions.
//
// # Ownership
//
// All fragments live in an Arena owned by the expansion session. The
// Snippet's body owns its fragments transitively; tabs, expansions and
// named segments hold Handles into the arena, never direct pointers.
// A Handle carries a generation counter so a stale reference is detected
// rather than silently resolving to a recycled slot.
//
// # Mutation
//
// Fragments are mutated in place by user edits, variable and code
// resolution, and transformation recomputation. A single expansion is
// driven by one logical thread of control (the host's event loop), so
// the model itself carries no locks; concurrent sessions each get their
// own arena.
package fragment
