package graph

import "errors"

// Errors returned by graph construction. Both are fatal to the snippet
// instantiation; there is no partially-built result to fall back on.
var (
	// ErrUnresolvedReference indicates the definition refers to a
	// field, variable, or named segment that was never declared.
	ErrUnresolvedReference = errors.New("unresolved reference")

	// ErrDuplicateTabIndex indicates two tabs share a cycle number,
	// which would make tab-cycling nondeterministic.
	ErrDuplicateTabIndex = errors.New("duplicate tab index")
)
