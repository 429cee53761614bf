// Package transform derives transformation fragments from their source
// fragments and propagates changes through the dependency fan-out.
//
// A transformation applies a regex against the rendered text of its
// source and substitutes matches according to a format template. The
// template supports group back-references ($1, ${1}) and case-folding
// directives (\u, \l, \U, \L, \E). A pattern that never matches passes
// the source through unchanged; a transformation that never matches
// degrades to identity, never an error.
//
// Propagation is eager: whenever a source fragment's rendered text
// changes, every dependent transformation is rederived before the next
// render, transitively through chained transformations. Derivation is
// pure and idempotent given the same source text and rule.
package transform
