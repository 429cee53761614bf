// Package render materializes the current text of a snippet expansion.
//
// Rendering is a pure fold over the fragment graph: text segments yield
// their literal, fields yield their active body, transformations yield
// their cached result, variables and code yield their resolved values,
// and nested snippets render recursively. Rendering never fails; an
// unresolved, out-of-range, or stale fragment degrades to empty text.
package render
