// Package cycle orders a snippet's tabstops and tracks which one is
// active.
//
// Tabs are visited in ascending declared number with wraparound; all
// transitions are total, so cycling over a snippet with no tabs is a
// no-op reporting no active tab. Edits to the active tab's field, and
// choice re-selections, apply directly to the shared field and trigger
// eager rederivation of every transformation sourced on it.
//
// Expanding a nested snippet at the active tab rewrites that tab's
// segment in place (exactly once) to the nested-snippet variant and
// splices the nested snippet's own tabs into the cycle immediately
// after the enclosing tab, so they shadow it while active.
package cycle
