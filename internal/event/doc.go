// Package event carries non-fatal engine events out to the host.
//
// The engine never aborts an editing session because of a resolution
// or execution failure; those surface here instead, alongside
// notifications like tab changes and catalog reloads. Topics are
// hierarchical dot-separated strings, and a subscription to a topic
// also receives every descendant topic.
//
// Dispatch is synchronous in the publisher's goroutine with panic
// recovery, matching the single-threaded control flow of one snippet
// session. The bus itself is safe for concurrent use across sessions.
package event
