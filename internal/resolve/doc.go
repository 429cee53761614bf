// Package resolve fills variable and code fragments of an expansion.
//
// Daemon variables resolve through a host-supplied lookup function
// (the process environment by default). Client variables resolve
// through an external Requester and may block on a round trip bounded
// by a caller-supplied deadline; a timeout leaves the variable empty
// and surfaces as a non-fatal event. A variable resolves at most once
// per expansion session.
//
// Code fragments run under the interpreter named by their shebang:
// a Lua shebang executes in-process on a sandboxed state, anything
// else is spawned through the process supervisor with the source on
// stdin. Execution failure never reaches the caller as an error; the
// fragment renders as empty text and the failure is published
// out-of-band.
//
// Every successful resolution propagates to the transformations
// tracked by the fragment's expansion entry before the next render.
package resolve
