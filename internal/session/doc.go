// Package session frames one live snippet expansion for a host.
//
// A Session owns the fragment arena for one expansion and wires the
// graph builder, tab cycle controller, derivation engine, resolver,
// and renderer together behind the navigation and editing API a host
// drives: next/previous/jump, edit, select-choice, expand-nested,
// resolve, render.
//
// Each session is driven by a single logical thread of control (the
// host's event loop); sessions are independent of each other, so a
// Manager can serve many concurrently with no cross-session locking
// beyond its own map.
package session
