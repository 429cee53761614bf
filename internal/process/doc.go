// Package process runs interpreter child processes for code fragments.
//
// A code fragment names its interpreter shebang-style ("python3",
// "/bin/sh -e", "#!/usr/bin/env ruby"); the supervisor spawns the
// interpreter, feeds the fragment's source on stdin, and captures
// standard output. Runs honor context cancellation and deadlines: a
// cancelled run kills the child and reports an error without leaving
// partial output behind.
//
// The supervisor tracks every live run and supports graceful shutdown
// (SIGTERM, then SIGKILL after a timeout). It is safe for concurrent
// use across sessions.
package process
