// Package catalog stores snippet definitions for expansion by name.
//
// Definitions arrive as TOML or YAML files carrying the structured
// graph form consumed by the graph builder; the catalog performs no
// snippet-syntax parsing. The registry is a shared read-mostly input:
// many sessions read it concurrently while the optional watcher is the
// only writer, reloading files as they change on disk.
package catalog
