// Package storage writes run artifacts such as rendered reports and metrics
// textfiles to disk.
//
// Paths may start with ~/ and are expanded to the user's home directory.
// Parent directories are created on demand.
package storage
