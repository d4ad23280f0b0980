// Package storage writes the exported calendar to disk.
//
// The export is a single file that is overwritten on every run. Paths may start
// with ~/ to refer to the user's home directory.
package storage
