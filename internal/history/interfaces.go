// Package history persists the interactive line history.
//
// The file format is plain text: one prior line per record, newest last.
package history

// Manager defines the interface for managing line history.
// This interface enables dependency injection and easier testing.
type Manager interface {
	// Load reads the history from disk
	Load() error

	// Save writes the history to disk
	Save() error

	// Add records a line, returning false when it was skipped
	Add(line string) bool

	// Len returns the number of recorded lines
	Len() int

	// At returns a recorded line; index 0 is the most recent
	At(idx int) string
}

// Ensure concrete type implements the interface
var _ Manager = (*History)(nil)
