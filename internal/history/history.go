package history

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// History is a bounded, file-backed list of input lines
type History struct {
	mu      sync.Mutex
	path    string
	max     int
	entries []string
}

// NewHistory creates a history bound to path keeping at most max lines.
// An empty path keeps history in memory only.
func NewHistory(path string, max int) *History {
	if max <= 0 {
		max = 1
	}
	return &History{path: path, max: max}
}

// Path returns the backing file path
func (h *History) Path() string {
	return h.path
}

// Normalize collapses runs of whitespace so equivalent lines compare equal
func Normalize(line string) string {
	return strings.Join(strings.Fields(line), " ")
}

// Load replaces the in-memory entries with the file contents.
// A missing file is not an error.
func (h *History) Load() error {
	if h.path == "" {
		return nil
	}

	f, err := os.Open(h.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to open history file %s: %w", h.path, err)
	}
	defer func() { _ = f.Close() }()

	var entries []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if line := Normalize(scanner.Text()); line != "" {
			entries = append(entries, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read history file %s: %w", h.path, err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = trim(entries, h.max)
	return nil
}

// Save writes the entries to the file, replacing it atomically
func (h *History) Save() error {
	if h.path == "" {
		return nil
	}

	h.mu.Lock()
	data := strings.Join(h.entries, "\n")
	h.mu.Unlock()
	if data != "" {
		data += "\n"
	}

	dir := filepath.Dir(h.path)
	tmp, err := os.CreateTemp(dir, ".history-*")
	if err != nil {
		return fmt.Errorf("failed to create history file in %s: %w", dir, err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.WriteString(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write history: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write history: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0600); err != nil {
		return fmt.Errorf("failed to set history permissions: %w", err)
	}
	if err := os.Rename(tmp.Name(), h.path); err != nil {
		return fmt.Errorf("failed to save history file %s: %w", h.path, err)
	}
	return nil
}

// Add records the normalized line unless it is empty or identical to the
// most recent entry.
func (h *History) Add(line string) bool {
	line = Normalize(line)
	if line == "" {
		return false
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if n := len(h.entries); n > 0 && h.entries[n-1] == line {
		return false
	}
	h.entries = trim(append(h.entries, line), h.max)
	return true
}

// Len returns the number of entries
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}

// At returns the entry idx steps back from the newest one, or "" when idx
// is out of range.
func (h *History) At(idx int) string {
	h.mu.Lock()
	defer h.mu.Unlock()
	if idx < 0 || idx >= len(h.entries) {
		return ""
	}
	return h.entries[len(h.entries)-1-idx]
}

func trim(entries []string, max int) []string {
	if len(entries) <= max {
		return entries
	}
	return append([]string(nil), entries[len(entries)-max:]...)
}
