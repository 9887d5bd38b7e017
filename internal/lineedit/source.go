// Package lineedit reads input lines for the interactive loop.
//
// A Source is polled with a timeout rather than blocked on, so the caller
// can do periodic work (refresh the prompt) while the user is typing. The
// prompt can be replaced while a read is pending without disturbing the
// partially typed line.
package lineedit

import (
	"context"
	"errors"
	"io"
	"os"
	"time"

	"golang.org/x/term"

	"github.com/quocvuong92/qcli/internal/history"
)

// ErrClosed is returned by Poll once the source can produce no more input
var ErrClosed = errors.New("line source closed")

// EventKind identifies what a Poll produced
type EventKind int

const (
	EventLine EventKind = iota
	EventTimedOut
	EventEOF
	EventSignal
)

func (k EventKind) String() string {
	switch k {
	case EventLine:
		return "line"
	case EventTimedOut:
		return "timeout"
	case EventEOF:
		return "eof"
	case EventSignal:
		return "signal"
	default:
		return "unknown"
	}
}

// Event is the outcome of one Poll
type Event struct {
	Kind EventKind
	// Line is set for EventLine, without the trailing newline.
	Line string
	// Signal is set for EventSignal.
	Signal os.Signal
}

// Source is a pollable line reader with history
type Source interface {
	// SetPrompt replaces the prompt, redrawing it if a read is pending.
	SetPrompt(text string) error
	// Poll waits at most timeout for an event.
	Poll(ctx context.Context, timeout time.Duration) (Event, error)
	// AddHistory records an accepted line.
	AddHistory(line string)
	LoadHistory() error
	SaveHistory() error
	// Stdout and Stderr are safe to write to while a read is pending.
	Stdout() io.Writer
	Stderr() io.Writer
	Close() error
}

// CompleteFunc completes line at byte offset pos. It returns the new line
// and cursor offset, or ok=false to leave the line alone.
type CompleteFunc func(line string, pos int) (newLine string, newPos int, ok bool)

// Options configures a Source
type Options struct {
	In     *os.File
	Out    *os.File
	Err    *os.File
	Prompt string
	// History may be nil, which disables history.
	History  history.Manager
	Complete CompleteFunc
}

func (o *Options) defaults() {
	if o.In == nil {
		o.In = os.Stdin
	}
	if o.Out == nil {
		o.Out = os.Stdout
	}
	if o.Err == nil {
		o.Err = os.Stderr
	}
}

// New returns a Terminal when both stdin and stdout are terminals and a
// Scanner otherwise.
func New(opts Options) (Source, error) {
	opts.defaults()
	if term.IsTerminal(int(opts.In.Fd())) && term.IsTerminal(int(opts.Out.Fd())) {
		return NewTerminal(opts)
	}
	return NewScanner(opts.In, opts.Out, opts.Err, opts.History), nil
}

// historyStore adapts an optional history.Manager
type historyStore struct {
	h history.Manager
}

func (s historyStore) AddHistory(line string) {
	if s.h != nil {
		s.h.Add(line)
	}
}

func (s historyStore) LoadHistory() error {
	if s.h == nil {
		return nil
	}
	return s.h.Load()
}

func (s historyStore) SaveHistory() error {
	if s.h == nil {
		return nil
	}
	return s.h.Save()
}
