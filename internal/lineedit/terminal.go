package lineedit

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"time"

	"golang.org/x/term"

	"github.com/quocvuong92/qcli/internal/history"
)

const keyCtrlC = 3

type readResult struct {
	line string
	err  error
}

// Terminal is a Source backed by golang.org/x/term. The terminal is in raw
// mode only while a read is pending, so command output and Ctrl-C behave
// normally while a dispatched command runs.
//
// Ctrl-C at the prompt is reported as EventSignal and leaves the read
// pending. SIGINT delivered while no read is pending is reported the same
// way on the next Poll. Ctrl-D on an empty line yields EventEOF.
type Terminal struct {
	historyStore

	fd      int
	out     *os.File
	errOut  *os.File
	term    *term.Terminal
	results chan readResult
	signals chan os.Signal

	mu       sync.Mutex
	pending  bool
	closed   bool
	rawState *term.State
}

var _ Source = (*Terminal)(nil)

// NewTerminal creates a terminal source on opts.In and opts.Out
func NewTerminal(opts Options) (*Terminal, error) {
	opts.defaults()
	fd := int(opts.In.Fd())
	if !term.IsTerminal(fd) {
		return nil, fmt.Errorf("stdin is not a terminal")
	}

	t := &Terminal{
		historyStore: historyStore{h: opts.History},
		fd:           fd,
		out:          opts.Out,
		errOut:       opts.Err,
		results:      make(chan readResult, 1),
		signals:      make(chan os.Signal, 1),
	}

	rw := struct {
		io.Reader
		io.Writer
	}{&interruptReader{r: opts.In, interrupt: t.interrupt}, opts.Out}
	t.term = term.NewTerminal(rw, opts.Prompt)
	if opts.History != nil {
		t.term.History = termHistory{h: opts.History}
	}

	if complete := opts.Complete; complete != nil {
		t.term.AutoCompleteCallback = func(line string, pos int, key rune) (string, int, bool) {
			if key != '\t' {
				return "", 0, false
			}
			return complete(line, pos)
		}
	}

	signal.Notify(t.signals, os.Interrupt)
	return t, nil
}

// SetPrompt replaces the prompt and redraws it in place when a read is
// pending. The partially typed line and cursor are preserved.
func (t *Terminal) SetPrompt(text string) error {
	t.term.SetPrompt(text)

	t.mu.Lock()
	pending := t.pending
	t.mu.Unlock()

	if pending {
		if _, err := t.term.Write(nil); err != nil {
			return fmt.Errorf("failed to redraw prompt: %w", err)
		}
	}
	return nil
}

// Poll starts a read if none is pending and waits up to timeout for it.
// A timed out read stays pending and is resumed by the next Poll.
func (t *Terminal) Poll(ctx context.Context, timeout time.Duration) (Event, error) {
	if err := t.ensureReading(); err != nil {
		return Event{}, err
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case r := <-t.results:
		t.finishRead()
		switch {
		case errors.Is(r.err, io.EOF):
			return Event{Kind: EventEOF}, nil
		case errors.Is(r.err, os.ErrClosed):
			return Event{}, ErrClosed
		case r.err != nil:
			return Event{}, r.err
		}
		return Event{Kind: EventLine, Line: r.line}, nil
	case sig := <-t.signals:
		return Event{Kind: EventSignal, Signal: sig}, nil
	case <-timer.C:
		return Event{Kind: EventTimedOut}, nil
	case <-ctx.Done():
		return Event{}, ctx.Err()
	}
}

func (t *Terminal) ensureReading() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return ErrClosed
	}
	if t.pending {
		return nil
	}

	if w, h, err := term.GetSize(t.fd); err == nil {
		_ = t.term.SetSize(w, h)
	}

	state, err := term.MakeRaw(t.fd)
	if err != nil {
		return fmt.Errorf("failed to enter raw mode: %w", err)
	}
	t.rawState = state
	t.pending = true
	t.startRead()
	return nil
}

func (t *Terminal) startRead() {
	go func() {
		line, err := t.term.ReadLine()
		t.results <- readResult{line: line, err: err}
	}()
}

// interrupt queues os.Interrupt unless one is already waiting
func (t *Terminal) interrupt() {
	select {
	case t.signals <- os.Interrupt:
	default:
	}
}

func (t *Terminal) finishRead() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pending = false
	t.restore()
}

// restore leaves raw mode. Callers hold t.mu.
func (t *Terminal) restore() {
	if t.rawState != nil {
		_ = term.Restore(t.fd, t.rawState)
		t.rawState = nil
	}
}

// Stdout returns a writer that keeps the prompt intact during a pending read
func (t *Terminal) Stdout() io.Writer {
	return &promptSafeWriter{t: t, direct: t.out}
}

// Stderr is like Stdout. While a read is pending the text is drawn on the
// terminal output above the prompt.
func (t *Terminal) Stderr() io.Writer {
	return &promptSafeWriter{t: t, direct: t.errOut}
}

// Close restores the terminal mode and stops signal delivery. A pending
// read is abandoned.
func (t *Terminal) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil
	}
	t.closed = true
	t.restore()
	signal.Stop(t.signals)
	return nil
}

type promptSafeWriter struct {
	t      *Terminal
	direct *os.File
}

// IsTerminal reports whether the underlying file is a terminal
func (w *promptSafeWriter) IsTerminal() bool {
	return term.IsTerminal(int(w.direct.Fd()))
}

// Fd returns the descriptor of the underlying file
func (w *promptSafeWriter) Fd() uintptr {
	return w.direct.Fd()
}

func (w *promptSafeWriter) Write(p []byte) (int, error) {
	w.t.mu.Lock()
	pending := w.t.pending
	w.t.mu.Unlock()

	if pending {
		return w.t.term.Write(p)
	}
	return w.direct.Write(p)
}

// interruptReader drops Ctrl-C from raw input and reports it through
// interrupt. x/term would otherwise end the pending read with io.EOF.
type interruptReader struct {
	r         io.Reader
	interrupt func()
}

func (ir *interruptReader) Read(p []byte) (int, error) {
	for {
		n, err := ir.r.Read(p)
		kept := p[:0]
		for _, b := range p[:n] {
			if b == keyCtrlC {
				ir.interrupt()
				continue
			}
			kept = append(kept, b)
		}
		if len(kept) > 0 || n == 0 || err != nil {
			return len(kept), err
		}
	}
}

// termHistory lets the line editor browse the session history with the
// arrow keys. Accepted lines are recorded by the caller through
// AddHistory, so Add is a no-op.
type termHistory struct {
	h history.Manager
}

func (th termHistory) Add(string)        {}
func (th termHistory) Len() int          { return th.h.Len() }
func (th termHistory) At(idx int) string { return th.h.At(idx) }
