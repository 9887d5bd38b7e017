package lineedit

import (
	"bufio"
	"context"
	"io"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/quocvuong92/qcli/internal/history"
)

// Scanner is a Source for non-interactive input such as a pipe. Prompts are
// not drawn. The end of input is reported as ErrClosed.
type Scanner struct {
	historyStore

	in      io.Reader
	out     io.Writer
	errOut  io.Writer
	lines   chan readResult
	signals chan os.Signal
	done    chan struct{}

	startOnce sync.Once
	stopOnce  sync.Once
	finished  bool
}

var _ Source = (*Scanner)(nil)

// NewScanner creates a scanner source. h may be nil.
func NewScanner(in io.Reader, out, errOut io.Writer, h history.Manager) *Scanner {
	s := &Scanner{
		historyStore: historyStore{h: h},
		in:           in,
		out:          out,
		errOut:       errOut,
		lines:        make(chan readResult),
		signals:      make(chan os.Signal, 1),
		done:         make(chan struct{}),
	}
	signal.Notify(s.signals, os.Interrupt)
	return s
}

func (s *Scanner) start() {
	s.startOnce.Do(func() {
		go func() {
			defer close(s.lines)
			scanner := bufio.NewScanner(s.in)
			for scanner.Scan() {
				select {
				case s.lines <- readResult{line: scanner.Text()}:
				case <-s.done:
					return
				}
			}
			if err := scanner.Err(); err != nil {
				select {
				case s.lines <- readResult{err: err}:
				case <-s.done:
				}
			}
		}()
	})
}

// SetPrompt is a no-op; piped input has no prompt
func (s *Scanner) SetPrompt(string) error {
	return nil
}

// Poll waits up to timeout for the next input line
func (s *Scanner) Poll(ctx context.Context, timeout time.Duration) (Event, error) {
	if s.finished {
		return Event{}, ErrClosed
	}
	s.start()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case r, ok := <-s.lines:
		if !ok {
			s.finished = true
			return Event{}, ErrClosed
		}
		if r.err != nil {
			return Event{}, r.err
		}
		return Event{Kind: EventLine, Line: r.line}, nil
	case sig := <-s.signals:
		return Event{Kind: EventSignal, Signal: sig}, nil
	case <-timer.C:
		return Event{Kind: EventTimedOut}, nil
	case <-ctx.Done():
		return Event{}, ctx.Err()
	}
}

func (s *Scanner) Stdout() io.Writer { return s.out }
func (s *Scanner) Stderr() io.Writer { return s.errOut }

// Close stops the reader goroutine once its current read returns
func (s *Scanner) Close() error {
	s.stopOnce.Do(func() {
		close(s.done)
		signal.Stop(s.signals)
	})
	return nil
}
