package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/quocvuong92/qcli/internal/constants"
	"github.com/quocvuong92/qcli/internal/display"
	"github.com/quocvuong92/qcli/internal/grammar"
	"github.com/quocvuong92/qcli/internal/history"
	"github.com/quocvuong92/qcli/internal/lineedit"
	"github.com/quocvuong92/qcli/internal/logging"
)

// eofHint is printed when the user ends input instead of quitting
const eofHint = `Use the "quit" command to exit the application.`

// InteractiveSession holds the state of one interactive loop.
// Prompt text is only changed from the goroutine running Run.
type InteractiveSession struct {
	source      lineedit.Source
	dispatcher  *Dispatcher
	updates     <-chan PromptUpdate
	pollTimeout time.Duration
	printer     *display.Printer
	out         io.Writer
	errOut      io.Writer
	log         *logging.FieldLogger
}

// runInteractive starts the prompt updater and runs the loop until quit,
// end of input or ctx cancellation. The updater is stopped before return.
func (app *App) runInteractive(ctx context.Context) error {
	hist := history.NewHistory(app.cfg.HistoryPath, app.cfg.HistorySize)
	g := grammar.New(grammar.Options{Name: app.cfg.AppName, Version: constants.Version})

	src, err := lineedit.New(lineedit.Options{
		Prompt:   app.cfg.Prompt,
		History:  hist,
		Complete: newCompleter(g).Complete,
	})
	if err != nil {
		return fmt.Errorf("failed to open line source: %w", err)
	}
	defer func() { _ = src.Close() }()

	printer := display.NewPrinter(src.Stdout(), src.Stderr())
	if app.cfg.Render {
		if err := printer.InitRenderer(); err != nil {
			app.logger.Warn("Failed to initialize renderer", logging.Fields{"error": err.Error()})
		}
	}

	sessionID := uuid.NewString()
	logger := app.logger.WithFields(logging.Fields{"component": "session", "session_id": sessionID})

	if err := src.LoadHistory(); err != nil {
		logger.Warn("Could not load history", logging.Fields{"path": hist.Path(), "error": err.Error()})
		printer.ShowWarning(fmt.Sprintf("Could not load history: %v", err))
	}

	updater := NewPromptUpdater(app.cfg.AppName, app.cfg.TimeFormat, app.cfg.PromptInterval, app.logger)
	updaterCtx, stopUpdater := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		updater.Run(updaterCtx)
	}()
	defer func() {
		stopUpdater()
		wg.Wait()
	}()

	session := &InteractiveSession{
		source:      src,
		dispatcher:  NewDispatcher(g, app.transport, printer, app.logger),
		updates:     updater.Updates(),
		pollTimeout: app.cfg.PollTimeout,
		printer:     printer,
		out:         src.Stdout(),
		errOut:      src.Stderr(),
		log:         logger,
	}

	logger.Debug("Interactive session started", logging.Fields{
		"poll_timeout": app.cfg.PollTimeout.String(),
		"history":      hist.Path(),
	})
	session.Run(ctx)
	logger.Debug("Interactive session ended")
	return nil
}

// Run polls the line source until the session exits
func (s *InteractiveSession) Run(ctx context.Context) {
	var last lineedit.EventKind = -1

	for {
		ev, err := s.source.Poll(ctx, s.pollTimeout)
		if err != nil {
			if errors.Is(err, lineedit.ErrClosed) || ctx.Err() != nil {
				s.log.Debug("Line source finished", logging.Fields{"reason": err.Error()})
				s.saveHistory()
				return
			}
			fmt.Fprintf(s.errOut, "Failed to read line: %v\n", err)
			s.log.Warn("Failed to read line", logging.Fields{"error": err.Error()})
			if !s.wait(ctx) {
				s.saveHistory()
				return
			}
			last = -1
			continue
		}

		switch ev.Kind {
		case lineedit.EventLine:
			s.source.AddHistory(ev.Line)
			if s.dispatcher.Dispatch(ctx, ev.Line) == OutcomeExit {
				s.saveHistory()
				return
			}

		case lineedit.EventTimedOut:
			if update, ok := latestUpdate(s.updates); ok {
				if err := s.source.SetPrompt(update.Text); err != nil {
					s.log.Warn("Failed to set prompt", logging.Fields{"error": err.Error()})
				}
			}

		case lineedit.EventEOF:
			s.log.Debug("Input event", logging.Fields{"event": ev.Kind.String()})
			fmt.Fprintln(s.out, eofHint)
			// A closed terminal reports EOF on every read.
			if last == lineedit.EventEOF && !s.wait(ctx) {
				s.saveHistory()
				return
			}

		case lineedit.EventSignal:
			s.log.Debug("Input event", logging.Fields{"event": ev.Kind.String(), "signal": ev.Signal.String()})
			fmt.Fprintf(s.out, "Caught signal: %v\n", ev.Signal)
		}
		last = ev.Kind
	}
}

// wait sleeps one poll interval. It returns false if ctx ended first.
func (s *InteractiveSession) wait(ctx context.Context) bool {
	timer := time.NewTimer(s.pollTimeout)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}

func (s *InteractiveSession) saveHistory() {
	if err := s.source.SaveHistory(); err != nil {
		s.log.Warn("Could not save history", logging.Fields{"error": err.Error()})
		s.printer.ShowWarning(fmt.Sprintf("Could not save history: %v", err))
	}
}
