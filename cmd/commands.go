package cmd

import (
	"context"
	"errors"
	"strings"

	"github.com/quocvuong92/qcli/internal/api"
	"github.com/quocvuong92/qcli/internal/display"
	"github.com/quocvuong92/qcli/internal/grammar"
	"github.com/quocvuong92/qcli/internal/logging"
)

// Outcome tells the loop whether to keep reading input
type Outcome int

const (
	OutcomeContinue Outcome = iota
	OutcomeExit
)

func (o Outcome) String() string {
	if o == OutcomeExit {
		return "exit"
	}
	return "continue"
}

// ErrNestedInteractive is returned when "interactive" reaches the dispatcher
var ErrNestedInteractive = errors.New("already in interactive mode")

// Dispatcher parses input lines and runs the resulting commands
type Dispatcher struct {
	grammar   *grammar.Grammar
	transport api.Transport
	printer   *display.Printer
	log       *logging.FieldLogger
}

// NewDispatcher creates a dispatcher. A nil logger uses the default logger.
func NewDispatcher(g *grammar.Grammar, t api.Transport, p *display.Printer, logger *logging.Logger) *Dispatcher {
	if logger == nil {
		logger = logging.DefaultLogger
	}
	return &Dispatcher{
		grammar:   g,
		transport: t,
		printer:   p,
		log:       logger.WithFields(logging.Fields{"component": "dispatcher"}),
	}
}

// Dispatch handles one input line. Every failure is reported to the user
// and never ends the session; only a quit command yields OutcomeExit.
func (d *Dispatcher) Dispatch(ctx context.Context, line string) Outcome {
	outcome, err := d.execute(ctx, strings.Fields(line))
	if err != nil {
		d.report(err)
	}
	d.log.Debug("Line dispatched", logging.Fields{"outcome": outcome.String()})
	return outcome
}

// execute parses tokens and runs the command. Help and version requests
// are printed here and are not errors.
func (d *Dispatcher) execute(ctx context.Context, tokens []string) (Outcome, error) {
	cmd, err := d.grammar.Parse(tokens)
	if err != nil {
		var help *grammar.HelpRequested
		var version *grammar.VersionRequested
		switch {
		case errors.As(err, &help):
			d.printer.Println(help.Text)
			return OutcomeContinue, nil
		case errors.As(err, &version):
			d.printer.Println(version.Text())
			return OutcomeContinue, nil
		}
		return OutcomeContinue, err
	}
	return d.Run(ctx, cmd)
}

// Run executes an already parsed command. A nil command is a no-op.
func (d *Dispatcher) Run(ctx context.Context, cmd grammar.Command) (Outcome, error) {
	switch c := cmd.(type) {
	case nil:
		return OutcomeContinue, nil
	case grammar.Quit:
		d.log.Debug("Quit requested")
		return OutcomeExit, nil
	case grammar.HTTP:
		return OutcomeContinue, d.runHTTP(ctx, c)
	case grammar.EnterInteractive:
		return OutcomeContinue, ErrNestedInteractive
	default:
		return OutcomeContinue, errors.New("unsupported command")
	}
}

func (d *Dispatcher) runHTTP(ctx context.Context, c grammar.HTTP) error {
	d.printer.ShowRequest(c.Echo())

	sp := d.printer.Spinner("Sending request...")
	sp.Start()
	resp, err := api.Execute(ctx, d.transport, c)
	sp.Stop()

	if err != nil {
		d.log.Warn("HTTP call failed", logging.Fields{"method": c.Verb.String(), "uri": c.URI, "error": err.Error()})
		return err
	}

	d.log.Debug("HTTP call completed", logging.Fields{
		"method":     c.Verb.String(),
		"uri":        c.URI,
		"status":     resp.StatusCode,
		"request_id": resp.RequestID,
		"bytes":      len(resp.Body),
	})
	return d.printer.ShowResponse(resp)
}

func (d *Dispatcher) report(err error) {
	var gerr *grammar.GrammarError
	if errors.As(err, &gerr) {
		d.printer.ShowParseError(gerr.Error(), gerr.HelpHint(false))
		return
	}
	d.printer.ShowError(err.Error())
}
