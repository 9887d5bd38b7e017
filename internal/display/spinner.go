package display

import (
	"io"
	"time"

	"github.com/briandowns/spinner"
)

// Spinner shows activity while a call is in flight. It is inert when the
// target writer is not a terminal, so piped output stays clean.
type Spinner struct {
	s *spinner.Spinner
}

// NewSpinner creates a spinner with msg as its suffix on w
func NewSpinner(w io.Writer, msg string) *Spinner {
	if !IsTerminal(w) {
		return &Spinner{}
	}
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(w))
	s.Suffix = " " + msg
	return &Spinner{s: s}
}

// Spinner creates a spinner on the diagnostics writer
func (p *Printer) Spinner(msg string) *Spinner {
	return NewSpinner(p.errOut, msg)
}

// Start begins the animation
func (sp *Spinner) Start() {
	if sp.s != nil {
		sp.s.Start()
	}
}

// Stop ends the animation and clears the line
func (sp *Spinner) Stop() {
	if sp.s != nil {
		sp.s.Stop()
	}
}
