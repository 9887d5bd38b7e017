package grammar

import (
	"fmt"
	"strings"
)

// Reason classifies a grammar violation
type Reason int

const (
	ReasonUnknownCommand Reason = iota
	ReasonMissingCommand
	ReasonMissingArgument
	ReasonUnknownFlag
	ReasonUnexpectedArgument
)

func (r Reason) String() string {
	switch r {
	case ReasonUnknownCommand:
		return "unknown command"
	case ReasonMissingCommand:
		return "missing command"
	case ReasonMissingArgument:
		return "missing argument"
	case ReasonUnknownFlag:
		return "unknown flag"
	case ReasonUnexpectedArgument:
		return "unexpected argument"
	default:
		return "invalid input"
	}
}

// GrammarError describes the first violation found in the input
type GrammarError struct {
	Reason Reason
	// Path is the command path where parsing stopped, e.g. "cli http get".
	Path string
	// Token is the offending token or the missing argument name.
	Token string
	// Detail carries the flag parser's message for unknown flags.
	Detail string
	// Usage is the one-line usage of the command at Path.
	Usage string
}

func (e *GrammarError) Error() string {
	switch e.Reason {
	case ReasonUnknownCommand:
		return fmt.Sprintf("unrecognized subcommand %q for %q", e.Token, e.Path)
	case ReasonMissingCommand:
		return fmt.Sprintf("%q requires a subcommand", e.Path)
	case ReasonMissingArgument:
		return fmt.Sprintf("%q requires argument <%s>", e.Path, e.Token)
	case ReasonUnknownFlag:
		return fmt.Sprintf("%s for %q", e.Detail, e.Path)
	case ReasonUnexpectedArgument:
		return fmt.Sprintf("unexpected argument %q for %q", e.Token, e.Path)
	default:
		return fmt.Sprintf("invalid input for %q", e.Path)
	}
}

// HelpHint returns the command line that prints help for Path. Inside the
// interactive loop the root name is never typed, so withRoot drops it.
func (e *GrammarError) HelpHint(withRoot bool) string {
	words := strings.Fields(e.Path)
	if !withRoot && len(words) > 0 {
		words = words[1:]
	}
	return strings.Join(append(words, "--help"), " ")
}

// HelpRequested is returned for -h/--help. It is not a failure: callers
// print Text and carry on.
type HelpRequested struct {
	Path string
	Text string
}

func (e *HelpRequested) Error() string {
	return "help requested for " + e.Path
}

// VersionRequested is returned for -V/--version.
type VersionRequested struct {
	Name    string
	Version string
}

func (e *VersionRequested) Error() string {
	return "version requested"
}

// Text is the line to print for the request
func (e *VersionRequested) Text() string {
	return e.Name + " " + e.Version
}
