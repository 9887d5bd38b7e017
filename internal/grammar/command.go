// Package grammar defines the commands the shell understands and turns
// whitespace-split tokens into a validated Command.
//
// A single grammar serves both entry modes: single-shot invocation from the
// command line (where "interactive" is accepted) and lines typed inside the
// interactive loop (where it is not).
package grammar

import (
	"net/http"
	"strings"
)

// Verb is the HTTP method selected by an http subcommand
type Verb string

const (
	VerbGet Verb = http.MethodGet
	VerbPut Verb = http.MethodPut
)

// String returns the method name
func (v Verb) String() string {
	return string(v)
}

// Command is one of Quit, EnterInteractive or HTTP
type Command interface {
	command()
}

// Quit ends the session
type Quit struct{}

// EnterInteractive starts the interactive loop. Only produced when the
// grammar is built with AllowInteractive.
type EnterInteractive struct{}

// HTTP is a validated http get|put command
type HTTP struct {
	Verb Verb
	URI  string
	// Body holds the free-form tokens after the URI, possibly none.
	Body []string
}

func (Quit) command()             {}
func (EnterInteractive) command() {}
func (HTTP) command()             {}

// Payload joins the body tokens with single spaces, or returns nil when
// there are none so that no body is sent.
func (c HTTP) Payload() []byte {
	if len(c.Body) == 0 {
		return nil
	}
	return []byte(strings.Join(c.Body, " "))
}

// Echo renders the request the way it is announced before it is sent:
// "GET <uri>" or "PUT <uri> <body tokens>".
func (c HTTP) Echo() string {
	if len(c.Body) == 0 {
		return c.Verb.String() + " " + c.URI
	}
	return c.Verb.String() + " " + c.URI + " <" + strings.Join(c.Body, " ") + ">"
}
