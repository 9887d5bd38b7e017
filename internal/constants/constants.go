// Package constants provides shared constants used across the application
// to avoid circular dependencies between packages.
package constants

import "time"

// Application identity
const (
	AppName = "cli"
	Version = "0.0.1"
)

// Timing constants for the interactive session
const (
	// DefaultPollTimeout bounds how long the loop waits for a line before it
	// checks for prompt updates. It is the responsiveness bound of the
	// prompt refresh.
	DefaultPollTimeout = 1000 * time.Millisecond
	// DefaultPromptInterval is how often the prompt updater renders a new prompt
	DefaultPromptInterval = 1000 * time.Millisecond
)

// Session defaults
const (
	DefaultConfigFile  = "cli.yaml"
	DefaultHistoryFile = ".qcli_history"
	DefaultEnvPrefix   = "CLI_"
	// DefaultTimeLayout renders like "Tue Oct  6 2026 14:03:22".
	DefaultTimeLayout = "Mon Jan _2 2006 15:04:05"
	// PromptQueueSize is the buffer of the prompt update channel. At one
	// update per second it holds more than an hour of ticks.
	PromptQueueSize = 4096
	// DefaultHistorySize caps the number of lines kept in the history file
	DefaultHistorySize = 1000
)

// HTTP defaults
const (
	// DefaultHTTPTimeout of zero leaves the transport's own behaviour in place
	DefaultHTTPTimeout  = time.Duration(0)
	DefaultMaxBodyBytes = 64 * 1024
	DefaultUserAgent    = "qcli/" + Version
)
