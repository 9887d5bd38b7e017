// Package cmd implements the command line entry points of qcli.
//
// # Architecture
//
// ## Core CLI
//
//   - root.go: Main entry point, App struct, cobra command setup, flags,
//     configuration and logging setup, single-shot execution
//
// ## Interactive Mode
//
//   - interactive.go: InteractiveSession and its polling loop
//   - prompt.go: PromptUpdater, the background producer of time prompts
//   - commands.go: Dispatcher, which parses a line and runs the command
//   - completer.go: Tab completion of subcommand names
//
// # Key Components
//
// ## App
//
// The App struct holds the resolved configuration, the logger and the HTTP
// transport. It is created in Execute() and shared by both entry modes.
//
// ## InteractiveSession
//
// Polls the line source with a timeout. A line is recorded in history and
// dispatched; a timeout applies the newest queued prompt update; end of
// input and signals print a notice and keep the session running. Only the
// quit command, or the source closing, ends the session.
//
// ## Dispatcher
//
// Turns a line into a grammar.Command and runs it. Grammar errors,
// transport failures and rendering failures are printed and the session
// continues.
//
// # Usage
//
//	// Main entry point
//	func main() {
//	    cmd.Execute()
//	}
package cmd
