// Package api performs the outbound HTTP calls of the shell.
//
// # Architecture
//
//   - client.go: Transport interface, the net/http backed HTTPClient and
//     TransportError
//   - action.go: Execute, which turns a parsed grammar.HTTP command into a
//     single Transport call
//   - response.go: Response and its one-line Summary
//
// # Usage
//
//	cfg := config.NewConfig()
//	client := api.NewHTTPClient(cfg, logging.DefaultLogger)
//	resp, err := api.Execute(ctx, client, grammar.HTTP{Verb: grammar.VerbGet, URI: uri})
//	if err != nil {
//	    // *api.TransportError: no response was obtained
//	}
//
// Non-2xx statuses are not errors; the caller decides how to show them.
// Calls are never retried.
//
// # Interface Design
//
// Execute takes the Transport interface so the dispatcher can be tested
// with a fake that records calls or returns canned failures.
package api
