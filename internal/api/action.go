package api

import (
	"context"
	"errors"

	"github.com/quocvuong92/qcli/internal/grammar"
)

// Execute performs the HTTP command through t: one call, no retry. Body
// tokens are joined with single spaces and no body is sent when there are
// none. Failures are reported as *TransportError.
func Execute(ctx context.Context, t Transport, cmd grammar.HTTP) (*Response, error) {
	resp, err := t.Call(ctx, cmd.Verb.String(), cmd.URI, cmd.Payload())
	if err != nil {
		var terr *TransportError
		if errors.As(err, &terr) {
			return nil, err
		}
		return nil, &TransportError{Method: cmd.Verb.String(), URI: cmd.URI, Err: err}
	}
	return resp, nil
}
