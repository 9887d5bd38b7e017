package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/quocvuong92/qcli/internal/config"
	"github.com/quocvuong92/qcli/internal/logging"
)

// Transport issues a single HTTP call. Implementations must not retry.
type Transport interface {
	Call(ctx context.Context, method, uri string, body []byte) (*Response, error)
}

// Ensure HTTPClient implements Transport
var _ Transport = (*HTTPClient)(nil)

// TransportError is returned when no response could be obtained:
// malformed URI, DNS or connection failure, or a failed body read.
type TransportError struct {
	Method string
	URI    string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s failed: %v", e.Method, e.URI, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// HTTPClient is the net/http backed Transport
type HTTPClient struct {
	httpClient   *http.Client
	userAgent    string
	maxBodyBytes int
}

// NewHTTPClient creates a client from configuration. When logger is nil the
// package default logger is used; request/response logging is only wired
// when that logger has debug enabled.
func NewHTTPClient(cfg *config.Config, logger *logging.Logger) *HTTPClient {
	if logger == nil {
		logger = logging.DefaultLogger
	}

	transport := http.DefaultTransport

	if logger.Enabled(logging.LevelDebug) {
		transport = logging.NewLoggingRoundTripper(http.DefaultTransport, logging.NewHTTPLogger(logger), true)
	}

	return &HTTPClient{
		httpClient: &http.Client{
			Timeout:   cfg.HTTPTimeout,
			Transport: transport,
		},
		userAgent:    cfg.UserAgent,
		maxBodyBytes: cfg.MaxBodyBytes,
	}
}

// Call sends one request and reads at most the configured number of body
// bytes. Non-2xx statuses are returned as regular responses.
func (c *HTTPClient) Call(ctx context.Context, method, uri string, body []byte) (*Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, uri, reader)
	if err != nil {
		return nil, &TransportError{Method: method, URI: uri, Err: err}
	}

	requestID := uuid.NewString()
	req.Header.Set(logging.RequestIDHeader, requestID)
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if body != nil {
		req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Method: method, URI: uri, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	data, truncated, err := readBody(resp.Body, c.maxBodyBytes)
	if err != nil {
		return nil, &TransportError{Method: method, URI: uri, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	return &Response{
		Method:     method,
		URI:        uri,
		Proto:      resp.Proto,
		Status:     resp.Status,
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       data,
		Truncated:  truncated,
		Duration:   time.Since(start),
		RequestID:  requestID,
	}, nil
}

// readBody reads up to limit bytes; limit <= 0 reads everything.
func readBody(r io.Reader, limit int) ([]byte, bool, error) {
	if limit <= 0 {
		data, err := io.ReadAll(r)
		return data, false, err
	}

	data, err := io.ReadAll(io.LimitReader(r, int64(limit)+1))
	if err != nil {
		return nil, false, err
	}
	if len(data) > limit {
		return data[:limit], true, nil
	}
	return data, false, nil
}
