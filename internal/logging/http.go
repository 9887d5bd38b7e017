package logging

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"
)

// RequestIDHeader carries the per-call identifier set by the transport
const RequestIDHeader = "X-Request-Id"

// HTTPLogger provides request/response logging for HTTP clients
type HTTPLogger struct {
	logger      *Logger
	maxBodySize int
}

// NewHTTPLogger creates a new HTTP logger
func NewHTTPLogger(logger *Logger) *HTTPLogger {
	return &HTTPLogger{
		logger:      logger,
		maxBodySize: 4096,
	}
}

// LogRequest logs an outgoing request
func (h *HTTPLogger) LogRequest(req *http.Request, body []byte) {
	fields := Fields{
		"method":     req.Method,
		"url":        req.URL.String(),
		"request_id": req.Header.Get(RequestIDHeader),
		"headers":    headerFields(req.Header, true),
	}
	if len(body) > 0 {
		fields["body"] = h.bodyField(body, true)
		fields["body_size"] = len(body)
	}

	h.logger.Debug("HTTP request", fields)
}

// LogResponse logs a response and how long it took
func (h *HTTPLogger) LogResponse(req *http.Request, resp *http.Response, body []byte, duration time.Duration) {
	fields := Fields{
		"request_id":  req.Header.Get(RequestIDHeader),
		"status":      resp.StatusCode,
		"status_text": resp.Status,
		"proto":       resp.Proto,
		"duration_ms": duration.Milliseconds(),
		"headers":     headerFields(resp.Header, false),
	}
	if len(body) > 0 {
		fields["body"] = h.bodyField(body, false)
		fields["body_size"] = len(body)
	}

	h.logger.Debug("HTTP response", fields)
}

// LogError logs a transport failure
func (h *HTTPLogger) LogError(err error, req *http.Request, duration time.Duration) {
	h.logger.Error("HTTP transport error", err, Fields{
		"method":      req.Method,
		"url":         req.URL.String(),
		"request_id":  req.Header.Get(RequestIDHeader),
		"duration_ms": duration.Milliseconds(),
	})
}

func (h *HTTPLogger) bodyField(body []byte, redact bool) interface{} {
	if json.Valid(body) {
		var parsed interface{}
		if err := json.Unmarshal(body, &parsed); err == nil {
			if redact {
				return redactSensitiveFields(parsed)
			}
			return parsed
		}
	}
	return truncateBody(body, h.maxBodySize)
}

// RoundTripperWrapper wraps an http.RoundTripper with logging
type RoundTripperWrapper struct {
	wrapped http.RoundTripper
	logger  *HTTPLogger
	logBody bool
}

// NewLoggingRoundTripper creates a new logging round tripper
func NewLoggingRoundTripper(wrapped http.RoundTripper, logger *HTTPLogger, logBody bool) *RoundTripperWrapper {
	if wrapped == nil {
		wrapped = http.DefaultTransport
	}
	return &RoundTripperWrapper{
		wrapped: wrapped,
		logger:  logger,
		logBody: logBody,
	}
}

// RoundTrip implements http.RoundTripper
func (rt *RoundTripperWrapper) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()

	var reqBody []byte
	if rt.logBody && req.Body != nil {
		reqBody, _ = io.ReadAll(req.Body)
		req.Body = io.NopCloser(bytes.NewReader(reqBody))
	}
	rt.logger.LogRequest(req, reqBody)

	resp, err := rt.wrapped.RoundTrip(req)
	duration := time.Since(start)
	if err != nil {
		rt.logger.LogError(err, req, duration)
		return nil, err
	}

	// Only peek at the body; the caller still reads the full stream.
	var respBody []byte
	if rt.logBody && resp.Body != nil {
		respBody, _ = io.ReadAll(io.LimitReader(resp.Body, int64(rt.logger.maxBodySize)))
		resp.Body = struct {
			io.Reader
			io.Closer
		}{io.MultiReader(bytes.NewReader(respBody), resp.Body), resp.Body}
	}
	rt.logger.LogResponse(req, resp, respBody, duration)

	return resp, nil
}

func headerFields(h http.Header, redact bool) map[string]string {
	out := make(map[string]string, len(h))
	for k, v := range h {
		switch {
		case redact && isSensitiveHeader(k):
			out[k] = "[REDACTED]"
		case len(v) > 0:
			out[k] = strings.Join(v, ", ")
		}
	}
	return out
}

// isSensitiveHeader checks if a header should be redacted
func isSensitiveHeader(name string) bool {
	switch strings.ToLower(name) {
	case "authorization", "proxy-authorization", "api-key", "x-api-key", "x-auth-token", "cookie", "set-cookie":
		return true
	}
	return false
}

// truncateBody truncates body if too large
func truncateBody(body []byte, maxSize int) string {
	if len(body) <= maxSize {
		return string(body)
	}
	return string(body[:maxSize]) + "...[truncated]"
}

// redactSensitiveFields redacts sensitive fields in parsed JSON
func redactSensitiveFields(data interface{}) interface{} {
	sensitiveKeys := []string{
		"api_key", "apikey", "api-key",
		"password", "secret", "token",
		"authorization", "auth",
	}

	switch v := data.(type) {
	case map[string]interface{}:
		result := make(map[string]interface{}, len(v))
		for k, val := range v {
			keyLower := strings.ToLower(k)
			sensitive := false
			for _, s := range sensitiveKeys {
				if strings.Contains(keyLower, s) {
					sensitive = true
					break
				}
			}
			if sensitive {
				result[k] = "[REDACTED]"
			} else {
				result[k] = redactSensitiveFields(val)
			}
		}
		return result
	case []interface{}:
		result := make([]interface{}, len(v))
		for i, item := range v {
			result[i] = redactSensitiveFields(item)
		}
		return result
	default:
		return data
	}
}
