package api

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Response is the outcome of a call that reached the server
type Response struct {
	Method     string
	URI        string
	Proto      string
	Status     string
	StatusCode int
	Header     http.Header
	Body       []byte
	// Truncated is set when the body exceeded the configured limit.
	Truncated bool
	Duration  time.Duration
	RequestID string
}

// Success reports a 2xx status
func (r *Response) Success() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// ContentType returns the media type without parameters
func (r *Response) ContentType() string {
	ct := r.Header.Get("Content-Type")
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	return strings.TrimSpace(ct)
}

// Summary renders the status line and key metadata, e.g.
// "HTTP/1.1 200 OK (text/plain, 12 bytes, 35ms, id 1b4e...)".
func (r *Response) Summary() string {
	var meta []string
	if ct := r.ContentType(); ct != "" {
		meta = append(meta, ct)
	}

	size := fmt.Sprintf("%d bytes", len(r.Body))
	if r.Truncated {
		size += ", truncated"
	}
	meta = append(meta, size, r.Duration.Round(time.Millisecond).String())

	if r.RequestID != "" {
		meta = append(meta, "id "+r.RequestID)
	}

	status := r.Status
	if status == "" {
		status = fmt.Sprintf("%d %s", r.StatusCode, http.StatusText(r.StatusCode))
	}
	if r.Proto != "" {
		status = r.Proto + " " + status
	}
	return fmt.Sprintf("%s (%s)", status, strings.Join(meta, ", "))
}
