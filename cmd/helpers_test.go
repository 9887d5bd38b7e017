package cmd

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/quocvuong92/qcli/internal/api"
	"github.com/quocvuong92/qcli/internal/display"
	"github.com/quocvuong92/qcli/internal/grammar"
	"github.com/quocvuong92/qcli/internal/history"
	"github.com/quocvuong92/qcli/internal/lineedit"
	"github.com/quocvuong92/qcli/internal/logging"
)

// transportCall is one recorded MockTransport.Call
type transportCall struct {
	method string
	uri    string
	body   []byte
}

// MockTransport implements api.Transport for testing
type MockTransport struct {
	mu       sync.Mutex
	calls    []transportCall
	response *api.Response
	err      error
	// onCall runs inside Call before it returns.
	onCall func()
}

func NewMockTransport() *MockTransport {
	return &MockTransport{}
}

func (m *MockTransport) Call(ctx context.Context, method, uri string, body []byte) (*api.Response, error) {
	m.mu.Lock()
	m.calls = append(m.calls, transportCall{method: method, uri: uri, body: body})
	onCall := m.onCall
	m.mu.Unlock()

	if onCall != nil {
		onCall()
	}
	if m.err != nil {
		return nil, m.err
	}
	if m.response != nil {
		return m.response, nil
	}
	return &api.Response{
		Method:     method,
		URI:        uri,
		Proto:      "HTTP/1.1",
		Status:     "200 OK",
		StatusCode: http.StatusOK,
		Header:     http.Header{"Content-Type": []string{"text/plain"}},
		Body:       []byte("ok"),
		Duration:   time.Millisecond,
		RequestID:  "test-request",
	}, nil
}

func (m *MockTransport) Calls() []transportCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]transportCall(nil), m.calls...)
}

func quietLogger() *logging.Logger {
	return logging.New(logging.Options{Level: logging.LevelNone, Output: io.Discard})
}

// newTestDispatcher builds a dispatcher for the in-loop grammar writing to buffers
func newTestDispatcher() (*Dispatcher, *MockTransport, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	transport := NewMockTransport()
	g := grammar.New(grammar.Options{Name: "cli", Version: "0.0.1"})
	d := NewDispatcher(g, transport, display.NewPrinter(&out, &errOut), quietLogger())
	return d, transport, &out, &errOut
}

// fakeStep is one scripted Poll result
type fakeStep struct {
	ev  lineedit.Event
	err error
	// before runs when the step is polled.
	before func()
}

func lineStep(line string) fakeStep {
	return fakeStep{ev: lineedit.Event{Kind: lineedit.EventLine, Line: line}}
}

func eventStep(kind lineedit.EventKind) fakeStep {
	return fakeStep{ev: lineedit.Event{Kind: kind}}
}

// fakeSource implements lineedit.Source from a script. It reports
// ErrClosed once the script is exhausted.
type fakeSource struct {
	mu      sync.Mutex
	script  []fakeStep
	prompts []string
	hist    *history.History
	saves   int
	saveErr error

	out    bytes.Buffer
	errOut bytes.Buffer
}

var _ lineedit.Source = (*fakeSource)(nil)

func newFakeSource(steps ...fakeStep) *fakeSource {
	return &fakeSource{script: steps, hist: history.NewHistory("", 100)}
}

func (f *fakeSource) SetPrompt(text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, text)
	return nil
}

func (f *fakeSource) Poll(ctx context.Context, timeout time.Duration) (lineedit.Event, error) {
	f.mu.Lock()
	if len(f.script) == 0 {
		f.mu.Unlock()
		return lineedit.Event{}, lineedit.ErrClosed
	}
	step := f.script[0]
	f.script = f.script[1:]
	f.mu.Unlock()

	if step.before != nil {
		step.before()
	}
	return step.ev, step.err
}

func (f *fakeSource) AddHistory(line string) { f.hist.Add(line) }
func (f *fakeSource) LoadHistory() error     { return nil }

func (f *fakeSource) SaveHistory() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saves++
	return f.saveErr
}

func (f *fakeSource) Stdout() io.Writer { return &f.out }
func (f *fakeSource) Stderr() io.Writer { return &f.errOut }
func (f *fakeSource) Close() error      { return nil }

// historyLines returns the recorded history, oldest first
func (f *fakeSource) historyLines() []string {
	out := make([]string, f.hist.Len())
	for i := range out {
		out[len(out)-1-i] = f.hist.At(i)
	}
	return out
}

func (f *fakeSource) remaining() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.script)
}

// newTestSession wires a session around src. The returned channel feeds
// the session's prompt updates.
func newTestSession(src *fakeSource, transport api.Transport) (*InteractiveSession, chan PromptUpdate) {
	updates := make(chan PromptUpdate, 16)
	printer := display.NewPrinter(src.Stdout(), src.Stderr())
	g := grammar.New(grammar.Options{Name: "cli", Version: "0.0.1"})
	session := &InteractiveSession{
		source:      src,
		dispatcher:  NewDispatcher(g, transport, printer, quietLogger()),
		updates:     updates,
		pollTimeout: 5 * time.Millisecond,
		printer:     printer,
		out:         src.Stdout(),
		errOut:      src.Stderr(),
		log:         quietLogger().WithFields(logging.Fields{"component": "session"}),
	}
	return session, updates
}
