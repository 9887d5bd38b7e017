// Package display formats everything the shell prints: request echoes,
// responses, errors and the in-flight spinner.
package display

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/quocvuong92/qcli/internal/api"
)

type theme struct {
	request  lipgloss.Style
	success  lipgloss.Style
	redirect lipgloss.Style
	failure  lipgloss.Style
	err      lipgloss.Style
	warning  lipgloss.Style
	muted    lipgloss.Style
}

func newTheme(r *lipgloss.Renderer) theme {
	blue := lipgloss.Color("#01cdfe")
	mint := lipgloss.Color("#05ffa1")
	amber := lipgloss.Color("#ffb86c")
	pink := lipgloss.Color("#ff71ce")
	muted := lipgloss.Color("#9ca3d8")

	return theme{
		request:  r.NewStyle().Foreground(blue).Bold(true),
		success:  r.NewStyle().Foreground(mint).Bold(true),
		redirect: r.NewStyle().Foreground(amber).Bold(true),
		failure:  r.NewStyle().Foreground(pink).Bold(true),
		err:      r.NewStyle().Foreground(pink).Bold(true),
		warning:  r.NewStyle().Foreground(amber),
		muted:    r.NewStyle().Foreground(muted),
	}
}

// Printer writes formatted output to a pair of writers
type Printer struct {
	mu     sync.Mutex
	out    io.Writer
	errOut io.Writer
	outTh  theme
	errTh  theme
	// renderer formats response bodies; nil prints them as is.
	renderer Renderer
}

// Renderer formats a response body of the given media type
type Renderer interface {
	Render(contentType string, body []byte) (string, error)
}

// NewPrinter creates a printer writing results to out and diagnostics to errOut
func NewPrinter(out, errOut io.Writer) *Printer {
	return &Printer{
		out:    out,
		errOut: errOut,
		outTh:  newTheme(lipgloss.NewRenderer(out)),
		errTh:  newTheme(lipgloss.NewRenderer(errOut)),
	}
}

var (
	defaultOnce    sync.Once
	defaultPrinter *Printer
)

// Default returns the printer bound to the process stdout and stderr
func Default() *Printer {
	defaultOnce.Do(func() {
		defaultPrinter = NewPrinter(os.Stdout, os.Stderr)
	})
	return defaultPrinter
}

// InitRenderer enables markdown rendering of response bodies
func (p *Printer) InitRenderer() error {
	md, err := newMarkdown(p.out)
	if err != nil {
		return err
	}
	p.UseRenderer(md)
	return nil
}

// UseRenderer replaces the body renderer. A nil renderer prints bodies as is.
func (p *Printer) UseRenderer(r Renderer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.renderer = r
}

// Println writes a plain line to the output writer
func (p *Printer) Println(text string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.out, text)
}

// ShowRequest announces a request before it is sent
func (p *Printer) ShowRequest(echo string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.out, p.outTh.request.Render(echo))
}

// ShowResponse prints the response summary and body. The returned error
// only reports a rendering failure; the plain body has been printed then.
func (p *Printer) ShowResponse(resp *api.Response) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	fmt.Fprintln(p.out, p.statusStyle(resp.StatusCode).Render(resp.Summary()))
	if len(resp.Body) == 0 {
		return nil
	}

	if p.renderer != nil {
		out, err := p.renderer.Render(resp.ContentType(), resp.Body)
		if err == nil {
			fmt.Fprint(p.out, out)
			p.truncationNote(resp)
			return nil
		}
		p.writeBody(resp.Body)
		p.truncationNote(resp)
		return fmt.Errorf("failed to render response body: %w", err)
	}

	p.writeBody(resp.Body)
	p.truncationNote(resp)
	return nil
}

func (p *Printer) writeBody(body []byte) {
	text := string(body)
	fmt.Fprint(p.out, text)
	if !strings.HasSuffix(text, "\n") {
		fmt.Fprintln(p.out)
	}
}

func (p *Printer) truncationNote(resp *api.Response) {
	if resp.Truncated {
		fmt.Fprintln(p.out, p.outTh.muted.Render(fmt.Sprintf("... body truncated at %d bytes", len(resp.Body))))
	}
}

func (p *Printer) statusStyle(code int) lipgloss.Style {
	switch {
	case code >= 200 && code < 300:
		return p.outTh.success
	case code >= 300 && code < 400:
		return p.outTh.redirect
	default:
		return p.outTh.failure
	}
}

// ShowError prints an error line on the diagnostics writer
func (p *Printer) ShowError(msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.errOut, p.errTh.err.Render("Error: "+msg))
}

// ShowWarning prints a warning line on the diagnostics writer
func (p *Printer) ShowWarning(msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.errOut, p.errTh.warning.Render("Warning: "+msg))
}

// ShowParseError prints a grammar error followed by hint, the command line
// that prints the relevant help
func (p *Printer) ShowParseError(msg, hint string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	line := "Parse error: " + msg
	if hint != "" {
		line += fmt.Sprintf(" (try '%s')", hint)
	}
	fmt.Fprintln(p.errOut, p.errTh.err.Render(line))
}

// ShowError prints msg with the default printer
func ShowError(msg string) {
	Default().ShowError(msg)
}

// IsTerminal reports whether w is an interactive terminal. Writers that
// front a terminal without being an *os.File report it themselves.
func IsTerminal(w io.Writer) bool {
	switch f := w.(type) {
	case interface{ IsTerminal() bool }:
		return f.IsTerminal()
	case *os.File:
		return term.IsTerminal(int(f.Fd()))
	}
	return false
}

// terminalWidth returns the column count of the terminal behind w
func terminalWidth(w io.Writer) (int, bool) {
	f, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return 0, false
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		return 0, false
	}
	return width, true
}
