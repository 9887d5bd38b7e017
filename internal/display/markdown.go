package display

import (
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
)

const defaultWrapWidth = 100

type markdown struct {
	r *glamour.TermRenderer
}

func newMarkdown(out io.Writer) (*markdown, error) {
	width := defaultWrapWidth
	style := glamour.WithStandardStyle("notty")
	if IsTerminal(out) {
		style = glamour.WithAutoStyle()
		if w, ok := terminalWidth(out); ok {
			width = w
		}
	}

	r, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(width))
	if err != nil {
		return nil, err
	}
	return &markdown{r: r}, nil
}

// Render formats a body by media type. Markdown is rendered as is; anything
// else becomes a fenced block so that known formats get highlighted.
func (m *markdown) Render(contentType string, body []byte) (string, error) {
	if contentType == "text/markdown" {
		return m.r.Render(string(body))
	}

	text := strings.TrimRight(string(body), "\n")
	doc := "```" + fenceLanguage(contentType) + "\n" + text + "\n```\n"
	return m.r.Render(doc)
}

func fenceLanguage(contentType string) string {
	switch {
	case strings.HasSuffix(contentType, "json"):
		return "json"
	case strings.HasSuffix(contentType, "xml"):
		return "xml"
	case strings.HasSuffix(contentType, "yaml"):
		return "yaml"
	case contentType == "text/html":
		return "html"
	case contentType == "text/css":
		return "css"
	case strings.HasSuffix(contentType, "javascript"):
		return "javascript"
	default:
		return ""
	}
}
