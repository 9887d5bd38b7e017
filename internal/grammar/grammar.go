package grammar

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"
)

// Options configures a Grammar
type Options struct {
	// Name is the root command name shown in usage and errors.
	Name    string
	Version string
	// AllowInteractive accepts the "interactive" subcommand. Set it for
	// single-shot invocation from the command line only.
	AllowInteractive bool
}

// Candidate is a subcommand that may follow a token prefix
type Candidate struct {
	Name    string
	Summary string
}

type argSpec struct {
	name     string
	variadic bool
}

type node struct {
	name     string
	summary  string
	children []*node
	// args of a leaf; the first non-variadic args are required.
	args  []argSpec
	build func(args []string) Command
}

func (n *node) child(name string) *node {
	for _, c := range n.children {
		if c.name == name {
			return c
		}
	}
	return nil
}

// Grammar parses token sequences into commands
type Grammar struct {
	opts Options
	root *node
}

// New builds the command tree
func New(opts Options) *Grammar {
	if opts.Name == "" {
		opts.Name = "cli"
	}

	httpArgs := []argSpec{{name: "uri"}, {name: "content", variadic: true}}
	httpLeaf := func(name, summary string, verb Verb) *node {
		return &node{
			name:    name,
			summary: summary,
			args:    httpArgs,
			build: func(args []string) Command {
				var body []string
				if len(args) > 1 {
					body = append(body, args[1:]...)
				}
				return HTTP{Verb: verb, URI: args[0], Body: body}
			},
		}
	}

	root := &node{name: opts.Name, summary: "Interactive HTTP command shell"}
	if opts.AllowInteractive {
		root.children = append(root.children, &node{
			name:    "interactive",
			summary: "Start the interactive shell",
			build:   func([]string) Command { return EnterInteractive{} },
		})
	}
	root.children = append(root.children,
		&node{
			name:    "http",
			summary: "Make an http call",
			children: []*node{
				httpLeaf("get", "Make an http get call", VerbGet),
				httpLeaf("put", "Make an http put call", VerbPut),
			},
		},
		&node{
			name:    "quit",
			summary: "End the program",
			build:   func([]string) Command { return Quit{} },
		},
	)

	return &Grammar{opts: opts, root: root}
}

// Parse validates tokens and returns the command they describe.
// Zero tokens yield (nil, nil). Errors are *GrammarError, *HelpRequested or
// *VersionRequested.
func (g *Grammar) Parse(tokens []string) (Command, error) {
	if len(tokens) == 0 {
		return nil, nil
	}

	n := g.root
	path := []string{n.name}
	rest := tokens

	for {
		fs, help, version := flagSet(strings.Join(path, " "))
		// Flags end at the first argument: a subcommand name or, on a
		// leaf, the first positional.
		fs.SetInterspersed(false)

		if err := fs.Parse(rest); err != nil {
			return nil, &GrammarError{
				Reason: ReasonUnknownFlag,
				Path:   strings.Join(path, " "),
				Detail: err.Error(),
				Usage:  g.usageLine(n, path),
			}
		}
		if len(n.children) == 0 {
			trailingFlags(fs.Args(), help, version)
		}
		if *help {
			return nil, &HelpRequested{Path: strings.Join(path, " "), Text: g.help(n, path, fs)}
		}
		if *version {
			return nil, &VersionRequested{Name: g.opts.Name, Version: g.opts.Version}
		}

		args := fs.Args()
		if len(n.children) == 0 {
			return g.buildLeaf(n, path, args)
		}

		if len(args) == 0 {
			return nil, &GrammarError{
				Reason: ReasonMissingCommand,
				Path:   strings.Join(path, " "),
				Usage:  g.usageLine(n, path),
			}
		}
		next := n.child(args[0])
		if next == nil {
			return nil, &GrammarError{
				Reason: ReasonUnknownCommand,
				Path:   strings.Join(path, " "),
				Token:  args[0],
				Usage:  g.usageLine(n, path),
			}
		}
		n = next
		path = append(path, next.name)
		rest = args[1:]
	}
}

func (g *Grammar) buildLeaf(n *node, path []string, args []string) (Command, error) {
	variadic := false
	for i, a := range n.args {
		if a.variadic {
			variadic = true
			break
		}
		if i >= len(args) || args[i] == "" {
			return nil, &GrammarError{
				Reason: ReasonMissingArgument,
				Path:   strings.Join(path, " "),
				Token:  a.name,
				Usage:  g.usageLine(n, path),
			}
		}
	}
	if !variadic && len(args) > len(n.args) {
		return nil, &GrammarError{
			Reason: ReasonUnexpectedArgument,
			Path:   strings.Join(path, " "),
			Token:  args[len(n.args)],
			Usage:  g.usageLine(n, path),
		}
	}
	return n.build(args), nil
}

// Candidates returns the subcommands that may follow tokens. Flag tokens
// are skipped; an unknown token yields nothing.
func (g *Grammar) Candidates(tokens []string) []Candidate {
	n := g.root
	for _, tok := range tokens {
		if strings.HasPrefix(tok, "-") {
			continue
		}
		next := n.child(tok)
		if next == nil {
			return nil
		}
		n = next
	}

	out := make([]Candidate, 0, len(n.children))
	for _, c := range n.children {
		out = append(out, Candidate{Name: c.name, Summary: c.summary})
	}
	return out
}

// trailingFlags scans the tokens after a leaf's first argument. They are
// free-form body text; only the help and version flags are recognized, up
// to a "--" token.
func trailingFlags(args []string, help, version *bool) {
	if len(args) < 2 {
		return
	}
	for _, tok := range args[1:] {
		switch tok {
		case "--":
			return
		case "-h", "--help":
			*help = true
		case "-V", "--version":
			*version = true
		}
	}
}

func flagSet(name string) (*pflag.FlagSet, *bool, *bool) {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}
	help := fs.BoolP("help", "h", false, "Print help information")
	version := fs.BoolP("version", "V", false, "Print version information")
	return fs, help, version
}

func (g *Grammar) usageLine(n *node, path []string) string {
	var sb strings.Builder
	sb.WriteString(strings.Join(path, " "))
	sb.WriteString(" [flags]")
	if len(n.children) > 0 {
		sb.WriteString(" <command>")
	}
	for _, a := range n.args {
		if a.variadic {
			fmt.Fprintf(&sb, " [%s...]", a.name)
		} else {
			fmt.Fprintf(&sb, " <%s>", a.name)
		}
	}
	return sb.String()
}

func (g *Grammar) help(n *node, path []string, fs *pflag.FlagSet) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %s\n%s\n\n", strings.Join(path, " "), g.opts.Version, n.summary)
	fmt.Fprintf(&sb, "Usage:\n  %s\n", g.usageLine(n, path))

	if len(n.children) > 0 {
		sb.WriteString("\nCommands:\n")
		for _, c := range n.children {
			fmt.Fprintf(&sb, "  %-12s %s\n", c.name, c.summary)
		}
	}
	if len(n.args) > 0 {
		sb.WriteString("\nArguments:\n")
		for _, a := range n.args {
			desc := "Request URI"
			if a.variadic {
				desc = "Request body tokens, joined by single spaces"
			}
			fmt.Fprintf(&sb, "  %-12s %s\n", a.name, desc)
		}
	}

	sb.WriteString("\nFlags:\n")
	sb.WriteString(fs.FlagUsages())
	return strings.TrimRight(sb.String(), "\n")
}
