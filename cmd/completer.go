package cmd

import (
	"strings"

	"github.com/elk-language/go-prompt"

	"github.com/quocvuong92/qcli/internal/grammar"
)

// completer provides tab completion of subcommand names
type completer struct {
	grammar *grammar.Grammar
}

func newCompleter(g *grammar.Grammar) *completer {
	return &completer{grammar: g}
}

// suggestions returns the subcommands matching the word being typed at pos,
// and that word.
func (c *completer) suggestions(line string, pos int) ([]prompt.Suggest, string) {
	before := line[:pos]
	tokens := strings.Fields(before)

	word := ""
	if len(tokens) > 0 && !strings.HasSuffix(before, " ") {
		word = tokens[len(tokens)-1]
		tokens = tokens[:len(tokens)-1]
	}

	var suggestions []prompt.Suggest
	for _, cand := range c.grammar.Candidates(tokens) {
		suggestions = append(suggestions, prompt.Suggest{Text: cand.Name, Description: cand.Summary})
	}
	return prompt.FilterHasPrefix(suggestions, word, true), word
}

// Complete replaces the word before the cursor with the single matching
// subcommand, or with the longest prefix shared by several matches.
func (c *completer) Complete(line string, pos int) (string, int, bool) {
	if pos < 0 || pos > len(line) {
		return "", 0, false
	}

	matches, word := c.suggestions(line, pos)
	if len(matches) == 0 {
		return "", 0, false
	}

	completion := matches[0].Text + " "
	if len(matches) > 1 {
		completion = commonPrefix(matches)
		if len(completion) <= len(word) {
			return "", 0, false
		}
	}

	head := line[:pos-len(word)] + completion
	return head + line[pos:], len(head), true
}

func commonPrefix(suggestions []prompt.Suggest) string {
	prefix := suggestions[0].Text
	for _, s := range suggestions[1:] {
		for !strings.HasPrefix(s.Text, prefix) {
			prefix = prefix[:len(prefix)-1]
		}
	}
	return prefix
}
