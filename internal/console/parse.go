package console

import (
	"regexp"
	"strings"

	"github.com/google/shlex"
)

var (
	bracePattern   = regexp.MustCompile(`\{(.*?)\}`)
	bracketPattern = regexp.MustCompile(`\[(.*?)\]`)
)

// Parse splits a command argument string into tokens.
//
// The first {...} literal, or failing that the first [...] literal, is kept
// verbatim as the last token and anything after it is dropped. The text
// before it is split with shell quoting rules and one trailing comma is
// removed from each word, so "id, name, value" and "id name value" tokenize
// the same way.
func Parse(arg string) ([]string, error) {
	loc := bracePattern.FindStringIndex(arg)
	if loc == nil {
		loc = bracketPattern.FindStringIndex(arg)
	}
	if loc == nil {
		return splitWords(arg)
	}

	tokens, err := splitWords(arg[:loc[0]])
	if err != nil {
		return nil, err
	}
	return append(tokens, arg[loc[0]:loc[1]]), nil
}

func splitWords(s string) ([]string, error) {
	words, err := shlex.Split(s)
	if err != nil {
		return nil, err
	}
	tokens := make([]string, 0, len(words))
	for _, w := range words {
		tokens = append(tokens, strings.TrimSuffix(w, ","))
	}
	return tokens, nil
}
