// Package parser tokenizes raw protocol lines.
//
// A line is an optional ":<source>" prefix, a command keyword, zero or
// more space-separated middle parameters, and an optional final
// ":"-prefixed trailing parameter that may contain spaces.
package parser

import "strings"

// Tokenize splits one raw line into its ordered tokens. The source
// prefix, if present, is discarded. A trailing parameter is always the
// last token and may be the empty string, which is distinct from no
// trailing parameter at all. Malformed input yields zero tokens.
func Tokenize(raw string) []string {
	line := strings.TrimSpace(raw)
	if line == "" {
		return nil
	}

	// Source prefix: drop everything up to and including the first
	// space. A prefix with no command after it is malformed.
	if line[0] == ':' {
		sp := strings.IndexByte(line, ' ')
		if sp < 0 {
			return nil
		}
		line = line[sp+1:]
	}

	var trailing string
	hasTrailing := false
	if colon := strings.IndexByte(line, ':'); colon >= 0 {
		trailing = line[colon+1:]
		hasTrailing = true
		line = line[:colon]
	}

	tokens := strings.Fields(line)
	if hasTrailing {
		tokens = append(tokens, trailing)
	}
	return tokens
}
