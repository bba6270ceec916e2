package query

import (
	"regexp"
	"strings"
)

// Token is one lexical (field, operator, value) triple produced in source
// order from a query string. OpText is empty when no operator was written,
// which defaults to equality downstream.
type Token struct {
	Field    string
	OpText   string
	RawValue string
	Pos      int
}

// conditionPattern matches one condition: an identifier field, an optional
// symbolic or whitespace-delimited word operator, and a value that is either
// a bracketed list, a double-quoted string, or a bare non-space run.
var conditionPattern = regexp.MustCompile(
	`([a-zA-Z0-9_]+)( *[=><!]+| +(?:[lg]te?|nin|neq|eq|not ?eq|not ?in|in) )?( *)(\[[^\]]+\]|"[^"]*"|[^ ]+)?( *)`,
)

// Tokenize splits a query string into an ordered sequence of tokens. The
// match must consume the entire input; any unconsumed fragment is a parse
// error, which catches misquoted or otherwise malformed queries early.
func Tokenize(input string) ([]Token, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, nil
	}

	matches := conditionPattern.FindAllStringSubmatchIndex(input, -1)

	// Verify the entire string was consumed.
	cursor := 0
	for _, m := range matches {
		if m[0] != cursor {
			return nil, &ParseError{Kind: ErrMalformedValue, Fragment: input[cursor:m[0]], Pos: cursor}
		}
		cursor = m[1]
	}
	if cursor != len(input) {
		return nil, &ParseError{Kind: ErrMalformedValue, Fragment: input[cursor:], Pos: cursor}
	}

	tokens := make([]Token, 0, len(matches))
	for _, m := range matches {
		tok := Token{Field: group(input, m, 1), Pos: m[0]}
		tok.OpText = strings.TrimSpace(group(input, m, 2))
		tok.RawValue = group(input, m, 4)
		if err := checkTerminated(tok.RawValue, m[8]); err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
	}
	return tokens, nil
}

// group extracts a submatch by index from a SubmatchIndex result, returning
// "" for groups that did not participate in the match.
func group(input string, m []int, n int) string {
	start, end := m[2*n], m[2*n+1]
	if start < 0 {
		return ""
	}
	return input[start:end]
}

// checkTerminated rejects a value that opens a quote or list without
// closing it. The value pattern falls back to a bare non-space run for such
// input, which would otherwise split the rest of the query into nonsense
// tokens. Quotes and brackets appearing inside a matched value are legal.
func checkTerminated(raw string, pos int) error {
	if strings.HasPrefix(raw, `"`) && (len(raw) < 2 || !strings.HasSuffix(raw, `"`)) {
		return &ParseError{Kind: ErrMalformedValue, Fragment: raw, Pos: pos}
	}
	if strings.HasPrefix(raw, "[") && !strings.HasSuffix(raw, "]") {
		return &ParseError{Kind: ErrMalformedValue, Fragment: raw, Pos: pos}
	}
	return nil
}
