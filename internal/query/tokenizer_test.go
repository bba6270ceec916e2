package query

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenize_SingleCondition(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Token
	}{
		{"symbolic operator", "priority >= 5", Token{Field: "priority", OpText: ">=", RawValue: "5"}},
		{"symbolic no spaces", "priority>=5", Token{Field: "priority", OpText: ">=", RawValue: "5"}},
		{"word operator", "priority gte 5", Token{Field: "priority", OpText: "gte", RawValue: "5"}},
		{"in with list", "tags in [work,urgent]", Token{Field: "tags", OpText: "in", RawValue: "[work,urgent]"}},
		{"notin joined", "tags notin [spam]", Token{Field: "tags", OpText: "notin", RawValue: "[spam]"}},
		{"not in spaced", "tags not in [spam]", Token{Field: "tags", OpText: "not in", RawValue: "[spam]"}},
		{"quoted value", `title == "big report"`, Token{Field: "title", OpText: "==", RawValue: `"big report"`}},
		{"no operator", "status active", Token{Field: "status", OpText: "", RawValue: "active"}},
		{"not equals", "assigned_to != none", Token{Field: "assigned_to", OpText: "!=", RawValue: "none"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := Tokenize(tt.input)
			require.NoError(t, err)
			require.Len(t, tokens, 1)
			assert.Equal(t, tt.want.Field, tokens[0].Field)
			assert.Equal(t, tt.want.OpText, tokens[0].OpText)
			assert.Equal(t, tt.want.RawValue, tokens[0].RawValue)
		})
	}
}

func TestTokenize_MultipleConditions(t *testing.T) {
	tokens, err := Tokenize("priority >= 7 status == active tags in [work,urgent]")
	require.NoError(t, err)
	require.Len(t, tokens, 3)

	assert.Equal(t, "priority", tokens[0].Field)
	assert.Equal(t, "status", tokens[1].Field)
	assert.Equal(t, "tags", tokens[2].Field)
	assert.Equal(t, 0, tokens[0].Pos)
	assert.Greater(t, tokens[2].Pos, tokens[1].Pos)
}

func TestTokenize_Empty(t *testing.T) {
	tokens, err := Tokenize("   ")
	require.NoError(t, err)
	assert.Empty(t, tokens)
}

func TestTokenize_QuotesAndBracketsInsideValues(t *testing.T) {
	// A bracket inside a quoted value and a quote inside a bare value are
	// both ordinary value characters, not delimiters.
	tokens, err := Tokenize(`title == "a[b"`)
	require.NoError(t, err)
	require.Len(t, tokens, 1)
	assert.Equal(t, `"a[b"`, tokens[0].RawValue)

	tokens, err = Tokenize(`note == a"b`)
	require.NoError(t, err)
	require.Len(t, tokens, 1)
	assert.Equal(t, `a"b`, tokens[0].RawValue)
}

func TestTokenize_UnterminatedString(t *testing.T) {
	_, err := Tokenize(`title == "half open`)
	require.Error(t, err)
	assert.ErrorIs(t, err, &ParseError{Kind: ErrMalformedValue})
}

func TestTokenize_UnterminatedList(t *testing.T) {
	_, err := Tokenize("tags in [work,urgent")
	require.Error(t, err)

	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, ErrMalformedValue, perr.Kind)
	assert.Contains(t, perr.Fragment, "[")
}
