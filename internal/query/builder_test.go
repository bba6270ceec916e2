package query

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func taskSchema() Schema {
	return Schema{
		ValidFields: []string{"id", "title", "description", "status", "priority", "tags", "created", "assigned_to", "memory_gb"},
		Aliases:     map[string]string{"desc": "description", "prio": "priority"},
		Multipliers: map[string]float64{"memory_gb": 1024},
	}
}

func TestParse_RoundTripSingleCondition(t *testing.T) {
	tests := []struct {
		input     string
		wantField string
		wantOp    string
		wantValue Value
	}{
		{"status == active", "status", "eq", StringValue("active")},
		{"status eq active", "status", "eq", StringValue("active")},
		{"priority >= 7", "priority", "gte", StringValue("7")},
		{"priority gte 7", "priority", "gte", StringValue("7")},
		{"priority < 3", "priority", "lt", StringValue("3")},
		{"assigned_to != none", "assigned_to", "neq", StringValue("none")},
		{"assigned_to neq none", "assigned_to", "neq", StringValue("none")},
		{"created > 2024-01-01", "created", "gt", StringValue("2024-01-01")},
		{"status active", "status", "eq", StringValue("active")},
		{`title == "quarterly report"`, "title", "eq", StringValue("quarterly report")},
		{"status == null", "status", "eq", NullValue()},
		{"status == true", "status", "eq", BoolValue(true)},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			q, err := Parse(tt.input, taskSchema(), nil)
			require.NoError(t, err)
			require.Len(t, q, 1)
			require.Contains(t, q, tt.wantField)
			require.Len(t, q[tt.wantField], 1)
			assert.Equal(t, tt.wantValue, q[tt.wantField][tt.wantOp])
		})
	}
}

func TestParse_ListValues(t *testing.T) {
	q, err := Parse("tags in [work,urgent]", taskSchema(), nil)
	require.NoError(t, err)
	assert.Equal(t, ListValue([]Value{StringValue("work"), StringValue("urgent")}), q["tags"]["in"])

	// notin and "not in" normalize identically.
	spaced, err := Parse("tags not in [spam, junk]", taskSchema(), nil)
	require.NoError(t, err)
	joined, err := Parse("tags notin [spam,junk]", taskSchema(), nil)
	require.NoError(t, err)
	assert.Equal(t, joined, spaced)
	assert.Equal(t, ListValue([]Value{StringValue("spam"), StringValue("junk")}), joined["tags"]["notin"])

	// A bare scalar with in still yields a list.
	scalar, err := Parse("status in active", taskSchema(), nil)
	require.NoError(t, err)
	assert.Equal(t, ListValue([]Value{StringValue("active")}), scalar["status"]["in"])
}

func TestParse_LastWriteWins(t *testing.T) {
	q, err := Parse("status == a status == b", taskSchema(), nil)
	require.NoError(t, err)
	assert.Equal(t, Query{"status": {"eq": StringValue("b")}}, q)

	// A later condition replaces the whole field entry, not just one operator.
	q, err = Parse("priority >= 3 priority <= 7", taskSchema(), nil)
	require.NoError(t, err)
	assert.Equal(t, Query{"priority": {"lte": StringValue("7")}}, q)
}

func TestParse_AliasTransparency(t *testing.T) {
	q, err := Parse("desc == x", taskSchema(), nil)
	require.NoError(t, err)
	assert.Equal(t, Query{"description": {"eq": StringValue("x")}}, q)
}

func TestParse_MultiplierScaling(t *testing.T) {
	q, err := Parse("memory_gb >= 10", taskSchema(), nil)
	require.NoError(t, err)
	assert.Equal(t, Query{"memory_gb": {"gte": NumberValue(10240)}}, q)

	// Multipliers never reach inside lists.
	q, err = Parse("memory_gb in [1,2]", taskSchema(), nil)
	require.NoError(t, err)
	assert.Equal(t, ListValue([]Value{StringValue("1"), StringValue("2")}), q["memory_gb"]["in"])

	// Non-numeric values skip scaling instead of failing.
	q, err = Parse("memory_gb == lots", taskSchema(), nil)
	require.NoError(t, err)
	assert.Equal(t, StringValue("lots"), q["memory_gb"]["eq"])
}

func TestParse_UnknownFieldRejected(t *testing.T) {
	_, err := Parse("bogus == 1", Schema{ValidFields: []string{"priority", "status"}}, nil)
	require.Error(t, err)

	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, ErrUnknownField, perr.Kind)
	assert.Equal(t, "bogus", perr.Field)
	assert.Equal(t, []string{"priority", "status"}, perr.Accepted)
}

func TestParse_SchemalessAcceptsAnyField(t *testing.T) {
	q, err := Parse("anything == goes", Schema{}, nil)
	require.NoError(t, err)
	assert.Equal(t, Query{"anything": {"eq": StringValue("goes")}}, q)
}

func TestParse_UnknownOperatorRejected(t *testing.T) {
	_, err := Parse("priority <> 5", taskSchema(), nil)
	require.Error(t, err)

	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, ErrUnknownOperator, perr.Kind)
	assert.Equal(t, "priority", perr.Field)
	assert.Equal(t, "<>", perr.Fragment)
}

func TestParse_MissingValue(t *testing.T) {
	_, err := Parse("status ==", taskSchema(), nil)
	require.Error(t, err)

	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, ErrMissingValue, perr.Kind)
	assert.Equal(t, "status", perr.Field)
}

func TestParse_Wildcard(t *testing.T) {
	q, err := Parse("status == any", taskSchema(), nil)
	require.NoError(t, err)
	assert.Equal(t, Query{"status": {"eq": WildcardValue()}}, q)

	for _, raw := range []string{"*", "?"} {
		q, err := Parse("status == "+raw, taskSchema(), nil)
		require.NoError(t, err)
		assert.Equal(t, WildcardValue(), q["status"]["eq"])
	}

	// Wildcard is only valid with equality.
	_, err = Parse("priority >= any", taskSchema(), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, &ParseError{Kind: ErrMalformedValue})
}

func TestParse_BaseQuery(t *testing.T) {
	base := Query{
		"status":  {"eq": StringValue("active")},
		"project": {"eq": StringValue("infra")},
	}

	q, err := Parse("status == done priority >= 5", taskSchema(), base)
	require.NoError(t, err)

	// Parsed conditions override the base; untouched base fields survive.
	assert.Equal(t, StringValue("done"), q["status"]["eq"])
	assert.Equal(t, StringValue("infra"), q["project"]["eq"])
	assert.Equal(t, StringValue("5"), q["priority"]["gte"])

	// The base itself is never mutated.
	assert.Equal(t, StringValue("active"), base["status"]["eq"])
}

func TestParse_EmptyInput(t *testing.T) {
	base := Query{"status": {"eq": StringValue("active")}}

	q, err := Parse("", taskSchema(), base)
	require.NoError(t, err)
	assert.Equal(t, base, q)

	q, err = Parse("   ", taskSchema(), nil)
	require.NoError(t, err)
	assert.Empty(t, q)
}

func TestParse_FailsBeforeAnyStoreCall(t *testing.T) {
	// A malformed query produces a specific error naming the fragment.
	_, err := Parse(`title == "unterminated`, taskSchema(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"unterminated`)
}

func TestParse_DelimitersInsideValues(t *testing.T) {
	// Delimiter characters embedded in a value never fail the parse: only
	// a value that opens a quote or list without closing it is malformed.
	q, err := Parse(`title == "a[b"`, taskSchema(), nil)
	require.NoError(t, err)
	assert.Equal(t, StringValue("a[b"), q["title"]["eq"])

	q, err = Parse(`description == a"b`, taskSchema(), nil)
	require.NoError(t, err)
	assert.Equal(t, StringValue(`a"b`), q["description"]["eq"])
}
