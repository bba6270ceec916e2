// Package query implements the task filter DSL: a small language that
// compiles human-written filter strings like
//
//	priority >= 5 status == active tags in [work,urgent]
//
// into structured predicate documents consumed by a record store. Conditions
// are whitespace-separated with an implicit AND; the predicate document maps
// each canonical field name to a one-entry {operator: value} mapping.
package query

import "strings"

// Query is a predicate document: canonical field name to a one-entry
// {operator name: coerced value} mapping. It marshals directly to the wire
// shape, e.g. {"priority": {"gte": 7}, "tags": {"in": ["work","urgent"]}}.
type Query map[string]map[string]Value

// Clone returns a one-level-deep copy of the query. Condition maps are
// copied so merging into the clone never mutates the original.
func (q Query) Clone() Query {
	out := make(Query, len(q))
	for field, cond := range q {
		c := make(map[string]Value, len(cond))
		for op, v := range cond {
			c[op] = v
		}
		out[field] = c
	}
	return out
}

// Parse compiles a query string into a predicate document. base, if
// non-nil, seeds the result before parsed conditions are merged in, so
// parsed conditions always take precedence over the base.
//
// The last condition for a given field wins outright, replacing any earlier
// condition on that field. This overwrite behavior is deliberate: callers
// compose a base query with user overrides and rely on it.
func Parse(input string, schema Schema, base Query) (Query, error) {
	result := Query{}
	if base != nil {
		result = base.Clone()
	}

	if strings.TrimSpace(input) == "" {
		return result, nil
	}

	tokens, err := Tokenize(input)
	if err != nil {
		return nil, err
	}

	for _, tok := range tokens {
		field, err := schema.Resolve(tok.Field)
		if err != nil {
			return nil, err
		}

		op := OpEQ
		if tok.OpText != "" {
			resolved, ok := LookupOp(tok.OpText)
			if !ok {
				return nil, &ParseError{Kind: ErrUnknownOperator, Field: tok.Field, Fragment: tok.OpText, Pos: tok.Pos}
			}
			op = resolved
		}

		value, err := buildValue(tok, field, op, schema)
		if err != nil {
			return nil, err
		}

		result[field] = map[string]Value{op.String(): value}
	}

	return result, nil
}

// buildValue coerces a token's raw value for the given operator and applies
// the field's unit multiplier. Coercion happens first; the multiplier is
// applied exactly once per condition, after coercion, and only to scalars.
func buildValue(tok Token, field string, op Op, schema Schema) (Value, error) {
	raw := tok.RawValue
	if raw == "" {
		return Value{}, &ParseError{Kind: ErrMissingValue, Field: tok.Field, Pos: tok.Pos}
	}

	bracketed := strings.HasPrefix(raw, "[") && strings.HasSuffix(raw, "]")

	if !bracketed {
		switch Coerce(strings.Trim(raw, `"`)).Kind {
		case KindWildcard:
			if op != OpEQ {
				return Value{}, &ParseError{Kind: ErrMalformedValue, Field: tok.Field, Fragment: raw, Pos: tok.Pos}
			}
			return WildcardValue(), nil
		}
	}

	// in/notin always yield a list, even from a bare scalar, so
	// "status in active" and "status in [active]" are equivalent.
	if op == OpIn || op == OpNotIn {
		inner := raw
		if bracketed {
			inner = raw[1 : len(raw)-1]
		}
		return coerceList(inner), nil
	}

	if bracketed {
		return coerceList(raw[1 : len(raw)-1]), nil
	}

	value := Coerce(strings.Trim(raw, `"`))
	if m, ok := schema.Multiplier(field); ok {
		value = applyMultiplier(value, m)
	}
	return value, nil
}
