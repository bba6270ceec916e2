package query

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Kind tags the variants of a coerced value.
type Kind int

const (
	KindString Kind = iota
	KindBool
	KindNull
	KindNumber
	KindList
	KindWildcard
)

// Value is the tagged union produced by the coercer. Exactly one of the
// payload fields is meaningful, selected by Kind.
type Value struct {
	Kind Kind
	Str  string
	Bool bool
	Num  float64
	List []Value
}

func StringValue(s string) Value  { return Value{Kind: KindString, Str: s} }
func BoolValue(b bool) Value      { return Value{Kind: KindBool, Bool: b} }
func NullValue() Value            { return Value{Kind: KindNull} }
func NumberValue(f float64) Value { return Value{Kind: KindNumber, Num: f} }
func ListValue(vs []Value) Value  { return Value{Kind: KindList, List: vs} }
func WildcardValue() Value        { return Value{Kind: KindWildcard} }

// MarshalJSON renders the value in predicate-document form. Numbers are
// written without a trailing ".0" when integral; the wildcard sentinel is
// serialized as "*" and its semantics are left to the record store.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case KindBool:
		return json.Marshal(v.Bool)
	case KindNull:
		return []byte("null"), nil
	case KindNumber:
		return []byte(strconv.FormatFloat(v.Num, 'f', -1, 64)), nil
	case KindList:
		return json.Marshal(v.List)
	case KindWildcard:
		return json.Marshal("*")
	default:
		return json.Marshal(v.Str)
	}
}

// Coerce converts a raw scalar token into a typed value. Only the exact
// capitalizations true/True and false/False are booleans, null/None is null,
// and any/*/? is the wildcard sentinel. Everything else stays a string; no
// implicit numeric parsing happens here.
func Coerce(raw string) Value {
	switch raw {
	case "true", "True":
		return BoolValue(true)
	case "false", "False":
		return BoolValue(false)
	case "null", "None":
		return NullValue()
	case "any", "*", "?":
		return WildcardValue()
	default:
		return StringValue(raw)
	}
}

// CoerceValue applies Coerce to string values and passes every other kind
// through untouched, so coercing an already-coerced value is a no-op.
func CoerceValue(v Value) Value {
	if v.Kind != KindString {
		return v
	}
	return Coerce(v.Str)
}

// coerceList splits the inner text of a bracketed value on commas, trims
// each element, and coerces the elements recursively. Multipliers are never
// applied inside a list.
func coerceList(inner string) Value {
	parts := strings.Split(inner, ",")
	elems := make([]Value, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		elems = append(elems, Coerce(strings.Trim(p, `"`)))
	}
	return ListValue(elems)
}

// applyMultiplier scales a numeric or numeric-looking value by m, converting
// it to a number. Non-numeric values pass through unscaled: the field may
// legitimately hold non-numeric values in schema-less mode, so a failed
// numeric parse skips scaling rather than failing the whole query.
func applyMultiplier(v Value, m float64) Value {
	switch v.Kind {
	case KindNumber:
		return NumberValue(v.Num * m)
	case KindString:
		f, err := strconv.ParseFloat(v.Str, 64)
		if err != nil {
			return v
		}
		return NumberValue(f * m)
	default:
		return v
	}
}
