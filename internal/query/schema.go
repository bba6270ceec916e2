package query

import (
	"sort"
	"strings"
)

// Schema is the immutable field configuration for a parse: the whitelist of
// queryable fields, shorthand aliases, and per-field unit multipliers. A
// zero-value Schema accepts every field (schema-less mode, used for ad-hoc
// exploratory queries).
type Schema struct {
	// ValidFields is the set of canonical field names accepted by the
	// parser. Empty means all fields are accepted.
	ValidFields []string

	// Aliases maps shorthand spellings to canonical field names. Many
	// aliases may point at the same canonical field.
	Aliases map[string]string

	// Multipliers maps canonical field names to a scale factor applied to
	// numeric values of that field, keyed after alias resolution.
	Multipliers map[string]float64
}

// Resolve normalizes a raw field name, resolves it through the alias table,
// and validates it against the whitelist. Unknown fields with an active
// whitelist fail with a ParseError listing the accepted field set.
func (s Schema) Resolve(raw string) (string, error) {
	name := strings.ToLower(strings.TrimSpace(raw))
	if canonical, ok := s.Aliases[name]; ok {
		name = canonical
	}
	if len(s.ValidFields) == 0 {
		return name, nil
	}
	for _, f := range s.ValidFields {
		if f == name {
			return name, nil
		}
	}
	accepted := append([]string(nil), s.ValidFields...)
	sort.Strings(accepted)
	return "", &ParseError{Kind: ErrUnknownField, Field: raw, Accepted: accepted}
}

// Multiplier returns the unit multiplier for a canonical field, if any.
func (s Schema) Multiplier(canonical string) (float64, bool) {
	m, ok := s.Multipliers[canonical]
	return m, ok
}
