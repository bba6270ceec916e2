package query

import "strings"

// Op is the closed set of canonical filter operators. The string value is the
// operator name used in predicate documents.
type Op string

const (
	OpLT    Op = "lt"
	OpLTE   Op = "lte"
	OpEQ    Op = "eq"
	OpNEQ   Op = "neq"
	OpGTE   Op = "gte"
	OpGT    Op = "gt"
	OpIn    Op = "in"
	OpNotIn Op = "notin"
)

// String returns the predicate-document name of the operator.
func (o Op) String() string {
	return string(o)
}

// IsValid checks if the operator is a recognized canonical kind.
func (o Op) IsValid() bool {
	switch o {
	case OpLT, OpLTE, OpEQ, OpNEQ, OpGTE, OpGT, OpIn, OpNotIn:
		return true
	default:
		return false
	}
}

// opSpellings maps every accepted surface spelling, symbolic and word form,
// to its canonical operator. Symbolic and word forms are aliases of the same
// kind (">=" and "gte" are identical).
var opSpellings = map[string]Op{
	">=":     OpGTE,
	">":      OpGT,
	"gt":     OpGT,
	"gte":    OpGTE,
	"<=":     OpLTE,
	"<":      OpLT,
	"lt":     OpLT,
	"lte":    OpLTE,
	"!=":     OpNEQ,
	"==":     OpEQ,
	"=":      OpEQ,
	"eq":     OpEQ,
	"neq":    OpNEQ,
	"noteq":  OpNEQ,
	"not eq": OpNEQ,
	"in":     OpIn,
	"notin":  OpNotIn,
	"not in": OpNotIn,
	"nin":    OpNotIn,
}

// LookupOp resolves an operator spelling to its canonical kind. Interior
// whitespace is normalized so "not  in" and "not in" resolve identically.
// Unknown spellings report ok=false and are never recovered by falling back
// to equality.
func LookupOp(text string) (Op, bool) {
	normalized := strings.Join(strings.Fields(strings.ToLower(text)), " ")
	op, ok := opSpellings[normalized]
	return op, ok
}
