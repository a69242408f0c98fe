package sql

// An Op is a comparison operator of a predicate leaf.
type Op uint8

// Comparison operators.
const (
	OpEQ      Op = iota // =
	OpNEQ               // <>
	OpGT                // >
	OpGTE               // >=
	OpLT                // <
	OpLTE               // <=
	OpLike              // LIKE
	OpIn                // IN
	OpNotIn             // NOT IN
	OpIsNull            // IS NULL
	OpNotNull           // IS NOT NULL
)

var opText = [...]string{
	OpEQ:      "=",
	OpNEQ:     "<>",
	OpGT:      ">",
	OpGTE:     ">=",
	OpLT:      "<",
	OpLTE:     "<=",
	OpLike:    "LIKE",
	OpIn:      "IN",
	OpNotIn:   "NOT IN",
	OpIsNull:  "IS NULL",
	OpNotNull: "IS NOT NULL",
}

// String returns the SQL text of the operator.
func (o Op) String() string { return opText[o] }

// kind tags the node type of a predicate tree.
type kind uint8

const (
	kindCmp kind = iota
	kindAnd
	kindOr
	kindNot
)

// A Predicate is one node in an immutable filter tree: either a column
// comparison leaf or an AND/OR/NOT composite. Constructors build new
// trees and never mutate their operands, so a partially-built predicate
// is safe to reuse across query branches.
type Predicate struct {
	kind   kind
	op     Op
	column string
	args   []any
	left   *Predicate
	right  *Predicate
	inner  *Predicate
}

func cmp(column string, op Op, args ...any) *Predicate {
	return &Predicate{kind: kindCmp, op: op, column: column, args: args}
}

// EQ returns a column = value predicate.
func EQ(column string, v any) *Predicate { return cmp(column, OpEQ, v) }

// NEQ returns a column <> value predicate.
func NEQ(column string, v any) *Predicate { return cmp(column, OpNEQ, v) }

// GT returns a column > value predicate.
func GT(column string, v any) *Predicate { return cmp(column, OpGT, v) }

// GTE returns a column >= value predicate.
func GTE(column string, v any) *Predicate { return cmp(column, OpGTE, v) }

// LT returns a column < value predicate.
func LT(column string, v any) *Predicate { return cmp(column, OpLT, v) }

// LTE returns a column <= value predicate.
func LTE(column string, v any) *Predicate { return cmp(column, OpLTE, v) }

// Like returns a column LIKE pattern predicate.
func Like(column, pattern string) *Predicate { return cmp(column, OpLike, pattern) }

// In returns a column IN (values...) predicate. An empty value set renders
// to a fragment that matches no rows.
func In(column string, vs ...any) *Predicate { return cmp(column, OpIn, vs...) }

// NotIn returns a column NOT IN (values...) predicate. An empty value set
// renders to a fragment that matches all rows.
func NotIn(column string, vs ...any) *Predicate { return cmp(column, OpNotIn, vs...) }

// IsNull returns a column IS NULL predicate.
func IsNull(column string) *Predicate { return cmp(column, OpIsNull) }

// NotNull returns a column IS NOT NULL predicate.
func NotNull(column string) *Predicate { return cmp(column, OpNotNull) }

// And returns the conjunction of the given predicates.
func And(first *Predicate, rest ...*Predicate) *Predicate {
	p := first
	for _, r := range rest {
		p = &Predicate{kind: kindAnd, left: p, right: r}
	}
	return p
}

// Or returns the disjunction of the given predicates.
func Or(first *Predicate, rest ...*Predicate) *Predicate {
	p := first
	for _, r := range rest {
		p = &Predicate{kind: kindOr, left: p, right: r}
	}
	return p
}

// Not returns the negation of the given predicate.
func Not(p *Predicate) *Predicate {
	return &Predicate{kind: kindNot, inner: p}
}
