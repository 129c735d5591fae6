// internal/filter/condition.go
package filter

import "strings"

/*
 * Compiled leaf conditions.
 *
 * A Condition is the immutable result of classifying one {path: body} pair
 * whose body is a scalar or an operator-keyed mapping. Everything Apply needs
 * is resolved at construction: the relation/field split, the kind, and the
 * operand handed to the builder (set for in/not_in, folded pattern for like*).
 *
 * Path splitting: a path containing "." splits at the LAST dot, so
 * "customer.orders.status" targets field "status" of relation
 * "customer.orders". Relation and field are both set or both unset: a path
 * whose last dot is its first or last character is kept whole as the field.
 * Builders decide how dotted relation names nest.
 *
 * Qualification: without a relation the field is qualified by the builder's
 * own table. With a relation the call is wrapped in ExistsInRelation and the
 * field is qualified by the relation-scoped builder's table.
 */

// Condition is a compiled leaf predicate.
type Condition struct {
	path     string
	relation string
	field    string
	kind     Kind
	value    any
	operand  any
}

// newCondition resolves the relation/field split and the builder operand.
// value must already be normalized for the kind (see operand.go).
func newCondition(path string, kind Kind, value any) Condition {
	c := Condition{path: path, field: path, kind: kind}
	// a leading or trailing dot leaves one side empty; such paths stay whole
	if i := strings.LastIndex(path, "."); i > 0 && i < len(path)-1 {
		c.relation = path[:i]
		c.field = path[i+1:]
	}

	switch {
	case kind.IsPattern():
		s := value.(string)
		c.value = s
		c.operand = kind.pattern(s)
	case kind.HasOperand():
		c.value = value
		c.operand = value
	}
	return c
}

// Path returns the raw filter key, e.g. "orders.status".
func (c Condition) Path() string { return c.path }

// Relation returns the portion of the path before the last dot, or "".
func (c Condition) Relation() string { return c.relation }

// Field returns the portion of the path after the last dot, or the whole
// path when there is no relation.
func (c Condition) Field() string { return c.field }

func (c Condition) Kind() Kind { return c.kind }

// Value returns the operand captured from the body. For pattern kinds this is
// the case-folded string before wildcard wrapping; for set kinds a []any.
// Nil for IsNull, IsNotNull and Unknown.
func (c Condition) Value() any { return c.value }

// HasValue reports whether the condition carries an operand.
func (c Condition) HasValue() bool { return c.kind.HasOperand() }

// Pattern returns the LIKE pattern for pattern kinds, "" otherwise.
func (c Condition) Pattern() string {
	if !c.kind.IsPattern() {
		return ""
	}
	return c.operand.(string)
}

// Apply adds the condition to b. Unknown conditions leave b unchanged.
func (c Condition) Apply(b Builder) Builder {
	if c.kind == KindUnknown {
		return b
	}
	if c.relation == "" {
		return c.applyTo(b)
	}
	return b.ExistsInRelation(c.relation, c.applyTo)
}

func (c Condition) applyTo(b Builder) Builder {
	col := Column{Table: b.Table(), Name: c.field, Fold: c.kind.IsPattern()}

	switch c.kind {
	case KindEqual:
		return b.Where(col, OpEqual, c.operand)
	case KindInSet:
		return b.WhereIn(col, c.operand.([]any))
	case KindNotInSet:
		return b.WhereNotIn(col, c.operand.([]any))
	case KindIsNull:
		return b.WhereNull(col)
	case KindIsNotNull:
		return b.WhereNotNull(col)
	case KindContains, KindPrefix, KindSuffix:
		return b.Where(col, OpLike, c.operand)
	default:
		return b
	}
}
