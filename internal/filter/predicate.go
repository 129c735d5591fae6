package filter

// Predicate is a compiled filter: a deferred test contributed to a query.
// Apply is invoked by the caller against a concrete builder and returns the
// builder to continue chaining with. Predicates hold no mutable state.
type Predicate interface {
	Apply(b Builder) Builder
}

// PredicateFunc adapts an ordinary function to the Predicate interface.
type PredicateFunc func(Builder) Builder

func (f PredicateFunc) Apply(b Builder) Builder { return f(b) }

// And applies every predicate in order to the same builder. Builders combine
// successive conditions conjunctively, so the result requires all of them.
type And []Predicate

func (a And) Apply(b Builder) Builder {
	for _, p := range a {
		b = p.Apply(b)
	}
	return b
}

// RelationFilter requires the named related collection to contain at least
// one member satisfying every sub-condition.
type RelationFilter struct {
	relation   string
	conditions And
}

// Relation returns the relation name, the raw filter key.
func (r *RelationFilter) Relation() string { return r.relation }

// Conditions returns the compiled sub-predicates combined by AND.
func (r *RelationFilter) Conditions() []Predicate {
	out := make([]Predicate, len(r.conditions))
	copy(out, r.conditions)
	return out
}

func (r *RelationFilter) Apply(b Builder) Builder {
	return b.ExistsInRelation(r.relation, r.conditions.Apply)
}
