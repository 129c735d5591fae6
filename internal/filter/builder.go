package filter

// Builder is the query-building capability set a compiled predicate targets.
//
// Implementations accumulate conditions and return themselves (or a derived
// builder) so calls chain. A Builder is used from a single goroutine.
type Builder interface {
	// Where adds a comparison or pattern condition.
	Where(col Column, op string, value any) Builder
	WhereIn(col Column, values []any) Builder
	WhereNotIn(col Column, values []any) Builder
	WhereNull(col Column) Builder
	WhereNotNull(col Column) Builder

	// ExistsInRelation requires at least one row of the named relation to
	// satisfy the conditions fn adds to the relation-scoped builder it is given.
	ExistsInRelation(relation string, fn func(Builder) Builder) Builder

	// Table returns the storage name bare fields are qualified with.
	Table() string
}

// Column is a fully-qualified column reference.
// Fold requests case folding of the column before comparison.
type Column struct {
	Table string
	Name  string
	Fold  bool
}

// String renders the column for diagnostics, e.g. "LOWER(orders.status)".
func (c Column) String() string {
	ref := c.Name
	if c.Table != "" {
		ref = c.Table + "." + c.Name
	}
	if c.Fold {
		return "LOWER(" + ref + ")"
	}
	return ref
}
