package filter

import (
	"fmt"
	"strings"
)

// recorder is a Builder that logs each capability call as text.
// Relations resolve to tables through the tables map; unmapped relation
// names are used as the table name.
type recorder struct {
	table  string
	tables map[string]string
	calls  []string
}

func newRecorder(table string, tables map[string]string) *recorder {
	return &recorder{table: table, tables: tables}
}

func (r *recorder) log(format string, args ...any) Builder {
	r.calls = append(r.calls, fmt.Sprintf(format, args...))
	return r
}

func (r *recorder) Where(col Column, op string, value any) Builder {
	return r.log("where %s %s %v", col, op, value)
}

func (r *recorder) WhereIn(col Column, values []any) Builder {
	return r.log("in %s %v", col, values)
}

func (r *recorder) WhereNotIn(col Column, values []any) Builder {
	return r.log("not_in %s %v", col, values)
}

func (r *recorder) WhereNull(col Column) Builder {
	return r.log("null %s", col)
}

func (r *recorder) WhereNotNull(col Column) Builder {
	return r.log("not_null %s", col)
}

func (r *recorder) ExistsInRelation(relation string, fn func(Builder) Builder) Builder {
	table, ok := r.tables[relation]
	if !ok {
		table = relation
	}
	sub := newRecorder(table, r.tables)
	fn(sub)
	return r.log("exists %s [%s]", relation, sub)
}

func (r *recorder) Table() string { return r.table }

func (r *recorder) String() string { return strings.Join(r.calls, "; ") }

// render applies p to a fresh recorder over "users" and returns the log.
func render(p Predicate) string {
	r := newRecorder("users", map[string]string{"orders": "order_rows"})
	p.Apply(r)
	return r.String()
}
