package sqlbuilder

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fector/harvest/internal/filter"
	"github.com/fector/harvest/internal/types"
	"github.com/jmoiron/sqlx"
)

// SelectBuilder accumulates filter conditions for one table and renders them
// as parameterized SQL. Conditions combine with AND.
//
// CRITICAL: values are never interpolated into SQL, only bound as arguments.
// Identifiers are double-quoted. Placeholders are emitted in the driver's
// bindvar style as conditions are added, so identifier text is never rebound.
//
// Builder methods cannot return errors, so the first failure (an unknown
// relation, an unsupported operator) is kept and reported by WhereSQL/ToSQL.
type SelectBuilder struct {
	table    string
	schema   *Schema
	bindType int
	limit    int
	orderBy  []string

	conds []string
	args  []any
	argc  *int // shared with EXISTS sub-builders so numbering is global
	err   error
}

// Option configures a SelectBuilder.
type Option func(*SelectBuilder)

// WithBindType sets the bindvar style (sqlx.QUESTION, sqlx.DOLLAR, ...).
// Use sqlx.BindType(driverName) to derive it from a connection.
func WithBindType(bindType int) Option {
	return func(b *SelectBuilder) { b.bindType = bindType }
}

// WithLimit caps the rows selected by ToSQL. Zero means no limit.
func WithLimit(limit int) Option {
	return func(b *SelectBuilder) { b.limit = limit }
}

// WithOrderBy orders ToSQL results by the given columns of the table, ascending.
func WithOrderBy(columns ...string) Option {
	return func(b *SelectBuilder) { b.orderBy = columns }
}

// New creates a builder selecting from table.
func New(table string, schema *Schema, opts ...Option) *SelectBuilder {
	b := &SelectBuilder{
		table:    table,
		schema:   schema,
		bindType: sqlx.QUESTION,
		argc:     new(int),
	}
	for _, opt := range opts {
		opt(b)
	}
	if table == "" {
		b.err = types.ErrEmptyTable
	}
	return b
}

var _ filter.Builder = (*SelectBuilder)(nil)

// comparison operators Where renders
var operators = map[string]string{
	"=":           "=",
	"!=":          "<>",
	"<>":          "<>",
	"<":           "<",
	"<=":          "<=",
	">":           ">",
	">=":          ">=",
	filter.OpLike: "LIKE",
}

func (b *SelectBuilder) add(cond string, args ...any) filter.Builder {
	b.conds = append(b.conds, cond)
	b.args = append(b.args, args...)
	return b
}

func (b *SelectBuilder) fail(err error) filter.Builder {
	if b.err == nil {
		b.err = err
	}
	return b
}

// Where adds "col op ?". A nil value with = or != renders IS [NOT] NULL.
func (b *SelectBuilder) Where(col filter.Column, op string, value any) filter.Builder {
	sqlOp, ok := operators[strings.ToLower(op)]
	if !ok {
		return b.fail(fmt.Errorf("%w: %q", types.ErrUnsupportedOperator, op))
	}
	if value == nil {
		switch sqlOp {
		case "=":
			return b.WhereNull(col)
		case "<>":
			return b.WhereNotNull(col)
		}
	}
	return b.add(fmt.Sprintf("%s %s %s", renderColumn(col), sqlOp, b.placeholders(1)), value)
}

// WhereIn adds "col IN (...)". An empty set matches nothing.
func (b *SelectBuilder) WhereIn(col filter.Column, values []any) filter.Builder {
	if len(values) == 0 {
		return b.add("1 = 0")
	}
	return b.add(fmt.Sprintf("%s IN (%s)", renderColumn(col), b.placeholders(len(values))), values...)
}

// WhereNotIn adds "col NOT IN (...)". An empty set excludes nothing.
func (b *SelectBuilder) WhereNotIn(col filter.Column, values []any) filter.Builder {
	if len(values) == 0 {
		return b
	}
	return b.add(fmt.Sprintf("%s NOT IN (%s)", renderColumn(col), b.placeholders(len(values))), values...)
}

func (b *SelectBuilder) WhereNull(col filter.Column) filter.Builder {
	return b.add(renderColumn(col) + " IS NULL")
}

func (b *SelectBuilder) WhereNotNull(col filter.Column) filter.Builder {
	return b.add(renderColumn(col) + " IS NOT NULL")
}

// ExistsInRelation adds an EXISTS subquery over the related table, correlated
// on the relation's keys. Dotted names ("orders.items") nest one EXISTS per
// segment, each resolved against the previous segment's table.
func (b *SelectBuilder) ExistsInRelation(relation string, fn func(filter.Builder) filter.Builder) filter.Builder {
	if b.err != nil {
		return b
	}

	name, rest, nested := strings.Cut(relation, ".")
	rel, ok := b.schema.Lookup(b.table, name)
	if !ok {
		return b.fail(fmt.Errorf("%w: %s.%s", types.ErrUnknownRelation, b.table, name))
	}

	sub := &SelectBuilder{table: rel.Table, schema: b.schema, bindType: b.bindType, argc: b.argc}
	if nested {
		sub.ExistsInRelation(rest, fn)
	} else if res, ok := fn(sub).(*SelectBuilder); ok {
		sub = res
	}
	if sub.err != nil {
		return b.fail(sub.err)
	}

	join := fmt.Sprintf("%s = %s",
		renderColumn(filter.Column{Table: rel.Table, Name: rel.ForeignKey}),
		renderColumn(filter.Column{Table: b.table, Name: rel.LocalKey}))
	where := strings.Join(append([]string{join}, sub.conds...), " AND ")

	return b.add(fmt.Sprintf("EXISTS (SELECT 1 FROM %s WHERE %s)", quoteIdent(rel.Table), where), sub.args...)
}

// Table returns the table bare fields are qualified with.
func (b *SelectBuilder) Table() string { return b.table }

// Err returns the first error recorded while building.
func (b *SelectBuilder) Err() error { return b.err }

// WhereSQL returns the AND-ed condition list and its arguments in the
// builder's bindvar style. An empty builder renders "1 = 1".
func (b *SelectBuilder) WhereSQL() (string, []any, error) {
	if b.err != nil {
		return "", nil, b.err
	}
	if len(b.conds) == 0 {
		return "1 = 1", nil, nil
	}
	return strings.Join(b.conds, " AND "), b.args, nil
}

// ToSQL renders the full SELECT statement.
func (b *SelectBuilder) ToSQL() (string, []any, error) {
	if b.err != nil {
		return "", nil, b.err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "SELECT %s.* FROM %s", quoteIdent(b.table), quoteIdent(b.table))
	if len(b.conds) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(b.conds, " AND "))
	}
	if len(b.orderBy) > 0 {
		cols := make([]string, len(b.orderBy))
		for i, c := range b.orderBy {
			cols[i] = renderColumn(filter.Column{Table: b.table, Name: c}) + " ASC"
		}
		sb.WriteString(" ORDER BY ")
		sb.WriteString(strings.Join(cols, ", "))
	}
	if b.limit > 0 {
		fmt.Fprintf(&sb, " LIMIT %d", b.limit)
	}

	return sb.String(), b.args, nil
}

// Build applies p to a new builder over table and renders it with ToSQL.
func Build(table string, schema *Schema, p filter.Predicate, opts ...Option) (string, []any, error) {
	b := New(table, schema, opts...)
	if res, ok := p.Apply(b).(*SelectBuilder); ok {
		b = res
	}
	return b.ToSQL()
}

func renderColumn(col filter.Column) string {
	ref := quoteIdent(col.Name)
	if col.Table != "" {
		ref = quoteIdent(col.Table) + "." + ref
	}
	if col.Fold {
		return "LOWER(" + ref + ")"
	}
	return ref
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// placeholders reserves the next n argument positions and renders them in the
// bindvar style sqlx.Rebind would produce.
func (b *SelectBuilder) placeholders(n int) string {
	marks := make([]string, n)
	for i := range marks {
		*b.argc++
		switch b.bindType {
		case sqlx.DOLLAR:
			marks[i] = "$" + strconv.Itoa(*b.argc)
		case sqlx.NAMED:
			marks[i] = ":arg" + strconv.Itoa(*b.argc)
		case sqlx.AT:
			marks[i] = "@p" + strconv.Itoa(*b.argc)
		default:
			marks[i] = "?"
		}
	}
	return strings.Join(marks, ", ")
}
