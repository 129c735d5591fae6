package sqlbuilder

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/fector/harvest/internal/filter"
	"github.com/fector/harvest/internal/types"
	"github.com/jmoiron/sqlx"
)

func testSchema(t *testing.T) *Schema {
	t.Helper()
	s, err := NewSchema(
		types.Relation{Parent: "customers", Name: "orders", Table: "orders", ForeignKey: "customer_id"},
		types.Relation{Parent: "orders", Name: "items", Table: "order_items", ForeignKey: "order_id"},
	)
	if err != nil {
		t.Fatalf("NewSchema() error = %v", err)
	}
	return s
}

func build(t *testing.T, spec map[string]any, opts ...Option) (string, []any) {
	t.Helper()
	p, err := filter.CompileAll(spec)
	if err != nil {
		t.Fatalf("CompileAll() error = %v", err)
	}
	sql, args, err := Build("customers", testSchema(t), p, opts...)
	if err != nil {
		t.Fatalf("Build() error = %v, want nil", err)
	}
	return sql, args
}

func TestBuild(t *testing.T) {
	const sel = `SELECT "customers".* FROM "customers"`

	tests := []struct {
		name     string
		spec     map[string]any
		wantSQL  string
		wantArgs []any
	}{
		{
			name:    "no filters",
			spec:    nil,
			wantSQL: sel,
		},
		{
			name:     "equality",
			spec:     map[string]any{"age": 30},
			wantSQL:  sel + ` WHERE "customers"."age" = ?`,
			wantArgs: []any{30},
		},
		{
			name:    "nil equality is null test",
			spec:    map[string]any{"age": nil},
			wantSQL: sel + ` WHERE "customers"."age" IS NULL`,
		},
		{
			name:     "in set",
			spec:     map[string]any{"age": map[string]any{"in": []any{1, 2, 3}}},
			wantSQL:  sel + ` WHERE "customers"."age" IN (?, ?, ?)`,
			wantArgs: []any{1, 2, 3},
		},
		{
			name:    "empty in set matches nothing",
			spec:    map[string]any{"age": map[string]any{"in": []any{}}},
			wantSQL: sel + ` WHERE 1 = 0`,
		},
		{
			name:     "not in set",
			spec:     map[string]any{"age": map[string]any{"not_in": []any{4}}},
			wantSQL:  sel + ` WHERE "customers"."age" NOT IN (?)`,
			wantArgs: []any{4},
		},
		{
			name:    "empty not in set excludes nothing",
			spec:    map[string]any{"age": map[string]any{"not_in": []any{}}},
			wantSQL: sel,
		},
		{
			name:    "is not null",
			spec:    map[string]any{"deleted_at": map[string]any{"is_not": nil}},
			wantSQL: sel + ` WHERE "customers"."deleted_at" IS NOT NULL`,
		},
		{
			name:     "contains pattern folds the column",
			spec:     map[string]any{"name": map[string]any{"like": "Ann"}},
			wantSQL:  sel + ` WHERE LOWER("customers"."name") LIKE ?`,
			wantArgs: []any{"%ann%"},
		},
		{
			name: "dotted path becomes exists over the relation",
			spec: map[string]any{"orders.status": map[string]any{"in": []any{"paid"}}},
			wantSQL: sel + ` WHERE EXISTS (SELECT 1 FROM "orders" WHERE "orders"."customer_id" = "customers"."id"` +
				` AND "orders"."status" IN (?))`,
			wantArgs: []any{"paid"},
		},
		{
			name: "nested relation filter is one exists",
			spec: map[string]any{"orders": map[string]any{
				"status": "paid",
				"total":  map[string]any{"in": []any{10, 20}},
			}},
			wantSQL: sel + ` WHERE EXISTS (SELECT 1 FROM "orders" WHERE "orders"."customer_id" = "customers"."id"` +
				` AND "orders"."status" = ? AND "orders"."total" IN (?, ?))`,
			wantArgs: []any{"paid", 10, 20},
		},
		{
			name: "dotted relation chain nests exists",
			spec: map[string]any{"orders.items.sku": map[string]any{"like_right": "AB"}},
			wantSQL: sel + ` WHERE EXISTS (SELECT 1 FROM "orders" WHERE "orders"."customer_id" = "customers"."id"` +
				` AND EXISTS (SELECT 1 FROM "order_items" WHERE "order_items"."order_id" = "orders"."id"` +
				` AND LOWER("order_items"."sku") LIKE ?))`,
			wantArgs: []any{"ab%"},
		},
		{
			name: "conditions and together",
			spec: map[string]any{"age": 30, "name": map[string]any{"like_left": "son"}},
			wantSQL: sel + ` WHERE "customers"."age" = ?` +
				` AND LOWER("customers"."name") LIKE ?`,
			wantArgs: []any{30, "%son"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args := build(t, tt.spec)
			if sql != tt.wantSQL {
				t.Errorf("sql =\n  %s\nwant\n  %s", sql, tt.wantSQL)
			}
			if len(args) != 0 || len(tt.wantArgs) != 0 {
				if !reflect.DeepEqual(args, tt.wantArgs) {
					t.Errorf("args = %#v, want %#v", args, tt.wantArgs)
				}
			}
		})
	}
}

func TestBuild_NoInterpolation(t *testing.T) {
	dangerous := "'; DROP TABLE customers; --"
	sql, args := build(t, map[string]any{"name": dangerous})

	if strings.Contains(sql, dangerous) {
		t.Errorf("value interpolated into sql: %s", sql)
	}
	if !reflect.DeepEqual(args, []any{dangerous}) {
		t.Errorf("args = %#v, want the value bound", args)
	}
}

func TestBuild_QuotesIdentifiers(t *testing.T) {
	sql, _ := build(t, map[string]any{`we"ird`: 1})
	if !strings.Contains(sql, `"customers"."we""ird" = ?`) {
		t.Errorf("sql = %s, want escaped identifier", sql)
	}
}

func TestBuild_Options(t *testing.T) {
	sql, _ := build(t, map[string]any{
		"age":           map[string]any{"in": []any{1, 2}},
		"orders.status": "paid",
	}, WithBindType(sqlx.DOLLAR), WithOrderBy("id"), WithLimit(10))

	want := `SELECT "customers".* FROM "customers" WHERE "customers"."age" IN ($1, $2)` +
		` AND EXISTS (SELECT 1 FROM "orders" WHERE "orders"."customer_id" = "customers"."id" AND "orders"."status" = $3)` +
		` ORDER BY "customers"."id" ASC LIMIT 10`
	if sql != want {
		t.Errorf("sql =\n  %s\nwant\n  %s", sql, want)
	}
}

func TestBuild_PlaceholderInIdentifier(t *testing.T) {
	sql, args := build(t, map[string]any{
		"a?b":        1,
		"orders.c?d": map[string]any{"in": []any{2, 3}},
		"name":       map[string]any{"like": "x"},
	}, WithBindType(sqlx.DOLLAR))

	want := `SELECT "customers".* FROM "customers" WHERE "customers"."a?b" = $1` +
		` AND LOWER("customers"."name") LIKE $2` +
		` AND EXISTS (SELECT 1 FROM "orders" WHERE "orders"."customer_id" = "customers"."id" AND "orders"."c?d" IN ($3, $4))`
	if sql != want {
		t.Errorf("sql =\n  %s\nwant\n  %s", sql, want)
	}
	if !reflect.DeepEqual(args, []any{1, "%x%", 2, 3}) {
		t.Errorf("args = %#v, want [1 %%x%% 2 3]", args)
	}

	where, _, err := New("t", nil, WithBindType(sqlx.DOLLAR)).
		Where(filter.Column{Table: "t", Name: "q?"}, "=", 1).(*SelectBuilder).WhereSQL()
	if err != nil {
		t.Fatalf("WhereSQL() error = %v", err)
	}
	if want := `"t"."q?" = $1`; where != want {
		t.Errorf("WhereSQL() = %s, want %s", where, want)
	}
}

func TestBuild_UnknownRelation(t *testing.T) {
	p, err := filter.Compile(map[string]any{"invoices.total": 5})
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	_, _, err = Build("customers", testSchema(t), p)
	if !errors.Is(err, types.ErrUnknownRelation) {
		t.Errorf("Build() error = %v, want ErrUnknownRelation", err)
	}

	// the failure surfaces from a nested chain as well
	p, _ = filter.Compile(map[string]any{"orders.payments.total": 5})
	_, _, err = Build("customers", testSchema(t), p)
	if !errors.Is(err, types.ErrUnknownRelation) {
		t.Errorf("Build() nested error = %v, want ErrUnknownRelation", err)
	}
}

func TestSelectBuilder_Where(t *testing.T) {
	col := filter.Column{Table: "t", Name: "n"}

	b := New("t", nil)
	b.Where(col, ">=", 3).Where(col, "!=", nil)
	where, args, err := b.WhereSQL()
	if err != nil {
		t.Fatalf("WhereSQL() error = %v", err)
	}
	if want := `"t"."n" >= ? AND "t"."n" IS NOT NULL`; where != want {
		t.Errorf("WhereSQL() = %s, want %s", where, want)
	}
	if !reflect.DeepEqual(args, []any{3}) {
		t.Errorf("args = %#v, want [3]", args)
	}

	b = New("t", nil)
	b.Where(col, "; DELETE", 1)
	if _, _, err := b.WhereSQL(); !errors.Is(err, types.ErrUnsupportedOperator) {
		t.Errorf("WhereSQL() error = %v, want ErrUnsupportedOperator", err)
	}

	if where, _, _ := New("t", nil).WhereSQL(); where != "1 = 1" {
		t.Errorf("empty WhereSQL() = %s, want 1 = 1", where)
	}
	if _, _, err := New("", nil).ToSQL(); !errors.Is(err, types.ErrEmptyTable) {
		t.Errorf("ToSQL() error = %v, want ErrEmptyTable", err)
	}
}

func TestSchema(t *testing.T) {
	s := testSchema(t)

	rel, ok := s.Lookup("customers", "orders")
	if !ok {
		t.Fatal("Lookup(customers, orders) not found")
	}
	if rel.LocalKey != "id" {
		t.Errorf("LocalKey = %q, want default id", rel.LocalKey)
	}

	if _, ok := s.Lookup("orders", "orders"); ok {
		t.Error("Lookup(orders, orders) found, want missing")
	}

	err := s.Add(types.Relation{Parent: "customers", Name: "orders", Table: "x"})
	if !errors.Is(err, types.ErrRelationExists) {
		t.Errorf("Add() duplicate error = %v, want ErrRelationExists", err)
	}
	if err := s.Add(types.Relation{Name: "x"}); !errors.Is(err, types.ErrEmptyTable) {
		t.Errorf("Add() empty error = %v, want ErrEmptyTable", err)
	}

	if err := s.Add(types.Relation{Parent: "tags", Name: "owner", Table: "customers"}); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	rel, _ = s.Lookup("tags", "owner")
	if rel.ForeignKey != "tags_id" {
		t.Errorf("ForeignKey = %q, want default tags_id", rel.ForeignKey)
	}

	got := s.Relations()
	if len(got) != 3 || got[0].Parent != "customers" || got[2].Parent != "tags" {
		t.Errorf("Relations() = %v, want sorted by parent", got)
	}

	var nilSchema *Schema
	if _, ok := nilSchema.Lookup("a", "b"); ok {
		t.Error("nil schema Lookup found a relation")
	}
}
