package db

import (
	"context"
	"fmt"

	"github.com/fector/harvest/internal/filter"
	"github.com/fector/harvest/internal/sqlbuilder"
	"github.com/fector/harvest/internal/types"
	"github.com/jmoiron/sqlx"
)

// Store runs compiled filters against application tables.
type Store struct {
	db     *sqlx.DB
	schema *sqlbuilder.Schema
}

// NewStore creates a store resolving relations through schema.
// A nil schema permits only filters without relations.
func NewStore(db *sqlx.DB, schema *sqlbuilder.Schema) *Store {
	return &Store{db: db, schema: schema}
}

// Find returns rows of table matching p, at most limit rows ordered by id.
// limit <= 0 uses types.DefaultQueryLimit. Byte slices are returned as strings.
func (s *Store) Find(ctx context.Context, table string, p filter.Predicate, limit int) ([]map[string]any, error) {
	if limit <= 0 {
		limit = types.DefaultQueryLimit
	}

	query, args, err := sqlbuilder.Build(table, s.schema, p,
		sqlbuilder.WithBindType(sqlx.BindType(s.db.DriverName())),
		sqlbuilder.WithOrderBy("id"),
		sqlbuilder.WithLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to build query for %s: %w", table, err)
	}

	rows, err := s.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", table, err)
	}
	defer rows.Close()

	var out []map[string]any
	for rows.Next() {
		row := make(map[string]any)
		if err := rows.MapScan(row); err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", table, err)
		}
		for k, v := range row {
			if b, ok := v.([]byte); ok {
				row[k] = string(b)
			}
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
