// Package types provides domain models shared across Harvest components.
//
// Zero-dependency design: types.go and errors.go use only the standard library
// so the filter compiler can be embedded without pulling in storage drivers.
// ID utilities in ids.go import uuid but are isolated for the catalog.
package types

// RelationID represents a UUIDv7 catalog entry identifier.
type RelationID string

// Filter is a declarative filter mapping as authored by a human or an API
// client, e.g. {"orders.status": {"in": ["paid"]}}.
// Values are scalars, slices, or nested Filter / map[string]any bodies.
type Filter map[string]any

// Relation describes a navigable association from a parent table to a
// related table. A row of Table is related to a row of Parent when
// Table.ForeignKey = Parent.LocalKey.
type Relation struct {
	ID         RelationID `db:"relation_id"`
	Parent     string     `db:"parent_table"`
	Name       string     `db:"name"`
	Table      string     `db:"related_table"`
	LocalKey   string     `db:"local_key"`
	ForeignKey string     `db:"foreign_key"`
}

// Limits enforced by the compiler to bound recursion on API-authored input.
const (
	// DefaultMaxDepth caps nested relation filters. Eight levels covers any
	// realistic relation chain while keeping EXISTS nesting readable.
	DefaultMaxDepth = 8

	// DefaultQueryLimit bounds rows returned by Store.Find when no limit is given.
	DefaultQueryLimit = 100
)
