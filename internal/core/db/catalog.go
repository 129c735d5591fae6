package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fector/harvest/internal/sqlbuilder"
	"github.com/fector/harvest/internal/types"
)

// Catalog persists the relations nested filters may navigate.
type Catalog struct {
	queries *Queries
}

// NewCatalog wraps loaded queries. The catalog tables must already be migrated.
func NewCatalog(queries *Queries) *Catalog {
	return &Catalog{queries: queries}
}

// AddRelation registers rel and returns it with its generated ID and key defaults.
func (c *Catalog) AddRelation(ctx context.Context, rel types.Relation) (types.Relation, error) {
	if rel.Parent == "" || rel.Table == "" || rel.Name == "" {
		return types.Relation{}, fmt.Errorf("%w: parent, name and table are required", types.ErrEmptyTable)
	}
	if rel.LocalKey == "" {
		rel.LocalKey = "id"
	}
	if rel.ForeignKey == "" {
		rel.ForeignKey = rel.Parent + "_id"
	}

	_, err := c.GetRelation(ctx, rel.Parent, rel.Name)
	switch {
	case err == nil:
		return types.Relation{}, fmt.Errorf("%w: %s.%s", types.ErrRelationExists, rel.Parent, rel.Name)
	case !errors.Is(err, types.ErrUnknownRelation):
		return types.Relation{}, err
	}

	rel.ID = types.NewRelationID()
	_, err = c.queries.Exec(ctx, "insert-relation",
		rel.ID, rel.Parent, rel.Name, rel.Table, rel.LocalKey, rel.ForeignKey)
	if err != nil {
		return types.Relation{}, fmt.Errorf("failed to insert relation %s.%s: %w", rel.Parent, rel.Name, err)
	}
	return rel, nil
}

// GetRelation returns the relation registered as parent.name.
func (c *Catalog) GetRelation(ctx context.Context, parent, name string) (types.Relation, error) {
	var rel types.Relation
	err := c.queries.Get(ctx, "get-relation", &rel, parent, name)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Relation{}, fmt.Errorf("%w: %s.%s", types.ErrUnknownRelation, parent, name)
	}
	if err != nil {
		return types.Relation{}, fmt.Errorf("failed to get relation %s.%s: %w", parent, name, err)
	}
	return rel, nil
}

// RemoveRelation deletes parent.name. Missing relations report ErrUnknownRelation.
func (c *Catalog) RemoveRelation(ctx context.Context, parent, name string) error {
	res, err := c.queries.Exec(ctx, "delete-relation", parent, name)
	if err != nil {
		return fmt.Errorf("failed to delete relation %s.%s: %w", parent, name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s.%s", types.ErrUnknownRelation, parent, name)
	}
	return nil
}

// ListRelations returns every relation ordered by parent table and name.
func (c *Catalog) ListRelations(ctx context.Context) ([]types.Relation, error) {
	var rels []types.Relation
	if err := c.queries.Select(ctx, "list-relations", &rels); err != nil {
		return nil, fmt.Errorf("failed to list relations: %w", err)
	}
	return rels, nil
}

// LoadSchema reads the whole catalog into a schema for the SQL builder.
func (c *Catalog) LoadSchema(ctx context.Context) (*sqlbuilder.Schema, error) {
	rels, err := c.ListRelations(ctx)
	if err != nil {
		return nil, err
	}
	return sqlbuilder.NewSchema(rels...)
}
