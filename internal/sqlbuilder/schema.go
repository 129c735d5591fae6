// Package sqlbuilder renders compiled filters as parameterized SQL.
//
// SelectBuilder implements filter.Builder. Relations named by filters are
// resolved through a Schema, which maps (parent table, relation name) to the
// related table and the key pair joining them.
package sqlbuilder

import (
	"fmt"
	"sort"

	"github.com/fector/harvest/internal/types"
)

// Schema is a registry of navigable relations. Safe for concurrent reads once
// populated; Add must not race with builders using the schema.
type Schema struct {
	relations map[string]map[string]types.Relation
}

// NewSchema builds a schema from relation definitions.
func NewSchema(relations ...types.Relation) (*Schema, error) {
	s := &Schema{relations: make(map[string]map[string]types.Relation)}
	for _, rel := range relations {
		if err := s.Add(rel); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Add registers a relation. LocalKey defaults to "id" and ForeignKey to
// "<parent>_id" when empty.
func (s *Schema) Add(rel types.Relation) error {
	if rel.Parent == "" || rel.Table == "" {
		return fmt.Errorf("relation %q: %w", rel.Name, types.ErrEmptyTable)
	}
	if rel.Name == "" {
		return fmt.Errorf("relation on %q has no name", rel.Parent)
	}
	if rel.LocalKey == "" {
		rel.LocalKey = "id"
	}
	if rel.ForeignKey == "" {
		rel.ForeignKey = rel.Parent + "_id"
	}

	byName, ok := s.relations[rel.Parent]
	if !ok {
		byName = make(map[string]types.Relation)
		s.relations[rel.Parent] = byName
	}
	if _, exists := byName[rel.Name]; exists {
		return fmt.Errorf("%s.%s: %w", rel.Parent, rel.Name, types.ErrRelationExists)
	}
	byName[rel.Name] = rel
	return nil
}

// Lookup returns the relation called name on the parent table.
func (s *Schema) Lookup(parent, name string) (types.Relation, bool) {
	if s == nil {
		return types.Relation{}, false
	}
	rel, ok := s.relations[parent][name]
	return rel, ok
}

// Relations returns all registered relations ordered by parent and name.
func (s *Schema) Relations() []types.Relation {
	var out []types.Relation
	for _, byName := range s.relations {
		for _, rel := range byName {
			out = append(out, rel)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Parent != out[j].Parent {
			return out[i].Parent < out[j].Parent
		}
		return out[i].Name < out[j].Name
	})
	return out
}
