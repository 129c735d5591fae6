package types

import "errors"

// Sentinel errors for Harvest operations.
var (
	// ErrInvalidFilterSpec indicates a filter mapping that cannot be compiled:
	// wrong key count, or an unrecognized body shape in strict mode.
	ErrInvalidFilterSpec = errors.New("invalid filter spec")

	// ErrFilterTooDeep indicates nested relation filters exceed the depth limit.
	ErrFilterTooDeep = errors.New("filter nesting exceeds maximum depth")

	// ErrUnknownRelation indicates a relation name with no catalog entry for the table.
	ErrUnknownRelation = errors.New("unknown relation")

	// ErrRelationExists indicates a relation is already registered for the table.
	ErrRelationExists = errors.New("relation already registered")

	// ErrUnsupportedOperator indicates a comparison operator the SQL builder does not render.
	ErrUnsupportedOperator = errors.New("unsupported operator")

	// ErrEmptyTable indicates a builder or relation was given no table name.
	ErrEmptyTable = errors.New("table name is empty")
)
