// internal/filter/compile.go
package filter

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/fector/harvest/internal/types"
)

/*
 * Filter compilation.
 *
 * Compiles a single-key mapping {path: body} into a Predicate.
 *
 * Classification (one pass per node):
 *   1. scalar body                         -> Equal(body)
 *   2. mapping with a recognized key       -> first match in priority order
 *      in, not_in, is, is_not, like, like_left, like_right
 *   3. mapping without any recognized key  -> RelationFilter: path names a
 *      relation, every sub-key is compiled recursively and ANDed
 *   4. anything else                       -> Unknown (no-op, or an error
 *      in strict mode)
 *
 * Priority, not key order, resolves bodies carrying several operator keys:
 * {"in": [...], "is": null} is always InSet. Non-operator keys next to an
 * operator key are ignored.
 *
 * Sub-keys of a relation filter are compiled in sorted order so the rendered
 * query is stable across runs; AND makes the order irrelevant to the result.
 */

// Option configures compilation.
type Option func(*options)

type options struct {
	strict   bool
	maxDepth int
	logger   *slog.Logger
}

// WithStrict makes unrecognized body shapes fail with ErrInvalidFilterSpec
// instead of compiling to a no-op.
func WithStrict(strict bool) Option {
	return func(o *options) { o.strict = strict }
}

// WithMaxDepth bounds relation filter nesting. Values < 1 are ignored.
func WithMaxDepth(depth int) Option {
	return func(o *options) {
		if depth > 0 {
			o.maxDepth = depth
		}
	}
}

// WithLogger sets the logger used to report ignored filter shapes.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

func newOptions(opts []Option) *options {
	o := &options{maxDepth: types.DefaultMaxDepth}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Compile compiles a filter mapping with exactly one key.
func Compile(spec map[string]any, opts ...Option) (Predicate, error) {
	if len(spec) != 1 {
		return nil, fmt.Errorf("%w: expected exactly one key, got %d", types.ErrInvalidFilterSpec, len(spec))
	}
	var path string
	var body any
	for path, body = range spec {
	}
	return newOptions(opts).compile(path, body, 1)
}

// CompileAll compiles every key of filters and combines the results with And.
// An empty mapping compiles to an empty And, which adds nothing.
func CompileAll(filters map[string]any, opts ...Option) (Predicate, error) {
	preds, err := newOptions(opts).compileEach(filters, 1)
	if err != nil {
		return nil, err
	}
	return preds, nil
}

func (o *options) compileEach(filters map[string]any, depth int) (And, error) {
	keys := make([]string, 0, len(filters))
	for k := range filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	preds := make(And, 0, len(keys))
	for _, k := range keys {
		p, err := o.compile(k, filters[k], depth)
		if err != nil {
			return nil, err
		}
		preds = append(preds, p)
	}
	return preds, nil
}

// compile classifies one {path: body} node.
func (o *options) compile(path string, body any, depth int) (Predicate, error) {
	if depth > o.maxDepth {
		return nil, fmt.Errorf("%w: %q at depth %d (max %d)", types.ErrFilterTooDeep, path, depth, o.maxDepth)
	}

	if isScalar(body) {
		return newCondition(path, KindEqual, body), nil
	}

	m, ok := asMapping(body)
	if !ok {
		return o.unknown(path, body, "body is neither a scalar nor a mapping")
	}

	kind, operand, found := resolveOperator(m)
	if !found {
		subs, err := o.compileEach(m, depth+1)
		if err != nil {
			return nil, err
		}
		return &RelationFilter{relation: path, conditions: subs}, nil
	}
	return o.leaf(path, body, kind, operand)
}

// Classify compiles a single leaf without building a predicate tree, for
// inspecting how a body is interpreted. Relation filter bodies are rejected
// with ErrInvalidFilterSpec since they have no leaf form.
func Classify(path string, body any, opts ...Option) (Condition, error) {
	o := newOptions(opts)
	var (
		p   Predicate
		err error
	)
	if m, ok := asMapping(body); ok {
		kind, operand, found := resolveOperator(m)
		if !found {
			return Condition{}, fmt.Errorf("%w: %q is a relation filter", types.ErrInvalidFilterSpec, path)
		}
		p, err = o.leaf(path, body, kind, operand)
	} else {
		p, err = o.compile(path, body, 1)
	}
	if err != nil {
		return Condition{}, err
	}
	return p.(Condition), nil
}

// leaf builds the condition for an operator-keyed body.
func (o *options) leaf(path string, body any, kind Kind, operand any) (Predicate, error) {
	switch {
	case kind == KindInSet || kind == KindNotInSet:
		set, ok := toSet(operand)
		if !ok {
			return o.unknown(path, body, "set operand is not a list")
		}
		return newCondition(path, kind, set), nil
	case kind.IsPattern():
		s, ok := toPatternOperand(operand)
		if !ok {
			return o.unknown(path, body, "pattern operand is not a string")
		}
		return newCondition(path, kind, s), nil
	default:
		return newCondition(path, kind, nil), nil
	}
}

// resolveOperator scans operator keys in priority order.
func resolveOperator(body map[string]any) (Kind, any, bool) {
	for _, op := range operatorKeys {
		if v, ok := body[op.key]; ok {
			return op.kind, v, true
		}
	}
	return KindUnknown, nil, false
}

func (o *options) unknown(path string, body any, reason string) (Predicate, error) {
	if o.strict {
		return nil, fmt.Errorf("%w: %q: %s (%T)", types.ErrInvalidFilterSpec, path, reason, body)
	}
	if o.logger != nil {
		o.logger.Debug("ignoring unrecognized filter",
			"path", path,
			"reason", reason,
			"type", fmt.Sprintf("%T", body))
	}
	return newCondition(path, KindUnknown, nil), nil
}
