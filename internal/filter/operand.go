// internal/filter/operand.go
package filter

import (
	"encoding/json"
	"reflect"
	"time"

	"github.com/fector/harvest/internal/types"
	"github.com/spf13/cast"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

/*
 * Body and operand shape detection.
 *
 * Filter mappings arrive from JSON, YAML, protobuf Struct values or Go
 * literals, so the same logical shape shows up as different Go types:
 * map[string]any vs types.Filter, []any vs []string, float64 vs json.Number.
 * These helpers fold them into the three shapes the compiler reasons about:
 *
 *   - scalar:  nil, bool, string, numbers, json.Number, time.Time
 *   - mapping: any map keyed by strings
 *   - other:   slices, structs, pointers, funcs... (Unknown kind)
 *
 * Operands are normalized per kind: set kinds take []any, pattern kinds take
 * a case-folded string. An operand that cannot be normalized makes the whole
 * condition Unknown.
 */

// isScalar reports whether body compiles to an equality test.
func isScalar(body any) bool {
	if body == nil {
		return true
	}
	switch body.(type) {
	case json.Number, time.Time:
		return true
	}

	switch reflect.ValueOf(body).Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}

// asMapping returns body as a string-keyed mapping, if it is one.
func asMapping(body any) (map[string]any, bool) {
	switch m := body.(type) {
	case map[string]any:
		return m, true
	case types.Filter:
		return map[string]any(m), true
	case nil:
		return nil, false
	}

	rv := reflect.ValueOf(body)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Interface()
	}
	return out, true
}

// toSet normalizes an in/not_in operand to []any.
// A lone scalar is a one-element set; nil is the empty set.
func toSet(v any) ([]any, bool) {
	switch s := v.(type) {
	case nil:
		return []any{}, true
	case []any:
		out := make([]any, len(s))
		copy(out, s)
		return out, true
	}
	if isScalar(v) {
		return []any{v}, true
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

// toPatternOperand coerces a like* operand to a case-folded string.
func toPatternOperand(v any) (string, bool) {
	if v == nil {
		return "", false
	}
	if !isScalar(v) {
		return "", false
	}
	// named string types (json.Number, enums) are not known to cast
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.String {
		return fold(rv.String()), true
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return "", false
	}
	return fold(s), true
}

// fold lower-cases s with Unicode-aware rules. A Caser is stateful, so one is
// created per call rather than shared.
func fold(s string) string {
	return cases.Lower(language.Und).String(s)
}
