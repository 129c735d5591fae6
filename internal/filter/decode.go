package filter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"

	"github.com/fector/harvest/internal/types"
	"google.golang.org/protobuf/types/known/structpb"
	"gopkg.in/yaml.v3"
)

// FromJSON decodes a JSON object into a filter mapping. Anything but
// whitespace after the object is rejected.
// Integral numbers decode as int64, others as float64.
func FromJSON(data []byte) (types.Filter, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("%w: decode json: %v", types.ErrInvalidFilterSpec, err)
	}
	if m == nil {
		return nil, fmt.Errorf("%w: json filter must be an object", types.ErrInvalidFilterSpec)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("%w: unexpected data after json object", types.ErrInvalidFilterSpec)
	}
	return types.Filter(normalizeNumbers(m).(map[string]any)), nil
}

// FromYAML decodes a YAML mapping into a filter mapping.
func FromYAML(data []byte) (types.Filter, error) {
	var m map[string]any
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: decode yaml: %v", types.ErrInvalidFilterSpec, err)
	}
	if m == nil {
		return nil, fmt.Errorf("%w: yaml filter must be a mapping", types.ErrInvalidFilterSpec)
	}
	return types.Filter(m), nil
}

// FromStruct converts a protobuf Struct, the usual carrier for free-form
// filters in gRPC requests, into a filter mapping. Struct numbers are all
// doubles; integral ones are narrowed to int64.
func FromStruct(s *structpb.Struct) (types.Filter, error) {
	if s == nil {
		return nil, fmt.Errorf("%w: nil struct", types.ErrInvalidFilterSpec)
	}
	return types.Filter(normalizeNumbers(s.AsMap()).(map[string]any)), nil
}

// normalizeNumbers walks decoded values replacing json.Number and integral
// float64 values with int64.
func normalizeNumbers(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, e := range t {
			t[k] = normalizeNumbers(e)
		}
		return t
	case []any:
		for i, e := range t {
			t[i] = normalizeNumbers(e)
		}
		return t
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return n
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	case float64:
		if t == math.Trunc(t) && math.Abs(t) < 1<<53 {
			return int64(t)
		}
		return t
	default:
		return v
	}
}
