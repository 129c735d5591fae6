package filter

import (
	"errors"
	"reflect"
	"testing"

	"github.com/fector/harvest/internal/types"
	"google.golang.org/protobuf/types/known/structpb"
)

func TestFromJSON(t *testing.T) {
	f, err := FromJSON([]byte(`{"orders": {"total": {"in": [10, 20.5]}, "status": "paid"}}`))
	if err != nil {
		t.Fatalf("FromJSON() error = %v, want nil", err)
	}

	want := types.Filter{"orders": map[string]any{
		"total":  map[string]any{"in": []any{int64(10), 20.5}},
		"status": "paid",
	}}
	if !reflect.DeepEqual(f, want) {
		t.Errorf("FromJSON() = %#v, want %#v", f, want)
	}

	want2 := "exists orders [where order_rows.status = paid; in order_rows.total [10 20.5]]"
	if got := render(mustCompile(t, f)); got != want2 {
		t.Errorf("render() = %q, want %q", got, want2)
	}
}

func TestFromJSON_Invalid(t *testing.T) {
	for _, in := range []string{`[1, 2]`, `null`, `{"a":`, ``, `{"a":1}{"b":2}`, `{"a":1} x`, `{"a":1}]`} {
		_, err := FromJSON([]byte(in))
		if !errors.Is(err, types.ErrInvalidFilterSpec) {
			t.Errorf("FromJSON(%q) error = %v, want ErrInvalidFilterSpec", in, err)
		}
	}
}

func TestFromJSON_TrailingWhitespace(t *testing.T) {
	f, err := FromJSON([]byte("{\"a\": 1}\n\t "))
	if err != nil {
		t.Fatalf("FromJSON() error = %v, want nil", err)
	}
	if f["a"] != int64(1) {
		t.Errorf("FromJSON() = %#v, want a=1", f)
	}
}

func TestFromYAML(t *testing.T) {
	doc := `
name:
  like: Ann
`
	f, err := FromYAML([]byte(doc))
	if err != nil {
		t.Fatalf("FromYAML() error = %v, want nil", err)
	}
	if got := render(mustCompile(t, f)); got != "where LOWER(users.name) like %ann%" {
		t.Errorf("render() = %q", got)
	}

	if _, err := FromYAML([]byte("- a\n- b\n")); !errors.Is(err, types.ErrInvalidFilterSpec) {
		t.Errorf("FromYAML(list) error = %v, want ErrInvalidFilterSpec", err)
	}
}

func TestFromStruct(t *testing.T) {
	s, err := structpb.NewStruct(map[string]any{
		"deleted_at": map[string]any{"is": nil},
		"age":        map[string]any{"in": []any{30, 40}},
	})
	if err != nil {
		t.Fatalf("NewStruct() error = %v", err)
	}

	f, err := FromStruct(s)
	if err != nil {
		t.Fatalf("FromStruct() error = %v, want nil", err)
	}

	p, err := CompileAll(f)
	if err != nil {
		t.Fatalf("CompileAll() error = %v, want nil", err)
	}
	want := "in users.age [30 40]; null users.deleted_at"
	if got := render(p); got != want {
		t.Errorf("render() = %q, want %q", got, want)
	}

	if _, err := FromStruct(nil); !errors.Is(err, types.ErrInvalidFilterSpec) {
		t.Errorf("FromStruct(nil) error = %v, want ErrInvalidFilterSpec", err)
	}
}
