package value

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/kailas-cloud/crudex/internal/query/ast"
)

func TestLookup(t *testing.T) {
	rec := map[string]any{
		"a":       1,
		"nil":     nil,
		"meta":    map[string]any{"owner": map[string]any{"id": "x"}},
		"flat.id": "flat",
		"flat":    map[string]any{"id": "nested"},
	}
	tests := []struct {
		path string
		want any
		ok   bool
	}{
		{"a", 1, true},
		{"missing", nil, false},
		{"nil", nil, false},
		{"meta.owner.id", "x", true},
		{"meta.owner.name", nil, false},
		{"a.b", nil, false},
		{"flat.id", "flat", true},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, ok := Lookup(rec, ast.ParsePath(tt.path))
			if ok != tt.ok || got != tt.want {
				t.Errorf("Lookup(%q) = %v, %v; want %v, %v", tt.path, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestStrictEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b any
		want bool
	}{
		{"int float", 3, 3.0, true},
		{"json number", json.Number("3"), 3.0, true},
		{"string", "x", "x", true},
		{"number vs string", 3.0, "3", false},
		{"bool", true, true, true},
		{"bool vs number", true, 1.0, false},
		{"nil", nil, nil, false},
		{"map", map[string]any{}, map[string]any{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StrictEqual(tt.a, tt.b); got != tt.want {
				t.Errorf("StrictEqual(%v, %v) = %v", tt.a, tt.b, got)
			}
		})
	}
}

func TestRelate(t *testing.T) {
	tests := []struct {
		name string
		a, b any
		cmp  int
		ok   bool
	}{
		{"numbers", 1, 2.0, -1, true},
		{"strings", "b", "a", 1, true},
		{"numeric string", "10", 9.0, 1, true},
		{"string vs string digits", "10", "9", -1, true},
		{"bool", true, 0.0, 1, true},
		{"not a number", "abc", 1.0, 0, false},
		{"nil", nil, 1.0, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmp, ok := Relate(tt.a, tt.b)
			if cmp != tt.cmp || ok != tt.ok {
				t.Errorf("Relate(%v, %v) = %d, %v; want %d, %v", tt.a, tt.b, cmp, ok, tt.cmp, tt.ok)
			}
		})
	}
}

func TestToNumber(t *testing.T) {
	if ToNumber(" 4.5 ") != 4.5 {
		t.Error("trimmed numeric string")
	}
	if ToNumber("") != 0 {
		t.Error("empty string is zero")
	}
	if !math.IsNaN(ToNumber([]any{1})) {
		t.Error("slice has no numeric reading")
	}
}

func TestStringify(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"x", "x"},
		{12, "12"},
		{1.5, "1.5"},
		{false, "false"},
		{[]any{1, "a"}, `[1,"a"]`},
	}
	for _, tt := range tests {
		if got := Stringify(tt.in); got != tt.want {
			t.Errorf("Stringify(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
