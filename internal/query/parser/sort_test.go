package parser

import (
	"testing"

	"github.com/kailas-cloud/crudex/internal/query/ast"
)

func TestParseSort(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"two clauses", "name,ASC;value,DESC", "name,ASC;value,DESC"},
		{"default asc", "name", "name,ASC"},
		{"case insensitive", "name,desc;b,Asc", "name,DESC;b,ASC"},
		{"trailing semicolon", "name;", "name,ASC"},
		{"dotted path", "meta.created,DESC", "meta.created,DESC"},
		{"whitespace", " name , DESC ; value ", "name,DESC;value,ASC"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ParseSort(tt.in)
			if !res.Valid {
				t.Fatalf("unexpected diagnostics: %v", Strings(res.Diagnostics))
			}
			if got := res.Spec.String(); got != tt.want {
				t.Errorf("spec = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseSort_Empty(t *testing.T) {
	res := ParseSort("  ")
	if !res.Valid || len(res.Spec) != 0 {
		t.Errorf("ParseSort(blank) = %+v", res)
	}
}

func TestParseSort_Order(t *testing.T) {
	res := ParseSort("b;a,DESC;c")
	want := ast.SortSpec{
		{Field: ast.Path{"b"}, Direction: ast.Asc},
		{Field: ast.Path{"a"}, Direction: ast.Desc},
		{Field: ast.Path{"c"}, Direction: ast.Asc},
	}
	if len(res.Spec) != len(want) {
		t.Fatalf("spec = %v", res.Spec)
	}
	for i := range want {
		if res.Spec[i].String() != want[i].String() {
			t.Errorf("clause %d = %v, want %v", i, res.Spec[i], want[i])
		}
	}
}

func TestParseSort_Diagnostics(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bad direction", "name,up", "line 1:5 mismatched input 'up' expecting {ASC, DESC}"},
		{"missing separator", "name value", "line 1:5 extraneous input 'value' expecting {<EOF>, ';'}"},
		{"missing field", ",DESC", "line 1:0 mismatched input ',' expecting IDENTIFIER"},
		{"double semicolon", "a;;b", "line 1:2 mismatched input ';' expecting IDENTIFIER"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ParseSort(tt.in)
			if res.Valid {
				t.Fatal("expected invalid result")
			}
			if len(res.Diagnostics) == 0 || res.Diagnostics[0].String() != tt.want {
				t.Errorf("diagnostics = %v, want first %q", Strings(res.Diagnostics), tt.want)
			}
		})
	}
}
