package ast

import (
	"strings"
	"testing"
)

func TestParseOp(t *testing.T) {
	tests := []struct {
		in   string
		want Op
		ok   bool
	}{
		{"=", OpEq, true},
		{"<", OpLt, true},
		{"<=", OpLte, true},
		{">", OpGt, true},
		{">=", OpGte, true},
		{"<>", OpNe, true},
		{"!=", OpNe, true},
		{"~", OpContains, true},
		{"==", OpInvalid, false},
		{"", OpInvalid, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseOp(tt.in)
			if got != tt.want || ok != tt.ok {
				t.Errorf("ParseOp(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestBareword(t *testing.T) {
	tests := []struct {
		in   string
		kind LiteralKind
		want any
	}{
		{"true", LiteralBool, true},
		{"false", LiteralBool, false},
		{"True", LiteralBareword, "True"},
		{"example.com", LiteralBareword, "example.com"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			l := Bareword(tt.in)
			if l.Kind() != tt.kind {
				t.Errorf("kind = %v, want %v", l.Kind(), tt.kind)
			}
			if l.Value() != tt.want {
				t.Errorf("value = %v, want %v", l.Value(), tt.want)
			}
			if l.Text() != tt.in {
				t.Errorf("text = %q, want %q", l.Text(), tt.in)
			}
		})
	}
}

func TestLiteral_Number(t *testing.T) {
	l := Number(2.5)
	if l.Value() != 2.5 {
		t.Errorf("value = %v", l.Value())
	}
	if l.Text() != "2.5" {
		t.Errorf("text = %q", l.Text())
	}
	if Number(3).String() != "3" {
		t.Errorf("string = %q", Number(3).String())
	}
}

func TestAndOr_CollapseSingleChild(t *testing.T) {
	p := Predicate{Field: Path{"foo"}, Op: OpEq, Literal: Number(3)}

	if _, ok := And(p).(Predicate); !ok {
		t.Error("And with one child should return the child")
	}
	if _, ok := Or(p).(Predicate); !ok {
		t.Error("Or with one child should return the child")
	}
	if _, ok := And(p, p).(Conjunction); !ok {
		t.Error("And with two children should be a Conjunction")
	}
	if _, ok := Or(p, p).(Disjunction); !ok {
		t.Error("Or with two children should be a Disjunction")
	}
}

func TestFold(t *testing.T) {
	a := Predicate{Field: Path{"a"}, Op: OpEq, Literal: Number(1)}
	b := Predicate{Field: Path{"b"}, Op: OpLt, Literal: String("x")}
	c := Predicate{Field: Path{"c"}, Op: OpNe, Literal: Bareword("true")}
	tree := Or(a, And(b, c))

	render := Folder[string]{
		Predicate:   func(p Predicate) string { return p.Field.String() },
		Conjunction: func(ch []string) string { return "and(" + strings.Join(ch, ",") + ")" },
		Disjunction: func(ch []string) string { return "or(" + strings.Join(ch, ",") + ")" },
	}
	if got := Fold(tree, render); got != "or(a,and(b,c))" {
		t.Errorf("Fold = %q", got)
	}

	wrapped := Conjunction{Children: []Node{a}}
	if got := Fold[string](wrapped, render); got != "a" {
		t.Errorf("single-child fold = %q, want %q", got, "a")
	}
}

func TestNode_String(t *testing.T) {
	a := Predicate{Field: ParsePath("foo.bar"), Op: OpGte, Literal: Number(1)}
	b := Predicate{Field: Path{"name"}, Op: OpContains, Literal: String("x")}
	got := And(a, b).String()
	if got != `(foo.bar >= 1 AND name ~ "x")` {
		t.Errorf("String() = %q", got)
	}
}

func TestParseDirection(t *testing.T) {
	for _, in := range []string{"asc", "ASC", "Asc"} {
		if d, ok := ParseDirection(in); !ok || d != Asc {
			t.Errorf("ParseDirection(%q) = %v, %v", in, d, ok)
		}
	}
	for _, in := range []string{"desc", "DESC", "dEsC"} {
		if d, ok := ParseDirection(in); !ok || d != Desc {
			t.Errorf("ParseDirection(%q) = %v, %v", in, d, ok)
		}
	}
	if _, ok := ParseDirection("down"); ok {
		t.Error("expected failure for unknown direction")
	}
}

func TestSortSpec_String(t *testing.T) {
	spec := SortSpec{
		{Field: Path{"name"}, Direction: Asc},
		{Field: ParsePath("meta.value"), Direction: Desc},
	}
	if got := spec.String(); got != "name,ASC;meta.value,DESC" {
		t.Errorf("String() = %q", got)
	}
}
