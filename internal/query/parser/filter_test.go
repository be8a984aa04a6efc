package parser

import (
	"strings"
	"sync"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/kailas-cloud/crudex/internal/query/ast"
)

func mustParse(t *testing.T, in string) ast.Node {
	t.Helper()
	res := ParseFilter(in)
	if !res.Valid {
		t.Fatalf("ParseFilter(%q) invalid: %v", in, Strings(res.Diagnostics))
	}
	return res.Root
}

func TestParseFilter_Empty(t *testing.T) {
	for _, in := range []string{"", "   ", "\t\n"} {
		res := ParseFilter(in)
		if !res.Valid || !res.Empty || res.Root != nil {
			t.Errorf("ParseFilter(%q) = %+v, want empty valid result", in, res)
		}
	}
}

func TestParseFilter_Trees(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"single", "foo=3", "foo = 3"},
		{"and chain", "foo<3 AND bar>3", "(foo < 3 AND bar > 3)"},
		{"or chain", "a=1 OR b=2 OR c=3", "(a = 1 OR b = 2 OR c = 3)"},
		{"and binds tighter", "a=1 OR b=2 AND c=3", "(a = 1 OR (b = 2 AND c = 3))"},
		{"and binds tighter left", "a=1 AND b=2 OR c=3", "((a = 1 AND b = 2) OR c = 3)"},
		{"parens override", "(foo=3 OR bar=3) AND xyz=3", "((foo = 3 OR bar = 3) AND xyz = 3)"},
		{"redundant parens", "((foo=3))", "foo = 3"},
		{"nested path", "meta.owner.id <> 'x'", `meta.owner.id != "x"`},
		{"contains", `baz ~ "y"`, `baz ~ "y"`},
		{"bool bareword", "active = true", "active = true"},
		{"dotted bareword", "host = example.com", "host = example.com"},
		{"hex bareword", "id = 5f3a9c0b", "id = 5f3a9c0b"},
		{"negative number", "t >= -1.5", "t >= -1.5"},
		{"bang equals", "a != 1", "a != 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mustParse(t, tt.in).String()
			if got != tt.want {
				t.Errorf("tree = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestParseFilter_Literals(t *testing.T) {
	tests := []struct {
		in   string
		kind ast.LiteralKind
		want any
	}{
		{"a = 'x'", ast.LiteralString, "x"},
		{"a = 'true'", ast.LiteralString, "true"},
		{"a = 12", ast.LiteralNumber, 12.0},
		{"a = false", ast.LiteralBool, false},
		{"a = word", ast.LiteralBareword, "word"},
		{`a = 'O\'Brien'`, ast.LiteralString, "O'Brien"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			p, ok := mustParse(t, tt.in).(ast.Predicate)
			if !ok {
				t.Fatal("expected a predicate")
			}
			if p.Literal.Kind() != tt.kind {
				t.Errorf("kind = %v, want %v", p.Literal.Kind(), tt.kind)
			}
			if p.Literal.Value() != tt.want {
				t.Errorf("value = %v, want %v", p.Literal.Value(), tt.want)
			}
		})
	}
}

func TestParseFilter_Diagnostics(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{
			name: "missing operator",
			in:   "foo 3",
			want: []string{"line 1:4 mismatched input '3' expecting {'=', '<', '<=', '>', '>=', '<>', '!=', '~'}"},
		},
		{
			name: "trailing input",
			in:   "foo = 3 bar = 4",
			want: []string{"line 1:8 extraneous input 'bar' expecting {<EOF>, AND, OR}"},
		},
		{
			name: "missing paren",
			in:   "(foo = 3",
			want: []string{"line 1:8 missing ')' at '<EOF>'"},
		},
		{
			name: "dangling and",
			in:   "foo = 3 AND",
			want: []string{"line 1:11 mismatched input '<EOF>' expecting IDENTIFIER"},
		},
		{
			name: "missing literal",
			in:   "foo = AND bar = 1",
			want: []string{"line 1:6 mismatched input 'AND' expecting {STRING, NUMBER, IDENTIFIER}"},
		},
		{
			name: "several errors in one pass",
			in:   "foo ? 1 AND bar ? 2",
			want: []string{
				"line 1:4 token recognition error at: '?'",
				"line 1:16 token recognition error at: '?'",
				"line 1:6 mismatched input '1' expecting {'=', '<', '<=', '>', '>=', '<>', '!=', '~'}",
				"line 1:18 mismatched input '2' expecting {'=', '<', '<=', '>', '>=', '<>', '!=', '~'}",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ParseFilter(tt.in)
			if res.Valid {
				t.Fatal("expected invalid result")
			}
			got := Strings(res.Diagnostics)
			if strings.Join(got, "\n") != strings.Join(tt.want, "\n") {
				t.Errorf("diagnostics:\n%s\nwant:\n%s", strings.Join(got, "\n"), strings.Join(tt.want, "\n"))
			}
		})
	}
}

func TestParseFilter_DepthLimit(t *testing.T) {
	in := strings.Repeat("(", maxDepth+5) + "a=1" + strings.Repeat(")", maxDepth+5)
	res := ParseFilter(in)
	if res.Valid {
		t.Fatal("expected invalid result for deep nesting")
	}
	found := false
	for _, d := range res.Diagnostics {
		if d.Message == "expression nested too deeply" {
			found = true
		}
	}
	if !found {
		t.Errorf("diagnostics = %v", Strings(res.Diagnostics))
	}
}

func TestParseFilter_LogsRejection(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	ParseFilter("foo ?", WithLogger(zap.New(core)))

	entries := logs.FilterMessage("filter expression rejected").All()
	if len(entries) != 1 {
		t.Fatalf("got %d log entries, want 1", len(entries))
	}
	if entries[0].ContextMap()["filter"] != "foo ?" {
		t.Errorf("filter field = %v", entries[0].ContextMap()["filter"])
	}
}

func TestParseFilter_Concurrent(t *testing.T) {
	const in = "(foo=3 OR bar=3) AND xyz=3"
	want := mustParse(t, in).String()

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res := ParseFilter(in)
			if !res.Valid || res.Root.String() != want {
				t.Errorf("concurrent parse = %v", res.Root)
			}
		}()
	}
	wg.Wait()
}
