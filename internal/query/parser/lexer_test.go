package parser

import (
	"testing"
)

func kinds(toks []Token) []TokenKind {
	out := make([]TokenKind, len(toks))
	for i, t := range toks {
		out[i] = t.Kind
	}
	return out
}

func TestLex_Kinds(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []TokenKind
	}{
		{"comparison", "foo<3", []TokenKind{TokenWord, TokenLt, TokenNumber, TokenEOF}},
		{"two char ops", "a<=1 b>=2 c<>3 d!=4", []TokenKind{
			TokenWord, TokenLte, TokenNumber,
			TokenWord, TokenGte, TokenNumber,
			TokenWord, TokenNe, TokenNumber,
			TokenWord, TokenNe, TokenNumber,
			TokenEOF,
		}},
		{"keywords", "AND OR and", []TokenKind{TokenAnd, TokenOr, TokenWord, TokenEOF}},
		{"grouping", "(a=1)", []TokenKind{TokenLParen, TokenWord, TokenEq, TokenNumber, TokenRParen, TokenEOF}},
		{"sort", "name,ASC;", []TokenKind{TokenWord, TokenComma, TokenWord, TokenSemicolon, TokenEOF}},
		{"dotted", "a.b~'x'", []TokenKind{TokenWord, TokenDot, TokenWord, TokenContains, TokenString, TokenEOF}},
		{"empty", "   ", []TokenKind{TokenEOF}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toks, diags := Lex(tt.in)
			if len(diags) != 0 {
				t.Fatalf("unexpected diagnostics: %v", diags)
			}
			got := kinds(toks)
			if len(got) != len(tt.want) {
				t.Fatalf("kinds = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("token %d = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestLex_Numbers(t *testing.T) {
	tests := []struct {
		in   string
		kind TokenKind
		val  string
	}{
		{"42", TokenNumber, "42"},
		{"-3", TokenNumber, "-3"},
		{"+7", TokenNumber, "+7"},
		{"4.25", TokenNumber, "4.25"},
		{"5f3a9c", TokenWord, "5f3a9c"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			toks, diags := Lex(tt.in)
			if len(diags) != 0 {
				t.Fatalf("unexpected diagnostics: %v", diags)
			}
			if toks[0].Kind != tt.kind || toks[0].Value != tt.val {
				t.Errorf("token = %v %q, want %v %q", toks[0].Kind, toks[0].Value, tt.kind, tt.val)
			}
		})
	}
}

func TestLex_Strings(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"single", `'abc'`, "abc"},
		{"double", `"abc"`, "abc"},
		{"escaped single", `'O\'Brien'`, "O'Brien"},
		{"escaped double", `"say \"hi\""`, `say "hi"`},
		{"other quote kept", `"it's"`, "it's"},
		{"escaped backslash", `'a\\b'`, `a\b`},
		{"regex escape kept", `'\d+'`, `\d+`},
		{"spaces", `'te st'`, "te st"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toks, diags := Lex(tt.in)
			if len(diags) != 0 {
				t.Fatalf("unexpected diagnostics: %v", diags)
			}
			if toks[0].Kind != TokenString {
				t.Fatalf("kind = %v", toks[0].Kind)
			}
			if toks[0].Value != tt.want {
				t.Errorf("value = %q, want %q", toks[0].Value, tt.want)
			}
			if toks[0].Raw != tt.in {
				t.Errorf("raw = %q, want %q", toks[0].Raw, tt.in)
			}
		})
	}
}

func TestLex_Positions(t *testing.T) {
	toks, _ := Lex("foo < 3\nAND bar")
	want := []Position{{1, 0}, {1, 4}, {1, 6}, {2, 0}, {2, 4}, {2, 7}}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d", len(toks), len(want))
	}
	for i, p := range want {
		if toks[i].Pos != p {
			t.Errorf("token %d at %v, want %v", i, toks[i].Pos, p)
		}
	}
}

func TestLex_Errors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"illegal char", "foo ? 3", "line 1:4 token recognition error at: '?'"},
		{"lone bang", "foo ! 3", "line 1:4 token recognition error at: '!'"},
		{"unterminated", "foo = 'abc", "line 1:6 unterminated string literal"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toks, diags := Lex(tt.in)
			if len(diags) != 1 {
				t.Fatalf("diagnostics = %v, want one", diags)
			}
			if diags[0].String() != tt.want {
				t.Errorf("diagnostic = %q, want %q", diags[0].String(), tt.want)
			}
			if toks[len(toks)-1].Kind != TokenEOF {
				t.Error("token stream must end with EOF")
			}
		})
	}
}
