package parser

import "fmt"

// TokenKind is the lexical category of a token.
type TokenKind uint8

// Token kinds shared by the filter and sort dialects.
const (
	TokenEOF TokenKind = iota
	TokenWord          // identifier or bareword, decided by the parser
	TokenString        // 'text' or "text"
	TokenNumber        // 12, -3, 4.5

	TokenAnd // AND
	TokenOr  // OR

	TokenEq       // =
	TokenLt       // <
	TokenLte      // <=
	TokenGt       // >
	TokenGte      // >=
	TokenNe       // <> or !=
	TokenContains // ~

	TokenLParen    // (
	TokenRParen    // )
	TokenComma     // ,
	TokenSemicolon // ;
	TokenDot       // .
)

var tokenNames = [...]string{
	TokenEOF:       "<EOF>",
	TokenWord:      "IDENTIFIER",
	TokenString:    "STRING",
	TokenNumber:    "NUMBER",
	TokenAnd:       "AND",
	TokenOr:        "OR",
	TokenEq:        "'='",
	TokenLt:        "'<'",
	TokenLte:       "'<='",
	TokenGt:        "'>'",
	TokenGte:       "'>='",
	TokenNe:        "'!='",
	TokenContains:  "'~'",
	TokenLParen:    "'('",
	TokenRParen:    "')'",
	TokenComma:     "','",
	TokenSemicolon: "';'",
	TokenDot:       "'.'",
}

func (k TokenKind) String() string {
	if int(k) < len(tokenNames) {
		return tokenNames[k]
	}
	return fmt.Sprintf("token(%d)", k)
}

// IsComparison reports whether the kind is a comparison operator.
func (k TokenKind) IsComparison() bool {
	return k >= TokenEq && k <= TokenContains
}

// Position is a location in the source text. Line is 1-based, Column is
// 0-based and counted in runes.
type Position struct {
	Line   int
	Column int
}

// Token is a lexeme with its kind and position.
type Token struct {
	Kind TokenKind
	// Raw is the source text of the token, quotes included for strings.
	Raw string
	// Value is the decoded text: unquoted and unescaped for strings.
	Value string
	Pos   Position
}

// display renders a token the way diagnostics quote offending input.
func (t Token) display() string {
	if t.Kind == TokenEOF {
		return "'<EOF>'"
	}
	return "'" + t.Raw + "'"
}

// Diagnostic is a single lexical or syntax error.
type Diagnostic struct {
	Pos     Position
	Message string
}

// String renders the diagnostic as "line L:C message".
func (d Diagnostic) String() string {
	return fmt.Sprintf("line %d:%d %s", d.Pos.Line, d.Pos.Column, d.Message)
}

// Strings renders each diagnostic with String.
func Strings(diags []Diagnostic) []string {
	out := make([]string, len(diags))
	for i, d := range diags {
		out[i] = d.String()
	}
	return out
}
