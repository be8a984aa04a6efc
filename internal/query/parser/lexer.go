package parser

import (
	"strings"
	"unicode"
)

// lexer turns an expression into tokens. It never fails: bad input is reported
// as diagnostics and scanning resumes after the offending rune.
type lexer struct {
	src   []rune
	pos   int
	line  int
	col   int
	diags []Diagnostic
}

// Lex tokenizes input. The returned slice always ends with a TokenEOF.
func Lex(input string) ([]Token, []Diagnostic) {
	l := &lexer{src: []rune(input), line: 1}
	var toks []Token
	for {
		t := l.next()
		toks = append(toks, t)
		if t.Kind == TokenEOF {
			return toks, l.diags
		}
	}
}

func (l *lexer) peek(offset int) rune {
	i := l.pos + offset
	if i >= len(l.src) {
		return -1
	}
	return l.src[i]
}

func (l *lexer) advance() rune {
	r := l.src[l.pos]
	l.pos++
	if r == '\n' {
		l.line++
		l.col = 0
	} else {
		l.col++
	}
	return r
}

func (l *lexer) here() Position { return Position{Line: l.line, Column: l.col} }

func (l *lexer) errorf(pos Position, msg string) {
	l.diags = append(l.diags, Diagnostic{Pos: pos, Message: msg})
}

func (l *lexer) next() Token {
	for l.pos < len(l.src) && unicode.IsSpace(l.src[l.pos]) {
		l.advance()
	}
	if l.pos >= len(l.src) {
		return Token{Kind: TokenEOF, Pos: l.here()}
	}

	start, pos := l.pos, l.here()
	r := l.advance()

	emit := func(k TokenKind) Token {
		raw := string(l.src[start:l.pos])
		return Token{Kind: k, Raw: raw, Value: raw, Pos: pos}
	}

	switch r {
	case '(':
		return emit(TokenLParen)
	case ')':
		return emit(TokenRParen)
	case ',':
		return emit(TokenComma)
	case ';':
		return emit(TokenSemicolon)
	case '.':
		return emit(TokenDot)
	case '=':
		return emit(TokenEq)
	case '~':
		return emit(TokenContains)
	case '<':
		switch l.peek(0) {
		case '=':
			l.advance()
			return emit(TokenLte)
		case '>':
			l.advance()
			return emit(TokenNe)
		}
		return emit(TokenLt)
	case '>':
		if l.peek(0) == '=' {
			l.advance()
			return emit(TokenGte)
		}
		return emit(TokenGt)
	case '!':
		if l.peek(0) == '=' {
			l.advance()
			return emit(TokenNe)
		}
	case '\'', '"':
		return l.scanString(start, pos, r)
	case '-', '+':
		if isDigit(l.peek(0)) {
			return l.scanNumber(start, pos)
		}
	default:
		if isDigit(r) {
			return l.scanNumber(start, pos)
		}
		if isWordStart(r) {
			return l.scanWord(start, pos)
		}
	}

	l.errorf(pos, "token recognition error at: '"+string(r)+"'")
	return l.next()
}

// scanString reads a quoted literal. A backslash escapes the delimiter and
// itself; any other escape is kept verbatim so regex sources survive.
func (l *lexer) scanString(start int, pos Position, quote rune) Token {
	var b strings.Builder
	for {
		if l.pos >= len(l.src) {
			l.errorf(pos, "unterminated string literal")
			return Token{Kind: TokenString, Raw: string(l.src[start:l.pos]), Value: b.String(), Pos: pos}
		}
		r := l.advance()
		switch {
		case r == quote:
			return Token{Kind: TokenString, Raw: string(l.src[start:l.pos]), Value: b.String(), Pos: pos}
		case r == '\\' && (l.peek(0) == quote || l.peek(0) == '\\'):
			b.WriteRune(l.advance())
		default:
			b.WriteRune(r)
		}
	}
}

// scanNumber reads [+-]?digits(.digits)?. A digit run that continues into
// letters is a bareword instead (e.g. a hex id like 5f3a...).
func (l *lexer) scanNumber(start int, pos Position) Token {
	for isDigit(l.peek(0)) {
		l.advance()
	}
	if l.peek(0) == '.' && isDigit(l.peek(1)) {
		l.advance()
		for isDigit(l.peek(0)) {
			l.advance()
		}
	}
	if isWordPart(l.peek(0)) && !isSign(l.src[start]) {
		return l.scanWord(start, pos)
	}
	raw := string(l.src[start:l.pos])
	return Token{Kind: TokenNumber, Raw: raw, Value: raw, Pos: pos}
}

func (l *lexer) scanWord(start int, pos Position) Token {
	for isWordPart(l.peek(0)) {
		l.advance()
	}
	raw := string(l.src[start:l.pos])
	kind := TokenWord
	switch raw {
	case "AND":
		kind = TokenAnd
	case "OR":
		kind = TokenOr
	}
	return Token{Kind: kind, Raw: raw, Value: raw, Pos: pos}
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func isSign(r rune) bool { return r == '-' || r == '+' }

func isWordStart(r rune) bool {
	return r == '_' || r == '$' || unicode.IsLetter(r)
}

func isWordPart(r rune) bool {
	return r == '-' || isWordStart(r) || unicode.IsDigit(r)
}

// isIdentifier reports whether a word token can name a field.
func isIdentifier(s string) bool {
	for i, r := range s {
		if i == 0 && !isWordStart(r) {
			return false
		}
	}
	return s != ""
}
