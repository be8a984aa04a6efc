// Package parser lexes and parses the filter and sort dialects into ast values.
//
// Parsing never panics on malformed input. Every error is collected as a
// Diagnostic and the result is flagged invalid; callers must check Valid
// before using the tree.
package parser

import (
	"strings"

	"go.uber.org/zap"
)

// maxDepth bounds parenthesis nesting so hostile input cannot exhaust the stack.
const maxDepth = 128

// Option configures a parse call.
type Option func(*options)

type options struct {
	logger *zap.Logger
}

// WithLogger routes parse failures to logger at debug level.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{logger: zap.NewNop()}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

// parser is the per-call state shared by both dialects.
type parser struct {
	toks  []Token
	pos   int
	depth int
	diags []Diagnostic
}

func newParser(input string) *parser {
	toks, diags := Lex(input)
	return &parser{toks: toks, diags: diags}
}

func (p *parser) peek() Token { return p.toks[p.pos] }

func (p *parser) next() Token {
	t := p.toks[p.pos]
	if t.Kind != TokenEOF {
		p.pos++
	}
	return t
}

func (p *parser) accept(k TokenKind) bool {
	if p.peek().Kind == k {
		p.next()
		return true
	}
	return false
}

func (p *parser) errorAt(t Token, msg string) {
	p.diags = append(p.diags, Diagnostic{Pos: t.Pos, Message: msg})
}

func (p *parser) mismatched(t Token, expecting ...TokenKind) {
	p.errorAt(t, "mismatched input "+t.display()+" expecting "+expectation(expecting))
}

// syncTo skips tokens until one of kinds (or EOF) is next.
func (p *parser) syncTo(kinds ...TokenKind) {
	for {
		k := p.peek().Kind
		if k == TokenEOF {
			return
		}
		for _, want := range kinds {
			if k == want {
				return
			}
		}
		p.next()
	}
}

// path parses IDENT ('.' IDENT)*.
func (p *parser) path() ([]string, bool) {
	t := p.peek()
	if t.Kind != TokenWord || !isIdentifier(t.Value) {
		p.mismatched(t, TokenWord)
		return nil, false
	}
	p.next()
	segs := []string{t.Value}
	for p.peek().Kind == TokenDot {
		p.next()
		seg := p.peek()
		if seg.Kind != TokenWord || !isIdentifier(seg.Value) {
			p.mismatched(seg, TokenWord)
			return nil, false
		}
		p.next()
		segs = append(segs, seg.Value)
	}
	return segs, true
}

func expectation(kinds []TokenKind) string {
	if len(kinds) == 1 {
		return kinds[0].String()
	}
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = k.String()
	}
	return "{" + strings.Join(names, ", ") + "}"
}

func isBlank(s string) bool { return strings.TrimSpace(s) == "" }
