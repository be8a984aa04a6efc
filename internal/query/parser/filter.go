package parser

import (
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/crudex/internal/query/ast"
)

// FilterResult is the outcome of ParseFilter.
type FilterResult struct {
	// Root is the parsed tree. It is nil when Empty is set and may be partial
	// when Valid is false.
	Root ast.Node
	// Empty reports a blank input, which matches every record.
	Empty       bool
	Valid       bool
	Diagnostics []Diagnostic
}

// ParseFilter parses a filter expression such as
//
//	foo < 3 AND (bar = 'x' OR baz ~ "y")
//
// AND binds tighter than OR; parentheses override.
func ParseFilter(input string, opts ...Option) FilterResult {
	if isBlank(input) {
		return FilterResult{Empty: true, Valid: true}
	}
	o := buildOptions(opts)

	p := newParser(input)
	root := p.orExpr()
	for p.peek().Kind != TokenEOF {
		t := p.next()
		p.errorAt(t, "extraneous input "+t.display()+" expecting {<EOF>, AND, OR}")
		p.syncTo(TokenAnd, TokenOr)
		if p.accept(TokenAnd) || p.accept(TokenOr) {
			_ = p.orExpr()
		}
	}

	res := FilterResult{Root: root, Diagnostics: p.diags}
	res.Valid = len(p.diags) == 0 && root != nil
	if !res.Valid {
		if len(res.Diagnostics) == 0 {
			res.Diagnostics = []Diagnostic{{Pos: Position{Line: 1}, Message: "empty expression"}}
		}
		o.logger.Debug("filter expression rejected",
			zap.String("filter", input),
			zap.Strings("diagnostics", Strings(res.Diagnostics)),
		)
	}
	return res
}

// orExpr := andExpr (OR andExpr)*
func (p *parser) orExpr() ast.Node {
	var groups []ast.Node
	for {
		if n := p.andExpr(); n != nil {
			groups = append(groups, n)
		}
		if !p.accept(TokenOr) {
			break
		}
	}
	if len(groups) == 0 {
		return nil
	}
	return ast.Or(groups...)
}

// andExpr := factor (AND factor)*
func (p *parser) andExpr() ast.Node {
	var factors []ast.Node
	for {
		if n := p.factor(); n != nil {
			factors = append(factors, n)
		}
		if !p.accept(TokenAnd) {
			break
		}
	}
	if len(factors) == 0 {
		return nil
	}
	return ast.And(factors...)
}

// factor := predicate | '(' orExpr ')'
func (p *parser) factor() ast.Node {
	open := p.peek()
	if open.Kind != TokenLParen {
		return p.predicate()
	}
	p.next()

	if p.depth >= maxDepth {
		p.errorAt(open, "expression nested too deeply")
		p.pos = len(p.toks) - 1
		return nil
	}
	p.depth++
	n := p.orExpr()
	p.depth--

	if !p.accept(TokenRParen) {
		p.errorAt(p.peek(), "missing ')' at "+p.peek().display())
		p.syncTo(TokenRParen, TokenAnd, TokenOr)
		p.accept(TokenRParen)
	}
	return n
}

// predicate := path comparisonOp literal
func (p *parser) predicate() ast.Node {
	field, ok := p.path()
	if !ok {
		p.syncTo(TokenAnd, TokenOr, TokenRParen)
		return nil
	}

	opTok := p.peek()
	op, ok := ast.ParseOp(opTok.Raw)
	if !opTok.Kind.IsComparison() || !ok {
		p.errorAt(opTok, "mismatched input "+opTok.display()+
			" expecting {'=', '<', '<=', '>', '>=', '<>', '!=', '~'}")
		p.syncTo(TokenAnd, TokenOr, TokenRParen)
		return nil
	}
	p.next()

	lit, ok := p.literal()
	if !ok {
		p.syncTo(TokenAnd, TokenOr, TokenRParen)
		return nil
	}
	return ast.Predicate{Field: field, Op: op, Literal: lit}
}

// literal := STRING | NUMBER | BAREWORD
func (p *parser) literal() (ast.Literal, bool) {
	t := p.peek()
	switch t.Kind {
	case TokenString:
		p.next()
		return ast.String(t.Value), true
	case TokenNumber:
		p.next()
		f, err := strconv.ParseFloat(t.Value, 64)
		if err != nil {
			p.errorAt(t, "invalid number "+t.display())
			return ast.Literal{}, false
		}
		return ast.Number(f), true
	case TokenWord:
		p.next()
		return ast.Bareword(p.dottedWord(t.Value)), true
	}
	p.mismatched(t, TokenString, TokenNumber, TokenWord)
	return ast.Literal{}, false
}

// dottedWord extends a bareword over '.'-joined parts, e.g. example.com.
func (p *parser) dottedWord(first string) string {
	var b strings.Builder
	b.WriteString(first)
	for p.peek().Kind == TokenDot {
		part := p.toks[p.pos+1]
		if part.Kind != TokenWord && part.Kind != TokenNumber {
			break
		}
		p.next()
		p.next()
		b.WriteByte('.')
		b.WriteString(part.Raw)
	}
	return b.String()
}
