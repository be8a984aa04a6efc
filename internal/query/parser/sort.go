package parser

import (
	"go.uber.org/zap"

	"github.com/kailas-cloud/crudex/internal/query/ast"
)

// SortResult is the outcome of ParseSort.
type SortResult struct {
	// Spec is empty for blank input, which leaves the order untouched.
	Spec        ast.SortSpec
	Valid       bool
	Diagnostics []Diagnostic
}

// ParseSort parses clauses like "name,ASC;value,DESC". The direction is
// case-insensitive and defaults to ASC; a trailing ';' is allowed.
func ParseSort(input string, opts ...Option) SortResult {
	if isBlank(input) {
		return SortResult{Valid: true}
	}
	o := buildOptions(opts)

	p := newParser(input)
	var spec ast.SortSpec
	for {
		if c, ok := p.clause(); ok {
			spec = append(spec, c)
		} else {
			p.syncTo(TokenSemicolon)
		}
		if !p.accept(TokenSemicolon) || p.peek().Kind == TokenEOF {
			break
		}
	}
	if t := p.peek(); t.Kind != TokenEOF {
		p.errorAt(t, "extraneous input "+t.display()+" expecting {<EOF>, ';'}")
	}

	res := SortResult{Spec: spec, Valid: len(p.diags) == 0, Diagnostics: p.diags}
	if !res.Valid {
		o.logger.Debug("sort expression rejected",
			zap.String("sort", input),
			zap.Strings("diagnostics", Strings(res.Diagnostics)),
		)
	}
	return res
}

// clause := path (',' direction)?
func (p *parser) clause() (ast.SortClause, bool) {
	field, ok := p.path()
	if !ok {
		return ast.SortClause{}, false
	}
	c := ast.SortClause{Field: field, Direction: ast.Asc}
	if !p.accept(TokenComma) {
		return c, true
	}

	t := p.peek()
	dir, ok := ast.ParseDirection(t.Value)
	if t.Kind != TokenWord || !ok {
		p.errorAt(t, "mismatched input "+t.display()+" expecting {ASC, DESC}")
		return ast.SortClause{}, false
	}
	p.next()
	c.Direction = dir
	return c, true
}
