// Package predicate compiles filter trees into in-memory boolean functions
// over plain records.
package predicate

import (
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/crudex/internal/query/ast"
	"github.com/kailas-cloud/crudex/internal/query/value"
)

// Func reports whether a record matches.
type Func func(record map[string]any) bool

// Fallback records a predicate that compiled to "always false" because its
// operator was not recognized. It is a warning, not an error.
type Fallback struct {
	Predicate ast.Predicate
	Reason    string
}

// Result is the outcome of Compile.
type Result struct {
	Match     Func
	Fallbacks []Fallback
}

// Option configures Compile.
type Option func(*options)

type options struct {
	logger *zap.Logger
}

// WithLogger sets the logger that receives fallback warnings.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// Compile builds a predicate from n. A nil tree matches every record.
func Compile(n ast.Node, opts ...Option) Result {
	if n == nil {
		return Result{Match: func(map[string]any) bool { return true }}
	}
	o := options{logger: zap.NewNop()}
	for _, fn := range opts {
		fn(&o)
	}

	var fallbacks []Fallback
	match := ast.Fold(n, ast.Folder[Func]{
		Predicate: func(p ast.Predicate) Func {
			f, ok := compare(p)
			if !ok {
				fb := Fallback{Predicate: p, Reason: "unrecognized operator " + p.Op.String()}
				fallbacks = append(fallbacks, fb)
				o.logger.Warn("predicate compiled to always-false",
					zap.String("predicate", p.String()),
					zap.String("reason", fb.Reason),
				)
			}
			return f
		},
		Conjunction: func(children []Func) Func {
			return func(r map[string]any) bool {
				for _, c := range children {
					if !c(r) {
						return false
					}
				}
				return true
			}
		},
		Disjunction: func(children []Func) Func {
			return func(r map[string]any) bool {
				for _, c := range children {
					if c(r) {
						return true
					}
				}
				return false
			}
		},
	})
	return Result{Match: match, Fallbacks: fallbacks}
}

func never(map[string]any) bool { return false }

// compare returns the function for one predicate; ok is false for an
// operator it does not know.
func compare(p ast.Predicate) (Func, bool) {
	field := p.Field
	lit := p.Literal.Value()

	switch p.Op {
	case ast.OpEq:
		return func(r map[string]any) bool {
			v, ok := value.Lookup(r, field)
			return ok && value.StrictEqual(v, lit)
		}, true
	case ast.OpNe:
		return func(r map[string]any) bool {
			v, ok := value.Lookup(r, field)
			return ok && !value.StrictEqual(v, lit)
		}, true
	case ast.OpLt:
		return relational(field, lit, func(c int) bool { return c < 0 }), true
	case ast.OpLte:
		return relational(field, lit, func(c int) bool { return c <= 0 }), true
	case ast.OpGt:
		return relational(field, lit, func(c int) bool { return c > 0 }), true
	case ast.OpGte:
		return relational(field, lit, func(c int) bool { return c >= 0 }), true
	case ast.OpContains:
		needle := strings.ToLower(p.Literal.Text())
		return func(r map[string]any) bool {
			v, ok := value.Lookup(r, field)
			return ok && strings.Contains(strings.ToLower(value.Stringify(v)), needle)
		}, true
	}
	return never, false
}

func relational(field ast.Path, lit any, holds func(int) bool) Func {
	return func(r map[string]any) bool {
		v, ok := value.Lookup(r, field)
		if !ok {
			return false
		}
		c, ok := value.Relate(v, lit)
		return ok && holds(c)
	}
}
