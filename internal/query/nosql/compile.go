// Package nosql compiles filter and sort trees into document-store query
// objects ($and, $or, $lt, ...) and evaluates those objects against records.
package nosql

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/crudex/internal/query/ast"
)

// Operator keys written into compiled documents.
const (
	KeyAnd   = "$and"
	KeyOr    = "$or"
	KeyLt    = "$lt"
	KeyLte   = "$lte"
	KeyGt    = "$gt"
	KeyGte   = "$gte"
	KeyNe    = "$ne"
	KeyRegex = "$regex"
)

// Option configures Compile.
type Option func(*options)

type options struct {
	logger   *zap.Logger
	coercers map[string]Coercer
}

// WithLogger sets the logger used for compile failures.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithCoercer registers a value hook for one field path, e.g. "owner.id".
func WithCoercer(field string, c Coercer) Option {
	return func(o *options) {
		if o.coercers == nil {
			o.coercers = make(map[string]Coercer)
		}
		o.coercers[field] = c
	}
}

// WithCoercers registers several field hooks at once.
func WithCoercers(cs map[string]Coercer) Option {
	return func(o *options) {
		for f, c := range cs {
			WithCoercer(f, c)(o)
		}
	}
}

// Compile turns a filter tree into a Document. A nil tree compiles to an empty
// document, which matches everything. Errors come from a contains literal
// that is not a valid regular expression, or from a hand-built tree carrying
// an operator the parser never produces.
func Compile(n ast.Node, opts ...Option) (Document, error) {
	if n == nil {
		return Document{}, nil
	}
	o := options{logger: zap.NewNop()}
	for _, fn := range opts {
		fn(&o)
	}

	var firstErr error
	doc := ast.Fold(n, ast.Folder[Document]{
		Predicate: func(p ast.Predicate) Document {
			d, err := o.predicate(p)
			if err != nil && firstErr == nil {
				firstErr = err
			}
			return d
		},
		Conjunction: func(children []Document) Document {
			return Document{{Key: KeyAnd, Value: toArray(children)}}
		},
		Disjunction: func(children []Document) Document {
			return Document{{Key: KeyOr, Value: toArray(children)}}
		},
	})
	if firstErr != nil {
		o.logger.Debug("filter compile failed", zap.Stringer("filter", n), zap.Error(firstErr))
		return nil, firstErr
	}
	return doc, nil
}

func (o *options) predicate(p ast.Predicate) (Document, error) {
	field := p.Field.String()

	if p.Op == ast.OpContains {
		re, err := NewRegex(p.Literal.Text())
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", field, err)
		}
		return Document{{Key: field, Value: re}}, nil
	}

	v := p.Literal.Value()
	if c, ok := o.coercers[field]; ok {
		v = c(v)
	}

	var key string
	switch p.Op {
	case ast.OpEq:
		return Document{{Key: field, Value: v}}, nil
	case ast.OpLt:
		key = KeyLt
	case ast.OpLte:
		key = KeyLte
	case ast.OpGt:
		key = KeyGt
	case ast.OpGte:
		key = KeyGte
	case ast.OpNe:
		key = KeyNe
	default:
		return nil, fmt.Errorf("field %s: unsupported operator %s", field, p.Op)
	}
	return Document{{Key: field, Value: Document{{Key: key, Value: v}}}}, nil
}

func toArray(docs []Document) Array {
	out := make(Array, len(docs))
	for i, d := range docs {
		out[i] = d
	}
	return out
}
