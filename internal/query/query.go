// Package query compiles a filter and a sort expression into every executable
// form the repositories need, in one call.
package query

import (
	"errors"

	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/kailas-cloud/crudex/internal/domain"
	"github.com/kailas-cloud/crudex/internal/query/nosql"
	"github.com/kailas-cloud/crudex/internal/query/parser"
	"github.com/kailas-cloud/crudex/internal/query/predicate"
	"github.com/kailas-cloud/crudex/internal/query/sorting"
)

// Observer receives engine events, typically a metrics recorder.
type Observer interface {
	ParseFailed(dialect string)
	Fallbacks(n int)
}

// Plan is a compiled query. Filter and Match describe the same condition for
// the document store and for in-memory records. A Plan is immutable and may be
// shared between goroutines.
type Plan struct {
	FilterText string
	SortText   string

	Filter    nosql.Document
	Match     predicate.Func
	SortMap   nosql.SortMap
	Chain     sorting.Chain
	Fallbacks []predicate.Fallback
}

// Option configures Compile.
type Option func(*options)

type options struct {
	logger   *zap.Logger
	coercers map[string]nosql.Coercer
	lang     language.Tag
	observer Observer
}

// WithLogger injects the logger handed to every stage.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithCoercers sets per-field value hooks for the document filter.
func WithCoercers(cs map[string]nosql.Coercer) Option {
	return func(o *options) { o.coercers = cs }
}

// WithLanguage sets the collation language of the comparator chain.
func WithLanguage(tag language.Tag) Option {
	return func(o *options) { o.lang = tag }
}

// WithObserver reports parse failures and fallbacks to obs.
func WithObserver(obs Observer) Option {
	return func(o *options) { o.observer = obs }
}

type nopObserver struct{}

func (nopObserver) ParseFailed(string) {}
func (nopObserver) Fallbacks(int)      {}

// Compile parses both expressions and compiles all targets. Invalid input
// returns a *domain.QueryError carrying the diagnostics; the filter is checked
// before the sort.
func Compile(filter, sort string, opts ...Option) (*Plan, error) {
	o := options{logger: zap.NewNop(), lang: language.Und, observer: nopObserver{}}
	for _, fn := range opts {
		fn(&o)
	}

	fr := parser.ParseFilter(filter, parser.WithLogger(o.logger))
	if !fr.Valid {
		o.observer.ParseFailed(domain.DialectFilter)
		return nil, domain.NewQueryError(domain.DialectFilter, filter, parser.Strings(fr.Diagnostics))
	}
	sr := parser.ParseSort(sort, parser.WithLogger(o.logger))
	if !sr.Valid {
		o.observer.ParseFailed(domain.DialectSort)
		return nil, domain.NewQueryError(domain.DialectSort, sort, parser.Strings(sr.Diagnostics))
	}

	doc, err := nosql.Compile(fr.Root, nosql.WithLogger(o.logger), nosql.WithCoercers(o.coercers))
	if err != nil {
		o.observer.ParseFailed(domain.DialectFilter)
		if errors.Is(err, nosql.ErrInvalidRegex) {
			return nil, domain.NewQueryError(domain.DialectFilter, filter, []string{err.Error()})
		}
		return nil, err
	}

	pred := predicate.Compile(fr.Root, predicate.WithLogger(o.logger))
	if n := len(pred.Fallbacks); n > 0 {
		o.observer.Fallbacks(n)
	}
	sorted := sorting.Compile(sr.Spec, sorting.WithLanguage(o.lang))

	return &Plan{
		FilterText: filter,
		SortText:   sort,
		Filter:     doc,
		Match:      pred.Match,
		SortMap:    sorted.SortMap,
		Chain:      sorted.Chain,
		Fallbacks:  pred.Fallbacks,
	}, nil
}

// MatchAll is the plan of an empty query.
func MatchAll() *Plan {
	p, _ := Compile("", "")
	return p
}
