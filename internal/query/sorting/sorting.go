// Package sorting compiles a sort spec into a store sort map and an
// in-memory comparator chain.
package sorting

import (
	"math"
	"slices"
	"sync"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/kailas-cloud/crudex/internal/query/ast"
	"github.com/kailas-cloud/crudex/internal/query/nosql"
	"github.com/kailas-cloud/crudex/internal/query/value"
)

// Comparator orders two records: negative, zero or positive.
type Comparator func(a, b map[string]any) int

// Chain applies comparators left to right and returns the first non-zero
// result. It may be shared between goroutines.
type Chain []Comparator

// Compare runs the chain.
func (c Chain) Compare(a, b map[string]any) int {
	for _, cmp := range c {
		if r := cmp(a, b); r != 0 {
			return r
		}
	}
	return 0
}

// Sort orders records in place. Equal records keep their relative order.
func (c Chain) Sort(records []map[string]any) {
	if len(c) == 0 {
		return
	}
	slices.SortStableFunc(records, c.Compare)
}

// Compiled holds both sort representations built from one spec.
type Compiled struct {
	SortMap nosql.SortMap
	Chain   Chain
}

// Option configures Compile.
type Option func(*options)

type options struct {
	lang language.Tag
}

// WithLanguage selects the collation used for string values. Default: root collation.
func WithLanguage(tag language.Tag) Option {
	return func(o *options) { o.lang = tag }
}

// Compile builds the sort map and the comparator chain for spec.
func Compile(spec ast.SortSpec, opts ...Option) Compiled {
	o := options{lang: language.Und}
	for _, fn := range opts {
		fn(&o)
	}

	cols := newCollators(o.lang)
	chain := make(Chain, len(spec))
	for i, c := range spec {
		chain[i] = comparator(cols, c)
	}
	return Compiled{SortMap: nosql.CompileSort(spec), Chain: chain}
}

// collators hands out collators for one language. A collator keeps iterator
// state between calls, so each comparison borrows its own.
type collators struct {
	pool sync.Pool
}

func newCollators(tag language.Tag) *collators {
	c := &collators{}
	c.pool.New = func() any { return collate.New(tag) }
	return c
}

func (c *collators) compare(a, b string) int {
	col := c.pool.Get().(*collate.Collator)
	defer c.pool.Put(col)
	return col.CompareString(a, b)
}

// comparator builds one clause. Descending swaps the operands before calling
// the same routine rather than negating the ascending result.
func comparator(col *collators, c ast.SortClause) Comparator {
	field := c.Field
	if c.Direction == ast.Desc {
		return func(a, b map[string]any) int { return compareField(col, field, b, a) }
	}
	return func(a, b map[string]any) int { return compareField(col, field, a, b) }
}

// compareField compares x against y on field. When x's value is a string
// (a missing value counts as "") both sides are collated as text; otherwise
// the difference of their numeric readings decides.
func compareField(col *collators, field ast.Path, x, y map[string]any) int {
	vx, ok := value.Lookup(x, field)
	if !ok {
		vx = ""
	}
	vy, ok := value.Lookup(y, field)
	if !ok {
		vy = ""
	}

	if sx, isStr := vx.(string); isStr {
		return col.compare(sx, value.Stringify(vy))
	}

	d := value.ToNumber(vx) - value.ToNumber(vy)
	switch {
	case math.IsNaN(d) || d == 0:
		return 0
	case d < 0:
		return -1
	}
	return 1
}
