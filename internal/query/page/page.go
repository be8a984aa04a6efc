// Package page builds the pagination envelope shared by every query executor.
package page

import (
	"strconv"
	"strings"
)

// DefaultPageSize applies when a request gives no usable page size.
const DefaultPageSize = 25

// All requests every matching item on a single page.
const All = "ALL"

// Request carries the raw query parameters. Every field is optional and
// sanitized by Build; there is no invalid Request.
type Request struct {
	Filter   string `json:"filter,omitempty"`
	Sort     string `json:"sort,omitempty"`
	Page     string `json:"page,omitempty"`
	PageSize string `json:"pageSize,omitempty"`
}

// Envelope is the paged response wrapper.
type Envelope[T any] struct {
	Filter     string `json:"filter"`
	Sort       string `json:"sort"`
	Page       int64  `json:"page"`
	PageSize   int64  `json:"pageSize"`
	PageCount  int64  `json:"pageCount"`
	TotalCount int64  `json:"totalCount"`
	Items      []T    `json:"items"`
}

// Build sanitizes req against total matching items. Page becomes 0 only when
// total is 0, because it is clamped to PageCount.
func Build[T any](req Request, total int64) Envelope[T] {
	if total < 0 {
		total = 0
	}
	env := Envelope[T]{
		Filter:     req.Filter,
		Sort:       req.Sort,
		Page:       positive(req.Page, 1),
		PageSize:   DefaultPageSize,
		TotalCount: total,
		Items:      []T{},
	}

	if strings.TrimSpace(req.PageSize) == All {
		env.Page = 1
		if total > 0 {
			env.PageSize = total
		}
	} else {
		env.PageSize = positive(req.PageSize, DefaultPageSize)
	}

	env.PageCount = total / env.PageSize
	if total%env.PageSize != 0 {
		env.PageCount++
	}
	if env.Page > env.PageCount {
		env.Page = env.PageCount
	}
	return env
}

// positive parses s as a base-10 integer and returns def when it is absent,
// malformed or not greater than zero.
func positive(s string, def int64) int64 {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

// Offset is the index of the first item on the page.
func (e Envelope[T]) Offset() int64 {
	if e.Page < 1 {
		return 0
	}
	return (e.Page - 1) * e.PageSize
}

// Limit is the maximum number of items on the page.
func (e Envelope[T]) Limit() int64 {
	if e.PageCount == 0 {
		return 0
	}
	return e.PageSize
}

// Slice returns the window of items that belongs to the page.
func (e Envelope[T]) Slice(items []T) []T {
	n := int64(len(items))
	lo := min(e.Offset(), n)
	hi := min(lo+e.Limit(), n)
	return items[lo:hi]
}

// WithItems returns a copy of e carrying items. A nil slice is stored as empty
// so the envelope always serializes an array.
func (e Envelope[T]) WithItems(items []T) Envelope[T] {
	if items == nil {
		items = []T{}
	}
	e.Items = items
	return e
}

// Map converts the item type, keeping the envelope fields.
func Map[T, U any](e Envelope[T], fn func(T) U) Envelope[U] {
	out := make([]U, len(e.Items))
	for i, it := range e.Items {
		out[i] = fn(it)
	}
	return Envelope[U]{
		Filter:     e.Filter,
		Sort:       e.Sort,
		Page:       e.Page,
		PageSize:   e.PageSize,
		PageCount:  e.PageCount,
		TotalCount: e.TotalCount,
		Items:      out,
	}
}
