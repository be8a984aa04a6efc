package crudex

import (
	"context"
	"strconv"
	"time"

	domrec "github.com/kailas-cloud/crudex/internal/domain/record"
	"github.com/kailas-cloud/crudex/internal/query/page"
)

// Record is a stored JSON object. Its "id" field is the primary key.
type Record = domrec.Record

// ListOptions selects one page of a collection. Zero values mean no filter,
// no sort, the first page and the default page size.
type ListOptions struct {
	Filter   string
	Sort     string
	Page     int
	PageSize int
	// All returns every matching record on one page and ignores Page and PageSize.
	All bool
}

func (o ListOptions) request() page.Request {
	req := page.Request{Filter: o.Filter, Sort: o.Sort}
	if o.All {
		req.PageSize = page.All
		return req
	}
	if o.Page > 0 {
		req.Page = strconv.Itoa(o.Page)
	}
	if o.PageSize > 0 {
		req.PageSize = strconv.Itoa(o.PageSize)
	}
	return req
}

// Page is one page of a listing.
type Page struct {
	Items      []Record
	Page       int64
	PageSize   int64
	PageCount  int64
	TotalCount int64
}

// RecordService provides record operations scoped to a collection.
type RecordService struct {
	collection string
	svc        recordUseCase
	obs        *observer
}

// List returns the records matching opts. A malformed filter or sort fails
// with an error wrapping ErrInvalidQuery.
func (s *RecordService) List(ctx context.Context, opts ListOptions) (_ Page, err error) {
	start := time.Now()
	defer func() { s.obs.observe("records.list", start, err) }()

	env, err := s.svc.Query(ctx, s.collection, opts.request())
	if err != nil {
		return Page{}, err
	}
	return Page{
		Items:      env.Items,
		Page:       env.Page,
		PageSize:   env.PageSize,
		PageCount:  env.PageCount,
		TotalCount: env.TotalCount,
	}, nil
}

// Get retrieves a record by ID.
func (s *RecordService) Get(ctx context.Context, id string) (_ Record, err error) {
	start := time.Now()
	defer func() { s.obs.observe("records.get", start, err) }()

	return s.svc.Get(ctx, s.collection, id)
}

// Create stores a new record. A missing or empty "id" gets a random UUID.
func (s *RecordService) Create(ctx context.Context, fields map[string]any) (_ Record, err error) {
	start := time.Now()
	defer func() { s.obs.observe("records.create", start, err) }()

	return s.svc.Create(ctx, s.collection, fields)
}

// Replace creates or overwrites the record with id. Returns true if created.
func (s *RecordService) Replace(ctx context.Context, id string, fields map[string]any) (_ Record, _ bool, err error) {
	start := time.Now()
	defer func() { s.obs.observe("records.replace", start, err) }()

	return s.svc.Replace(ctx, s.collection, id, fields)
}

// Delete removes a record by ID.
func (s *RecordService) Delete(ctx context.Context, id string) (err error) {
	start := time.Now()
	defer func() { s.obs.observe("records.delete", start, err) }()

	return s.svc.Delete(ctx, s.collection, id)
}
