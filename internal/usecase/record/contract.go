package record

import (
	"context"

	domrec "github.com/kailas-cloud/crudex/internal/domain/record"
	"github.com/kailas-cloud/crudex/internal/query"
	"github.com/kailas-cloud/crudex/internal/query/page"
)

// Repository defines the storage contract for records. Every backend answers
// Find with the same envelope arithmetic.
type Repository interface {
	Find(ctx context.Context, collection string, plan *query.Plan, req page.Request) (
		page.Envelope[domrec.Record], error,
	)
	Get(ctx context.Context, collection, id string) (domrec.Record, error)
	// Insert fails with domain.ErrAlreadyExists when the id is taken.
	Insert(ctx context.Context, collection string, r domrec.Record) error
	// Replace creates or overwrites a record; created reports which.
	Replace(ctx context.Context, collection string, r domrec.Record) (created bool, err error)
	// Delete fails with domain.ErrNotFound when the record is absent.
	Delete(ctx context.Context, collection, id string) error
}

// QueryObserver receives query engine events for metrics.
type QueryObserver = query.Observer
