// Package document keeps records as RedisJSON documents and answers queries
// with the compiled document filter and sort map.
package document

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/kailas-cloud/crudex/internal/db"
	"github.com/kailas-cloud/crudex/internal/domain"
	domrec "github.com/kailas-cloud/crudex/internal/domain/record"
	"github.com/kailas-cloud/crudex/internal/query"
	"github.com/kailas-cloud/crudex/internal/query/nosql"
	"github.com/kailas-cloud/crudex/internal/query/page"
	"github.com/kailas-cloud/crudex/internal/repository/memory"
)

// store is the consumer interface for records (ISP).
type store interface {
	Scan(ctx context.Context, pattern string) ([]string, error)
	JSONGetMulti(ctx context.Context, keys []string) ([][]byte, error)
	JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error)
	JSONSetNX(ctx context.Context, key string, data []byte) (bool, error)
	JSONSet(ctx context.Context, key, path string, data []byte) error
	Exists(ctx context.Context, key string) (bool, error)
	Del(ctx context.Context, key string) error
}

// Repo implements usecase/record.Repository.
type Repo struct {
	store  store
	prefix string
	logger *zap.Logger
}

// Option configures the repository.
type Option func(*Repo)

// WithPrefix overrides DefaultPrefix.
func WithPrefix(p string) Option {
	return func(r *Repo) {
		if p != "" {
			r.prefix = p
		}
	}
}

// WithLogger sets the logger used for skipped documents.
func WithLogger(l *zap.Logger) Option {
	return func(r *Repo) {
		if l != nil {
			r.logger = l
		}
	}
}

// New creates a record repository.
func New(s store, opts ...Option) *Repo {
	r := &Repo{store: s, prefix: DefaultPrefix, logger: zap.NewNop()}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Find scans the collection, evaluates plan.Filter the way the document store
// would and orders by plan.SortMap.
func (r *Repo) Find(
	ctx context.Context, collection string, plan *query.Plan, req page.Request,
) (page.Envelope[domrec.Record], error) {
	if plan == nil {
		plan = query.MatchAll()
	}

	scanned, err := r.store.Scan(ctx, r.collectionPattern(collection))
	if err != nil {
		return page.Envelope[domrec.Record]{}, fmt.Errorf("scan %s: %w", collection, err)
	}
	keys := r.recordKeys(collection, scanned)
	if len(keys) == 0 {
		return page.Build[domrec.Record](req, 0), nil
	}
	raws, err := r.store.JSONGetMulti(ctx, keys)
	if err != nil {
		return page.Envelope[domrec.Record]{}, fmt.Errorf("json.get %s: %w", collection, err)
	}

	recs := make([]domrec.Record, 0, len(raws))
	for i, raw := range raws {
		if raw == nil {
			continue
		}
		rec, err := decodeStored(raw)
		if err != nil {
			r.logger.Warn("skipping undecodable document",
				zap.String("key", keys[i]),
				zap.Error(err),
			)
			continue
		}
		if nosql.Match(plan.Filter, rec) {
			recs = append(recs, rec)
		}
	}

	memory.SortByID(recs)
	if plan.SortMap.Len() > 0 {
		slices.SortStableFunc(recs, func(a, b domrec.Record) int {
			return plan.SortMap.Compare(a, b)
		})
	}

	env := page.Build[domrec.Record](req, int64(len(recs)))
	return env.WithItems(env.Slice(recs)), nil
}

// Get returns a record by ID.
func (r *Repo) Get(ctx context.Context, collection, id string) (domrec.Record, error) {
	key := r.recordKey(collection, id)
	raw, err := r.store.JSONGet(ctx, key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return nil, fmt.Errorf("record %s/%s: %w", collection, id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("json.get %s: %w", key, err)
	}
	return decodeStored(raw)
}

// Insert creates a record; an existing key yields domain.ErrAlreadyExists.
func (r *Repo) Insert(ctx context.Context, collection string, rec domrec.Record) error {
	key := r.recordKey(collection, rec.ID())
	data, err := rec.Encode()
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	created, err := r.store.JSONSetNX(ctx, key, data)
	if err != nil {
		return fmt.Errorf("json.set %s: %w", key, err)
	}
	if !created {
		return fmt.Errorf("record %s/%s: %w", collection, rec.ID(), domain.ErrAlreadyExists)
	}
	return nil
}

// Replace creates or overwrites a record. Returns true if created.
func (r *Repo) Replace(ctx context.Context, collection string, rec domrec.Record) (bool, error) {
	key := r.recordKey(collection, rec.ID())
	data, err := rec.Encode()
	if err != nil {
		return false, fmt.Errorf("marshal record: %w", err)
	}

	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return false, fmt.Errorf("check exists %s: %w", key, err)
	}
	if err := r.store.JSONSet(ctx, key, "$", data); err != nil {
		return false, fmt.Errorf("json.set %s: %w", key, err)
	}
	return !exists, nil
}

// Delete removes a record.
func (r *Repo) Delete(ctx context.Context, collection, id string) error {
	key := r.recordKey(collection, id)
	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("check exists %s: %w", key, err)
	}
	if !exists {
		return fmt.Errorf("record %s/%s: %w", collection, id, domain.ErrNotFound)
	}
	if err := r.store.Del(ctx, key); err != nil {
		return fmt.Errorf("del %s: %w", key, err)
	}
	return nil
}
