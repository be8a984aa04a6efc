// Package memory keeps records in process memory and executes compiled
// queries over plain slices. The filesystem repository reuses Execute.
package memory

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/kailas-cloud/crudex/internal/domain"
	domrec "github.com/kailas-cloud/crudex/internal/domain/record"
	"github.com/kailas-cloud/crudex/internal/query"
	"github.com/kailas-cloud/crudex/internal/query/page"
)

// Repo implements usecase/record.Repository over maps guarded by a mutex.
type Repo struct {
	mu          sync.RWMutex
	collections map[string]map[string]domrec.Record
}

// New creates an empty in-memory repository.
func New() *Repo {
	return &Repo{collections: make(map[string]map[string]domrec.Record)}
}

// Ping always succeeds.
func (r *Repo) Ping(context.Context) error { return nil }

// Find matches, orders and pages the records of a collection.
func (r *Repo) Find(
	_ context.Context, collection string, plan *query.Plan, req page.Request,
) (page.Envelope[domrec.Record], error) {
	r.mu.RLock()
	recs := make([]domrec.Record, 0, len(r.collections[collection]))
	for _, rec := range r.collections[collection] {
		recs = append(recs, rec)
	}
	r.mu.RUnlock()

	SortByID(recs)
	env := Execute(recs, plan, req)
	for i, rec := range env.Items {
		env.Items[i] = rec.Clone()
	}
	return env, nil
}

// Get returns a copy of one record.
func (r *Repo) Get(_ context.Context, collection, id string) (domrec.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.collections[collection][id]
	if !ok {
		return nil, fmt.Errorf("record %s/%s: %w", collection, id, domain.ErrNotFound)
	}
	return rec.Clone(), nil
}

// Insert stores a new record.
func (r *Repo) Insert(_ context.Context, collection string, rec domrec.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	coll := r.collection(collection)
	if _, ok := coll[rec.ID()]; ok {
		return fmt.Errorf("record %s/%s: %w", collection, rec.ID(), domain.ErrAlreadyExists)
	}
	coll[rec.ID()] = rec.Clone()
	return nil
}

// Replace creates or overwrites a record.
func (r *Repo) Replace(_ context.Context, collection string, rec domrec.Record) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	coll := r.collection(collection)
	_, exists := coll[rec.ID()]
	coll[rec.ID()] = rec.Clone()
	return !exists, nil
}

// Delete removes a record.
func (r *Repo) Delete(_ context.Context, collection, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	coll := r.collections[collection]
	if _, ok := coll[id]; !ok {
		return fmt.Errorf("record %s/%s: %w", collection, id, domain.ErrNotFound)
	}
	delete(coll, id)
	return nil
}

func (r *Repo) collection(name string) map[string]domrec.Record {
	coll, ok := r.collections[name]
	if !ok {
		coll = make(map[string]domrec.Record)
		r.collections[name] = coll
	}
	return coll
}

// Execute filters records with plan.Match, orders them with plan.Chain and
// returns the requested page. A nil plan matches everything in input order.
// The input slice is not modified.
func Execute(records []domrec.Record, plan *query.Plan, req page.Request) page.Envelope[domrec.Record] {
	if plan == nil {
		plan = query.MatchAll()
	}

	matched := make([]domrec.Record, 0, len(records))
	for _, rec := range records {
		if plan.Match(rec) {
			matched = append(matched, rec)
		}
	}
	if len(plan.Chain) > 0 {
		slices.SortStableFunc(matched, func(a, b domrec.Record) int {
			return plan.Chain.Compare(a, b)
		})
	}

	env := page.Build[domrec.Record](req, int64(len(matched)))
	return env.WithItems(env.Slice(matched))
}

// SortByID gives records a deterministic base order before a stable sort.
func SortByID(recs []domrec.Record) {
	slices.SortFunc(recs, func(a, b domrec.Record) int {
		return strings.Compare(a.ID(), b.ID())
	})
}
