package record

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"golang.org/x/text/language"

	domrec "github.com/kailas-cloud/crudex/internal/domain/record"
	"github.com/kailas-cloud/crudex/internal/logger"
	"github.com/kailas-cloud/crudex/internal/query"
	"github.com/kailas-cloud/crudex/internal/query/nosql"
	"github.com/kailas-cloud/crudex/internal/query/page"
)

// Service handles record CRUD and filtered listing.
type Service struct {
	repo            Repository
	coercers        map[string]nosql.Coercer
	lang            language.Tag
	observer        QueryObserver
	defaultPageSize int
}

// New creates a record service.
func New(repo Repository) *Service {
	return &Service{repo: repo, lang: language.Und}
}

// WithCoercers sets the per-field literal hooks used by document filters.
func (s *Service) WithCoercers(cs map[string]nosql.Coercer) *Service {
	s.coercers = cs
	return s
}

// WithLanguage sets the collation language for sorting.
func (s *Service) WithLanguage(tag language.Tag) *Service {
	s.lang = tag
	return s
}

// WithObserver reports parse failures and fallbacks, usually to metrics.
func (s *Service) WithObserver(o QueryObserver) *Service {
	s.observer = o
	return s
}

// WithDefaultPageSize applies when a request leaves pageSize empty.
func (s *Service) WithDefaultPageSize(n int) *Service {
	if n > 0 {
		s.defaultPageSize = n
	}
	return s
}

// Compile turns filter and sort expressions into a plan with the service's
// coercers, collation and observer. The request logger receives warnings.
func (s *Service) Compile(ctx context.Context, filter, sort string) (*query.Plan, error) {
	opts := []query.Option{
		query.WithLogger(logger.FromContext(ctx)),
		query.WithCoercers(s.coercers),
		query.WithLanguage(s.lang),
	}
	if s.observer != nil {
		opts = append(opts, query.WithObserver(s.observer))
	}
	plan, err := query.Compile(filter, sort, opts...)
	if err != nil {
		return nil, fmt.Errorf("compile query: %w", err)
	}
	return plan, nil
}

// Query returns one page of the records matching req.
func (s *Service) Query(ctx context.Context, collection string, req page.Request) (
	page.Envelope[domrec.Record], error,
) {
	if err := domrec.ValidateCollection(collection); err != nil {
		return page.Envelope[domrec.Record]{}, err
	}
	if req.PageSize == "" && s.defaultPageSize > 0 {
		req.PageSize = strconv.Itoa(s.defaultPageSize)
	}

	plan, err := s.Compile(ctx, req.Filter, req.Sort)
	if err != nil {
		return page.Envelope[domrec.Record]{}, err
	}
	env, err := s.repo.Find(ctx, collection, plan, req)
	if err != nil {
		return page.Envelope[domrec.Record]{}, fmt.Errorf("find records: %w", err)
	}
	return env, nil
}

// Get returns a record by ID.
func (s *Service) Get(ctx context.Context, collection, id string) (domrec.Record, error) {
	if err := domrec.ValidateCollection(collection); err != nil {
		return nil, err
	}
	if err := domrec.ValidateID(id); err != nil {
		return nil, err
	}
	rec, err := s.repo.Get(ctx, collection, id)
	if err != nil {
		return nil, fmt.Errorf("get record: %w", err)
	}
	return rec, nil
}

// Create stores a new record. A missing or empty id is replaced by a random UUID.
func (s *Service) Create(ctx context.Context, collection string, fields map[string]any) (domrec.Record, error) {
	if err := domrec.ValidateCollection(collection); err != nil {
		return nil, err
	}

	raw, present := fields[domrec.IDField]
	id, _ := raw.(string)
	if !present || raw == "" {
		id = uuid.NewString()
		if present {
			fields = withoutID(fields)
		}
	}
	rec, err := domrec.New(id, fields)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Insert(ctx, collection, rec); err != nil {
		return nil, fmt.Errorf("insert record: %w", err)
	}
	return rec, nil
}

// Replace creates or overwrites the record with id. Returns true if created.
func (s *Service) Replace(
	ctx context.Context, collection, id string, fields map[string]any,
) (domrec.Record, bool, error) {
	if err := domrec.ValidateCollection(collection); err != nil {
		return nil, false, err
	}
	rec, err := domrec.New(id, fields)
	if err != nil {
		return nil, false, err
	}
	created, err := s.repo.Replace(ctx, collection, rec)
	if err != nil {
		return nil, false, fmt.Errorf("replace record: %w", err)
	}
	return rec, created, nil
}

// Delete removes a record.
func (s *Service) Delete(ctx context.Context, collection, id string) error {
	if err := domrec.ValidateCollection(collection); err != nil {
		return err
	}
	if err := domrec.ValidateID(id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, collection, id); err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	return nil
}

func withoutID(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		if k != domrec.IDField {
			out[k] = v
		}
	}
	return out
}
