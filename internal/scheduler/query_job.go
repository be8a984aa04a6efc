package scheduler

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	domrec "github.com/kailas-cloud/crudex/internal/domain/record"
	"github.com/kailas-cloud/crudex/internal/logger"
	"github.com/kailas-cloud/crudex/internal/query/page"
)

// Querier runs a filtered listing, usually usecase/record.Service.
type Querier interface {
	Query(ctx context.Context, collection string, req page.Request) (page.Envelope[domrec.Record], error)
}

// Recorder receives job outcomes, usually metrics.Recorder.
type Recorder interface {
	JobSucceeded(job string, matches int64)
	JobFailed(job string)
}

// ResultStore persists job results. Optional.
type ResultStore interface {
	Set(ctx context.Context, key string, value []byte) error
	IncrBy(ctx context.Context, key string, val int64) (int64, error)
}

// JobKeyNamespace follows the store prefix in job result keys.
const JobKeyNamespace = "_job:"

// QueryJob runs a saved filter and sort against a collection and records
// how many records matched.
type QueryJob struct {
	name       string
	collection string
	filter     string
	sort       string

	querier  Querier
	recorder Recorder
	results  ResultStore
	prefix   string
}

// NewQueryJob creates a saved-query job. recorder and results may be nil.
func NewQueryJob(name, collection, filter, sort string, q Querier) *QueryJob {
	return &QueryJob{name: name, collection: collection, filter: filter, sort: sort, querier: q}
}

// WithRecorder reports every run to r.
func (j *QueryJob) WithRecorder(r Recorder) *QueryJob {
	j.recorder = r
	return j
}

// WithResultStore writes <prefix>_job:<name>:matches and increments
// <prefix>_job:<name>:runs after every successful run. Collection names
// start with a letter, so the _job namespace never overlaps record keys.
func (j *QueryJob) WithResultStore(s ResultStore, prefix string) *QueryJob {
	j.results = s
	j.prefix = prefix
	return j
}

// Name returns the job name.
func (j *QueryJob) Name() string { return j.name }

// Run executes the query once.
func (j *QueryJob) Run(ctx context.Context) error {
	env, err := j.querier.Query(ctx, j.collection, page.Request{Filter: j.filter, Sort: j.sort, PageSize: "1"})
	if err != nil {
		j.failed()
		return fmt.Errorf("query %s: %w", j.collection, err)
	}

	if j.results != nil {
		key := j.prefix + JobKeyNamespace + j.name
		if err := j.results.Set(ctx, key+":matches", []byte(strconv.FormatInt(env.TotalCount, 10))); err != nil {
			j.failed()
			return fmt.Errorf("store matches: %w", err)
		}
		if _, err := j.results.IncrBy(ctx, key+":runs", 1); err != nil {
			j.failed()
			return fmt.Errorf("count runs: %w", err)
		}
	}
	if j.recorder != nil {
		j.recorder.JobSucceeded(j.name, env.TotalCount)
	}

	fields := []zap.Field{
		zap.String("collection", j.collection),
		zap.Int64("matches", env.TotalCount),
	}
	if len(env.Items) > 0 {
		fields = append(fields, zap.String("first", env.Items[0].ID()))
	}
	logger.FromContext(ctx).Info("saved query", fields...)
	return nil
}

func (j *QueryJob) failed() {
	if j.recorder != nil {
		j.recorder.JobFailed(j.name)
	}
}
