// Package filesystem stores one JSON file per record under
// <dir>/<collection>/<id>.json and answers queries in memory.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/crudex/internal/domain"
	domrec "github.com/kailas-cloud/crudex/internal/domain/record"
	"github.com/kailas-cloud/crudex/internal/query"
	"github.com/kailas-cloud/crudex/internal/query/page"
	"github.com/kailas-cloud/crudex/internal/repository/memory"
)

const (
	fileExt        = ".json"
	defaultWorkers = 8
)

// Repo implements usecase/record.Repository on a directory tree. Writes are
// serialized within the process; each file is replaced atomically.
type Repo struct {
	dir     string
	workers int
	logger  *zap.Logger
	mu      sync.Mutex
}

// Option configures the repository.
type Option func(*Repo)

// WithWorkers bounds the number of files read concurrently.
func WithWorkers(n int) Option {
	return func(r *Repo) {
		if n > 0 {
			r.workers = n
		}
	}
}

// WithLogger sets the logger used for skipped files.
func WithLogger(l *zap.Logger) Option {
	return func(r *Repo) {
		if l != nil {
			r.logger = l
		}
	}
}

// New creates the root directory if needed.
func New(dir string, opts ...Option) (*Repo, error) {
	if dir == "" {
		return nil, fmt.Errorf("dir is required")
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	r := &Repo{dir: dir, workers: defaultWorkers, logger: zap.NewNop()}
	for _, o := range opts {
		o(r)
	}
	return r, nil
}

// Ping checks that the data directory is still there.
func (r *Repo) Ping(context.Context) error {
	info, err := os.Stat(r.dir)
	if err != nil {
		return fmt.Errorf("stat data dir: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("data dir %s is not a directory", r.dir)
	}
	return nil
}

// Find loads the whole collection and delegates to memory.Execute.
func (r *Repo) Find(
	ctx context.Context, collection string, plan *query.Plan, req page.Request,
) (page.Envelope[domrec.Record], error) {
	recs, err := r.load(ctx, collection)
	if err != nil {
		return page.Envelope[domrec.Record]{}, err
	}
	memory.SortByID(recs)
	return memory.Execute(recs, plan, req), nil
}

// Get reads one record file.
func (r *Repo) Get(_ context.Context, collection, id string) (domrec.Record, error) {
	rec, err := r.readFile(r.recordPath(collection, id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("record %s/%s: %w", collection, id, domain.ErrNotFound)
		}
		return nil, err
	}
	return rec, nil
}

// Insert writes a new record file.
func (r *Repo) Insert(_ context.Context, collection string, rec domrec.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	path := r.recordPath(collection, rec.ID())
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("record %s/%s: %w", collection, rec.ID(), domain.ErrAlreadyExists)
	}
	return r.writeFile(path, rec)
}

// Replace creates or overwrites a record file.
func (r *Repo) Replace(_ context.Context, collection string, rec domrec.Record) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	path := r.recordPath(collection, rec.ID())
	_, statErr := os.Stat(path)
	if err := r.writeFile(path, rec); err != nil {
		return false, err
	}
	return errors.Is(statErr, fs.ErrNotExist), nil
}

// Delete removes a record file.
func (r *Repo) Delete(_ context.Context, collection, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := os.Remove(r.recordPath(collection, id)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("record %s/%s: %w", collection, id, domain.ErrNotFound)
		}
		return fmt.Errorf("remove record %s/%s: %w", collection, id, err)
	}
	return nil
}

// load reads every record of a collection with a bounded worker group. A
// missing collection directory is an empty collection.
func (r *Repo) load(ctx context.Context, collection string) ([]domrec.Record, error) {
	dir := filepath.Join(r.dir, collection)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("list collection %s: %w", collection, err)
	}

	var names []string
	for _, e := range entries {
		if e.Type().IsRegular() && strings.HasSuffix(e.Name(), fileExt) {
			names = append(names, e.Name())
		}
	}

	out := make([]domrec.Record, len(names))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i, name := range names {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rec, err := r.readFile(filepath.Join(dir, name))
			switch {
			case errors.Is(err, fs.ErrNotExist):
				// deleted after ReadDir
			case errors.Is(err, domain.ErrInvalidRecord):
				r.logger.Warn("skipping unreadable record file",
					zap.String("collection", collection),
					zap.String("file", name),
					zap.Error(err),
				)
			case err != nil:
				return err
			default:
				out[i] = rec
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load collection %s: %w", collection, err)
	}

	recs := out[:0]
	for _, rec := range out {
		if rec != nil {
			recs = append(recs, rec)
		}
	}
	return recs, nil
}

func (r *Repo) recordPath(collection, id string) string {
	return filepath.Join(r.dir, collection, id+fileExt)
}

func (r *Repo) readFile(path string) (domrec.Record, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is built from validated collection and id
	if err != nil {
		return nil, err
	}
	rec, err := domrec.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return rec, nil
}

// writeFile writes to a temp file in the same directory and renames it over
// path, so readers never see a partial record.
func (r *Repo) writeFile(path string, rec domrec.Record) error {
	data, err := rec.Encode()
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create collection dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
