package crudex

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	dbRedis "github.com/kailas-cloud/crudex/internal/db/redis"
	domrec "github.com/kailas-cloud/crudex/internal/domain/record"
	"github.com/kailas-cloud/crudex/internal/query/nosql"
	"github.com/kailas-cloud/crudex/internal/query/page"
	documentrepo "github.com/kailas-cloud/crudex/internal/repository/document"
	"github.com/kailas-cloud/crudex/internal/repository/filesystem"
	"github.com/kailas-cloud/crudex/internal/repository/memory"
	healthuc "github.com/kailas-cloud/crudex/internal/usecase/health"
	recorduc "github.com/kailas-cloud/crudex/internal/usecase/record"
)

// Внутренние интерфейсы для подмены в тестах.
type recordUseCase interface {
	Query(ctx context.Context, collection string, req page.Request) (page.Envelope[domrec.Record], error)
	Get(ctx context.Context, collection, id string) (domrec.Record, error)
	Create(ctx context.Context, collection string, fields map[string]any) (domrec.Record, error)
	Replace(ctx context.Context, collection, id string, fields map[string]any) (domrec.Record, bool, error)
	Delete(ctx context.Context, collection, id string) error
}

// storage is a record repository that can report its own health.
type storage interface {
	recorduc.Repository
	Ping(ctx context.Context) error
}

// Client is the crudex SDK entry point.
type Client struct {
	store     storage
	closeFn   func()
	recordSvc recordUseCase
	healthSvc healthUseCase
	obs       *observer
}

// New creates a Client and opens its storage. For Redis the provided
// context bounds the initial readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := defaultConfig()
	for _, o := range opts {
		o.apply(cfg)
	}

	coercers, err := resolveCoercers(cfg.coercions)
	if err != nil {
		return nil, err
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	store, closeFn, err := openStorage(ctx, cfg, obs.logger)
	if err != nil {
		return nil, err
	}

	svc := recorduc.New(store).
		WithCoercers(coercers).
		WithLanguage(cfg.language).
		WithObserver(obs).
		WithDefaultPageSize(cfg.defaultPageSize)

	return &Client{
		store:     store,
		closeFn:   closeFn,
		recordSvc: svc,
		healthSvc: healthuc.New(store, nil),
		obs:       obs,
	}, nil
}

func resolveCoercers(names map[string]string) (map[string]nosql.Coercer, error) {
	if len(names) == 0 {
		return nil, nil
	}
	out := make(map[string]nosql.Coercer, len(names))
	for field, name := range names {
		c, ok := nosql.CoercerByName(name)
		if !ok {
			return nil, fmt.Errorf("crudex: unknown coercer %q for field %q", name, field)
		}
		out[field] = c
	}
	return out, nil
}

func openStorage(ctx context.Context, cfg *clientConfig, logger *zap.Logger) (storage, func(), error) {
	noop := func() {}
	switch cfg.driver {
	case driverMemory:
		return memory.New(), noop, nil
	case driverFilesystem:
		repo, err := filesystem.New(cfg.dir,
			filesystem.WithWorkers(cfg.workers),
			filesystem.WithLogger(logger),
		)
		if err != nil {
			return nil, nil, fmt.Errorf("crudex: open data dir: %w", err)
		}
		return repo, noop, nil
	case driverRedis:
		store, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.addrs,
			Password: cfg.password,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("crudex: create redis store: %w", err)
		}
		if err := store.WaitForReady(ctx, cfg.readinessTimeout); err != nil {
			store.Close()
			return nil, nil, fmt.Errorf("crudex: database not ready: %w", err)
		}
		repo := documentrepo.New(store,
			documentrepo.WithPrefix(cfg.keyPrefix),
			documentrepo.WithLogger(logger),
		)
		return redisStorage{Repo: repo, store: store}, store.Close, nil
	default:
		return nil, nil, fmt.Errorf("crudex: unknown driver %q", cfg.driver)
	}
}

// redisStorage adds the store's Ping to the document repository.
type redisStorage struct {
	*documentrepo.Repo
	store *dbRedis.Store
}

func (r redisStorage) Ping(ctx context.Context) error { return r.store.Ping(ctx) }

// Close releases all resources.
func (c *Client) Close() {
	if c.closeFn != nil {
		c.closeFn()
	}
}

// Ping checks storage connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Records returns the record service for a given collection.
func (c *Client) Records(collection string) *RecordService {
	return &RecordService{
		collection: collection,
		svc:        c.recordSvc,
		obs:        c.obs,
	}
}
