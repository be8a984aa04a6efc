package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/crudex/internal/config"
	dbRedis "github.com/kailas-cloud/crudex/internal/db/redis"
	logpkg "github.com/kailas-cloud/crudex/internal/logger"
	"github.com/kailas-cloud/crudex/internal/metrics"
	documentrepo "github.com/kailas-cloud/crudex/internal/repository/document"
	"github.com/kailas-cloud/crudex/internal/repository/filesystem"
	"github.com/kailas-cloud/crudex/internal/repository/memory"
	"github.com/kailas-cloud/crudex/internal/scheduler"
	chiTransport "github.com/kailas-cloud/crudex/internal/transport/chi"
	healthuc "github.com/kailas-cloud/crudex/internal/usecase/health"
	recorduc "github.com/kailas-cloud/crudex/internal/usecase/record"
	"github.com/kailas-cloud/crudex/internal/version"
)

// repository is what the composition root needs from a storage backend.
type repository interface {
	recorduc.Repository
	healthuc.DBPinger
}

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, logpkg.Options{
		Level:    cfg.Logging.Level,
		Encoding: cfg.Logging.Encoding,
	})
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting crudex API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("storage_driver", cfg.Storage.Driver),
	)

	ctx := context.Background()
	repo, results, closeStore, err := openRepository(ctx, cfg.Storage, logger)
	if err != nil {
		logger.Fatal("Failed to open storage", zap.Error(err))
	}
	defer closeStore()

	// Both were validated by config.Load.
	tag, _ := cfg.Query.Tag()
	coercers, _ := cfg.Query.Coercers()
	recorder := metrics.Recorder{}
	recordSvc := recorduc.New(repo).
		WithCoercers(coercers).
		WithLanguage(tag).
		WithObserver(recorder).
		WithDefaultPageSize(cfg.Query.DefaultPageSize)

	// Saved queries
	var jobs healthuc.JobsChecker
	sched := scheduler.New(logger.Named("scheduler"), time.Duration(cfg.Jobs.TimeoutSec)*time.Second)
	for _, jc := range cfg.Jobs.Queries {
		job := scheduler.NewQueryJob(jc.Name, jc.Collection, jc.Filter, jc.Sort, recordSvc).WithRecorder(recorder)
		if results != nil {
			job = job.WithResultStore(results, cfg.Storage.KeyPrefix)
		}
		if err := sched.Add(jc.Schedule, job); err != nil {
			logger.Fatal("Failed to schedule job", zap.String("job", jc.Name), zap.Error(err))
		}
	}
	if sched.Len() > 0 {
		sched.Start()
		jobs = sched
	}

	healthSvc := healthuc.New(repo, jobs)
	server := chiTransport.NewServer(recordSvc, healthSvc).WithMaxBodyBytes(int64(cfg.HTTP.MaxBodyBytes))
	handler := chiTransport.NewRouter(server, chiTransport.RouterConfig{
		Logger:    logger,
		APIKeys:   cfg.Auth.APIKeys,
		JWTSecret: cfg.Auth.JWTSecret,
		JWTIssuer: cfg.Auth.JWTIssuer,
	})

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}
	if err := sched.Stop(shutdownCtx); err != nil {
		logger.Error("Error stopping scheduler", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// openRepository builds the configured backend. results is non-nil only for
// stores that can persist job results.
func openRepository(ctx context.Context, cfg config.StorageConfig, logger *zap.Logger) (
	repository, scheduler.ResultStore, func(), error,
) {
	noop := func() {}
	switch cfg.Driver {
	case config.DriverMemory:
		return memory.New(), nil, noop, nil
	case config.DriverFilesystem:
		repo, err := filesystem.New(cfg.Dir,
			filesystem.WithWorkers(cfg.Workers),
			filesystem.WithLogger(logger.Named("filesystem")),
		)
		if err != nil {
			return nil, nil, noop, fmt.Errorf("open data dir: %w", err)
		}
		return repo, nil, noop, nil
	case config.DriverRedis:
		store, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Addrs,
			Password: cfg.Password,
		})
		if err != nil {
			return nil, nil, noop, fmt.Errorf("create redis store: %w", err)
		}
		if err := store.WaitForReady(ctx, time.Duration(cfg.ReadinessTimeout)*time.Second); err != nil {
			store.Close()
			return nil, nil, noop, fmt.Errorf("redis not ready: %w", err)
		}
		logger.Info("Connected to database", zap.Strings("addrs", cfg.Addrs))
		repo := documentrepo.New(store,
			documentrepo.WithPrefix(cfg.KeyPrefix),
			documentrepo.WithLogger(logger.Named("document")),
		)
		return redisRepository{Repo: repo, store: store}, store, store.Close, nil
	}
	return nil, nil, noop, fmt.Errorf("unknown storage driver %q", cfg.Driver)
}

// redisRepository adds the store's Ping to the document repository.
type redisRepository struct {
	*documentrepo.Repo
	store *dbRedis.Store
}

func (r redisRepository) Ping(ctx context.Context) error { return r.store.Ping(ctx) }
