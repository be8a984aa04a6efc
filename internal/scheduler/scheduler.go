// Package scheduler runs named jobs on cron schedules.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/kailas-cloud/crudex/internal/logger"
)

// ErrNotRunning is returned by HealthCheck before Start or after Stop.
var ErrNotRunning = errors.New("scheduler not running")

// Job is a unit of scheduled work.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// Scheduler wraps a cron instance. Overlapping runs of the same job are
// skipped and panics are recovered.
type Scheduler struct {
	cron    *cron.Cron
	logger  *zap.Logger
	timeout time.Duration

	mu      sync.Mutex
	entries map[string]cron.EntryID
	running bool
}

// New creates a scheduler. timeout bounds every run; zero means no limit.
func New(l *zap.Logger, timeout time.Duration) *Scheduler {
	if l == nil {
		l = zap.NewNop()
	}
	cl := cronLogger{l.Sugar()}
	return &Scheduler{
		cron:    cron.New(cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)), cron.WithLogger(cl)),
		logger:  l,
		timeout: timeout,
		entries: make(map[string]cron.EntryID),
	}
}

// Add registers job under a standard five-field cron spec or a descriptor
// such as "@every 5m". Names must be unique.
func (s *Scheduler) Add(spec string, job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := job.Name()
	if _, ok := s.entries[name]; ok {
		return fmt.Errorf("job %q already registered", name)
	}
	id, err := s.cron.AddFunc(spec, func() { s.run(job) })
	if err != nil {
		return fmt.Errorf("schedule job %q: %w", name, err)
	}
	s.entries[name] = id
	s.logger.Info("job scheduled", zap.String("job", name), zap.String("schedule", spec))
	return nil
}

// Len returns the number of registered jobs.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Start begins dispatching jobs in the background.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.cron.Start()
	s.running = true
}

// Stop halts scheduling and waits for running jobs until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	s.mu.Unlock()

	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return fmt.Errorf("wait for running jobs: %w", ctx.Err())
	}
}

// HealthCheck reports ErrNotRunning unless Start was called.
func (s *Scheduler) HealthCheck(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return ErrNotRunning
	}
	return nil
}

func (s *Scheduler) run(job Job) {
	l := s.logger.With(zap.String("job", job.Name()))
	ctx := logger.ContextWithLogger(context.Background(), l)
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	if err := job.Run(ctx); err != nil {
		l.Error("job failed", zap.Duration("duration", time.Since(start)), zap.Error(err))
		return
	}
	l.Debug("job finished", zap.Duration("duration", time.Since(start)))
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	s *zap.SugaredLogger
}

func (c cronLogger) Info(msg string, keysAndValues ...any) {
	c.s.Debugw(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...any) {
	c.s.Errorw(msg, append(keysAndValues, "error", err)...)
}
