package crudex

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/text/language"
)

// Storage drivers.
const (
	driverMemory     = "memory"
	driverFilesystem = "filesystem"
	driverRedis      = "redis"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	driver    string
	dir       string
	workers   int
	addrs     []string
	password  string
	keyPrefix string

	language        language.Tag
	coercions       map[string]string
	defaultPageSize int

	readinessTimeout time.Duration

	logger     *zap.Logger
	metricsReg prometheus.Registerer
}

func defaultConfig() *clientConfig {
	return &clientConfig{
		driver:           driverMemory,
		language:         language.Und,
		readinessTimeout: 10 * time.Second,
	}
}

// WithMemory keeps records in process memory. This is the default.
func WithMemory() Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = driverMemory
	})
}

// WithFilesystem stores one JSON file per record under dir.
func WithFilesystem(dir string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = driverFilesystem
		c.dir = dir
	})
}

// WithFilesystemWorkers bounds the parallel file reads of a listing.
func WithFilesystemWorkers(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.workers = n
	})
}

// WithRedis stores records as RedisJSON documents.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = driverRedis
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithKeyPrefix overrides the Redis key prefix. Default: "crudex:".
func WithKeyPrefix(prefix string) Option {
	return optionFunc(func(c *clientConfig) {
		c.keyPrefix = prefix
	})
}

// WithReadinessTimeout bounds the wait for Redis at startup. Default: 10s.
func WithReadinessTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.readinessTimeout = d
	})
}

// WithLanguage selects the collation used when sorting strings.
func WithLanguage(tag language.Tag) Option {
	return optionFunc(func(c *clientConfig) {
		c.language = tag
	})
}

// WithCoercion rewrites filter literals on field before they reach the
// document store. Known coercers: "objectid", "time".
func WithCoercion(field, coercer string) Option {
	return optionFunc(func(c *clientConfig) {
		if c.coercions == nil {
			c.coercions = make(map[string]string)
		}
		c.coercions[field] = coercer
	})
}

// WithDefaultPageSize applies when ListOptions leaves PageSize at zero.
func WithDefaultPageSize(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.defaultPageSize = n
	})
}

// WithLogger enables structured logging for client operations.
// Pass nil to disable (default).
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers client metrics (operation counts, durations and
// rejected queries) on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
