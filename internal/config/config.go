package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"github.com/robfig/cron/v3"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	domrec "github.com/kailas-cloud/crudex/internal/domain/record"
	"github.com/kailas-cloud/crudex/internal/query/nosql"
)

// Storage drivers.
const (
	DriverMemory     = "memory"
	DriverFilesystem = "filesystem"
	DriverRedis      = "redis"
)

// Config holds the crudex API configuration.
type Config struct {
	HTTP    HTTPConfig    `yaml:"http"`
	Storage StorageConfig `yaml:"storage"`
	Auth    AuthConfig    `yaml:"auth"`
	Query   QueryConfig   `yaml:"query"`
	Jobs    JobsConfig    `yaml:"jobs"`
	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level    string `yaml:"level"`    // debug, info, warn, error (default: determined by env)
	Encoding string `yaml:"encoding"` // json or console (default: determined by env)
}

// AuthConfig holds API authentication settings. Auth is off when both are empty.
type AuthConfig struct {
	APIKeys   []string `yaml:"api_keys"`
	JWTSecret string   `yaml:"jwt_secret"` // HS256
	JWTIssuer string   `yaml:"jwt_issuer"` // checked when set
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
	MaxBodyBytes    int `yaml:"max_body_bytes"`
}

// StorageConfig selects and configures the record store.
type StorageConfig struct {
	Driver           string   `yaml:"driver"` // memory, filesystem, redis (default: memory)
	Dir              string   `yaml:"dir"`    // filesystem only
	Workers          int      `yaml:"workers"`
	Addrs            []string `yaml:"addrs"` // redis only
	Password         string   `yaml:"password"`
	KeyPrefix        string   `yaml:"key_prefix"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// QueryConfig holds query engine settings.
type QueryConfig struct {
	DefaultPageSize int               `yaml:"default_page_size"`
	Language        string            `yaml:"language"` // BCP 47 tag for string collation
	Coercions       map[string]string `yaml:"coercions"` // field -> objectid | time
}

// JobsConfig holds scheduled saved queries.
type JobsConfig struct {
	TimeoutSec int         `yaml:"timeout_sec"`
	Queries    []JobConfig `yaml:"queries"`
}

// JobConfig is one saved query run on a cron schedule.
type JobConfig struct {
	Name       string `yaml:"name"`
	Schedule   string `yaml:"schedule"`
	Collection string `yaml:"collection"`
	Filter     string `yaml:"filter"`
	Sort       string `yaml:"sort"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	return LoadFile(findConfigPath(env))
}

// LoadFile reads, expands, defaults and validates one config file.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.HTTP.MaxBodyBytes <= 0 {
		c.HTTP.MaxBodyBytes = 2 * domrec.MaxSize
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = DriverMemory
	}
	if c.Storage.Workers <= 0 {
		c.Storage.Workers = 8
	}
	if c.Storage.KeyPrefix == "" {
		c.Storage.KeyPrefix = "crudex:"
	}
	if c.Storage.ReadinessTimeout <= 0 {
		c.Storage.ReadinessTimeout = 10
	}
	if c.Query.Language == "" {
		c.Query.Language = "und"
	}
	if c.Jobs.TimeoutSec <= 0 {
		c.Jobs.TimeoutSec = 30
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}

	switch c.Storage.Driver {
	case DriverMemory:
	case DriverFilesystem:
		if c.Storage.Dir == "" {
			return fmt.Errorf("storage.dir is required for driver %q", DriverFilesystem)
		}
	case DriverRedis:
		if len(c.Storage.Addrs) == 0 {
			return fmt.Errorf("storage.addrs is required for driver %q", DriverRedis)
		}
	default:
		return fmt.Errorf("storage.driver must be memory, filesystem or redis, got %q", c.Storage.Driver)
	}

	if c.Query.DefaultPageSize < 0 {
		return fmt.Errorf("query.default_page_size must not be negative, got %d", c.Query.DefaultPageSize)
	}
	if _, err := c.Query.Tag(); err != nil {
		return err
	}
	if _, err := c.Query.Coercers(); err != nil {
		return err
	}

	seen := make(map[string]bool, len(c.Jobs.Queries))
	for i, j := range c.Jobs.Queries {
		if j.Name == "" {
			return fmt.Errorf("jobs.queries[%d].name is required", i)
		}
		if seen[j.Name] {
			return fmt.Errorf("jobs.queries[%d].name %q is duplicated", i, j.Name)
		}
		seen[j.Name] = true
		if _, err := cron.ParseStandard(j.Schedule); err != nil {
			return fmt.Errorf("jobs.queries[%d].schedule %q: %w", i, j.Schedule, err)
		}
		if err := domrec.ValidateCollection(j.Collection); err != nil {
			return fmt.Errorf("jobs.queries[%d].collection: %w", i, err)
		}
	}

	switch c.Logging.Encoding {
	case "", "json", "console":
	default:
		return fmt.Errorf("logging.encoding must be json or console, got %q", c.Logging.Encoding)
	}
	return nil
}

// Tag parses Language.
func (q QueryConfig) Tag() (language.Tag, error) {
	tag, err := language.Parse(q.Language)
	if err != nil {
		return language.Und, fmt.Errorf("query.language %q: %w", q.Language, err)
	}
	return tag, nil
}

// Coercers resolves Coercions into filter hooks.
func (q QueryConfig) Coercers() (map[string]nosql.Coercer, error) {
	out := make(map[string]nosql.Coercer, len(q.Coercions))
	for field, name := range q.Coercions {
		c, ok := nosql.CoercerByName(name)
		if !ok {
			return nil, fmt.Errorf("query.coercions.%s: unknown coercer %q (want objectid or time)", field, name)
		}
		out[field] = c
	}
	return out, nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
